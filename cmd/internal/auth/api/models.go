package authapi

type registerRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FullName  *string `json:"fullName"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
	Role      *string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
