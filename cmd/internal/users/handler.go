// Package users exposes the profile endpoints behind the access guard.
package users

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"articles/cmd/identity"
	"articles/cmd/internal/auth"
	"articles/cmd/internal/httpx"
)

// Handler wires the /users endpoints to the identity store. It never derives
// the caller's identity itself; the access guard has already attached the
// validated claims to the request context.
type Handler struct {
	log          *slog.Logger
	store        identity.Store
	maxBodyBytes int64
}

// NewHandler constructs the users handler.
func NewHandler(log *slog.Logger, store identity.Store, maxBodyBytes int64) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &Handler{
		log:          log,
		store:        store,
		maxBodyBytes: maxBodyBytes,
	}
}

// Me handles GET /users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := callerID(r)
	if err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	u, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Get user successfully", toUserResponse(u))
}

// Update handles PATCH /users. Only the fields present in the body change;
// a new password is hashed before it reaches the store.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := callerID(r)
	if err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	var req updateRequest
	if err := httpx.Decode(w, r, h.maxBodyBytes, &req); err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	in, err := validateUpdate(req)
	if err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	u, err := h.store.UpdateUser(r.Context(), id, in)
	if err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	h.log.Info("users.update.ok", "user_id", u.ID)
	httpx.OK(w, http.StatusOK, "Update user successfully", toUserResponse(u))
}

func callerID(r *http.Request) (int64, error) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		// The guard attaches claims before any protected handler runs; missing
		// claims means the route was wired without it.
		return 0, auth.ErrUnauthenticated
	}
	return claims.UserID()
}

func validateUpdate(req updateRequest) (identity.UpdateUserInput, error) {
	const op = "users.Update"

	invalid := func(msg string) error {
		return identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: msg}
	}

	var in identity.UpdateUserInput

	if req.Password != nil {
		if *req.Password == "" {
			return in, invalid("password must not be empty")
		}
		if len(*req.Password) > 255 {
			return in, invalid("password is too long")
		}
		hash, err := identity.HashPassword(*req.Password)
		if err != nil {
			return in, err
		}
		in.PasswordHash = &hash
	}
	if req.FullName != nil {
		if len(*req.FullName) > 100 {
			return in, invalid("fullName is too long")
		}
		in.FullName = req.FullName
	}
	if req.Bio != nil {
		in.Bio = req.Bio
	}
	if req.AvatarURL != nil {
		if len(*req.AvatarURL) > 255 {
			return in, invalid("avatarUrl is too long")
		}
		in.AvatarURL = req.AvatarURL
	}
	if req.Role != nil {
		role := identity.Role(strings.TrimSpace(*req.Role))
		if !identity.ValidRole(role) {
			return in, invalid("unknown role")
		}
		in.Role = &role
	}

	return in, nil
}

type updateRequest struct {
	Password  *string `json:"password"`
	FullName  *string `json:"fullName"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
	Role      *string `json:"role"`
}

// userResponse is the client-facing user shape. The password hash never
// leaves the service.
type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  *string   `json:"fullName"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatarUrl"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
