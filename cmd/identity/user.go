package identity

import (
	"context"
	"strings"
	"time"
)

// Role is the coarse authorization level attached to every user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAuthor Role = "author"
	RoleUser   Role = "user"
)

// ValidRole reports whether r is one of the three enumerated roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleAuthor, RoleUser:
		return true
	}
	return false
}

// User is the canonical security principal.
//
// PasswordHash is nil for accounts created through a federated provider;
// such accounts can never authenticate by password.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash *string
	FullName     *string
	Bio          *string
	AvatarURL    *string
	Role         Role

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserInput describes a new user row. Username and Email are required;
// PasswordHash is nil for federated accounts.
type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash *string
	FullName     *string
	Bio          *string
	AvatarURL    *string
	Role         Role
}

// UpdateUserInput mutates a user in place. Nil fields are left untouched;
// the store refreshes UpdatedAt on every successful mutation.
type UpdateUserInput struct {
	PasswordHash *string
	FullName     *string
	Bio          *string
	AvatarURL    *string
	Role         *Role
}

// Store is the identity persistence boundary.
//
// Uniqueness of username and email is enforced by the store itself: concurrent
// creates for the same identifier race at the store layer and the loser
// observes a ConflictError, never a generic failure.
type Store interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (User, error)
}

// validateCreate canonicalizes and validates a CreateUserInput ahead of insertion.
// It trims the username, normalizes the email, and defaults the role to "user".
func validateCreate(op string, in CreateUserInput) (CreateUserInput, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = NormalizeEmail(in.Email)

	if in.Username == "" {
		return in, OpError{Op: op, Kind: ErrInvalidInput, Msg: "username is required"}
	}
	if in.Email == "" {
		return in, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if in.Role == "" {
		in.Role = RoleUser
	}
	if !ValidRole(in.Role) {
		return in, OpError{Op: op, Kind: ErrInvalidInput, Msg: "unknown role"}
	}
	return in, nil
}

// validateUpdate rejects updates that would leave the role outside the enum.
func validateUpdate(op string, in UpdateUserInput) error {
	if in.Role != nil && !ValidRole(*in.Role) {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "unknown role"}
	}
	return nil
}
