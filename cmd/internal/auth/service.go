// Package auth orchestrates identity resolution: registration, password login,
// and federated login. It owns no transport concerns; HTTP lives in auth/api.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"articles/cmd/identity"
	"articles/cmd/internal/auth/token"
)

// Service is the identity resolver. It composes the store, the credential
// hasher, and the token issuer behind the three login-shaped operations.
type Service struct {
	log    *slog.Logger
	store  identity.Store
	tokens *token.Manager

	dummyHash string
}

// NewService wires a Service from its collaborators.
func NewService(log *slog.Logger, store identity.Store, tokens *token.Manager) *Service {
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		log:    log,
		store:  store,
		tokens: tokens,
	}

	// Dummy hash for timing-resistant login checks.
	if hash, err := identity.HashPassword("dummy-password-for-timing-only"); err == nil {
		s.dummyHash = hash
	}
	return s
}

// RegisterInput carries the registration fields. Password is plaintext here
// and hashed exactly once before it reaches the store.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FullName  *string
	Bio       *string
	AvatarURL *string
	Role      identity.Role
}

// Register creates a password-credentialed user.
//
// The store's uniqueness constraint is the authoritative conflict signal:
// there is no prior existence check, so two racing registrations for one email
// resolve to exactly one created row and one ConflictError. Registration does
// not issue a token; the client logs in afterwards.
func (s *Service) Register(ctx context.Context, in RegisterInput) (identity.User, error) {
	hash, err := identity.HashPassword(in.Password)
	if err != nil {
		return identity.User{}, err
	}

	u, err := s.store.CreateUser(ctx, identity.CreateUserInput{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: &hash,
		FullName:     in.FullName,
		Bio:          in.Bio,
		AvatarURL:    in.AvatarURL,
		Role:         in.Role,
	})
	if err != nil {
		return identity.User{}, err
	}

	s.log.Info("auth.register.ok", "user_id", u.ID)
	return u, nil
}

// LoginResult is the common outcome of both login paths.
type LoginResult struct {
	User        identity.User
	AccessToken string
}

// PasswordLogin authenticates by email + password and issues a bearer token.
//
// An unknown email stays a distinct not-found outcome (the public contract
// reports 404 there), while a wrong password is unauthenticated. Verification
// against a federated-only account (no stored hash) fails closed.
func (s *Service) PasswordLogin(ctx context.Context, email, password string, now time.Time) (LoginResult, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if identity.IsNotFound(err) && s.dummyHash != "" {
			// Burn a verify so a missing user costs the same as a bad password.
			identity.VerifyPassword(password, &s.dummyHash)
		}
		return LoginResult{}, err
	}

	if !identity.VerifyPassword(password, u.PasswordHash) {
		s.log.Info("auth.login.bad_password", "user_id", u.ID)
		return LoginResult{}, fmt.Errorf("auth.PasswordLogin: %w", ErrUnauthenticated)
	}

	tok, err := s.tokens.Issue(u, now)
	if err != nil {
		return LoginResult{}, err
	}

	s.log.Info("auth.login.ok", "user_id", u.ID)
	return LoginResult{User: u, AccessToken: tok}, nil
}

// FederatedIdentity is a profile already verified by an external identity
// provider before this call is reached.
type FederatedIdentity struct {
	Email     string
	Name      string
	AvatarURL string
}

// FederatedLogin finds or creates the user for a provider-verified identity
// and issues a token of the same shape as PasswordLogin.
//
// The operation is idempotent in side effect: the first call creates the user,
// later calls find it, and a create that loses a concurrent race falls back to
// the row the winner inserted.
func (s *Service) FederatedLogin(ctx context.Context, fid FederatedIdentity, now time.Time) (LoginResult, error) {
	u, err := s.store.FindByEmail(ctx, fid.Email)
	if identity.IsNotFound(err) {
		u, err = s.createFederated(ctx, fid)
		if identity.IsConflict(err) {
			// Lost the race; the row exists now. A conflict on the derived
			// username alone keeps the original error.
			if found, ferr := s.store.FindByEmail(ctx, fid.Email); ferr == nil {
				u, err = found, nil
			}
		}
	}
	if err != nil {
		return LoginResult{}, err
	}

	tok, err := s.tokens.Issue(u, now)
	if err != nil {
		return LoginResult{}, err
	}

	s.log.Info("auth.federated_login.ok", "user_id", u.ID)
	return LoginResult{User: u, AccessToken: tok}, nil
}

func (s *Service) createFederated(ctx context.Context, fid FederatedIdentity) (identity.User, error) {
	in := identity.CreateUserInput{
		// Providers hand us no username; derive one from the email local part.
		Username: usernameFromEmail(fid.Email),
		Email:    fid.Email,
		Role:     identity.RoleUser,
	}
	if name := strings.TrimSpace(fid.Name); name != "" {
		in.FullName = &name
	}
	if avatar := strings.TrimSpace(fid.AvatarURL); avatar != "" {
		in.AvatarURL = &avatar
	}
	return s.store.CreateUser(ctx, in)
}

func usernameFromEmail(email string) string {
	email = identity.NormalizeEmail(email)
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
