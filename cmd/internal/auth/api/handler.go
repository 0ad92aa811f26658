// Package authapi exposes the authentication endpoints: registration,
// password login, and the Google consent/callback pair.
package authapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"articles/cmd/identity"
	"articles/cmd/internal/auth"
	"articles/cmd/internal/httpx"
)

const stateCookie = "oauth_state"

// IdentityProvider is the federated-provider surface the handler consumes.
// The concrete Google adapter lives in auth/google.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (auth.FederatedIdentity, error)
}

// Handler wires the /auth endpoints to the identity resolver.
type Handler struct {
	log          *slog.Logger
	svc          *auth.Service
	provider     IdentityProvider // nil when federated login is not configured
	maxBodyBytes int64
}

// NewHandler constructs the auth handler. provider may be nil; the federated
// endpoints then fail with an internal error instead of panicking.
func NewHandler(log *slog.Logger, svc *auth.Service, provider IdentityProvider, maxBodyBytes int64) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &Handler{
		log:          log,
		svc:          svc,
		provider:     provider,
		maxBodyBytes: maxBodyBytes,
	}
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.Decode(w, r, h.maxBodyBytes, &req); err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	in, err := validateRegister(req)
	if err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	if _, err := h.svc.Register(r.Context(), in); err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	httpx.OK(w, http.StatusCreated, "User has been created successfully", nil)
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(w, r, h.maxBodyBytes, &req); err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.Fail(h.log, w, r, identity.OpError{
			Op: "authapi.Login", Kind: identity.ErrInvalidInput, Msg: "email and password are required",
		})
		return
	}

	res, err := h.svc.PasswordLogin(r.Context(), req.Email, req.Password, time.Now().UTC())
	if err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	httpx.Token(w, http.StatusOK, "User logged in successfully", res.AccessToken)
}

// GoogleLogin handles GET /auth/login/google: it plants the anti-forgery
// state cookie and redirects to the provider consent screen.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		httpx.Fail(h.log, w, r, errors.New("authapi: google provider not configured"))
		return
	}

	state, err := newState()
	if err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback handles GET /auth/google/callback: it checks the state,
// exchanges the code, and logs the provider-verified identity in.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		httpx.Fail(h.log, w, r, errors.New("authapi: google provider not configured"))
		return
	}

	if err := checkState(r); err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		httpx.Fail(h.log, w, r, errors.New("authapi: callback without code"))
		return
	}

	fid, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	res, err := h.svc.FederatedLogin(r.Context(), fid, time.Now().UTC())
	if err != nil {
		httpx.Fail(h.log, w, r, err)
		return
	}

	httpx.Token(w, http.StatusOK, "User logged in successfully", res.AccessToken)
}

// ---- helpers ----

func newState() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

func checkState(r *http.Request) error {
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" {
		return errors.New("authapi: missing oauth state cookie")
	}
	if r.URL.Query().Get("state") != c.Value {
		return errors.New("authapi: oauth state mismatch")
	}
	return nil
}

func validateRegister(req registerRequest) (auth.RegisterInput, error) {
	const op = "authapi.Register"

	invalid := func(msg string) error {
		return identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: msg}
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	switch {
	case username == "":
		return auth.RegisterInput{}, invalid("username is required")
	case len(username) > 50:
		return auth.RegisterInput{}, invalid("username is too long")
	case email == "":
		return auth.RegisterInput{}, invalid("email is required")
	case len(email) > 100:
		return auth.RegisterInput{}, invalid("email is too long")
	case req.Password == "":
		return auth.RegisterInput{}, invalid("password is required")
	case len(req.Password) > 255:
		return auth.RegisterInput{}, invalid("password is too long")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return auth.RegisterInput{}, invalid("malformed email address")
	}
	if req.FullName != nil && len(*req.FullName) > 100 {
		return auth.RegisterInput{}, invalid("fullName is too long")
	}
	if req.AvatarURL != nil && len(*req.AvatarURL) > 255 {
		return auth.RegisterInput{}, invalid("avatarUrl is too long")
	}

	role := identity.RoleUser
	if req.Role != nil {
		role = identity.Role(strings.TrimSpace(*req.Role))
		if !identity.ValidRole(role) {
			return auth.RegisterInput{}, invalid("unknown role")
		}
	}

	return auth.RegisterInput{
		Username:  username,
		Email:     email,
		Password:  req.Password,
		FullName:  req.FullName,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		Role:      role,
	}, nil
}
