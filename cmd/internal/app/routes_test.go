package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"articles/cmd/identity"
	"articles/cmd/internal/auth/token"
)

type envelope struct {
	StatusCode  int             `json:"statusCode"`
	Message     string          `json:"message"`
	Data        json.RawMessage `json:"data"`
	AccessToken string          `json:"accessToken"`
}

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := Config{
		JWTSecret:    "test-secret",
		MaxBodyBytes: 1 << 20,
		LogLevel:     "error",
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := New(cfg, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func do(t *testing.T, h http.Handler, method, path, body, bearer string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, rd)
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		r.Header.Set("Authorization", bearer)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v (body=%q)", method, path, err, rr.Body.String())
	}
	return rr, env
}

func TestEndToEnd_RegisterLoginProfile(t *testing.T) {
	a := newTestApp(t)
	h := a.Handler()

	rr, env := do(t, h, http.MethodPost, "/api/v1/auth/register",
		`{"username":"alice","email":"a@x.com","password":"pw123456"}`, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (body=%q)", rr.Code, rr.Body.String())
	}
	if env.Message != "User has been created successfully" {
		t.Fatalf("register: unexpected message %q", env.Message)
	}
	if env.AccessToken != "" {
		t.Fatalf("register must not issue a token")
	}

	rr, env = do(t, h, http.MethodPost, "/api/v1/auth/login",
		`{"email":"a@x.com","password":"pw123456"}`, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (body=%q)", rr.Code, rr.Body.String())
	}
	if env.AccessToken == "" {
		t.Fatalf("login: expected an accessToken")
	}
	bearer := "Bearer " + env.AccessToken

	rr, env = do(t, h, http.MethodGet, "/api/v1/users/me", "", bearer)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d (body=%q)", rr.Code, rr.Body.String())
	}
	var profile struct {
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("me: decode data: %v", err)
	}
	if profile.Email != "a@x.com" || profile.Username != "alice" {
		t.Fatalf("me: unexpected profile %+v", profile)
	}

	rr, env = do(t, h, http.MethodPatch, "/api/v1/users", `{"bio":"hello"}`, bearer)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (body=%q)", rr.Code, rr.Body.String())
	}
	if env.Message != "Update user successfully" {
		t.Fatalf("update: unexpected message %q", env.Message)
	}
}

func TestGuard_Uniform401(t *testing.T) {
	a := newTestApp(t)
	h := a.Handler()

	// Sign an already-expired token with the server's own secret and a token
	// with a foreign secret; the guard must not distinguish the failure modes.
	own, err := token.NewManager("test-secret")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	expired, err := own.Issue(identity.User{ID: 9, Email: "a@x.com", Role: identity.RoleUser},
		time.Now().UTC().Add(-8*24*time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	foreign, err := token.NewManager("other-secret")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	forged, err := foreign.Issue(identity.User{ID: 9, Email: "a@x.com", Role: identity.RoleUser},
		time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := []struct {
		name   string
		bearer string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong secret", "Bearer " + forged},
	}
	for _, tc := range cases {
		rr, env := do(t, h, http.MethodGet, "/api/v1/users/me", "", tc.bearer)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", tc.name, rr.Code)
		}
		if env.StatusCode != http.StatusUnauthorized || env.Message != "Unauthorized" {
			t.Fatalf("%s: expected the uniform 401 envelope, got %+v", tc.name, env)
		}
	}
}

func TestPublicRoutesSkipTheGuard(t *testing.T) {
	a := newTestApp(t)
	h := a.Handler()

	// No Authorization header; a public route must still reach its handler
	// and fail on its own terms, not with a guard 401.
	rr, _ := do(t, h, http.MethodPost, "/api/v1/auth/login",
		`{"email":"nobody@x.com","password":"x"}`, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from the handler, got %d", rr.Code)
	}
}

func TestOpsEndpoints(t *testing.T) {
	a := newTestApp(t)
	h := a.Handler()

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Bearer   abc  ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		if got := bearerToken(r); got != tc.want {
			t.Fatalf("header %q: got %q, want %q", tc.header, got, tc.want)
		}
	}
}
