package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"articles/cmd/identity"
	"articles/cmd/internal/auth"
	"articles/cmd/internal/auth/token"
)

func TestOK_Defaults(t *testing.T) {
	rr := httptest.NewRecorder()
	OK(rr, 0, "", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}

	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.StatusCode != http.StatusOK || env.Message != "OK" {
		t.Fatalf("unexpected defaults: %+v", env)
	}
	if strings.Contains(rr.Body.String(), `"data"`) {
		t.Fatalf("nil data must be omitted: %s", rr.Body.String())
	}
}

func TestToken_TopLevelAccessToken(t *testing.T) {
	rr := httptest.NewRecorder()
	Token(rr, http.StatusOK, "User logged in successfully", "tok-123")

	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.AccessToken != "tok-123" {
		t.Fatalf("accessToken not carried: %+v", env)
	}
}

func TestFail_Classification(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			"conflict",
			identity.ConflictError{Op: "store.CreateUser", Field: "email"},
			http.StatusConflict,
			"Oops! user already exists",
		},
		{
			"not found",
			identity.NotFoundError{Op: "store.FindByEmail", Resource: "user"},
			http.StatusNotFound,
			"Oops! user not found",
		},
		{
			"unauthenticated",
			fmt.Errorf("guard: %w", auth.ErrUnauthenticated),
			http.StatusUnauthorized,
			"Unauthorized",
		},
		{
			"bad token",
			fmt.Errorf("%w: signature mismatch", token.ErrInvalidToken),
			http.StatusUnauthorized,
			"Unauthorized",
		},
		{
			"invalid input",
			identity.OpError{Op: "decode", Kind: identity.ErrInvalidInput, Msg: "bad json"},
			http.StatusBadRequest,
			"Invalid request",
		},
		{
			"anything else",
			errors.New("pool exhausted at 10.0.0.3:5432"),
			http.StatusInternalServerError,
			"Oops! something went wrong",
		},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		Fail(log, rr, r, tc.err)

		if rr.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rr.Code)
		}
		var env Envelope
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if env.StatusCode != tc.status || env.Message != tc.message {
			t.Fatalf("%s: unexpected envelope %+v", tc.name, env)
		}
	}
}

func TestFail_NoInternalDetailLeaks(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	Fail(log, rr, r, errors.New("dial tcp 10.0.0.3:5432: connection refused"))

	if strings.Contains(rr.Body.String(), "10.0.0.3") {
		t.Fatalf("internal detail leaked to the client: %s", rr.Body.String())
	}
}
