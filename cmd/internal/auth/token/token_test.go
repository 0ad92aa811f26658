package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"articles/cmd/identity"
)

func testUser() identity.User {
	name := "Alice A."
	avatar := "https://cdn.example.com/a.png"
	return identity.User{
		ID:        7,
		Username:  "alice",
		Email:     "a@x.com",
		FullName:  &name,
		AvatarURL: &avatar,
		Role:      identity.RoleAuthor,
	}
}

func TestNewManager_RequiresSecret(t *testing.T) {
	if _, err := NewManager(""); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if _, err := NewManager("   "); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for blank secret, got %v", err)
	}
}

func TestIssueAndValidate_RoundTrip(t *testing.T) {
	mgr, err := NewManager("test-secret")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	now := time.Now().UTC()
	tok, err := mgr.Issue(testUser(), now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := mgr.Validate(tok, now.Add(time.Second))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	// The claims payload round-trips exactly, modulo iat/exp bookkeeping.
	if claims.Email != "a@x.com" || claims.Name != "Alice A." || claims.Role != "author" {
		t.Fatalf("claims payload mismatch: %+v", claims)
	}
	if claims.Avatar != "https://cdn.example.com/a.png" {
		t.Fatalf("avatar mismatch: %q", claims.Avatar)
	}

	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if id != 7 {
		t.Fatalf("subject mismatch: got %d", id)
	}

	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != TTL {
		t.Fatalf("expiry must be issued-at + %v, got %v", TTL, got)
	}
}

func TestValidate_Expired(t *testing.T) {
	mgr, _ := NewManager("test-secret")

	issued := time.Now().UTC().Add(-TTL - time.Minute)
	tok, err := mgr.Issue(testUser(), issued)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := mgr.Validate(tok, time.Now().UTC()); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	mgrA, _ := NewManager("secret-a")
	mgrB, _ := NewManager("secret-b")

	now := time.Now().UTC()
	tok, err := mgrA.Issue(testUser(), now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := mgrB.Validate(tok, now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign signature: expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_TamperedPayload(t *testing.T) {
	mgr, _ := NewManager("test-secret")
	now := time.Now().UTC()

	userA := testUser()
	userB := testUser()
	userB.ID = 8
	userB.Email = "b@x.com"

	tokA, err := mgr.Issue(userA, now)
	if err != nil {
		t.Fatalf("Issue A: %v", err)
	}
	tokB, err := mgr.Issue(userB, now)
	if err != nil {
		t.Fatalf("Issue B: %v", err)
	}

	// Splice B's claims under A's signature: user A's token must never
	// validate as user B's identity.
	partsA := strings.Split(tokA, ".")
	partsB := strings.Split(tokB, ".")
	forged := partsA[0] + "." + partsB[1] + "." + partsA[2]

	if _, err := mgr.Validate(forged, now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("forged payload: expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_Malformed(t *testing.T) {
	mgr, _ := NewManager("test-secret")
	now := time.Now().UTC()

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, err := mgr.Validate(raw, now); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("malformed %q: expected ErrInvalidToken, got %v", raw, err)
		}
	}
}
