package identity

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "pw123456" || hash == "" {
		t.Fatalf("hash must not echo the plaintext")
	}

	if !VerifyPassword("pw123456", &hash) {
		t.Fatalf("correct password must verify")
	}
	if VerifyPassword("wrong-password", &hash) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of one password must differ (salt)")
	}
}

func TestHashPassword_EmptyRejected(t *testing.T) {
	if _, err := HashPassword(""); !IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestVerifyPassword_MissingHashFailsClosed(t *testing.T) {
	// Federated-only accounts store no hash; password verification against
	// them must fail, never error out.
	if VerifyPassword("anything", nil) {
		t.Fatalf("nil hash must not verify")
	}
	empty := ""
	if VerifyPassword("anything", &empty) {
		t.Fatalf("empty hash must not verify")
	}
}
