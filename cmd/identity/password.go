package identity

import "golang.org/x/crypto/bcrypt"

// bcryptCost is the fixed work factor for stored credentials. Changing it only
// affects newly hashed passwords; existing hashes carry their own cost.
const bcryptCost = 10

// HashPassword hashes a plaintext password with bcrypt.
// bcrypt salts internally, so two hashes of the same password differ.
func HashPassword(plain string) (string, error) {
	const op = "identity.HashPassword"

	if plain == "" {
		return "", OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty password"}
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", OpError{Op: op, Kind: err}
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash.
//
// A nil or empty stored hash never verifies: accounts created through a
// federated provider have no password and must fail closed on password login
// instead of surfacing an ambiguous error.
func VerifyPassword(plain string, hash *string) bool {
	if hash == nil || *hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(plain)) == nil
}
