package auth

import "errors"

// ErrUnauthenticated covers every credential failure surfaced to clients:
// wrong password, missing bearer token, or a token that failed validation.
// The response shape never reveals which one occurred.
var ErrUnauthenticated = errors.New("unauthenticated")
