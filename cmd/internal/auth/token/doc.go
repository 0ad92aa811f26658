// Package token issues and validates the service's bearer tokens.
//
// Tokens are JWTs signed with a process-wide HMAC secret. The claims payload
// is fixed at issuance from the user record and carries a 7-day expiry; there
// is no server-side revocation list, so a token's lifetime is entirely defined
// by its embedded expiry.
package token
