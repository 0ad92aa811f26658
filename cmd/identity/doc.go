// Package identity implements the service's identity foundation.
//
// It contains the canonical User model, password hashing, identifier
// normalization, and the store contract with Postgres and in-memory
// implementations.
//
// This package is intentionally dependency-light and security-first.
package identity
