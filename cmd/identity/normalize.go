package identity

import "strings"

// NormalizeEmail performs case-insensitive canonicalization.
// Emails are stored normalized, so lookups and uniqueness agree on one form.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
