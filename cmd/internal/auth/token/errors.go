package token

import "errors"

// ErrInvalidToken is the single failure surfaced by Validate. Bad signatures
// and expired tokens are deliberately indistinguishable to callers; the
// underlying cause stays wrapped for server-side diagnostics only.
var ErrInvalidToken = errors.New("invalid_token")

// ErrConfig reports an unusable signing configuration.
var ErrConfig = errors.New("token: invalid configuration")
