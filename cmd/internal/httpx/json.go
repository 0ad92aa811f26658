package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"articles/cmd/identity"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads one JSON value from the request body with a size cap and strict
// field checking. Failures are invalid-input kinded so the envelope reports 400.
func Decode(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	const op = "httpx.Decode"

	if r.Body == nil {
		return identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: "empty body"}
	}
	defer func() { _ = r.Body.Close() }()

	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: err.Error()}
	}
	// Ensure there is no extra data after the first JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: "extra data after JSON object"}
	}
	return nil
}
