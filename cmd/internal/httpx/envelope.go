// Package httpx normalizes every outcome, success or failure, into the one
// response shape all endpoints share: {statusCode, message, data?, accessToken?}.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"articles/cmd/identity"
	"articles/cmd/internal/auth"
	"articles/cmd/internal/auth/token"
)

// Envelope is the uniform response body.
type Envelope struct {
	StatusCode  int    `json:"statusCode"`
	Message     string `json:"message"`
	Data        any    `json:"data,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

// OK writes a success envelope. Status defaults to 200 and message to "OK"
// when the handler did not set them.
func OK(w http.ResponseWriter, status int, message string, data any) {
	if status <= 0 {
		status = http.StatusOK
	}
	if message == "" {
		message = "OK"
	}
	writeJSON(w, status, Envelope{
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// Token writes a success envelope carrying an access token at the top level.
func Token(w http.ResponseWriter, status int, message, accessToken string) {
	if status <= 0 {
		status = http.StatusOK
	}
	if message == "" {
		message = "OK"
	}
	writeJSON(w, status, Envelope{
		StatusCode:  status,
		Message:     message,
		AccessToken: accessToken,
	})
}

// Fail maps err onto the envelope and writes it. Recognized typed failures
// keep their declared status and message; anything else is reported as a
// generic internal error so no raw internal detail reaches the client.
//
// Every failure is logged with the acting identity (empty when anonymous),
// the resolved status, and the underlying diagnostic detail.
func Fail(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)

	actor := ""
	if claims, ok := auth.ClaimsFrom(r.Context()); ok {
		actor = claims.Email
	}

	log.Error("http.request.fail",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"actor", actor,
		"err", err,
	)

	writeJSON(w, status, Envelope{
		StatusCode: status,
		Message:    message,
	})
}

// classify resolves an error to its client-facing status and message.
func classify(err error) (int, string) {
	switch {
	case identity.IsConflict(err):
		return http.StatusConflict, "Oops! user already exists"
	case identity.IsNotFound(err):
		return http.StatusNotFound, "Oops! user not found"
	case isUnauthenticated(err):
		return http.StatusUnauthorized, "Unauthorized"
	case identity.IsInvalidInput(err):
		return http.StatusBadRequest, "Invalid request"
	default:
		return http.StatusInternalServerError, "Oops! something went wrong"
	}
}

func isUnauthenticated(err error) bool {
	return errors.Is(err, auth.ErrUnauthenticated) || errors.Is(err, token.ErrInvalidToken)
}
