// Package respond writes JSON bodies and maps the apperr taxonomy onto
// HTTP status codes.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/apperr"
	"go.uber.org/zap"
)

// MaxBodyBytes caps request bodies accepted by Decode.
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// NoContent writes 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Status returns the HTTP status and error kind for err.
func Status(err error) (int, string) {
	var ve *apperr.ValidationError
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication-missing"
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, "authorization-forbidden"
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not-found"
	case errors.As(err, &ve):
		return http.StatusBadRequest, "validation-failed"
	case errors.Is(err, apperr.ErrRateLimited):
		return http.StatusTooManyRequests, "rate-limited"
	default:
		return http.StatusInternalServerError, "store-operation-failure"
	}
}

// Error writes err as a JSON error body. Unclassified errors are logged
// and reported as a generic 500 without leaking the cause.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, kind := Status(err)
	body := ErrorBody{Error: kind, Message: err.Error()}

	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
		body.Message = ve.Message
	}

	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
		}
		body.Message = "unclassified store error"
	}

	JSON(w, status, body)
}

// Decode reads a JSON request body into dst. Malformed JSON is a
// validation error.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("body", "request body is empty")
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return apperr.Invalid("body", "request body too large")
		}
		return apperr.Invalid("body", "malformed JSON: %v", err)
	}
	return nil
}

// CacheControl sets the read caching policy: anonymous callers may be served
// from shared caches for a minute, signed-in callers never.
func CacheControl(w http.ResponseWriter, signedIn bool) {
	if signedIn {
		w.Header().Set("Cache-Control", "no-store")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
}
