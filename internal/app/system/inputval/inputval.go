// Package inputval collects field-level validation failures for request
// payloads and turns them into a single apperr validation error.
package inputval

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/folio/internal/app/system/apperr"
)

// DateLayout is the calendar date format of article and work dates.
const DateLayout = "2006-01-02"

// FieldError is one rejected field.
type FieldError struct {
	Field   string
	Message string
}

// Result accumulates failures in the order checks ran.
type Result struct {
	Errors []FieldError
}

// Add records a failure.
func (r *Result) Add(field, format string, args ...any) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Require fails when value is blank.
func (r *Result) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		r.Add(field, "is required")
	}
}

// MaxLen fails when value has more than n characters.
func (r *Result) MaxLen(field, value string, n int) {
	if utf8.RuneCountInString(value) > n {
		r.Add(field, "must be at most %d characters", n)
	}
}

// Date fails unless value is a YYYY-MM-DD calendar date.
func (r *Result) Date(field, value string) {
	if value == "" {
		return
	}
	if !IsValidDate(value) {
		r.Add(field, "must be a date in YYYY-MM-DD form")
	}
}

// HTTPURL fails unless value is empty or an absolute http(s) URL.
func (r *Result) HTTPURL(field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if !IsValidHTTPURL(value) {
		r.Add(field, "must be an http or https URL")
	}
}

// OneOf fails unless value is one of allowed.
func (r *Result) OneOf(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	r.Add(field, "must be one of %s", strings.Join(allowed, ", "))
}

// PositiveIDs fails when any id is not positive.
func (r *Result) PositiveIDs(field string, ids []int64) {
	for _, id := range ids {
		if id <= 0 {
			r.Add(field, "ids must be positive integers")
			return
		}
	}
}

// HasErrors reports whether any check failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first failure message, prefixed by its field.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Field + " " + r.Errors[0].Message
}

// All joins every failure with "; ".
func (r *Result) All() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.Field + " " + e.Message
	}
	return strings.Join(parts, "; ")
}

// Err returns nil when no check failed, otherwise a *apperr.ValidationError
// naming the first field and carrying every message.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return &apperr.ValidationError{Field: r.Errors[0].Field, Message: r.All()}
}

// IsValidDate reports whether s is a YYYY-MM-DD calendar date.
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidEmail reports whether s is a bare address (no display name).
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && addr.Name == ""
}
