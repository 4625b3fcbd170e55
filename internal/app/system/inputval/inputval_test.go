package inputval

import (
	"testing"

	"github.com/dalemusser/folio/internal/app/system/apperr"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name+tag@example.com", true},
		{"admin@mailserver", true},
		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://example.com", true},
		{"https://example.com/path?query=1", true},
		{"http://localhost:8080", true},
		{"  https://example.com  ", true},
		{"", false},
		{"   ", false},
		{"example.com", false},
		{"ftp://example.com", false},
		{"javascript:alert(1)", false},
		{"https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsValidHTTPURL(tt.url); got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		date string
		want bool
	}{
		{"2024-01-01", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-1-1", false},
		{"01/02/2024", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if got := IsValidDate(tt.date); got != tt.want {
				t.Errorf("IsValidDate(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestResult(t *testing.T) {
	var r Result
	r.Require("title", "")
	r.Date("date", "yesterday")
	r.MaxLen("name", "abcdef", 3)
	r.OneOf("visibility", "Draft", "Preview", "Public", "Private")
	r.HTTPURL("url", "")
	r.PositiveIDs("labelIds", []int64{1, 0})

	if len(r.Errors) != 5 {
		t.Fatalf("expected 5 errors, got %d: %v", len(r.Errors), r.Errors)
	}
	if r.First() != "title is required" {
		t.Errorf("First() = %q", r.First())
	}

	err := r.Err()
	if !apperr.IsValidation(err) {
		t.Fatalf("Err() = %v, want validation error", err)
	}
}

func TestResult_NoErrors(t *testing.T) {
	var r Result
	r.Require("title", "T")
	r.Date("date", "2024-01-01")
	r.HTTPURL("url", "https://example.com")

	if r.HasErrors() {
		t.Errorf("unexpected errors: %v", r.Errors)
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
	if r.All() != "" {
		t.Errorf("All() = %q, want empty", r.All())
	}
}
