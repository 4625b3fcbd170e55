package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"go.uber.org/zap"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"unauthenticated", apperr.ErrUnauthenticated, http.StatusUnauthorized, "authentication-missing"},
		{"forbidden", fmt.Errorf("delete: %w", apperr.ErrForbidden), http.StatusForbidden, "authorization-forbidden"},
		{"not found", apperr.NotFound("article", 9), http.StatusNotFound, "not-found"},
		{"validation", apperr.Invalid("title", "required"), http.StatusBadRequest, "validation-failed"},
		{"rate limited", apperr.ErrRateLimited, http.StatusTooManyRequests, "rate-limited"},
		{"other", errors.New("connection reset"), http.StatusInternalServerError, "store-operation-failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, kind := respond.Status(tt.err)
			if code != tt.code || kind != tt.kind {
				t.Errorf("Status(%v) = (%d, %q), want (%d, %q)", tt.err, code, kind, tt.code, tt.kind)
			}
		})
	}
}

func TestError_HidesUnclassifiedCause(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	rec := httptest.NewRecorder()

	respond.Error(rec, req, zap.NewNop(), errors.New("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body respond.ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "unclassified store error" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestError_ValidationCarriesField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/articles", nil)
	rec := httptest.NewRecorder()

	respond.Error(rec, req, zap.NewNop(), apperr.Invalid("date", "must be YYYY-MM-DD"))

	var body respond.ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Field != "date" || body.Error != "validation-failed" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestDecode(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"T"}`))
	if err := respond.Decode(httptest.NewRecorder(), req, &dst); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dst.Title != "T" {
		t.Errorf("Title = %q", dst.Title)
	}

	for _, body := range []string{"", "{", "[1,2"} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if err := respond.Decode(httptest.NewRecorder(), req, &dst); !apperr.IsValidation(err) {
			t.Errorf("Decode(%q) = %v, want validation error", body, err)
		}
	}
}

func TestCacheControl(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.CacheControl(rec, false)
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=60" {
		t.Errorf("anonymous Cache-Control = %q", got)
	}

	rec = httptest.NewRecorder()
	respond.CacheControl(rec, true)
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("signed-in Cache-Control = %q", got)
	}
}
