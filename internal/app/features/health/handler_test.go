package health_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/folio/internal/app/features/health"
	"github.com/dalemusser/folio/internal/testutil"
	"go.uber.org/zap"
)

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Dialect  string `json:"dialect"`
	Audit    string `json:"audit"`
	Message  string `json:"message"`
}

func serve(t *testing.T, h *health.Handler) (int, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	health.Routes(h).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec.Code, resp
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	code, resp := serve(t, health.NewHandler(db, "sqlite", nil, zap.NewNop()))

	if code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, code)
	}
	if resp.Status != "ok" || resp.Database != "connected" || resp.Dialect != "sqlite" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Audit != "" {
		t.Errorf("audit = %q, want omitted without mongo", resp.Audit)
	}
}

func TestServe_DatabaseClosed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	code, resp := serve(t, health.NewHandler(db, "sqlite", nil, zap.NewNop()))

	if code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, code)
	}
	if resp.Status != "error" || resp.Database != "disconnected" {
		t.Errorf("response = %+v", resp)
	}
}

func TestServe_WithMongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mdb := testutil.SetupTestMongo(t)
	code, resp := serve(t, health.NewHandler(db, "sqlite", mdb.Client(), zap.NewNop()))

	if code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, code)
	}
	if resp.Audit != "connected" {
		t.Errorf("audit = %q", resp.Audit)
	}
}
