package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func testAppConfig(t *testing.T) AppConfig {
	t.Helper()
	return AppConfig{
		DBDriver:       "sqlite",
		DBDSN:          filepath.Join(t.TempDir(), "folio.db"),
		SessionKey:     "test-session-key-must-be-32-chars-long",
		SessionName:    "folio-test",
		SessionMaxAge:  time.Hour,
		BaseURL:        "http://localhost:8080",
		AuditLogAuth:   "log",
		AuditLogAdmin:  "log",
		WriteRateLimit: 0,
	}
}

func TestValidateConfig(t *testing.T) {
	core := &config.CoreConfig{}

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid sqlite", func(*AppConfig) {}, ""},
		{"valid pgx", func(c *AppConfig) { c.DBDriver = "pgx"; c.DBDSN = "postgres://localhost/folio" }, ""},
		{"unknown driver", func(c *AppConfig) { c.DBDriver = "oracle" }, "unsupported db driver"},
		{"empty dsn", func(c *AppConfig) { c.DBDSN = " " }, "db_dsn"},
		{"bad audit setting", func(c *AppConfig) { c.AuditLogAuth = "sometimes" }, "audit_log_auth"},
		{"db audit without mongo", func(c *AppConfig) { c.AuditLogAdmin = "db" }, "MongoDB URI"},
		{"negative rate limit", func(c *AppConfig) { c.WriteRateLimit = -1 }, "write_rate_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testAppConfig(t)
			tt.mutate(&cfg)
			err := ValidateConfig(core, cfg, testLogger())
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestStartup_ConfiguresTimeouts(t *testing.T) {
	t.Cleanup(timeouts.Reset)
	cfg := testAppConfig(t)
	cfg.TimeoutShort = 1500 * time.Millisecond
	cfg.TimeoutLong = time.Minute

	if err := Startup(context.Background(), &config.CoreConfig{}, cfg, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	cur := timeouts.Current()
	if cur.Short != 1500*time.Millisecond || cur.Long != time.Minute {
		t.Errorf("timeouts = %+v", cur)
	}
	if cur.Medium != timeouts.DefaultMedium {
		t.Errorf("unset medium changed to %v", cur.Medium)
	}
}

// newServer runs the connect, schema and handler hooks against a temp
// SQLite file.
func newServer(t *testing.T, cfg AppConfig) http.Handler {
	t.Helper()
	ctx := context.Background()
	core := &config.CoreConfig{Env: "dev"}

	deps, err := ConnectDB(ctx, core, cfg, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	t.Cleanup(func() { _ = Shutdown(ctx, core, cfg, deps, testLogger()) })

	if err := EnsureSchema(ctx, core, cfg, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	// A second run must be a no-op.
	if err := EnsureSchema(ctx, core, cfg, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema (again): %v", err)
	}

	h, err := BuildHandler(core, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	return h
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBuildHandler_Routes(t *testing.T) {
	h := newServer(t, testAppConfig(t))

	tests := []struct {
		method, target, body string
		want                 int
	}{
		{"GET", "/health", "", http.StatusOK},
		{"GET", "/metrics", "", http.StatusOK},
		{"GET", "/api/me", "", http.StatusOK},
		{"GET", "/api/articles", "", http.StatusOK},
		{"GET", "/api/works", "", http.StatusOK},
		{"GET", "/api/labels", "", http.StatusOK},
		{"GET", "/api/technologies", "", http.StatusOK},
		{"GET", "/api/users", "", http.StatusOK},
		{"GET", "/api/articles/1", "", http.StatusNotFound},
		{"GET", "/api/articles/abc", "", http.StatusBadRequest},
		{"GET", "/api/articles/1/comments", "", http.StatusNotFound},
		{"POST", "/api/articles", `{"title":"x"}`, http.StatusUnauthorized},
		{"DELETE", "/api/comments/1", "", http.StatusUnauthorized},
		{"GET", "/api/dashboard", "", http.StatusUnauthorized},
		{"GET", "/api/audit", "", http.StatusUnauthorized},
		{"POST", "/auth/logout", "", http.StatusNoContent},
		{"GET", "/auth/google", "", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		rec := do(h, tt.method, tt.target, tt.body)
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d (body %s)", tt.method, tt.target, rec.Code, tt.want, rec.Body.String())
		}
	}
}

func TestBuildHandler_WriteRateLimit(t *testing.T) {
	cfg := testAppConfig(t)
	cfg.WriteRateLimit = 2
	h := newServer(t, cfg)

	for i := 0; i < 2; i++ {
		if rec := do(h, "POST", "/api/labels", `{"name":"x"}`); rec.Code != http.StatusUnauthorized {
			t.Fatalf("request %d = %d, want 401", i, rec.Code)
		}
	}
	rec := do(h, "POST", "/api/labels", `{"name":"x"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("third write = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	// Reads are never limited.
	if rec := do(h, "GET", "/api/labels", ""); rec.Code != http.StatusOK {
		t.Errorf("read after limit = %d", rec.Code)
	}
}
