// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/folio/internal/app/store/sqldb"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Folio.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: db_dsn, session_name, etc.
//   - Environment variables: FOLIO_DB_DSN, FOLIO_SESSION_NAME, etc.
//   - Command-line flags: --db_dsn, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "db_driver", Default: "sqlite", Desc: "Relational store driver: 'pgx' (Postgres) or 'sqlite'"},
	{Name: "db_dsn", Default: "./data/folio.db", Desc: "Postgres URL or SQLite file path"},
	{Name: "db_max_open_conns", Default: 0, Desc: "Postgres max open connections (0 = default)"},

	{Name: "mongo_uri", Default: "", Desc: "MongoDB URI for the audit trail (blank disables the db sink)"},
	{Name: "mongo_database", Default: "folio", Desc: "MongoDB database name"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "folio-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL used for the OAuth callback"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email that becomes admin on verified sign-in"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "log", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "log", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-row reads and writes"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list and aggregate reads"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for cascading deletes"},

	{Name: "write_rate_limit", Default: 60, Desc: "Mutating API requests per caller per minute (0 disables)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// FOLIO_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FOLIO", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		DBDriver:       appValues.String("db_driver"),
		DBDSN:          appValues.String("db_dsn"),
		DBMaxOpenConns: appValues.Int("db_max_open_conns"),

		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),
		BaseURL:            strings.TrimRight(appValues.String("base_url"), "/"),

		AdminEmail: appValues.String("admin_email"),

		AuditLogAuth:  strings.ToLower(appValues.String("audit_log_auth")),
		AuditLogAdmin: strings.ToLower(appValues.String("audit_log_admin")),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),

		WriteRateLimit: appValues.Int("write_rate_limit"),
	}

	return coreCfg, appCfg, nil
}

var auditSettings = map[string]bool{"all": true, "db": true, "log": true, "off": true}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Folio checks the relational driver and DSN, the audit destinations, and
// the MongoDB URI whenever an audit category writes to the database.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if _, err := sqldb.DialectFor(appCfg.DBDriver); err != nil {
		return err
	}
	if strings.TrimSpace(appCfg.DBDSN) == "" {
		return fmt.Errorf("db_dsn is required")
	}

	for key, v := range map[string]string{
		"audit_log_auth":  appCfg.AuditLogAuth,
		"audit_log_admin": appCfg.AuditLogAdmin,
	} {
		if !auditSettings[v] {
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, v)
		}
	}

	if appCfg.MongoURI != "" || appCfg.auditToDB() {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	}

	if appCfg.WriteRateLimit < 0 {
		return fmt.Errorf("write_rate_limit must not be negative")
	}
	return nil
}
