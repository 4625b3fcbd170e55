// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, logging and CORS; everything Folio needs on top of that
// lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// Relational store
	DBDriver       string // "pgx" or "sqlite"
	DBDSN          string // postgres URL or sqlite file path
	DBMaxOpenConns int    // postgres pool size; 0 uses the sqldb default

	// Audit trail (optional; blank MongoURI disables the database sink)
	MongoURI      string
	MongoDatabase string

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: folio-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	BaseURL            string // e.g., "https://folio.example.com"; the callback is BaseURL + /auth/google/callback

	// AdminEmail is created as (or promoted to) admin on verified sign-in.
	AdminEmail string

	// Audit logging destinations: all | db | log | off
	AuditLogAuth  string
	AuditLogAdmin string

	// Request timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// Mutating /api requests allowed per caller per minute; 0 disables.
	WriteRateLimit int
}

// auditToDB reports whether any audit category writes to MongoDB.
func (c AppConfig) auditToDB() bool {
	for _, s := range []string{c.AuditLogAuth, c.AuditLogAdmin} {
		if s == "all" || s == "db" {
			return true
		}
	}
	return false
}
