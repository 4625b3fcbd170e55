package userstore

import (
	"context"
	"database/sql"

	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/app/system/normalize"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	db *sql.DB
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *sql.DB) *Fetcher {
	return &Fetcher{db: db}
}

// FetchUser retrieves a user by ID and returns nil if the user is not found
// or if any error occurs. This implements auth.UserFetcher.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	if userID == "" {
		return nil
	}

	// Use a short timeout for the DB query
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var su auth.SessionUser
	err := f.db.QueryRowContext(ctx,
		`SELECT id, name, account_name, email, role FROM users WHERE id = $1`, userID).
		Scan(&su.ID, &su.Name, &su.AccountName, &su.Email, &su.Role)
	if err != nil {
		// User not found or DB error
		return nil
	}
	su.Role = normalize.RoleOrGeneral(su.Role)
	return &su
}
