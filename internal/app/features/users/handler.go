// internal/app/features/users/handler.go
package users

import (
	"database/sql"

	userstore "github.com/dalemusser/folio/internal/app/store/users"
	"github.com/dalemusser/folio/internal/app/system/auditlog"
	"github.com/dalemusser/folio/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler owns the /api/users routes: public profiles, self-service
// profile edits, role changes and account deletion.
type Handler struct {
	Store      *userstore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	Audit      *auditlog.Logger
}

// NewHandler constructs a users Handler. sm is used to end the caller's
// session after they delete their own account; it may be nil in tests.
func NewHandler(db *sql.DB, sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:      userstore.New(db),
		SessionMgr: sm,
		Log:        logger,
		Audit:      audit,
	}
}
