// internal/app/features/works/handler.go
package works

import (
	"database/sql"

	workstore "github.com/dalemusser/folio/internal/app/store/works"
	"github.com/dalemusser/folio/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler owns the /api/works routes.
//
// It is constructed once at startup in bootstrap, using the shared SQL
// pool, audit logger and zap logger.
type Handler struct {
	DB    *sql.DB
	Store *workstore.Store
	Log   *zap.Logger
	Audit *auditlog.Logger
}

// NewHandler constructs a works Handler.
func NewHandler(db *sql.DB, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:    db,
		Store: workstore.New(db),
		Log:   logger,
		Audit: audit,
	}
}

// listResponse is the JSON shape of GET /api/works.
type listResponse struct {
	Works any `json:"works"`
	Count int `json:"count"`
}
