// internal/app/features/articles/handler.go
package articles

import (
	"database/sql"

	articlestore "github.com/dalemusser/folio/internal/app/store/articles"
	"github.com/dalemusser/folio/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler owns the /api/articles routes.
//
// It is constructed once at startup in bootstrap, using the shared SQL
// pool, audit logger and zap logger.
type Handler struct {
	DB    *sql.DB
	Store *articlestore.Store
	Log   *zap.Logger
	Audit *auditlog.Logger
}

// NewHandler constructs an articles Handler.
func NewHandler(db *sql.DB, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:    db,
		Store: articlestore.New(db),
		Log:   logger,
		Audit: audit,
	}
}

// listResponse is the JSON shape of GET /api/articles.
type listResponse struct {
	Articles any `json:"articles"`
	Count    int `json:"count"`
}
