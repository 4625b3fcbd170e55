// internal/app/features/comments/handler.go
package comments

import (
	"context"
	"database/sql"
	"net/http"

	commentstore "github.com/dalemusser/folio/internal/app/store/comments"
	"github.com/dalemusser/folio/internal/app/store/content"
	"github.com/dalemusser/folio/internal/app/system/auditlog"
	"github.com/dalemusser/folio/internal/app/system/authz"
	"go.uber.org/zap"
)

// Handler owns comment routes, both the per-entity list/create routes and
// the /api/comments/{id} edit/delete routes.
type Handler struct {
	DB       *sql.DB
	Comments *commentstore.Store
	Log      *zap.Logger
	Audit    *auditlog.Logger
}

// NewHandler constructs a comments Handler.
func NewHandler(db *sql.DB, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Comments: commentstore.New(db),
		Log:      logger,
		Audit:    audit,
	}
}

// body is the request payload for create and update.
type body struct {
	Body string `json:"body"`
}

// canRead applies the entity's read rules to caller. Commenting on, or
// listing comments of, an entity you cannot see is refused the same way
// reading it would be.
func (h *Handler) canRead(ctx context.Context, caller authz.Caller, sc content.Schema, id int64) error {
	visibility, owners, err := content.New(h.DB, sc).Access(ctx, id)
	if err != nil {
		return err
	}
	return authz.CanRead(caller, authz.Resource{Visibility: visibility, OwnerIDs: owners})
}

func (h *Handler) logFields(r *http.Request, caller authz.Caller) []zap.Field {
	return []zap.Field{
		zap.String("user_id", caller.ID),
		zap.String("path", r.URL.Path),
	}
}
