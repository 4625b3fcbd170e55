// internal/app/features/articles/delete.go
package articles

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/features/shared"
	"github.com/dalemusser/folio/internal/app/store/audit"
	"github.com/dalemusser/folio/internal/app/system/authz"
	"github.com/dalemusser/folio/internal/app/system/metrics"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /api/articles/{id}. Comments and every link
// row go with the article in one transaction.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)

	id, err := shared.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "article delete")
	defer cancel()

	if err := authz.Authorize(ctx, caller, authz.OpDelete, h.Store.Ownership(), id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if err := h.Store.Delete(ctx, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	metrics.CascadeDeletes.WithLabelValues("article").Inc()
	h.Audit.EntityDeleted(ctx, r, caller.ID, audit.EventArticleDeleted, id)
	h.Log.Info("article deleted",
		zap.Int64("article_id", id),
		zap.String("actor_id", caller.ID))
	respond.NoContent(w)
}
