// internal/app/features/works/delete.go
package works

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

// HandleDelete handles DELETE /api/works/{id}. Comments and every link
// row go with the work in one transaction.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)

	id, err := shared.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "work delete")
	defer cancel()

	if err := authz.Authorize(ctx, caller, authz.OpDelete, h.Store.Ownership(), id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if err := h.Store.Delete(ctx, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	metrics.CascadeDeletes.WithLabelValues("work").Inc()
	h.Audit.EntityDeleted(ctx, r, caller.ID, audit.EventWorkDeleted, id)
	h.Log.Info("work deleted",
		zap.Int64("work_id", id),
		zap.String("actor_id", caller.ID))
	respond.NoContent(w)
}
