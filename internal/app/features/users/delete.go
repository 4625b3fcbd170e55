// internal/app/features/users/delete.go
package users

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/authz"
	"github.com/dalemusser/folio/internal/app/system/metrics"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /api/users/{id}. A user may delete their own
// account and an admin may delete anyone's. Content the user owned alone
// goes with them; co-owned content only loses their ownership link.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)
	if err := authz.RequireSignedIn(caller); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "user delete")
	defer cancel()

	if _, err := h.Store.GetByID(ctx, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := authz.RequireSelfOrAdmin(caller, authz.OpDelete, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	res, err := h.Store.Delete(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	metrics.CascadeDeletes.WithLabelValues("user").Inc()
	h.Audit.UserDeleted(ctx, r, caller.ID, id, res.Articles, res.Works)
	h.Log.Info("user deleted",
		zap.String("user_id", id),
		zap.String("actor_id", caller.ID),
		zap.Int("articles_deleted", res.Articles),
		zap.Int("works_deleted", res.Works))

	if caller.ID == id && h.SessionMgr != nil {
		if err := h.SessionMgr.SignOut(w, r); err != nil {
			h.Log.Warn("clear session after self-delete", zap.Error(err))
		}
	}
	respond.NoContent(w)
}
