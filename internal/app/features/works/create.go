// internal/app/features/works/create.go
package works

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/authz"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.uber.org/zap"
)

// HandleCreate handles POST /api/works. The caller becomes the first
// author whatever authorIds says.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)
	if err := authz.RequireSignedIn(caller); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var in models.WorkInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "work create")
	defer cancel()

	wk, err := h.Store.Create(ctx, caller.ID, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	h.Log.Info("work created",
		zap.Int64("work_id", wk.ID),
		zap.String("user_id", caller.ID))
	respond.JSON(w, http.StatusCreated, wk)
}
