// internal/app/features/works/edit.go
package works

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/features/shared"
	"github.com/dalemusser/folio/internal/app/system/authz"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
)

// HandleUpdate handles PATCH /api/works/{id}. Absent fields are left
// alone; a present labelIds, technologyIds or authorIds replaces that
// whole link set.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)

	id, err := shared.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "work update")
	defer cancel()

	if err := authz.Authorize(ctx, caller, authz.OpUpdate, h.Store.Ownership(), id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var p models.WorkPatch
	if err := respond.Decode(w, r, &p); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	wk, err := h.Store.Update(ctx, id, p)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, wk)
}
