// internal/app/features/works/list.go
package works

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/features/shared"
	"github.com/dalemusser/folio/internal/app/system/authz"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
)

// ServeList handles GET /api/works.
//
// Only works the caller may read are returned. labelId, technologyId
// and authorId narrow the result further.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)

	filter, err := shared.ParseListFilter(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "work list")
	defer cancel()

	all, err := h.Store.List(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	out := make([]models.Work, 0, len(all))
	for _, wk := range all {
		if !authz.Visible(caller, authz.Resource{Visibility: wk.Visibility, OwnerIDs: wk.AuthorIDs}) {
			continue
		}
		if !filter.Match(wk.AuthorIDs, wk.LabelIDs, wk.TechnologyIDs) {
			continue
		}
		out = append(out, wk)
	}

	respond.CacheControl(w, caller.Authenticated())
	respond.JSON(w, http.StatusOK, listResponse{Works: out, Count: len(out)})
}

// ServeView handles GET /api/works/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)

	id, err := shared.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "work view")
	defer cancel()

	wk, err := h.Store.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := authz.CanRead(caller, authz.Resource{Visibility: wk.Visibility, OwnerIDs: wk.AuthorIDs}); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	respond.CacheControl(w, caller.Authenticated())
	respond.JSON(w, http.StatusOK, wk)
}
