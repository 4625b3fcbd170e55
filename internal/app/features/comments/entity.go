// internal/app/features/comments/entity.go
package comments

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/features/shared"
	"github.com/dalemusser/folio/internal/app/store/content"
	"github.com/dalemusser/folio/internal/app/system/authz"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeList returns GET {entity}/{id}/comments for the kind sc.
func (h *Handler) ServeList(sc content.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := authz.CallerFrom(r)

		id, err := shared.IDParam(r, "id")
		if err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, sc.Kind+" comments")
		defer cancel()

		if err := h.canRead(ctx, caller, sc, id); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}

		list, err := h.Comments.ListFor(ctx, sc, id)
		if err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}

		respond.CacheControl(w, caller.Authenticated())
		respond.JSON(w, http.StatusOK, map[string]any{
			"comments": list,
			"count":    len(list),
		})
	}
}

// HandleCreate returns POST {entity}/{id}/comments for the kind sc.
func (h *Handler) HandleCreate(sc content.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := authz.CallerFrom(r)
		if err := authz.RequireSignedIn(caller); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}

		id, err := shared.IDParam(r, "id")
		if err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, sc.Kind+" comment create")
		defer cancel()

		if err := h.canRead(ctx, caller, sc, id); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}

		var in body
		if err := respond.Decode(w, r, &in); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}

		c, err := h.Comments.Create(ctx, sc, id, caller.ID, in.Body)
		if err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}

		h.Log.Debug("comment created", append(h.logFields(r, caller), zap.Int64("comment_id", c.ID))...)
		respond.JSON(w, http.StatusCreated, c)
	}
}
