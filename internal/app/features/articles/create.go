// internal/app/features/articles/create.go
package articles

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/authz"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.uber.org/zap"
)

// HandleCreate handles POST /api/articles. The caller becomes the first
// author whatever authorIds says.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)
	if err := authz.RequireSignedIn(caller); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var in models.ArticleInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "article create")
	defer cancel()

	a, err := h.Store.Create(ctx, caller.ID, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	h.Log.Info("article created",
		zap.Int64("article_id", a.ID),
		zap.String("user_id", caller.ID))
	respond.JSON(w, http.StatusCreated, a)
}
