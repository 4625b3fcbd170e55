// internal/app/features/comments/edit.go
package comments

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/features/shared"
	"github.com/dalemusser/folio/internal/app/system/authz"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleUpdate handles PATCH /api/comments/{id}. Only the author may edit.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "comment update")
	defer cancel()

	c, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := authz.RequireAuthor(caller, authz.OpUpdate, c.UserID); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var in body
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	updated, err := h.Comments.UpdateBody(ctx, id, in.Body)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /api/comments/{id}. The author or an elevated
// role may delete; the latter is audited as moderation.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "comment delete")
	defer cancel()

	c, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := authz.RequireAuthorOrElevated(caller, authz.OpDelete, c.UserID); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if err := h.Comments.Delete(ctx, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if c.UserID != caller.ID {
		h.Audit.CommentModerated(ctx, r, caller.ID, c.UserID, id)
		h.Log.Info("comment moderated", append(h.logFields(r, caller), zap.Int64("comment_id", id))...)
	}
	respond.NoContent(w)
}
