// internal/app/features/users/edit.go
package users

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/authz"
	"github.com/dalemusser/folio/internal/app/system/normalize"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandleUpdateProfile handles PATCH /api/users/{id}. Users edit only their
// own profile.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)
	if err := authz.RequireSignedIn(caller); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "profile update")
	defer cancel()

	if _, err := h.Store.GetByID(ctx, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := authz.RequireAuthor(caller, authz.OpUpdate, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var p models.UserPatch
	if err := respond.Decode(w, r, &p); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	u, err := h.Store.UpdateProfile(ctx, id, p)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	h.Audit.ProfileUpdated(ctx, r, caller.ID, id)
	respond.JSON(w, http.StatusOK, u)
}

type roleBody struct {
	Role string `json:"role"`
}

// HandleSetRole handles PATCH /api/users/{id}/role. Managers and admins
// may change roles; only an admin may grant admin or demote an admin.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)
	if err := authz.RequireSignedIn(caller); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	id := chi.URLParam(r, "id")

	var in roleBody
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	role := normalize.Role(in.Role)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "role change")
	defer cancel()

	target, err := h.Store.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := authz.CanSetRole(caller, target.Role, role); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	prev, err := h.Store.SetRole(ctx, id, role)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	h.Audit.RoleChanged(ctx, r, caller.ID, id, prev, role)
	h.Log.Info("user role changed",
		zap.String("user_id", id),
		zap.String("actor_id", caller.ID),
		zap.String("from", prev),
		zap.String("to", role))

	u, err := h.Store.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, u)
}
