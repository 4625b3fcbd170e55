// internal/app/features/users/view.go
package users

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/authz"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// visibleTo hides the email address unless caller is the user or elevated.
func visibleTo(caller authz.Caller, u models.User) models.User {
	if caller.ID == u.ID || caller.Elevated() {
		return u
	}
	return u.Public()
}

// ServeList handles GET /api/users.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user list")
	defer cancel()

	list, err := h.Store.List(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	for i := range list {
		list[i] = visibleTo(caller, list[i])
	}

	respond.CacheControl(w, caller.Authenticated())
	respond.JSON(w, http.StatusOK, map[string]any{
		"users": list,
		"count": len(list),
	})
}

// ServeView handles GET /api/users/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user view")
	defer cancel()

	u, err := h.Store.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	respond.CacheControl(w, caller.Authenticated())
	respond.JSON(w, http.StatusOK, visibleTo(caller, u))
}
