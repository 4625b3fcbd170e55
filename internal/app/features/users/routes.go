// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the user routes (typically at "/api/users").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Public profiles.
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Patch("/{id}", h.HandleUpdateProfile)
		pr.Patch("/{id}/role", h.HandleSetRole)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
