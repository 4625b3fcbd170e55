// internal/app/features/tags/routes.go
package tags

import (
	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts one vocabulary (typically at "/api/labels" or
// "/api/technologies").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Patch("/{id}", h.HandleRename)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
