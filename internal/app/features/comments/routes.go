// internal/app/features/comments/routes.go
package comments

import (
	"github.com/dalemusser/folio/internal/app/store/content"
	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// EntityRoutes serves the comments of one content kind. It is mounted by
// the articles and works routers at "/{id}/comments".
func EntityRoutes(h *Handler, sm *auth.SessionManager, sc content.Schema) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList(sc))

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/", h.HandleCreate(sc))
	})

	return r
}

// Routes mounts the single-comment routes (typically at "/api/comments").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Patch("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
