// internal/app/features/articles/routes.go
package articles

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the article routes (typically at "/api/articles").
// comments, when non-nil, is mounted at "/{id}/comments".
//
// Reads are public and filtered by visibility inside the handlers.
// Writes require a session; ownership is decided per article by authz.
func Routes(h *Handler, sm *auth.SessionManager, comments http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)
	if comments != nil {
		r.Mount("/{id}/comments", comments)
	}

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Patch("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
