// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit trail under the path where this router is
// mounted (typically "/api/audit"). Access is restricted to admins.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeList)
	})

	return r
}
