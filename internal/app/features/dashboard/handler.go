// internal/app/features/dashboard/handler.go
package dashboard

import (
	"database/sql"
	"net/http"

	dashq "github.com/dalemusser/folio/internal/app/store/queries/dashboard"
	"github.com/dalemusser/folio/internal/app/system/authz"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	DB  *sql.DB
	Log *zap.Logger
}

func NewHandler(db *sql.DB, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		Log: logger,
	}
}

// ServeDashboard handles GET /api/dashboard: every article and work the
// caller is an author of, whatever its visibility, plus how many comments
// they have received.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)
	if err := authz.RequireSignedIn(caller); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "dashboard")
	defer cancel()

	res, err := dashq.Load(ctx, h.DB, caller.ID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	respond.CacheControl(w, true)
	respond.JSON(w, http.StatusOK, res)
}
