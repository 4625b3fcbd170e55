// internal/app/features/tags/handler.go
package tags

import (
	"database/sql"
	"net/http"

	"github.com/dalemusser/folio/internal/app/features/shared"
	"github.com/dalemusser/folio/internal/app/store/audit"
	tagstore "github.com/dalemusser/folio/internal/app/store/tags"
	"github.com/dalemusser/folio/internal/app/system/auditlog"
	"github.com/dalemusser/folio/internal/app/system/authz"
	"github.com/dalemusser/folio/internal/app/system/metrics"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves one tag vocabulary. Bootstrap builds one for labels and
// one for technologies.
type Handler struct {
	Store *tagstore.Store
	Log   *zap.Logger
	Audit *auditlog.Logger
}

// NewHandler constructs a Handler for vocabulary v.
func NewHandler(db *sql.DB, v tagstore.Vocabulary, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Store: tagstore.New(db, v),
		Log:   logger,
		Audit: audit,
	}
}

type nameBody struct {
	Name string `json:"name"`
}

// ServeList handles GET /api/{labels|technologies}.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, h.Store.Kind()+" list")
	defer cancel()

	list, err := h.Store.List(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	respond.CacheControl(w, caller.Authenticated())
	respond.JSON(w, http.StatusOK, map[string]any{
		h.Store.Table(): list,
		"count":         len(list),
	})
}

// ServeView handles GET /api/{labels|technologies}/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)

	id, err := shared.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, h.Store.Kind()+" view")
	defer cancel()

	tag, err := h.Store.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	respond.CacheControl(w, caller.Authenticated())
	respond.JSON(w, http.StatusOK, tag)
}

// HandleCreate handles POST. Any signed-in user may add to a vocabulary.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)
	if err := authz.RequireSignedIn(caller); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var in nameBody
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, h.Store.Kind()+" create")
	defer cancel()

	tag, err := h.Store.Create(ctx, in.Name)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, tag)
}

// HandleRename handles PATCH /{id}. Elevated roles only.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	if err := authz.RequireElevated(authz.CallerFrom(r)); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	id, err := shared.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var in nameBody
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, h.Store.Kind()+" rename")
	defer cancel()

	tag, err := h.Store.Rename(ctx, id, in.Name)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, tag)
}

// HandleDelete handles DELETE /{id}. Elevated roles only; links from both
// articles and works are removed with the tag.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)
	if err := authz.RequireElevated(caller); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	id, err := shared.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, h.Store.Kind()+" delete")
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	event := audit.EventLabelDeleted
	if h.Store.Kind() == tagstore.Technologies.Kind {
		event = audit.EventTechDeleted
	}
	metrics.CascadeDeletes.WithLabelValues(h.Store.Kind()).Inc()
	h.Audit.EntityDeleted(ctx, r, caller.ID, event, id)
	respond.NoContent(w)
}
