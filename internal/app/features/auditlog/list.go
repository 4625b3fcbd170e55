// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/folio/internal/app/store/audit"
	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/app/system/authz"
	"github.com/dalemusser/folio/internal/app/system/normalize"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

const pageSize = 50

type listResponse struct {
	Enabled  bool          `json:"enabled"`
	Events   []audit.Event `json:"events"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

// ServeList handles GET /api/audit. Admins only.
//
// Query parameters: category, eventType, userId, actorId, start and end
// (YYYY-MM-DD, end inclusive) and page (1-based).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)
	if err := authz.RequireSignedIn(caller); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if !caller.IsAdmin() {
		respond.Error(w, r, h.Log, apperr.ErrForbidden)
		return
	}
	respond.CacheControl(w, true)

	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}

	if h.Store == nil {
		respond.JSON(w, http.StatusOK, listResponse{Events: []audit.Event{}, Page: page, PageSize: pageSize})
		return
	}

	filter := audit.QueryFilter{
		UserID:    query.Get(r, "userId"),
		ActorID:   query.Get(r, "actorId"),
		Category:  normalize.QueryParam(query.Get(r, "category")),
		EventType: normalize.QueryParam(query.Get(r, "eventType")),
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if s := query.Get(r, "start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			respond.Error(w, r, h.Log, apperr.Invalid("start", "must be a date in YYYY-MM-DD form"))
			return
		}
		filter.StartTime = &t
	}
	if s := query.Get(r, "end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			respond.Error(w, r, h.Log, apperr.Invalid("end", "must be a date in YYYY-MM-DD form"))
			return
		}
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Store.Query(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	total, err := h.Store.CountByFilter(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	respond.JSON(w, http.StatusOK, listResponse{
		Enabled:  true,
		Events:   events,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
