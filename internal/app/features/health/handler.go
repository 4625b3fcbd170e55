package health

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB      *sql.DB
	Dialect string
	Mongo   *mongo.Client // optional; nil when the audit store is disabled
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. mongoClient may be nil.
func NewHandler(db *sql.DB, dialect string, mongoClient *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Dialect: dialect,
		Mongo:   mongoClient,
		Log:     logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Dialect  string `json:"dialect,omitempty"`
	Audit    string `json:"audit,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "dialect":"postgres", "audit":"connected" }
//
// If either store fails its ping: 503 and status "error".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Cache-Control", "no-store")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Dialect:  h.Dialect,
	}

	if err := h.DB.PingContext(ctx); err != nil {
		h.Log.Error("health-check: sql ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		respond.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	if h.Mongo != nil {
		resp.Audit = "connected"
		if err := h.Mongo.Ping(ctx, readpref.Primary()); err != nil {
			h.Log.Error("health-check: mongo ping failed", zap.Error(err))
			resp.Status = "error"
			resp.Audit = "disconnected"
			resp.Message = "Audit store unavailable"
			resp.Error = err.Error()
			respond.JSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}
