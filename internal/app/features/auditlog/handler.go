// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/dalemusser/folio/internal/app/store/audit"
	"go.uber.org/zap"
)

type Handler struct {
	Store *audit.Store // nil when no audit database is configured
	Log   *zap.Logger
}

// NewHandler constructs an audit log feature handler. store may be nil, in
// which case the endpoint reports the trail as disabled.
func NewHandler(store *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   logger,
	}
}
