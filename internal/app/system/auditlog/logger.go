// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/folio/internal/app/store/audit"
	"github.com/dalemusser/folio/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Config selects the destination per category: "all" (MongoDB + zap),
// "db" (MongoDB only), "log" (zap only) or "off".
type Config struct {
	Auth  string
	Admin string
}

// Logger records audit events to zap and, when a store is configured, to
// MongoDB. A nil *Logger is a no-op.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a Logger. store may be nil, in which case "db" output is
// dropped and "all" degrades to zap only.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log routes event according to the category setting.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func base(r *http.Request, category, eventType string) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

// --- Authentication events ---

// SignInSuccess logs a completed provider handshake.
func (l *Logger) SignInSuccess(ctx context.Context, r *http.Request, userID, provider string, created bool) {
	e := base(r, audit.CategoryAuth, audit.EventSignInSuccess)
	e.UserID = userID
	e.Details = map[string]string{
		"provider": provider,
		"created":  strconv.FormatBool(created),
	}
	l.Log(ctx, e)
}

// SignInFailed logs a rejected or broken handshake.
func (l *Logger) SignInFailed(ctx context.Context, r *http.Request, provider, reason string) {
	e := base(r, audit.CategoryAuth, audit.EventSignInFailed)
	e.Success = false
	e.FailureReason = reason
	e.Details = map[string]string{"provider": provider}
	l.Log(ctx, e)
}

// SignOut logs a session being cleared.
func (l *Logger) SignOut(ctx context.Context, r *http.Request, userID string) {
	e := base(r, audit.CategoryAuth, audit.EventSignOut)
	e.UserID = userID
	l.Log(ctx, e)
}

// --- Admin events ---

// UserCreated logs first sign-in account creation.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, userID, role string) {
	e := base(r, audit.CategoryAdmin, audit.EventUserCreated)
	e.UserID = userID
	e.ActorID = userID
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// ProfileUpdated logs a profile edit.
func (l *Logger) ProfileUpdated(ctx context.Context, r *http.Request, actorID, userID string) {
	e := base(r, audit.CategoryAdmin, audit.EventProfileUpdated)
	e.UserID = userID
	e.ActorID = actorID
	l.Log(ctx, e)
}

// RoleChanged logs a role transition.
func (l *Logger) RoleChanged(ctx context.Context, r *http.Request, actorID, userID, from, to string) {
	e := base(r, audit.CategoryAdmin, audit.EventRoleChanged)
	e.UserID = userID
	e.ActorID = actorID
	e.Details = map[string]string{"from": from, "to": to}
	l.Log(ctx, e)
}

// UserDeleted logs a cascading account deletion.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, userID string, articles, works int) {
	e := base(r, audit.CategoryAdmin, audit.EventUserDeleted)
	e.UserID = userID
	e.ActorID = actorID
	e.Details = map[string]string{
		"articles_deleted": strconv.Itoa(articles),
		"works_deleted":    strconv.Itoa(works),
	}
	l.Log(ctx, e)
}

// EntityDeleted logs the deletion of an article, work, label or technology.
func (l *Logger) EntityDeleted(ctx context.Context, r *http.Request, actorID, eventType string, id int64) {
	e := base(r, audit.CategoryAdmin, eventType)
	e.ActorID = actorID
	e.Details = map[string]string{"id": strconv.FormatInt(id, 10)}
	l.Log(ctx, e)
}

// CommentModerated logs an elevated user deleting someone else's comment.
func (l *Logger) CommentModerated(ctx context.Context, r *http.Request, actorID, authorID string, commentID int64) {
	e := base(r, audit.CategoryAdmin, audit.EventCommentModerate)
	e.UserID = authorID
	e.ActorID = actorID
	e.Details = map[string]string{"comment_id": strconv.FormatInt(commentID, 10)}
	l.Log(ctx, e)
}
