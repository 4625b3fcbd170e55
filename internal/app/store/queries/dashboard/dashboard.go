// Package dashboard provides the read-only query behind a user's own
// dashboard: everything they hold an ownership link to.
package dashboard

import (
	"context"
	"database/sql"
	"fmt"

	articlestore "github.com/dalemusser/folio/internal/app/store/articles"
	workstore "github.com/dalemusser/folio/internal/app/store/works"
	"github.com/dalemusser/folio/internal/domain/models"
)

// Result is the caller's own content, newest first.
type Result struct {
	Articles         []models.Article `json:"articles"`
	Works            []models.Work    `json:"works"`
	CommentsReceived int64            `json:"commentsReceived"`
}

// Load returns the articles and works userID co-owns, aggregated with
// their link sets, plus the number of comments left on them.
func Load(ctx context.Context, db *sql.DB, userID string) (Result, error) {
	arts, err := articlestore.New(db).ListByAuthor(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	works, err := workstore.New(db).ListByAuthor(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	var n int64
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM comments c
		WHERE c.article_id IN (SELECT article_id FROM article_authors WHERE user_id = $1)
		   OR c.work_id IN (SELECT work_id FROM work_authors WHERE user_id = $1)`, userID).Scan(&n)
	if err != nil {
		return Result{}, fmt.Errorf("count comments received: %w", err)
	}

	return Result{Articles: arts, Works: works, CommentsReceived: n}, nil
}
