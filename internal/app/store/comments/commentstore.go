// internal/app/store/comments/commentstore.go
package commentstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dalemusser/folio/internal/app/store/content"
	"github.com/dalemusser/folio/internal/app/store/sqlutil"
	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/folio/internal/app/system/inputval"
	"github.com/dalemusser/folio/internal/domain/models"
)

const maxBodyLen = 5000

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectCols = `SELECT id, article_id, work_id, user_id, body, created_at, updated_at FROM comments`

func scanComment(sc interface{ Scan(...any) error }) (models.Comment, error) {
	var (
		c                 models.Comment
		articleID, workID sql.NullInt64
		created, updated  sqlutil.Time
	)
	if err := sc.Scan(&c.ID, &articleID, &workID, &c.UserID, &c.Body, &created, &updated); err != nil {
		return models.Comment{}, err
	}
	if articleID.Valid {
		c.ArticleID = &articleID.Int64
	}
	if workID.Valid {
		c.WorkID = &workID.Int64
	}
	c.CreatedAt = created.T
	c.UpdatedAt = updated.T
	return c, nil
}

func cleanBody(body string) (string, error) {
	body = htmlsanitize.StripTags(body)
	var v inputval.Result
	v.Require("body", body)
	v.MaxLen("body", body, maxBodyLen)
	return body, v.Err()
}

// ListFor returns the comments on one article or work, oldest first.
func (s *Store) ListFor(ctx context.Context, sc content.Schema, entityID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		selectCols+` WHERE `+sc.FK+` = $1 ORDER BY created_at, id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID returns one comment or apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, selectCols+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.Comment{}, apperr.NotFound("comment", id)
	}
	if err != nil {
		return models.Comment{}, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// Create adds a comment by userID to the entity. The caller has already
// checked that the entity exists and is readable.
func (s *Store) Create(ctx context.Context, sc content.Schema, entityID int64, userID, body string) (models.Comment, error) {
	body, err := cleanBody(body)
	if err != nil {
		return models.Comment{}, err
	}
	now := sqlutil.FormatTime(sqlutil.Now())

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO comments (`+sc.FK+`, user_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4) RETURNING id`, entityID, userID, body, now).Scan(&id)
	if err != nil {
		return models.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return s.GetByID(ctx, id)
}

// UpdateBody replaces the comment text.
func (s *Store) UpdateBody(ctx context.Context, id int64, body string) (models.Comment, error) {
	body, err := cleanBody(body)
	if err != nil {
		return models.Comment{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE comments SET body = $1, updated_at = $2 WHERE id = $3`,
		body, sqlutil.FormatTime(sqlutil.Now()), id)
	if err != nil {
		return models.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Comment{}, fmt.Errorf("update comment: %w", err)
	} else if n == 0 {
		return models.Comment{}, apperr.NotFound("comment", id)
	}
	return s.GetByID(ctx, id)
}

// Delete removes one comment.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("comment", id)
	}
	return nil
}
