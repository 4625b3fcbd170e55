// internal/app/store/tags/tagstore.go
package tagstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dalemusser/folio/internal/app/store/sqlutil"
	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/folio/internal/app/system/inputval"
	"github.com/dalemusser/folio/internal/app/system/txn"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

const maxNameLen = 64

// Vocabulary names the tables for one tag kind.
type Vocabulary struct {
	Kind         string // "label" or "technology"
	Table        string
	Column       string // column in the link tables
	ArticleLinks string
	WorkLinks    string
}

var (
	Labels = Vocabulary{
		Kind:         "label",
		Table:        "labels",
		Column:       "label_id",
		ArticleLinks: "article_labels",
		WorkLinks:    "work_labels",
	}
	Technologies = Vocabulary{
		Kind:         "technology",
		Table:        "technologies",
		Column:       "technology_id",
		ArticleLinks: "article_technologies",
		WorkLinks:    "work_technologies",
	}
)

type Store struct {
	db *sql.DB
	v  Vocabulary
}

func New(db *sql.DB, v Vocabulary) *Store {
	return &Store{db: db, v: v}
}

// Table returns the vocabulary table name, also used as the list key.
func (s *Store) Table() string { return s.v.Table }

// Kind returns "label" or "technology".
func (s *Store) Kind() string { return s.v.Kind }

// List returns every tag ordered by folded name.
func (s *Store) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, name_ci FROM `+s.v.Table+` ORDER BY name_ci, id`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.v.Table, err)
	}
	defer rows.Close()

	out := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.NameCI); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.v.Table, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID returns one tag or apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, name_ci FROM `+s.v.Table+` WHERE id = $1`, id).Scan(&t.ID, &t.Name, &t.NameCI)
	if err == sql.ErrNoRows {
		return models.Tag{}, apperr.NotFound(s.v.Kind, id)
	}
	if err != nil {
		return models.Tag{}, fmt.Errorf("get %s: %w", s.v.Kind, err)
	}
	return t, nil
}

func (s *Store) cleanName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	var v inputval.Result
	v.Require("name", name)
	v.MaxLen("name", name, maxNameLen)
	if !htmlsanitize.IsPlainText(name) {
		v.Add("name", "must not contain markup")
	}
	return name, v.Err()
}

func (s *Store) duplicate(name string) error {
	return apperr.Invalid("name", "a %s named %q already exists", s.v.Kind, name)
}

// Create inserts a tag. Names are unique under text.Fold.
func (s *Store) Create(ctx context.Context, name string) (models.Tag, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return models.Tag{}, err
	}
	t := models.Tag{Name: name, NameCI: text.Fold(name)}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO `+s.v.Table+` (name, name_ci) VALUES ($1, $2) RETURNING id`,
		t.Name, t.NameCI).Scan(&t.ID)
	if err != nil {
		if sqlutil.IsUniqueViolation(err) {
			return models.Tag{}, s.duplicate(name)
		}
		return models.Tag{}, fmt.Errorf("create %s: %w", s.v.Kind, err)
	}
	return t, nil
}

// Rename changes a tag's name.
func (s *Store) Rename(ctx context.Context, id int64, name string) (models.Tag, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return models.Tag{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+s.v.Table+` SET name = $1, name_ci = $2 WHERE id = $3`, name, text.Fold(name), id)
	if err != nil {
		if sqlutil.IsUniqueViolation(err) {
			return models.Tag{}, s.duplicate(name)
		}
		return models.Tag{}, fmt.Errorf("rename %s: %w", s.v.Kind, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Tag{}, fmt.Errorf("rename %s: %w", s.v.Kind, err)
	} else if n == 0 {
		return models.Tag{}, apperr.NotFound(s.v.Kind, id)
	}
	return s.GetByID(ctx, id)
}

// Delete removes the tag's article links, then its work links, then the
// tag itself, in one transaction.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return txn.Run(ctx, s.db, func(tx *sql.Tx) error {
		for _, table := range []string{s.v.ArticleLinks, s.v.WorkLinks} {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM `+table+` WHERE `+s.v.Column+` = $1`, id); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM `+s.v.Table+` WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete %s: %w", s.v.Kind, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete %s: %w", s.v.Kind, err)
		}
		if n == 0 {
			return apperr.NotFound(s.v.Kind, id)
		}
		return nil
	})
}
