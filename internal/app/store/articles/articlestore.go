// internal/app/store/articles/articlestore.go
package articlestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dalemusser/folio/internal/app/store/content"
	"github.com/dalemusser/folio/internal/app/store/sqlutil"
	"github.com/dalemusser/folio/internal/app/system/aggregate"
	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/folio/internal/app/system/inputval"
	"github.com/dalemusser/folio/internal/app/system/normalize"
	"github.com/dalemusser/folio/internal/app/system/txn"
	"github.com/dalemusser/folio/internal/domain/models"
)

const maxTitleLen = 200

type Store struct {
	db  *sql.DB
	own *content.Store
}

func New(db *sql.DB) *Store {
	return &Store{db: db, own: content.New(db, content.Articles)}
}

// Ownership returns the existence/ownership lookup used by the
// authorization gate.
func (s *Store) Ownership() *content.Store { return s.own }

type fields struct {
	Title      string
	Date       string
	Content    string
	Visibility string
	CreatedAt  sqlutil.Time
	UpdatedAt  sqlutil.Time
}

func scalars(f *fields) []any {
	return []any{&f.Title, &f.Date, &f.Content, &f.Visibility, &f.CreatedAt, &f.UpdatedAt}
}

func toModel(r aggregate.Record[fields]) models.Article {
	return models.Article{
		ID:            r.ID,
		Title:         r.Fields.Title,
		Date:          r.Fields.Date,
		Content:       r.Fields.Content,
		Visibility:    r.Fields.Visibility,
		AuthorIDs:     r.AuthorIDs,
		LabelIDs:      r.LabelIDs,
		TechnologyIDs: r.TechnologyIDs,
		CreatedAt:     r.Fields.CreatedAt.T,
		UpdatedAt:     r.Fields.UpdatedAt.T,
	}
}

func (s *Store) query(ctx context.Context, q sqlutil.DBTX, f content.Filter) ([]models.Article, error) {
	recs, err := content.Query(ctx, q, content.Articles, f, scalars)
	if err != nil {
		return nil, err
	}
	out := make([]models.Article, len(recs))
	for i, r := range recs {
		out[i] = toModel(r)
	}
	return out, nil
}

// List returns every article, newest first, with its link sets.
func (s *Store) List(ctx context.Context) ([]models.Article, error) {
	return s.query(ctx, s.db, content.Filter{})
}

// ListByIDs returns the given articles, newest first.
func (s *Store) ListByIDs(ctx context.Context, ids []int64) ([]models.Article, error) {
	if len(ids) == 0 {
		return []models.Article{}, nil
	}
	return s.query(ctx, s.db, content.Filter{IDs: ids})
}

// ListByAuthor returns the articles userID has an ownership link to.
func (s *Store) ListByAuthor(ctx context.Context, userID string) ([]models.Article, error) {
	ids, err := content.Articles.OwnedIDs(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.ListByIDs(ctx, ids)
}

// GetByID returns one article or apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (models.Article, error) {
	list, err := s.query(ctx, s.db, content.Filter{IDs: []int64{id}})
	if err != nil {
		return models.Article{}, err
	}
	if len(list) == 0 {
		return models.Article{}, apperr.NotFound("article", id)
	}
	return list[0], nil
}

func validateInput(in *models.ArticleInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Date = strings.TrimSpace(in.Date)
	in.Content = htmlsanitize.Sanitize(in.Content)
	if strings.TrimSpace(in.Visibility) == "" {
		in.Visibility = models.VisibilityPreview
	} else if v := normalize.Visibility(in.Visibility); v != "" {
		in.Visibility = v
	}

	var v inputval.Result
	v.Require("title", in.Title)
	v.MaxLen("title", in.Title, maxTitleLen)
	v.Require("date", in.Date)
	v.Date("date", in.Date)
	v.Require("content", in.Content)
	v.OneOf("visibility", in.Visibility, models.VisibilityPreview, models.VisibilityPublic, models.VisibilityPrivate)
	v.PositiveIDs("labelIds", in.LabelIDs)
	v.PositiveIDs("technologyIds", in.TechnologyIDs)
	return v.Err()
}

// Create inserts an article with its link sets in one transaction. The
// creator is always the first author; in.AuthorIDs adds co-authors.
func (s *Store) Create(ctx context.Context, creatorID string, in models.ArticleInput) (models.Article, error) {
	if creatorID == "" {
		return models.Article{}, apperr.ErrUnauthenticated
	}
	if err := validateInput(&in); err != nil {
		return models.Article{}, err
	}
	authors := sqlutil.DedupeStrings(append([]string{creatorID}, in.AuthorIDs...))
	now := sqlutil.FormatTime(sqlutil.Now())

	var id int64
	err := txn.Run(ctx, s.db, func(tx *sql.Tx) error {
		if err := content.ValidateRefs(ctx, tx, in.LabelIDs, in.TechnologyIDs, authors); err != nil {
			return err
		}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO articles (title, date, content, visibility, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
			in.Title, in.Date, in.Content, in.Visibility, now).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert article: %w", err)
		}
		if err := content.Articles.ReplaceAuthors(ctx, tx, id, authors); err != nil {
			return err
		}
		if err := content.Articles.ReplaceLabels(ctx, tx, id, in.LabelIDs); err != nil {
			return err
		}
		return content.Articles.ReplaceTechnologies(ctx, tx, id, in.TechnologyIDs)
	})
	if err != nil {
		return models.Article{}, err
	}
	return s.GetByID(ctx, id)
}

// Update applies a partial update. Scalar changes and link-set
// replacements commit together or not at all.
func (s *Store) Update(ctx context.Context, id int64, p models.ArticlePatch) (models.Article, error) {
	var (
		v    inputval.Result
		sets []string
		args []any
	)
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		v.Require("title", t)
		v.MaxLen("title", t, maxTitleLen)
		add("title", t)
	}
	if p.Date != nil {
		d := strings.TrimSpace(*p.Date)
		v.Require("date", d)
		v.Date("date", d)
		add("date", d)
	}
	if p.Content != nil {
		c := htmlsanitize.Sanitize(*p.Content)
		v.Require("content", c)
		add("content", c)
	}
	if p.Visibility != nil {
		vis := normalize.Visibility(*p.Visibility)
		if vis == "" {
			v.Add("visibility", "must be one of Preview, Public, Private")
		}
		add("visibility", vis)
	}
	if p.LabelIDs != nil {
		v.PositiveIDs("labelIds", *p.LabelIDs)
	}
	if p.TechnologyIDs != nil {
		v.PositiveIDs("technologyIds", *p.TechnologyIDs)
	}
	if p.AuthorIDs != nil && len(sqlutil.DedupeStrings(*p.AuthorIDs)) == 0 {
		v.Add("authorIds", "at least one author is required")
	}
	if err := v.Err(); err != nil {
		return models.Article{}, err
	}
	add("updated_at", sqlutil.FormatTime(sqlutil.Now()))

	err := txn.Run(ctx, s.db, func(tx *sql.Tx) error {
		var labels, techs []int64
		var authors []string
		if p.LabelIDs != nil {
			labels = *p.LabelIDs
		}
		if p.TechnologyIDs != nil {
			techs = *p.TechnologyIDs
		}
		if p.AuthorIDs != nil {
			authors = *p.AuthorIDs
		}
		if err := content.ValidateRefs(ctx, tx, labels, techs, authors); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE articles SET `+strings.Join(sets, ", ")+fmt.Sprintf(` WHERE id = $%d`, len(args)+1),
			append(args, id)...)
		if err != nil {
			return fmt.Errorf("update article: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update article: %w", err)
		} else if n == 0 {
			return apperr.NotFound("article", id)
		}

		if p.LabelIDs != nil {
			if err := content.Articles.ReplaceLabels(ctx, tx, id, labels); err != nil {
				return err
			}
		}
		if p.TechnologyIDs != nil {
			if err := content.Articles.ReplaceTechnologies(ctx, tx, id, techs); err != nil {
				return err
			}
		}
		if p.AuthorIDs != nil {
			if err := content.Articles.ReplaceAuthors(ctx, tx, id, authors); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Article{}, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the article, its comments and every link row in one
// transaction.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return txn.Run(ctx, s.db, func(tx *sql.Tx) error {
		n, err := content.Articles.DeleteCascade(ctx, tx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("article", id)
		}
		return nil
	})
}
