// internal/app/store/works/workstore.go
package workstore

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

const maxNameLen = 200

type Store struct {
	db  *sql.DB
	own *content.Store
}

func New(db *sql.DB) *Store {
	return &Store{db: db, own: content.New(db, content.Works)}
}

// Ownership returns the existence/ownership lookup used by the
// authorization gate.
func (s *Store) Ownership() *content.Store { return s.own }

type fields struct {
	Name        string
	Date        string
	Description string
	URL         string
	Visibility  string
	CreatedAt   sqlutil.Time
	UpdatedAt   sqlutil.Time
}

func scalars(f *fields) []any {
	return []any{&f.Name, &f.Date, &f.Description, &f.URL, &f.Visibility, &f.CreatedAt, &f.UpdatedAt}
}

func toModel(r aggregate.Record[fields]) models.Work {
	return models.Work{
		ID:            r.ID,
		Name:          r.Fields.Name,
		Date:          r.Fields.Date,
		Description:   r.Fields.Description,
		URL:           r.Fields.URL,
		Visibility:    r.Fields.Visibility,
		AuthorIDs:     r.AuthorIDs,
		LabelIDs:      r.LabelIDs,
		TechnologyIDs: r.TechnologyIDs,
		CreatedAt:     r.Fields.CreatedAt.T,
		UpdatedAt:     r.Fields.UpdatedAt.T,
	}
}

func (s *Store) query(ctx context.Context, q sqlutil.DBTX, f content.Filter) ([]models.Work, error) {
	recs, err := content.Query(ctx, q, content.Works, f, scalars)
	if err != nil {
		return nil, err
	}
	out := make([]models.Work, len(recs))
	for i, r := range recs {
		out[i] = toModel(r)
	}
	return out, nil
}

// List returns every work, newest first, with its link sets.
func (s *Store) List(ctx context.Context) ([]models.Work, error) {
	return s.query(ctx, s.db, content.Filter{})
}

// ListByIDs returns the given works, newest first.
func (s *Store) ListByIDs(ctx context.Context, ids []int64) ([]models.Work, error) {
	if len(ids) == 0 {
		return []models.Work{}, nil
	}
	return s.query(ctx, s.db, content.Filter{IDs: ids})
}

// ListByAuthor returns the works userID has an ownership link to.
func (s *Store) ListByAuthor(ctx context.Context, userID string) ([]models.Work, error) {
	ids, err := content.Works.OwnedIDs(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.ListByIDs(ctx, ids)
}

// GetByID returns one work or apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (models.Work, error) {
	list, err := s.query(ctx, s.db, content.Filter{IDs: []int64{id}})
	if err != nil {
		return models.Work{}, err
	}
	if len(list) == 0 {
		return models.Work{}, apperr.NotFound("work", id)
	}
	return list[0], nil
}

func validateInput(in *models.WorkInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Date = strings.TrimSpace(in.Date)
	in.Description = htmlsanitize.Sanitize(in.Description)
	in.URL = strings.TrimSpace(in.URL)
	if strings.TrimSpace(in.Visibility) == "" {
		in.Visibility = models.VisibilityPreview
	} else if v := normalize.Visibility(in.Visibility); v != "" {
		in.Visibility = v
	}

	var v inputval.Result
	v.Require("name", in.Name)
	v.MaxLen("name", in.Name, maxNameLen)
	v.Require("date", in.Date)
	v.Date("date", in.Date)
	v.HTTPURL("url", in.URL)
	v.OneOf("visibility", in.Visibility, models.VisibilityPreview, models.VisibilityPublic, models.VisibilityPrivate)
	v.PositiveIDs("labelIds", in.LabelIDs)
	v.PositiveIDs("technologyIds", in.TechnologyIDs)
	return v.Err()
}

// Create inserts a work with its link sets in one transaction. The
// creator is always the first author; in.AuthorIDs adds co-authors.
func (s *Store) Create(ctx context.Context, creatorID string, in models.WorkInput) (models.Work, error) {
	if creatorID == "" {
		return models.Work{}, apperr.ErrUnauthenticated
	}
	if err := validateInput(&in); err != nil {
		return models.Work{}, err
	}
	authors := sqlutil.DedupeStrings(append([]string{creatorID}, in.AuthorIDs...))
	now := sqlutil.FormatTime(sqlutil.Now())

	var id int64
	err := txn.Run(ctx, s.db, func(tx *sql.Tx) error {
		if err := content.ValidateRefs(ctx, tx, in.LabelIDs, in.TechnologyIDs, authors); err != nil {
			return err
		}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO works (name, date, description, url, visibility, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`,
			in.Name, in.Date, in.Description, in.URL, in.Visibility, now).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert work: %w", err)
		}
		if err := content.Works.ReplaceAuthors(ctx, tx, id, authors); err != nil {
			return err
		}
		if err := content.Works.ReplaceLabels(ctx, tx, id, in.LabelIDs); err != nil {
			return err
		}
		return content.Works.ReplaceTechnologies(ctx, tx, id, in.TechnologyIDs)
	})
	if err != nil {
		return models.Work{}, err
	}
	return s.GetByID(ctx, id)
}

// Update applies a partial update. Scalar changes and link-set
// replacements commit together or not at all.
func (s *Store) Update(ctx context.Context, id int64, p models.WorkPatch) (models.Work, error) {
	var (
		v    inputval.Result
		sets []string
		args []any
	)
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Name != nil {
		n := strings.TrimSpace(*p.Name)
		v.Require("name", n)
		v.MaxLen("name", n, maxNameLen)
		add("name", n)
	}
	if p.Date != nil {
		d := strings.TrimSpace(*p.Date)
		v.Require("date", d)
		v.Date("date", d)
		add("date", d)
	}
	if p.Description != nil {
		add("description", htmlsanitize.Sanitize(*p.Description))
	}
	if p.URL != nil {
		u := strings.TrimSpace(*p.URL)
		v.HTTPURL("url", u)
		add("url", u)
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
		return models.Work{}, err
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
			`UPDATE works SET `+strings.Join(sets, ", ")+fmt.Sprintf(` WHERE id = $%d`, len(args)+1),
			append(args, id)...)
		if err != nil {
			return fmt.Errorf("update work: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update work: %w", err)
		} else if n == 0 {
			return apperr.NotFound("work", id)
		}

		if p.LabelIDs != nil {
			if err := content.Works.ReplaceLabels(ctx, tx, id, labels); err != nil {
				return err
			}
		}
		if p.TechnologyIDs != nil {
			if err := content.Works.ReplaceTechnologies(ctx, tx, id, techs); err != nil {
				return err
			}
		}
		if p.AuthorIDs != nil {
			if err := content.Works.ReplaceAuthors(ctx, tx, id, authors); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Work{}, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the work, its comments and every link row in one
// transaction.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return txn.Run(ctx, s.db, func(tx *sql.Tx) error {
		n, err := content.Works.DeleteCascade(ctx, tx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("work", id)
		}
		return nil
	})
}
