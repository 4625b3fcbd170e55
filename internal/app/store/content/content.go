// Package content holds the bridge-table plumbing shared by articles and
// works: ownership lookups, link-set replacement, reference validation,
// the cascading delete and the aggregated left-join query.
//
// A Schema names the tables for one entity kind. Methods that take a
// sqlutil.DBTX run on either the pool or an open transaction; callers
// compose them inside txn.Run for multi-statement writes.
package content

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dalemusser/folio/internal/app/store/sqlutil"
	"github.com/dalemusser/folio/internal/app/system/aggregate"
	"github.com/dalemusser/folio/internal/app/system/apperr"
)

// Schema describes the tables behind one content kind.
type Schema struct {
	Kind         string // singular, used in errors and audit events
	Table        string
	FK           string // column in bridge tables pointing at Table
	Authors      string
	Labels       string
	Technologies string
	Columns      []string // scalar columns after id, in scan order
	OrderBy      string   // entity ordering for lists
}

// Articles describes the article tables.
var Articles = Schema{
	Kind:         "article",
	Table:        "articles",
	FK:           "article_id",
	Authors:      "article_authors",
	Labels:       "article_labels",
	Technologies: "article_technologies",
	Columns:      []string{"title", "date", "content", "visibility", "created_at", "updated_at"},
	OrderBy:      "e.date DESC, e.id DESC",
}

// Works describes the work tables.
var Works = Schema{
	Kind:         "work",
	Table:        "works",
	FK:           "work_id",
	Authors:      "work_authors",
	Labels:       "work_labels",
	Technologies: "work_technologies",
	Columns:      []string{"name", "date", "description", "url", "visibility", "created_at", "updated_at"},
	OrderBy:      "e.date DESC, e.id DESC",
}

// Store answers ownership questions for one kind. It satisfies
// authz.Ownership.
type Store struct {
	db *sql.DB
	s  Schema
}

// New returns an ownership store for s.
func New(db *sql.DB, s Schema) *Store {
	return &Store{db: db, s: s}
}

// Exists reports whether the entity row exists.
func (st *Store) Exists(ctx context.Context, id int64) (bool, error) {
	return st.s.Exists(ctx, st.db, id)
}

// IsOwner reports whether userID has an ownership link to the entity.
func (st *Store) IsOwner(ctx context.Context, id int64, userID string) (bool, error) {
	return st.s.IsOwner(ctx, st.db, id, userID)
}

// Access returns what a read decision needs: the entity's visibility and
// its owner ids. A missing entity is apperr.ErrNotFound.
func (st *Store) Access(ctx context.Context, id int64) (string, []string, error) {
	var visibility string
	err := st.db.QueryRowContext(ctx,
		`SELECT visibility FROM `+st.s.Table+` WHERE id = $1`, id).Scan(&visibility)
	if err == sql.ErrNoRows {
		return "", nil, apperr.NotFound(st.s.Kind, id)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s access: %w", st.s.Kind, err)
	}

	rows, err := st.db.QueryContext(ctx,
		`SELECT user_id FROM `+st.s.Authors+` WHERE `+st.s.FK+` = $1 ORDER BY position`, id)
	if err != nil {
		return "", nil, fmt.Errorf("%s owners: %w", st.s.Kind, err)
	}
	defer rows.Close()
	owners := []string{}
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return "", nil, fmt.Errorf("%s owners: %w", st.s.Kind, err)
		}
		owners = append(owners, uid)
	}
	return visibility, owners, rows.Err()
}

// Exists reports whether the entity row exists.
func (s Schema) Exists(ctx context.Context, q sqlutil.DBTX, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM `+s.Table+` WHERE id = $1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s exists: %w", s.Kind, err)
	}
	return true, nil
}

// IsOwner reports whether userID has an ownership link to the entity.
func (s Schema) IsOwner(ctx context.Context, q sqlutil.DBTX, id int64, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM `+s.Authors+` WHERE `+s.FK+` = $1 AND user_id = $2`, id, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s owner lookup: %w", s.Kind, err)
	}
	return true, nil
}

// ReplaceLabels makes labelIDs the entity's exact label set.
func (s Schema) ReplaceLabels(ctx context.Context, q sqlutil.DBTX, id int64, labelIDs []int64) error {
	return s.replaceInt64(ctx, q, s.Labels, "label_id", id, labelIDs)
}

// ReplaceTechnologies makes technologyIDs the entity's exact technology set.
func (s Schema) ReplaceTechnologies(ctx context.Context, q sqlutil.DBTX, id int64, technologyIDs []int64) error {
	return s.replaceInt64(ctx, q, s.Technologies, "technology_id", id, technologyIDs)
}

func (s Schema) replaceInt64(ctx context.Context, q sqlutil.DBTX, table, col string, id int64, ids []int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+s.FK+` = $1`, id); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	for _, v := range sqlutil.DedupeInt64(ids) {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO `+table+` (`+s.FK+`, `+col+`) VALUES ($1, $2)`, id, v); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

// ReplaceAuthors makes userIDs the entity's ownership set, keeping their
// order as the display order. An empty set is rejected: every entity keeps
// at least one owner.
func (s Schema) ReplaceAuthors(ctx context.Context, q sqlutil.DBTX, id int64, userIDs []string) error {
	userIDs = sqlutil.DedupeStrings(userIDs)
	if len(userIDs) == 0 {
		return apperr.Invalid("authorIds", "at least one author is required")
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM `+s.Authors+` WHERE `+s.FK+` = $1`, id); err != nil {
		return fmt.Errorf("clear %s: %w", s.Authors, err)
	}
	for i, uid := range userIDs {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO `+s.Authors+` (`+s.FK+`, user_id, position) VALUES ($1, $2, $3)`, id, uid, i); err != nil {
			return fmt.Errorf("insert %s: %w", s.Authors, err)
		}
	}
	return nil
}

// ValidateRefs checks that every referenced label, technology and user
// exists. The first unknown id is reported as a validation error.
func ValidateRefs(ctx context.Context, q sqlutil.DBTX, labelIDs, technologyIDs []int64, userIDs []string) error {
	if err := checkInt64Refs(ctx, q, "labels", "labelIds", "label", labelIDs); err != nil {
		return err
	}
	if err := checkInt64Refs(ctx, q, "technologies", "technologyIds", "technology", technologyIDs); err != nil {
		return err
	}
	userIDs = sqlutil.DedupeStrings(userIDs)
	if len(userIDs) == 0 {
		return nil
	}
	found, err := existingStrings(ctx, q, "users", userIDs)
	if err != nil {
		return err
	}
	for _, id := range userIDs {
		if _, ok := found[id]; !ok {
			return apperr.Invalid("authorIds", "unknown user %q", id)
		}
	}
	return nil
}

func checkInt64Refs(ctx context.Context, q sqlutil.DBTX, table, field, kind string, ids []int64) error {
	ids = sqlutil.DedupeInt64(ids)
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if id <= 0 {
			return apperr.Invalid(field, "%s id must be positive", kind)
		}
	}
	rows, err := q.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE id IN (`+sqlutil.Placeholders(1, len(ids))+`)`,
		sqlutil.Int64Args(ids)...)
	if err != nil {
		return fmt.Errorf("check %s: %w", table, err)
	}
	found := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan %s: %w", table, err)
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("check %s: %w", table, err)
	}
	rows.Close()

	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return apperr.Invalid(field, "unknown %s %d", kind, id)
		}
	}
	return nil
}

func existingStrings(ctx context.Context, q sqlutil.DBTX, table string, ids []string) (map[string]struct{}, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE id IN (`+sqlutil.Placeholders(1, len(ids))+`)`,
		sqlutil.StringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", table, err)
	}
	defer rows.Close()
	found := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		found[id] = struct{}{}
	}
	return found, rows.Err()
}

// DeleteCascade removes entities and everything that references them in
// dependency order: comments, label links, technology links, ownership
// links, then the rows. It returns the number of entity rows removed.
func (s Schema) DeleteCascade(ctx context.Context, q sqlutil.DBTX, ids ...int64) (int64, error) {
	ids = sqlutil.DedupeInt64(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	in := `IN (` + sqlutil.Placeholders(1, len(ids)) + `)`
	args := sqlutil.Int64Args(ids)

	steps := []struct{ table, col string }{
		{"comments", s.FK},
		{s.Labels, s.FK},
		{s.Technologies, s.FK},
		{s.Authors, s.FK},
	}
	for _, st := range steps {
		if _, err := q.ExecContext(ctx, `DELETE FROM `+st.table+` WHERE `+st.col+` `+in, args...); err != nil {
			return 0, fmt.Errorf("delete %s: %w", st.table, err)
		}
	}

	res, err := q.ExecContext(ctx, `DELETE FROM `+s.Table+` WHERE id `+in, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", s.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", s.Table, err)
	}
	return n, nil
}

// SoleOwnedIDs returns the entities whose only owner is userID.
func (s Schema) SoleOwnedIDs(ctx context.Context, q sqlutil.DBTX, userID string) ([]int64, error) {
	return s.queryIDs(ctx, q, `
		SELECT a.`+s.FK+` FROM `+s.Authors+` a
		WHERE a.user_id = $1
		  AND NOT EXISTS (
		      SELECT 1 FROM `+s.Authors+` b
		      WHERE b.`+s.FK+` = a.`+s.FK+` AND b.user_id <> $1)
		ORDER BY a.`+s.FK, userID)
}

// OwnedIDs returns every entity userID has an ownership link to.
func (s Schema) OwnedIDs(ctx context.Context, q sqlutil.DBTX, userID string) ([]int64, error) {
	return s.queryIDs(ctx, q,
		`SELECT `+s.FK+` FROM `+s.Authors+` WHERE user_id = $1 ORDER BY `+s.FK, userID)
}

func (s Schema) queryIDs(ctx context.Context, q sqlutil.DBTX, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s ids: %w", s.Kind, err)
	}
	defer rows.Close()
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s ids: %w", s.Kind, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Filter narrows the aggregated query.
type Filter struct {
	IDs []int64 // empty means all
}

// AggregatedQuery returns the left join of the entity table against its
// three bridge tables. Columns: id, s.Columns..., author, label,
// technology. Rows arrive grouped by entity in list order.
func (s Schema) AggregatedQuery(f Filter) (string, []any) {
	cols := make([]string, 0, len(s.Columns)+1)
	cols = append(cols, "e.id")
	for _, c := range s.Columns {
		cols = append(cols, "e."+c)
	}

	var b strings.Builder
	b.WriteString("SELECT " + strings.Join(cols, ", ") + ", a.user_id, l.label_id, t.technology_id")
	b.WriteString(" FROM " + s.Table + " e")
	b.WriteString(" LEFT JOIN " + s.Authors + " a ON a." + s.FK + " = e.id")
	b.WriteString(" LEFT JOIN " + s.Labels + " l ON l." + s.FK + " = e.id")
	b.WriteString(" LEFT JOIN " + s.Technologies + " t ON t." + s.FK + " = e.id")

	var args []any
	if len(f.IDs) > 0 {
		b.WriteString(" WHERE e.id IN (" + sqlutil.Placeholders(1, len(f.IDs)) + ")")
		args = sqlutil.Int64Args(f.IDs)
	}
	b.WriteString(" ORDER BY " + s.OrderBy + ", a.position, l.label_id, t.technology_id")
	return b.String(), args
}

// Query runs the aggregated query and folds the rows. scalars returns the
// scan destinations for s.Columns inside a fresh T.
func Query[T any](ctx context.Context, q sqlutil.DBTX, s Schema, f Filter, scalars func(*T) []any) ([]aggregate.Record[T], error) {
	query, args := s.AggregatedQuery(f)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Table, err)
	}
	defer rows.Close()

	var flat []aggregate.Row[T]
	for rows.Next() {
		var r aggregate.Row[T]
		dest := make([]any, 0, len(s.Columns)+4)
		dest = append(dest, &r.ID)
		dest = append(dest, scalars(&r.Fields)...)
		dest = append(dest, &r.AuthorID, &r.LabelID, &r.TechnologyID)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.Table, err)
		}
		flat = append(flat, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.Table, err)
	}

	return aggregate.Fold(flat)
}
