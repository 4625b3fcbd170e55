// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Index describes one secondary index. Primary keys and UNIQUE columns are
// declared with the tables and are not listed here.
type Index struct {
	Name    string
	Table   string
	Columns []string
}

func (ix Index) statement() string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		ix.Name, ix.Table, strings.Join(ix.Columns, ", "))
}

// Desired lists every secondary index the stores rely on. The bridge tables
// are keyed on (parent, child), so each gets a reverse index for lookups
// by child and for cascades.
var Desired = []Index{
	// list endpoints order by date
	{Name: "idx_articles_date", Table: "articles", Columns: []string{"date", "id"}},
	{Name: "idx_works_date", Table: "works", Columns: []string{"date", "id"}},

	{Name: "idx_article_authors_user", Table: "article_authors", Columns: []string{"user_id"}},
	{Name: "idx_work_authors_user", Table: "work_authors", Columns: []string{"user_id"}},
	{Name: "idx_article_labels_label", Table: "article_labels", Columns: []string{"label_id"}},
	{Name: "idx_article_technologies_technology", Table: "article_technologies", Columns: []string{"technology_id"}},
	{Name: "idx_work_labels_label", Table: "work_labels", Columns: []string{"label_id"}},
	{Name: "idx_work_technologies_technology", Table: "work_technologies", Columns: []string{"technology_id"}},

	{Name: "idx_comments_article", Table: "comments", Columns: []string{"article_id", "created_at"}},
	{Name: "idx_comments_work", Table: "comments", Columns: []string{"work_id", "created_at"}},
	{Name: "idx_comments_user", Table: "comments", Columns: []string{"user_id"}},

	// dashboard lists recent signups
	{Name: "idx_users_created", Table: "users", Columns: []string{"created_at"}},
}

/*
EnsureAll is called at startup after the tables exist. Each statement is
idempotent. We aggregate errors so any problem is visible and startup can
fail fast.
*/
func EnsureAll(ctx context.Context, db *sql.DB) error {
	var problems []string

	for _, ix := range Desired {
		start := time.Now()
		if _, err := db.ExecContext(ctx, ix.statement()); err != nil {
			zap.L().Warn("create index failed",
				zap.String("table", ix.Table),
				zap.String("name", ix.Name),
				zap.Error(err))
			problems = append(problems, ix.Table+"("+ix.Name+"): "+err.Error())
			continue
		}
		zap.L().Debug("index ensured",
			zap.String("table", ix.Table),
			zap.String("name", ix.Name),
			zap.String("took", time.Since(start).String()))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
