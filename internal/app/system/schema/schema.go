// Package schema creates the relational tables at startup. Every statement
// is idempotent so Apply runs on each boot.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dalemusser/folio/internal/app/store/sqlutil"
)

// Tables lists every table in creation order. Deletes run in reverse
// dependency order elsewhere; this order satisfies the foreign keys.
var Tables = []string{
	"users",
	"articles",
	"works",
	"labels",
	"technologies",
	"article_authors",
	"work_authors",
	"article_labels",
	"article_technologies",
	"work_labels",
	"work_technologies",
	"comments",
}

const ddl = `
CREATE TABLE IF NOT EXISTS users (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL DEFAULT '',
	account_name    TEXT NOT NULL UNIQUE,
	account_name_ci TEXT NOT NULL UNIQUE,
	email           TEXT NOT NULL DEFAULT '',
	role            TEXT NOT NULL DEFAULT 'general'
	                CHECK (role IN ('general', 'member', 'manager', 'admin')),
	bio             TEXT NOT NULL DEFAULT '',
	website_url     TEXT NOT NULL DEFAULT '',
	github_url      TEXT NOT NULL DEFAULT '',
	x_url           TEXT NOT NULL DEFAULT '',
	created_at      {{TS}} NOT NULL,
	updated_at      {{TS}} NOT NULL
);

CREATE TABLE IF NOT EXISTS articles (
	id         {{PK}},
	title      TEXT NOT NULL,
	date       TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	visibility TEXT NOT NULL DEFAULT 'Preview'
	           CHECK (visibility IN ('Preview', 'Public', 'Private')),
	created_at {{TS}} NOT NULL,
	updated_at {{TS}} NOT NULL
);

CREATE TABLE IF NOT EXISTS works (
	id          {{PK}},
	name        TEXT NOT NULL,
	date        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL DEFAULT '',
	visibility  TEXT NOT NULL DEFAULT 'Preview'
	            CHECK (visibility IN ('Preview', 'Public', 'Private')),
	created_at  {{TS}} NOT NULL,
	updated_at  {{TS}} NOT NULL
);

CREATE TABLE IF NOT EXISTS labels (
	id      {{PK}},
	name    TEXT NOT NULL UNIQUE,
	name_ci TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS technologies (
	id      {{PK}},
	name    TEXT NOT NULL UNIQUE,
	name_ci TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS article_authors (
	article_id {{FK}} NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (article_id, user_id)
);

CREATE TABLE IF NOT EXISTS work_authors (
	work_id  {{FK}} NOT NULL REFERENCES works(id) ON DELETE CASCADE,
	user_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	position INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (work_id, user_id)
);

CREATE TABLE IF NOT EXISTS article_labels (
	article_id {{FK}} NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
	label_id   {{FK}} NOT NULL REFERENCES labels(id) ON DELETE CASCADE,
	PRIMARY KEY (article_id, label_id)
);

CREATE TABLE IF NOT EXISTS article_technologies (
	article_id    {{FK}} NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
	technology_id {{FK}} NOT NULL REFERENCES technologies(id) ON DELETE CASCADE,
	PRIMARY KEY (article_id, technology_id)
);

CREATE TABLE IF NOT EXISTS work_labels (
	work_id  {{FK}} NOT NULL REFERENCES works(id) ON DELETE CASCADE,
	label_id {{FK}} NOT NULL REFERENCES labels(id) ON DELETE CASCADE,
	PRIMARY KEY (work_id, label_id)
);

CREATE TABLE IF NOT EXISTS work_technologies (
	work_id       {{FK}} NOT NULL REFERENCES works(id) ON DELETE CASCADE,
	technology_id {{FK}} NOT NULL REFERENCES technologies(id) ON DELETE CASCADE,
	PRIMARY KEY (work_id, technology_id)
);

CREATE TABLE IF NOT EXISTS comments (
	id         {{PK}},
	article_id {{FK}} REFERENCES articles(id) ON DELETE CASCADE,
	work_id    {{FK}} REFERENCES works(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	body       TEXT NOT NULL,
	created_at {{TS}} NOT NULL,
	updated_at {{TS}} NOT NULL,
	CHECK ((article_id IS NULL) <> (work_id IS NULL))
);
`

// DDL returns the table statements rendered for dialect.
func DDL(dialect sqlutil.Dialect) string {
	var r *strings.Replacer
	switch dialect {
	case sqlutil.Postgres:
		r = strings.NewReplacer(
			"{{PK}}", "BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY",
			"{{FK}}", "BIGINT",
			"{{TS}}", "TIMESTAMPTZ",
		)
	default:
		r = strings.NewReplacer(
			"{{PK}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
			"{{FK}}", "INTEGER",
			"{{TS}}", "TEXT",
		)
	}
	return r.Replace(ddl)
}

// SplitStatements splits a script on semicolons that end a line.
func SplitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";\n") {
		if s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), ";")); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Apply creates any missing tables.
func Apply(ctx context.Context, db *sql.DB, dialect sqlutil.Dialect) error {
	for _, stmt := range SplitStatements(DDL(dialect)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}
