package schema_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/store/sqldb"
	"github.com/dalemusser/folio/internal/app/store/sqlutil"
	"github.com/dalemusser/folio/internal/app/system/schema"
)

func TestDDL_Dialects(t *testing.T) {
	pg := schema.DDL(sqlutil.Postgres)
	if !strings.Contains(pg, "GENERATED BY DEFAULT AS IDENTITY") || !strings.Contains(pg, "TIMESTAMPTZ") {
		t.Error("postgres DDL missing identity or timestamptz columns")
	}
	lite := schema.DDL(sqlutil.SQLite)
	if !strings.Contains(lite, "AUTOINCREMENT") {
		t.Error("sqlite DDL missing autoincrement")
	}
	for _, ddl := range []string{pg, lite} {
		if strings.Contains(ddl, "{{") {
			t.Error("unrendered placeholder in DDL")
		}
	}
}

func TestSplitStatements(t *testing.T) {
	got := schema.SplitStatements("CREATE TABLE a (x INT);\n\nCREATE TABLE b (y INT);\n")
	if len(got) != 2 {
		t.Fatalf("got %d statements: %q", len(got), got)
	}
	if got[1] != "CREATE TABLE b (y INT)" {
		t.Errorf("second statement = %q", got[1])
	}
	if n := len(schema.SplitStatements(schema.DDL(sqlutil.SQLite))); n != len(schema.Tables) {
		t.Errorf("DDL has %d statements, Tables lists %d", n, len(schema.Tables))
	}
}

func TestApply_SQLite(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, dialect, err := sqldb.Open(ctx, sqldb.Options{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "s.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	// twice: idempotent
	for i := 0; i < 2; i++ {
		if err := schema.Apply(ctx, db, dialect); err != nil {
			t.Fatalf("Apply #%d: %v", i+1, err)
		}
	}

	for _, table := range schema.Tables {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestApply_CommentParentCheck(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, dialect, err := sqldb.Open(ctx, sqldb.Options{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "c.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := schema.Apply(ctx, db, dialect); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	now := sqlutil.FormatTime(sqlutil.Now())
	if _, err := db.ExecContext(ctx, `INSERT INTO users (id, account_name, account_name_ci, created_at, updated_at)
		VALUES ('u1', 'u1', 'u1', $1, $1)`, now); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	// neither parent set
	_, err = db.ExecContext(ctx, `INSERT INTO comments (user_id, body, created_at, updated_at)
		VALUES ('u1', 'hi', $1, $1)`, now)
	if err == nil {
		t.Error("expected CHECK failure for a comment with no parent")
	}
}
