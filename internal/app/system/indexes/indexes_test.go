package indexes_test

import (
	"testing"

	"github.com/dalemusser/folio/internal/app/system/indexes"
	"github.com/dalemusser/folio/internal/testutil"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	// SetupTestDB already ran EnsureAll once
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesEveryIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, ix := range indexes.Desired {
		var table string
		err := db.QueryRowContext(ctx,
			`SELECT tbl_name FROM sqlite_master WHERE type = 'index' AND name = $1`, ix.Name).Scan(&table)
		if err != nil {
			t.Errorf("index %s not found: %v", ix.Name, err)
			continue
		}
		if table != ix.Table {
			t.Errorf("index %s on %s, want %s", ix.Name, table, ix.Table)
		}
	}
}

func TestEnsureAll_ReportsProblems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := db.ExecContext(ctx, `DROP TABLE comments`); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := db.ExecContext(ctx, `DROP INDEX IF EXISTS idx_comments_article`); err != nil {
		t.Fatalf("drop index: %v", err)
	}

	err := indexes.EnsureAll(ctx, db)
	if err == nil {
		t.Fatal("expected an error when a table is missing")
	}
}

func TestDesired_NamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, ix := range indexes.Desired {
		if seen[ix.Name] {
			t.Errorf("duplicate index name %s", ix.Name)
		}
		seen[ix.Name] = true
		if len(ix.Columns) == 0 {
			t.Errorf("index %s has no columns", ix.Name)
		}
	}
}
