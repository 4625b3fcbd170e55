package testutil

import (
	"context"
	"database/sql"
	"strconv"
	"testing"

	"github.com/dalemusser/folio/internal/app/store/sqlutil"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
)

// Fixtures provides helper methods for creating test data. Rows are
// written with plain SQL so store tests do not depend on the store under
// test to set themselves up.
type Fixtures struct {
	db *sql.DB
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *sql.DB {
	return f.db
}

func (f *Fixtures) exec(ctx context.Context, what, q string, args ...any) {
	f.t.Helper()
	if _, err := f.db.ExecContext(ctx, q, args...); err != nil {
		f.t.Fatalf("failed to %s: %v", what, err)
	}
}

func (f *Fixtures) insertID(ctx context.Context, what, q string, args ...any) int64 {
	f.t.Helper()
	var id int64
	if err := f.db.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
		f.t.Fatalf("failed to %s: %v", what, err)
	}
	return id
}

// CreateUser creates a test user with a random provider id. The account
// name is derived from the display name.
func (f *Fixtures) CreateUser(ctx context.Context, name, role string) models.User {
	f.t.Helper()

	now := sqlutil.Now()
	u := models.User{
		ID:          "google-" + uuid.NewString(),
		Name:        name,
		AccountName: name + "-" + uuid.NewString()[:8],
		Email:       uuid.NewString()[:8] + "@example.com",
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	u.AccountNameCI = text.Fold(u.AccountName)

	f.exec(ctx, "create test user", `
		INSERT INTO users (id, name, account_name, account_name_ci, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		u.ID, u.Name, u.AccountName, u.AccountNameCI, u.Email, u.Role, sqlutil.FormatTime(now))
	return u
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, name string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, models.RoleAdmin)
}

// CreateManager creates a test manager user.
func (f *Fixtures) CreateManager(ctx context.Context, name string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, models.RoleManager)
}

// CreateMember creates a test member user.
func (f *Fixtures) CreateMember(ctx context.Context, name string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, models.RoleMember)
}

// CreateGeneral creates a test user with the lowest role.
func (f *Fixtures) CreateGeneral(ctx context.Context, name string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, models.RoleGeneral)
}

// CreateLabel creates a label and returns its id.
func (f *Fixtures) CreateLabel(ctx context.Context, name string) int64 {
	f.t.Helper()
	return f.insertID(ctx, "create test label",
		`INSERT INTO labels (name, name_ci) VALUES ($1, $2) RETURNING id`, name, text.Fold(name))
}

// CreateTechnology creates a technology and returns its id.
func (f *Fixtures) CreateTechnology(ctx context.Context, name string) int64 {
	f.t.Helper()
	return f.insertID(ctx, "create test technology",
		`INSERT INTO technologies (name, name_ci) VALUES ($1, $2) RETURNING id`, name, text.Fold(name))
}

// CreateArticle creates an article owned by authorIDs (in order) and
// returns its id.
func (f *Fixtures) CreateArticle(ctx context.Context, title, visibility string, authorIDs ...string) int64 {
	f.t.Helper()

	now := sqlutil.FormatTime(sqlutil.Now())
	id := f.insertID(ctx, "create test article", `
		INSERT INTO articles (title, date, content, visibility, created_at, updated_at)
		VALUES ($1, '2024-01-01', 'content', $2, $3, $3) RETURNING id`,
		title, visibility, now)
	for i, uid := range authorIDs {
		f.exec(ctx, "link test article author",
			`INSERT INTO article_authors (article_id, user_id, position) VALUES ($1, $2, $3)`, id, uid, i)
	}
	return id
}

// CreateWork creates a work owned by authorIDs (in order) and returns its id.
func (f *Fixtures) CreateWork(ctx context.Context, name, visibility string, authorIDs ...string) int64 {
	f.t.Helper()

	now := sqlutil.FormatTime(sqlutil.Now())
	id := f.insertID(ctx, "create test work", `
		INSERT INTO works (name, date, description, url, visibility, created_at, updated_at)
		VALUES ($1, '2024-01-01', 'description', 'https://example.com', $2, $3, $3) RETURNING id`,
		name, visibility, now)
	for i, uid := range authorIDs {
		f.exec(ctx, "link test work author",
			`INSERT INTO work_authors (work_id, user_id, position) VALUES ($1, $2, $3)`, id, uid, i)
	}
	return id
}

// TagArticle links labels and technologies to an article.
func (f *Fixtures) TagArticle(ctx context.Context, articleID int64, labelIDs, technologyIDs []int64) {
	f.t.Helper()
	for _, id := range labelIDs {
		f.exec(ctx, "link article label",
			`INSERT INTO article_labels (article_id, label_id) VALUES ($1, $2)`, articleID, id)
	}
	for _, id := range technologyIDs {
		f.exec(ctx, "link article technology",
			`INSERT INTO article_technologies (article_id, technology_id) VALUES ($1, $2)`, articleID, id)
	}
}

// TagWork links labels and technologies to a work.
func (f *Fixtures) TagWork(ctx context.Context, workID int64, labelIDs, technologyIDs []int64) {
	f.t.Helper()
	for _, id := range labelIDs {
		f.exec(ctx, "link work label",
			`INSERT INTO work_labels (work_id, label_id) VALUES ($1, $2)`, workID, id)
	}
	for _, id := range technologyIDs {
		f.exec(ctx, "link work technology",
			`INSERT INTO work_technologies (work_id, technology_id) VALUES ($1, $2)`, workID, id)
	}
}

// CreateArticleComment adds a comment by userID to an article.
func (f *Fixtures) CreateArticleComment(ctx context.Context, articleID int64, userID, body string) int64 {
	f.t.Helper()
	now := sqlutil.FormatTime(sqlutil.Now())
	return f.insertID(ctx, "create test comment", `
		INSERT INTO comments (article_id, user_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4) RETURNING id`, articleID, userID, body, now)
}

// CreateWorkComment adds a comment by userID to a work.
func (f *Fixtures) CreateWorkComment(ctx context.Context, workID int64, userID, body string) int64 {
	f.t.Helper()
	now := sqlutil.FormatTime(sqlutil.Now())
	return f.insertID(ctx, "create test comment", `
		INSERT INTO comments (work_id, user_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4) RETURNING id`, workID, userID, body, now)
}

// FailOnInsert installs a trigger that aborts any insert into table whose
// column equals value. It simulates a store failure part way through a
// multi-statement write.
func (f *Fixtures) FailOnInsert(ctx context.Context, table, column string, value int64) {
	f.t.Helper()
	f.exec(ctx, "install failure trigger", `
		CREATE TRIGGER fail_`+table+`_insert BEFORE INSERT ON `+table+`
		WHEN NEW.`+column+` = `+strconv.FormatInt(value, 10)+`
		BEGIN SELECT RAISE(ABORT, 'injected failure'); END`)
}
