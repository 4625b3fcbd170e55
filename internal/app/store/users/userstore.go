// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dalemusser/folio/internal/app/store/content"
	"github.com/dalemusser/folio/internal/app/store/sqlutil"
	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/folio/internal/app/system/inputval"
	"github.com/dalemusser/folio/internal/app/system/normalize"
	"github.com/dalemusser/folio/internal/app/system/txn"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

const (
	maxNameLen        = 100
	maxAccountNameLen = 40
	maxBioLen         = 2000
)

var accountNameRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectCols = `SELECT id, name, account_name, account_name_ci, email, role, bio,
	website_url, github_url, x_url, created_at, updated_at FROM users`

func scanUser(sc interface{ Scan(...any) error }) (models.User, error) {
	var (
		u                models.User
		created, updated sqlutil.Time
	)
	err := sc.Scan(&u.ID, &u.Name, &u.AccountName, &u.AccountNameCI, &u.Email, &u.Role, &u.Bio,
		&u.WebsiteURL, &u.GithubURL, &u.XURL, &created, &updated)
	if err != nil {
		return models.User{}, err
	}
	u.CreatedAt = created.T
	u.UpdatedAt = updated.T
	return u, nil
}

// GetByID returns a user or apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, selectCols+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.User{}, apperr.NotFound("user", id)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// List returns every user ordered by account name.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, selectCols+` ORDER BY account_name_ci`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Identity is what the external provider tells us about a signed-in person.
type Identity struct {
	ProviderID string
	Name       string
	Email      string
}

// UpsertFromIdentity returns the user for a completed sign-in, creating it
// on first sight. New users get the general role, except that an email
// matching adminEmail is created as (or promoted to) admin.
func (s *Store) UpsertFromIdentity(ctx context.Context, id Identity, adminEmail string) (models.User, bool, error) {
	if strings.TrimSpace(id.ProviderID) == "" {
		return models.User{}, false, apperr.Invalid("id", "identity provider returned no subject")
	}
	email := normalize.Email(id.Email)
	isAdmin := adminEmail != "" && email != "" && email == normalize.Email(adminEmail)

	existing, err := s.GetByID(ctx, id.ProviderID)
	switch {
	case err == nil:
		if isAdmin && existing.Role != models.RoleAdmin {
			if _, err := s.SetRole(ctx, existing.ID, models.RoleAdmin); err != nil {
				return models.User{}, false, err
			}
			existing.Role = models.RoleAdmin
		}
		return existing, false, nil
	case !apperr.IsNotFound(err):
		return models.User{}, false, err
	}

	role := models.RoleGeneral
	if isAdmin {
		role = models.RoleAdmin
	}
	name := normalize.Name(htmlsanitize.StripTags(id.Name))
	now := sqlutil.FormatTime(sqlutil.Now())

	err = txn.Run(ctx, s.db, func(tx *sql.Tx) error {
		account, err := freeAccountName(ctx, tx, accountBase(name, email))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO users (id, name, account_name, account_name_ci, email, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
			id.ProviderID, name, account, text.Fold(account), email, role, now)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.User{}, false, err
	}
	created, err := s.GetByID(ctx, id.ProviderID)
	if err != nil {
		return models.User{}, false, err
	}
	return created, true, nil
}

// accountBase derives a handle from the email local part or the name.
func accountBase(name, email string) string {
	src := email
	if i := strings.IndexByte(src, '@'); i > 0 {
		src = src[:i]
	} else {
		src = name
	}
	var b strings.Builder
	for _, r := range src {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	base := strings.TrimLeft(b.String(), "_.-")
	if base == "" {
		base = "user"
	}
	if len(base) > maxAccountNameLen-4 {
		base = base[:maxAccountNameLen-4]
	}
	return base
}

func freeAccountName(ctx context.Context, q sqlutil.DBTX, base string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		taken, err := accountNameTaken(ctx, q, candidate, "")
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}

func accountNameTaken(ctx context.Context, q sqlutil.DBTX, name, excludeID string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE account_name_ci = $1 AND id <> $2`, text.Fold(name), excludeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check account name: %w", err)
	}
	return true, nil
}

// UpdateProfile applies a self-service profile change.
func (s *Store) UpdateProfile(ctx context.Context, id string, p models.UserPatch) (models.User, error) {
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
		n := normalize.Name(*p.Name)
		v.Require("name", n)
		v.MaxLen("name", n, maxNameLen)
		if !htmlsanitize.IsPlainText(n) {
			v.Add("name", "must not contain markup")
		}
		add("name", n)
	}
	if p.AccountName != nil {
		a := strings.TrimSpace(*p.AccountName)
		v.Require("accountName", a)
		v.MaxLen("accountName", a, maxAccountNameLen)
		if a != "" && !accountNameRE.MatchString(a) {
			v.Add("accountName", "may contain only letters, digits, '.', '_' and '-'")
		}
		add("account_name", a)
		add("account_name_ci", text.Fold(a))
	}
	if p.Bio != nil {
		b := htmlsanitize.StripTags(*p.Bio)
		v.MaxLen("bio", b, maxBioLen)
		add("bio", b)
	}
	for _, link := range []struct {
		field, col string
		val        *string
	}{
		{"websiteUrl", "website_url", p.WebsiteURL},
		{"githubUrl", "github_url", p.GithubURL},
		{"xUrl", "x_url", p.XURL},
	} {
		if link.val == nil {
			continue
		}
		u := strings.TrimSpace(*link.val)
		v.HTTPURL(link.field, u)
		add(link.col, u)
	}
	if err := v.Err(); err != nil {
		return models.User{}, err
	}

	if p.AccountName != nil {
		taken, err := accountNameTaken(ctx, s.db, strings.TrimSpace(*p.AccountName), id)
		if err != nil {
			return models.User{}, err
		}
		if taken {
			return models.User{}, apperr.Invalid("accountName", "account name is already taken")
		}
	}

	add("updated_at", sqlutil.FormatTime(sqlutil.Now()))
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+fmt.Sprintf(` WHERE id = $%d`, len(args)+1),
		append(args, id)...)
	if err != nil {
		if sqlutil.IsUniqueViolation(err) {
			return models.User{}, apperr.Invalid("accountName", "account name is already taken")
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	} else if n == 0 {
		return models.User{}, apperr.NotFound("user", id)
	}
	return s.GetByID(ctx, id)
}

// SetRole changes a user's role and returns the previous one.
func (s *Store) SetRole(ctx context.Context, id, role string) (string, error) {
	role = normalize.Role(role)
	var v inputval.Result
	v.OneOf("role", role, models.Roles...)
	if err := v.Err(); err != nil {
		return "", err
	}

	var prev string
	err := txn.Run(ctx, s.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT role FROM users WHERE id = $1`, id).Scan(&prev)
		if err == sql.ErrNoRows {
			return apperr.NotFound("user", id)
		}
		if err != nil {
			return fmt.Errorf("get role: %w", err)
		}
		_, err = tx.ExecContext(ctx, `UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`,
			role, sqlutil.FormatTime(sqlutil.Now()), id)
		if err != nil {
			return fmt.Errorf("set role: %w", err)
		}
		return nil
	})
	return prev, err
}

// DeleteResult counts the content removed with a user.
type DeleteResult struct {
	Articles int
	Works    int
}

// Delete removes a user in one transaction. Articles and works the user
// owns alone are deleted with their comments and links; co-owned ones
// only lose the user's ownership link. The user's comments elsewhere and
// the user row go last.
func (s *Store) Delete(ctx context.Context, id string) (DeleteResult, error) {
	var res DeleteResult
	err := txn.Run(ctx, s.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = $1`, id).Scan(&one)
		if err == sql.ErrNoRows {
			return apperr.NotFound("user", id)
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		for _, sc := range []struct {
			schema content.Schema
			count  *int
		}{
			{content.Articles, &res.Articles},
			{content.Works, &res.Works},
		} {
			ids, err := sc.schema.SoleOwnedIDs(ctx, tx, id)
			if err != nil {
				return err
			}
			n, err := sc.schema.DeleteCascade(ctx, tx, ids...)
			if err != nil {
				return err
			}
			*sc.count = int(n)

			if _, err := tx.ExecContext(ctx,
				`DELETE FROM `+sc.schema.Authors+` WHERE user_id = $1`, id); err != nil {
				return fmt.Errorf("delete %s: %w", sc.schema.Authors, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	return res, nil
}
