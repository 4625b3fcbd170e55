// internal/app/system/authz/roles.go
package authz

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/app/system/normalize"
	"github.com/dalemusser/folio/internal/domain/models"
)

// Caller is the resolved identity behind a request. The zero value is the
// anonymous caller.
type Caller struct {
	ID   string
	Name string
	Role string
}

// CallerFrom reads the session user placed in context by LoadSessionUser.
// A signed-in user without a recognised role is treated as general.
func CallerFrom(r *http.Request) Caller {
	u, ok := auth.CurrentUser(r)
	if !ok || u.ID == "" {
		return Caller{}
	}
	return Caller{
		ID:   u.ID,
		Name: u.Name,
		Role: normalize.RoleOrGeneral(u.Role),
	}
}

// Authenticated reports whether the caller has a resolved identity.
func (c Caller) Authenticated() bool {
	return c.ID != ""
}

// Elevated reports whether the caller bypasses per-entity ownership checks.
func (c Caller) Elevated() bool {
	return c.Authenticated() && (c.Role == models.RoleAdmin || c.Role == models.RoleManager)
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Authenticated() && c.Role == models.RoleAdmin
}

// Rank orders roles: anonymous -1, general 0, member 1, manager 2, admin 3.
func (c Caller) Rank() int {
	if !c.Authenticated() {
		return -1
	}
	return RoleRank(c.Role)
}

// RoleRank returns a role's position in models.Roles, or 0 for unknown roles.
func RoleRank(role string) int {
	role = normalize.Role(role)
	for i, r := range models.Roles {
		if r == role {
			return i
		}
	}
	return 0
}
