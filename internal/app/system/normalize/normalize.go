// Package normalize canonicalises user-supplied strings before they are
// validated or stored.
package normalize

import (
	"strings"

	"github.com/dalemusser/folio/internal/domain/models"
)

// Email trims and lowercases.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role trims and lowercases. Unknown roles are returned as-is so callers
// can reject them; use RoleOrGeneral when a missing role must default.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RoleOrGeneral maps an empty or unknown role to general.
func RoleOrGeneral(s string) string {
	r := Role(s)
	for _, known := range models.Roles {
		if r == known {
			return r
		}
	}
	return models.RoleGeneral
}

// Visibility maps any casing of Preview, Public or Private to its canonical
// form. Unknown values return "".
func Visibility(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "preview":
		return models.VisibilityPreview
	case "public":
		return models.VisibilityPublic
	case "private":
		return models.VisibilityPrivate
	default:
		return ""
	}
}

// QueryParam trims a query parameter value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
