// Package authz is the single authorization gate used by every mutating
// handler and every visibility-restricted read.
//
// Decision order for update and delete:
//
//  1. anonymous caller              ErrUnauthenticated
//  2. target does not exist         ErrNotFound
//  3. admin or manager              allowed
//  4. caller has an ownership link  allowed
//  5. otherwise                     ErrForbidden
//
// Existence is checked before ownership so a missing id is always 404,
// never a 403 produced by an empty ownership lookup.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/app/system/metrics"
	"github.com/dalemusser/folio/internal/domain/models"
)

// Op is the operation being authorized.
type Op string

const (
	OpRead   Op = "read"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Ownership answers existence and ownership questions for one entity kind.
// The article and work stores implement it over their author link tables.
type Ownership interface {
	Exists(ctx context.Context, id int64) (bool, error)
	IsOwner(ctx context.Context, id int64, userID string) (bool, error)
}

// Authorize decides whether caller may perform op on the entity id.
func Authorize(ctx context.Context, caller Caller, op Op, own Ownership, id int64) error {
	if !caller.Authenticated() {
		return record(op, apperr.ErrUnauthenticated)
	}

	exists, err := own.Exists(ctx, id)
	if err != nil {
		return record(op, fmt.Errorf("authorize %s %d: %w", op, id, err))
	}
	if !exists {
		return record(op, apperr.NotFound("entity", id))
	}

	if caller.Elevated() {
		return record(op, nil)
	}

	owner, err := own.IsOwner(ctx, id, caller.ID)
	if err != nil {
		return record(op, fmt.Errorf("authorize %s %d: %w", op, id, err))
	}
	if !owner {
		return record(op, apperr.ErrForbidden)
	}
	return record(op, nil)
}

// Resource is what a read decision needs to know about a loaded entity.
type Resource struct {
	Visibility string
	OwnerIDs   []string
}

// CanRead applies the visibility rules to an entity already loaded:
// Public is open to everyone, Private needs a role above general or
// ownership, Preview needs ownership or an elevated role. A denied
// anonymous caller gets ErrUnauthenticated, a denied signed-in caller
// ErrForbidden.
func CanRead(caller Caller, res Resource) error {
	return record(OpRead, readable(caller, res))
}

// Visible is CanRead as a predicate for filtering list results. It does
// not count toward the decision metrics.
func Visible(caller Caller, res Resource) bool {
	return readable(caller, res) == nil
}

func readable(caller Caller, res Resource) error {
	if res.Visibility == models.VisibilityPublic {
		return nil
	}
	if !caller.Authenticated() {
		return apperr.ErrUnauthenticated
	}
	if caller.Elevated() || owns(caller.ID, res.OwnerIDs) {
		return nil
	}
	if res.Visibility == models.VisibilityPrivate && caller.Rank() > RoleRank(models.RoleGeneral) {
		return nil
	}
	return apperr.ErrForbidden
}

// RequireSignedIn rejects the anonymous caller.
func RequireSignedIn(caller Caller) error {
	if !caller.Authenticated() {
		return apperr.ErrUnauthenticated
	}
	return nil
}

// RequireElevated allows admins and managers only.
func RequireElevated(caller Caller) error {
	if !caller.Authenticated() {
		return record(OpUpdate, apperr.ErrUnauthenticated)
	}
	if !caller.Elevated() {
		return record(OpUpdate, apperr.ErrForbidden)
	}
	return record(OpUpdate, nil)
}

// RequireAuthor allows only the user who wrote a record (comment edits,
// profile edits).
func RequireAuthor(caller Caller, op Op, authorID string) error {
	if !caller.Authenticated() {
		return record(op, apperr.ErrUnauthenticated)
	}
	if caller.ID != authorID {
		return record(op, apperr.ErrForbidden)
	}
	return record(op, nil)
}

// RequireAuthorOrElevated allows the author or an elevated role (comment
// moderation).
func RequireAuthorOrElevated(caller Caller, op Op, authorID string) error {
	if !caller.Authenticated() {
		return record(op, apperr.ErrUnauthenticated)
	}
	if caller.ID != authorID && !caller.Elevated() {
		return record(op, apperr.ErrForbidden)
	}
	return record(op, nil)
}

// RequireSelfOrAdmin allows a user to act on their own account, or an
// admin to act on anyone's (account deletion).
func RequireSelfOrAdmin(caller Caller, op Op, userID string) error {
	if !caller.Authenticated() {
		return record(op, apperr.ErrUnauthenticated)
	}
	if caller.ID != userID && !caller.IsAdmin() {
		return record(op, apperr.ErrForbidden)
	}
	return record(op, nil)
}

// CanSetRole decides a role change. Managers and admins may change roles,
// but only an admin may grant admin or change an admin's role.
func CanSetRole(caller Caller, currentRole, newRole string) error {
	if err := RequireElevated(caller); err != nil {
		return err
	}
	if (currentRole == models.RoleAdmin || newRole == models.RoleAdmin) && !caller.IsAdmin() {
		return record(OpUpdate, apperr.ErrForbidden)
	}
	return nil
}

func owns(userID string, owners []string) bool {
	for _, id := range owners {
		if id == userID {
			return true
		}
	}
	return false
}

func record(op Op, err error) error {
	metrics.AuthzDecisions.WithLabelValues(string(op), outcome(err)).Inc()
	return err
}

func outcome(err error) string {
	if err == nil {
		return "allowed"
	}
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, apperr.ErrForbidden):
		return "forbidden"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
