// internal/domain/models/user.go
package models

import "time"

// Role values, lowest to highest privilege.
const (
	RoleGeneral = "general"
	RoleMember  = "member"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Roles lists every valid role in ascending privilege order.
var Roles = []string{RoleGeneral, RoleMember, RoleManager, RoleAdmin}

// User is a person who signed in through the external identity provider.
//
// ID is issued by the provider and never changes. AccountName is the public
// handle; AccountNameCI is its folded form and carries the unique index.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	AccountName   string    `json:"accountName"`
	AccountNameCI string    `json:"-"`
	Email         string    `json:"email,omitempty"`
	Role          string    `json:"role"`
	Bio           string    `json:"bio"`
	WebsiteURL    string    `json:"websiteUrl"`
	GithubURL     string    `json:"githubUrl"`
	XURL          string    `json:"xUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Public returns a copy safe to show to other users.
func (u User) Public() User {
	u.Email = ""
	return u
}

// UserPatch is a self-service profile update. Nil fields are unchanged.
type UserPatch struct {
	Name        *string `json:"name"`
	AccountName *string `json:"accountName"`
	Bio         *string `json:"bio"`
	WebsiteURL  *string `json:"websiteUrl"`
	GithubURL   *string `json:"githubUrl"`
	XURL        *string `json:"xUrl"`
}
