// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/app/system/respond"
)

// Handler serves the identity of the current session.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

type meUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccountName string `json:"accountName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

type meResponse struct {
	IsAuthenticated bool    `json:"isAuthenticated"`
	User            *meUser `json:"user"`
}

// ServeMe returns the caller's authentication status and identity.
//
//	{ "isAuthenticated": true, "user": { "id": "...", "name": "...", "role": "..." } }
//
// Anonymous callers get isAuthenticated false and a null user. The answer
// depends on the cookie, so it is never cached.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	respond.CacheControl(w, true)

	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.JSON(w, http.StatusOK, meResponse{})
		return
	}
	respond.JSON(w, http.StatusOK, meResponse{
		IsAuthenticated: true,
		User: &meUser{
			ID:          u.ID,
			Name:        u.Name,
			AccountName: u.AccountName,
			Email:       u.Email,
			Role:        u.Role,
		},
	})
}
