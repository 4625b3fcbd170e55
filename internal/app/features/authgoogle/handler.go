// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	userstore "github.com/dalemusser/folio/internal/app/store/users"
	"github.com/dalemusser/folio/internal/app/system/auditlog"
	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	provider = "google"

	// GoogleUserInfoURL is the default profile endpoint.
	GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Handler handles Google OAuth sign-in.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
	Log        *zap.Logger

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://folio.example.com/auth/google/callback"

	// AdminEmail is created as (or promoted to) admin on sign-in when the
	// provider reports the address as verified.
	AdminEmail string

	// Endpoint and UserInfoURL default to Google's; tests point them at a
	// local server.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	audit *auditlog.Logger,
	clientID, clientSecret, baseURL, adminEmail string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:        users,
		SessionMgr:   sessionMgr,
		Audit:        audit,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		AdminEmail:   adminEmail,
		Endpoint:     google.Endpoint,
		UserInfoURL:  GoogleUserInfoURL,
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: h.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Starts the handshake by redirecting to Google's consent screen.              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		respond.JSON(w, http.StatusServiceUnavailable, respond.ErrorBody{
			Error:   "auth-unavailable",
			Message: "Google sign-in is not configured",
		})
		return
	}

	state := uuid.NewString()
	returnURL := urlutil.SafeReturn(query.Get(r, "return"), "", "/")

	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Error("session store error before OAuth redirect", zap.Error(err))
		h.redirectWithError(w, r, "internal")
		return
	}
	sess.Values[auth.StateKey] = state
	sess.Values[auth.ReturnKey] = returnURL
	if err := sess.Save(r, w); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		h.redirectWithError(w, r, "internal")
		return
	}

	dest := h.oauth2Config().AuthCodeURL(state)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("redirect_url", dest),
		zap.String("return_url", returnURL))

	http.Redirect(w, r, dest, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code, fetches the profile, creates the user on first sight     |
| and signs the session in.                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		h.Audit.SignInFailed(ctx, r, provider, "provider denied: "+errParam)
		h.redirectWithError(w, r, "google_denied")
		return
	}

	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Error("session store error during OAuth callback", zap.Error(err))
		h.redirectWithError(w, r, "internal")
		return
	}
	expected, _ := sess.Values[auth.StateKey].(string)
	returnURL, _ := sess.Values[auth.ReturnKey].(string)
	delete(sess.Values, auth.StateKey)
	delete(sess.Values, auth.ReturnKey)

	state := query.Get(r, "state")
	if state == "" || expected == "" || state != expected {
		h.Log.Warn("invalid or missing OAuth state")
		h.Audit.SignInFailed(ctx, r, provider, "state mismatch")
		h.redirectWithError(w, r, "invalid_state")
		return
	}

	code := query.Get(r, "code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.Audit.SignInFailed(ctx, r, provider, "missing code")
		h.redirectWithError(w, r, "invalid_code")
		return
	}

	exCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	token, err := h.oauth2Config().Exchange(exCtx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.Audit.SignInFailed(ctx, r, provider, "token exchange failed")
		h.redirectWithError(w, r, "token_exchange")
		return
	}

	info, err := h.fetchUserInfo(exCtx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		h.Audit.SignInFailed(ctx, r, provider, "user info unavailable")
		h.redirectWithError(w, r, "user_info")
		return
	}

	h.Log.Debug("Google user info fetched",
		zap.String("google_id", info.ID),
		zap.String("email", info.Email),
		zap.Bool("verified", info.EmailVerified))

	adminEmail := ""
	if info.EmailVerified {
		adminEmail = h.AdminEmail
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, timeouts.Short())
	defer dbCancel()

	u, created, err := h.Users.UpsertFromIdentity(dbCtx, userstore.Identity{
		ProviderID: provider + "-" + info.ID,
		Name:       info.Name,
		Email:      info.Email,
	}, adminEmail)
	if err != nil {
		h.Log.Error("failed to upsert user from identity", zap.Error(err))
		h.Audit.SignInFailed(ctx, r, provider, "user upsert failed")
		h.redirectWithError(w, r, "internal")
		return
	}
	if created {
		h.Audit.UserCreated(ctx, r, u.ID, u.Role)
	}

	err = h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:          u.ID,
		Name:        u.Name,
		AccountName: u.AccountName,
		Email:       u.Email,
		Role:        u.Role,
	})
	if err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID))
		h.redirectWithError(w, r, "session")
		return
	}

	h.Audit.SignInSuccess(ctx, r, u.ID, provider, created)
	h.Log.Info("user signed in via Google OAuth",
		zap.String("user_id", u.ID),
		zap.Bool("created", created))

	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/"), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *Handler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(h.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.ID == "" {
		return nil, errors.New("user info has no id")
	}
	return &info, nil
}

// redirectWithError sends the browser back to the app root with an error
// code the front end can show.
func (h *Handler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/?auth_error="+url.QueryEscape(code), http.StatusSeeOther)
}
