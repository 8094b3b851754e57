package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"poly.org/internal/auth"
	"poly.org/internal/rbac"
)

type tokenResponse struct {
	AccessToken string                     `json:"access_token"`
	ExpiresIn   int                        `json:"expires_in"`
	Name        string                     `json:"name"`
	Permissions []rbac.ResourcePermissions `json:"permissions"`
	Role        string                     `json:"role"`
	TokenType   string                     `json:"token_type"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed form body")
		return
	}
	// The form field is named username but carries the email address.
	email := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	user, err := a.auth.Authenticate(r.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrIncorrectCredentials):
			writeError(w, http.StatusUnauthorized, "Incorrect email or password")
		case errors.Is(err, auth.ErrUserInactive):
			writeError(w, http.StatusForbidden, "Inactive user")
		default:
			writeError(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	pair, err := a.auth.IssueTokens(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Token generation failed")
		return
	}

	role, perms, err := a.rolePermissions(user.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Permission lookup failed")
		return
	}

	// The refresh token travels only in the cookie, never in the JSON body.
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		Expires:  pair.RefreshExpiresAt,
		MaxAge:   int(a.auth.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		ExpiresIn:   int(a.auth.AccessTTL().Seconds()),
		Name:        user.Name,
		Permissions: perms,
		Role:        rbac.DisplayName(role),
		TokenType:   "Bearer",
	})
}

func (a *API) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	username := strings.TrimSpace(r.Header.Get(usernameHeader))
	if username == "" {
		writeError(w, http.StatusUnprocessableEntity, "Missing X-Username header")
		return
	}
	cookie, err := r.Cookie(refreshCookie)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		writeError(w, http.StatusUnauthorized, "No refresh token")
		return
	}

	accessToken, _, user, err := a.auth.Refresh(r.Context(), cookie.Value, username)
	if err != nil {
		a.denyAuth(w, err)
		return
	}

	role, perms, err := a.rolePermissions(user.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Permission lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(a.auth.AccessTTL().Seconds()),
		Name:        user.Name,
		Permissions: perms,
		Role:        rbac.DisplayName(role),
		TokenType:   "Bearer",
	})
}

// rolePermissions resolves the user's role and its flattened grant summary.
// A user without a role binding gets an empty role and no permissions rather
// than an error; the gate will deny their resource calls anyway.
func (a *API) rolePermissions(username string) (string, []rbac.ResourcePermissions, error) {
	role, err := a.policy.RoleForUser(username)
	if err != nil {
		if errors.Is(err, rbac.ErrNoRoleAssigned) {
			return "", []rbac.ResourcePermissions{}, nil
		}
		return "", nil, err
	}
	perms, err := a.policy.PermissionsForRole(role)
	if err != nil {
		return "", nil, err
	}
	if perms == nil {
		perms = []rbac.ResourcePermissions{}
	}
	return role, perms, nil
}
