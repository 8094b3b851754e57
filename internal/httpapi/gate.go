package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"poly.org/internal/auth"
	"poly.org/internal/obs"
)

const (
	authHeader     = "Authorization"
	bearerPrefix   = "Bearer "
	usernameHeader = "X-Username"
	refreshCookie  = "poly_refresh_token"
)

const deniedDetail = "User is not authorized to access this resource."

// Paths reachable without a bearer token. /login and /token run their own
// credential checks; the rest are operational endpoints.
var publicPaths = []string{
	"/login",
	"/token",
	"/version",
	"/healthz",
	"/readyz",
	"/metrics",
}

// Resource endpoints gated on (resource, action) grants. The resource name
// is the first path segment; the action is the HTTP method. Other
// authenticated endpoints require identity only.
var gatedResources = map[string]bool{
	"roles":     true,
	"resources": true,
	"branches":  true,
	"locations": true,
}

// withAuth is the request gate. Order is fixed: claimed identity and token
// must both be present, the token must decode with the claimed identity as
// its subject, the user behind it must still be active, and for resource
// endpoints a matching grant must exist. Every failure is terminal for the
// request.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		username := strings.TrimSpace(r.Header.Get(usernameHeader))
		if username == "" {
			obs.CountAuthDecision("header", "denied")
			writeError(w, http.StatusUnprocessableEntity, "Missing X-Username header")
			return
		}

		token, ok := extractBearerToken(r.Header.Get(authHeader))
		if !ok {
			obs.CountAuthDecision("token", "denied")
			writeError(w, http.StatusUnauthorized, "No access token")
			return
		}

		user, err := a.auth.VerifyRequest(r.Context(), token, username)
		if err != nil {
			a.denyAuth(w, err)
			return
		}

		if resource := firstPathSegment(r.URL.Path); gatedResources[resource] {
			allowed, err := a.policy.IsAllowed(user.Name, resource, r.Method)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "Permission check failed")
				return
			}
			if !allowed {
				obs.CountAuthDecision("permission", "denied")
				writeError(w, http.StatusForbidden, deniedDetail)
				return
			}
			obs.CountAuthDecision("permission", "allowed")
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), user)))
	})
}

// denyAuth maps gate failures to transport codes. Token failures stay
// distinguishable for diagnostics; an unknown user gets the same generic
// 401 to avoid account enumeration.
func (a *API) denyAuth(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrEmptyToken):
		obs.CountAuthDecision("token", "denied")
		writeError(w, http.StatusUnauthorized, "No access token")
	case errors.Is(err, auth.ErrExpiredToken):
		obs.CountAuthDecision("token", "denied")
		writeError(w, http.StatusUnauthorized, "Token has expired")
	case errors.Is(err, auth.ErrInvalidClaims):
		obs.CountAuthDecision("token", "denied")
		writeError(w, http.StatusUnauthorized, "Invalid token claims")
	case errors.Is(err, auth.ErrInvalidToken):
		obs.CountAuthDecision("token", "denied")
		writeError(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, auth.ErrUserNotFound):
		obs.CountAuthDecision("principal", "denied")
		writeError(w, http.StatusUnauthorized, "Could not validate credentials")
	case errors.Is(err, auth.ErrUserInactive):
		obs.CountAuthDecision("principal", "denied")
		writeError(w, http.StatusForbidden, "Inactive user")
	default:
		writeError(w, http.StatusInternalServerError, "Authentication error")
	}
}

func extractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerPrefix)) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

func firstPathSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
