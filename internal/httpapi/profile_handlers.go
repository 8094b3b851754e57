package httpapi

import (
	"net/http"
	"strings"
	"time"

	"poly.org/internal/auth"
	"poly.org/internal/rbac"
)

func (a *API) handlePermissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No access token")
		return
	}
	role, perms, err := a.rolePermissions(user.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Permission lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"role":        rbac.DisplayName(role),
		"permissions": perms,
	})
}

type updatePasswordRequest struct {
	Password string `json:"password"`
}

func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No access token")
		return
	}
	switch r.Method {
	case http.MethodGet:
		role, _, err := a.rolePermissions(user.Name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Permission lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"role":       rbac.DisplayName(role),
			"created_at": user.CreatedAt.UTC().Format(time.RFC3339),
		})
	case http.MethodPut:
		var req updatePasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Malformed JSON body")
			return
		}
		if strings.TrimSpace(req.Password) == "" {
			writeError(w, http.StatusUnprocessableEntity, "Password is required")
			return
		}
		if err := a.auth.UpdatePassword(r.Context(), user.Name, req.Password); err != nil {
			writeError(w, http.StatusInternalServerError, "Password update failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "User password is updated."})
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}
