package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"poly.org/internal/auth"
	"poly.org/internal/directory"
	"poly.org/internal/obs"
	"poly.org/internal/rbac"
)

// PolicyStore is the permission-evaluation surface the gate consults. The
// decision is re-evaluated against live policy on every protected request;
// nothing is trusted from the token payload.
type PolicyStore interface {
	IsAllowed(user, resource, action string) (bool, error)
	RoleForUser(user string) (string, error)
	PermissionsForRole(role string) ([]rbac.ResourcePermissions, error)
}

// ReadyProbe checks backing-store readiness for /readyz.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	policy     PolicyStore
	directory  directory.Store
	readyProbe ReadyProbe
	version    string
}

func New(authSvc *auth.Service, policy PolicyStore, dir directory.Store, rp ReadyProbe, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       authSvc,
		policy:     policy,
		directory:  dir,
		readyProbe: rp,
		version:    version,
	}

	a.mux.HandleFunc("/login", a.handleLogin)
	a.mux.HandleFunc("/token", a.handleToken)
	a.mux.HandleFunc("/permissions/", a.handlePermissions)
	a.mux.HandleFunc("/profile/", a.handleProfile)

	a.mux.HandleFunc("/roles/", a.handleRoles)
	a.mux.HandleFunc("/resources/", a.handleResources)
	a.mux.HandleFunc("/branches/", a.handleBranches)
	a.mux.HandleFunc("/locations/", a.handleLocations)

	a.mux.HandleFunc("/version", a.handleVersion)
	a.mux.HandleFunc("/healthz", a.handleHealthz)
	a.mux.HandleFunc("/readyz", a.handleReady)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", a.handleRoot)

	return a
}

// Handler returns the full handler: gate in front of the mux, metrics around
// everything.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.withAuth(a.mux))
}

func (a *API) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": a.version})
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "poly-api",
		"version": a.version,
	})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome to Poly",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
