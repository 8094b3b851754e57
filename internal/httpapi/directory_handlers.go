package httpapi

import "net/http"

// The directory handlers are intentionally thin: response shaping over read
// queries. The permission gate in front of them is the interesting part.

func (a *API) handleRoles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	roles, err := a.directory.Roles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"roles": roles, "total": len(roles)})
}

func (a *API) handleResources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	resources, err := a.directory.Resources(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": resources, "total": len(resources)})
}

func (a *API) handleBranches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	branches, err := a.directory.Branches(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"branches": branches, "total": len(branches)})
}

func (a *API) handleLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	locations, err := a.directory.Locations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": locations, "total": len(locations)})
}
