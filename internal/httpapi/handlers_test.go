package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"poly.org/internal/auth"
	"poly.org/internal/rbac"
)

func TestPermissionsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)

	rr := env.get("/permissions/", token, "aung")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var body struct {
		Role        string                     `json:"role"`
		Permissions []rbac.ResourcePermissions `json:"permissions"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Role != "admin" {
		t.Fatalf("role = %q, want admin", body.Role)
	}
	if len(body.Permissions) != 1 || body.Permissions[0].Resource != "roles" {
		t.Fatalf("permissions = %+v", body.Permissions)
	}
}

func TestPermissionsWithoutRole(t *testing.T) {
	env := newTestEnv(t)

	// thiri has no role binding: empty summary, not an error.
	thiriToken, _, err := issueFor(env, "thiri")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rr := env.get("/permissions/", thiriToken, "thiri")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var body struct {
		Role        string                     `json:"role"`
		Permissions []rbac.ResourcePermissions `json:"permissions"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Role != "" || len(body.Permissions) != 0 {
		t.Fatalf("expected empty role and permissions, got %+v", body)
	}
}

func TestProfileGet(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)

	rr := env.get("/profile/", token, "aung")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["name"] != "aung" || body["email"] != "aung@example.com" || body["role"] != "admin" {
		t.Fatalf("unexpected profile: %v", body)
	}
}

func TestProfileUpdatePassword(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)

	req := httptest.NewRequest(http.MethodPut, "/profile/", strings.NewReader(`{"password":"next-passwd"}`))
	req.Header.Set(authHeader, bearerPrefix+token)
	req.Header.Set(usernameHeader, "aung")
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if err := auth.VerifyPassword(env.users.users["aung"].PasswordHash, "next-passwd"); err != nil {
		t.Fatalf("new password does not verify: %v", err)
	}

	req = httptest.NewRequest(http.MethodPut, "/profile/", strings.NewReader(`{"password":""}`))
	req.Header.Set(authHeader, bearerPrefix+token)
	req.Header.Set(usernameHeader, "aung")
	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

// issueFor mints an access token for the named user through the login flow
// machinery without credentials, for gate-focused tests.
func issueFor(env *testEnv, name string) (string, string, error) {
	user := env.users.users[name]
	svc := env.api.auth
	pair, err := svc.IssueTokens(user)
	if err != nil {
		return "", "", err
	}
	return pair.AccessToken, pair.RefreshToken, nil
}
