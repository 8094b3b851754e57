package rbac

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// ErrNoRoleAssigned indicates the user has no role binding; with no role
// there is nothing to grant, so evaluation denies.
var ErrNoRoleAssigned = errors.New("rbac: no role assigned")

// ResourcePermissions summarizes the actions a role may perform on one
// resource. Returned sorted so responses stay deterministic.
type ResourcePermissions struct {
	Resource string   `json:"resource"`
	Actions  []string `json:"actions"`
}

// Store is the policy store and permission evaluator: a casbin enforcer over
// the fixed model with rules persisted in Postgres. The full rule set is
// loaded into memory at construction; writes go through the enforcer, which
// updates the in-memory model and the adapter in the same call, so a process
// never evaluates against policy staler than its own last write.
type Store struct {
	enforcer *casbin.SyncedEnforcer
	adapter  *Adapter
}

// New builds the store, creating the rule table when missing and loading the
// persisted policy.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	adapter := NewAdapter(db)
	if err := adapter.EnsureTable(ctx); err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	return &Store{enforcer: enforcer, adapter: adapter}, nil
}

// IsAllowed decides whether the user may perform action on resource. Match
// is exact-string on both; no wildcards, no hierarchy, deny-by-default.
func (s *Store) IsAllowed(user, resource, action string) (bool, error) {
	return s.enforcer.Enforce(user, resource, action)
}

// RoleForUser returns the role bound to the user. The store is structurally
// many-to-many, but the system treats the role as singular: results are
// sorted and the first is returned so extra bindings behave
// deterministically instead of depending on rule order.
func (s *Store) RoleForUser(user string) (string, error) {
	roles, err := s.enforcer.GetRolesForUser(user)
	if err != nil {
		return "", err
	}
	if len(roles) == 0 {
		return "", ErrNoRoleAssigned
	}
	sort.Strings(roles)
	return roles[0], nil
}

// PermissionsForRole groups the role's grants by resource. A role with zero
// grants yields an empty slice, not an error.
func (s *Store) PermissionsForRole(role string) ([]ResourcePermissions, error) {
	policies, err := s.enforcer.GetFilteredNamedPolicy("p", 0, role)
	if err != nil {
		return nil, err
	}
	byResource := make(map[string][]string)
	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		byResource[policy[1]] = append(byResource[policy[1]], policy[2])
	}
	resources := make([]string, 0, len(byResource))
	for resource := range byResource {
		resources = append(resources, resource)
	}
	sort.Strings(resources)

	result := make([]ResourcePermissions, 0, len(resources))
	for _, resource := range resources {
		actions := byResource[resource]
		sort.Strings(actions)
		result = append(result, ResourcePermissions{Resource: resource, Actions: actions})
	}
	return result, nil
}

// AddGrants inserts (role, resource, action) rules, skipping ones that
// already exist.
func (s *Store) AddGrants(rules [][]string) error {
	_, err := s.enforcer.AddNamedPoliciesEx("p", rules)
	return err
}

// RemoveGrant deletes a single (role, resource, action) rule.
func (s *Store) RemoveGrant(role, resource, action string) error {
	_, err := s.enforcer.RemoveNamedPolicy("p", role, resource, action)
	return err
}

// AssignRole binds the user to a role. Re-assigning an existing binding is a
// no-op.
func (s *Store) AssignRole(user, role string) error {
	_, err := s.enforcer.AddRoleForUser(user, role)
	return err
}

// Reload re-reads the persisted rule set, picking up writes made by other
// processes.
func (s *Store) Reload() error {
	return s.enforcer.LoadPolicy()
}

// DropPolicyTable removes persisted policy entirely. Seed downgrade only.
func (s *Store) DropPolicyTable(ctx context.Context) error {
	return s.adapter.DropTable(ctx)
}

// DisplayName strips the role prefix for client-facing payloads, e.g.
// "role_admin" becomes "admin".
func DisplayName(role string) string {
	if _, name, ok := strings.Cut(role, "_"); ok {
		return name
	}
	return role
}
