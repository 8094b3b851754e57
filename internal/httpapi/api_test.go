package httpapi

import (
	"context"
	"sort"

	"poly.org/internal/auth"
	"poly.org/internal/directory"
	"poly.org/internal/rbac"
)

// fakeUserStore is an in-memory auth.UserStore.
type fakeUserStore struct {
	users map[string]*auth.User
}

func (s *fakeUserStore) Create(ctx context.Context, u *auth.User) error {
	s.users[u.Name] = u
	return nil
}

func (s *fakeUserStore) FindByName(ctx context.Context, name string) (*auth.User, error) {
	u, ok := s.users[name]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s *fakeUserStore) UpdatePassword(ctx context.Context, name, passwordHash string) error {
	u, ok := s.users[name]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// fakePolicy is an in-memory PolicyStore with exact-match evaluation.
type fakePolicy struct {
	roles  map[string][]string
	grants [][]string
}

func (p *fakePolicy) IsAllowed(user, resource, action string) (bool, error) {
	for _, role := range p.roles[user] {
		for _, g := range p.grants {
			if g[0] == role && g[1] == resource && g[2] == action {
				return true, nil
			}
		}
	}
	return false, nil
}

func (p *fakePolicy) RoleForUser(user string) (string, error) {
	roles := append([]string(nil), p.roles[user]...)
	if len(roles) == 0 {
		return "", rbac.ErrNoRoleAssigned
	}
	sort.Strings(roles)
	return roles[0], nil
}

func (p *fakePolicy) PermissionsForRole(role string) ([]rbac.ResourcePermissions, error) {
	byResource := make(map[string][]string)
	for _, g := range p.grants {
		if g[0] == role {
			byResource[g[1]] = append(byResource[g[1]], g[2])
		}
	}
	resources := make([]string, 0, len(byResource))
	for r := range byResource {
		resources = append(resources, r)
	}
	sort.Strings(resources)
	out := make([]rbac.ResourcePermissions, 0, len(resources))
	for _, r := range resources {
		actions := byResource[r]
		sort.Strings(actions)
		out = append(out, rbac.ResourcePermissions{Resource: r, Actions: actions})
	}
	return out, nil
}

// fakeDirectory serves fixed catalog rows.
type fakeDirectory struct{}

func (fakeDirectory) Roles(ctx context.Context) ([]directory.Record, error) {
	return []directory.Record{{Name: "role_admin"}}, nil
}

func (fakeDirectory) Resources(ctx context.Context) ([]directory.Record, error) {
	return []directory.Record{{Name: "branches"}, {Name: "roles"}}, nil
}

func (fakeDirectory) Branches(ctx context.Context) ([]directory.Branch, error) {
	return []directory.Branch{{Name: "Hlaing Branch", Township: "Hlaing", City: "Yangon", State: "Yangon"}}, nil
}

func (fakeDirectory) Locations(ctx context.Context) ([]directory.Location, error) {
	return []directory.Location{{State: "Yangon", City: "Yangon", Township: "Hlaing"}}, nil
}

var _ directory.Store = fakeDirectory{}
