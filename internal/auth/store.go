package auth

import "context"

// UserStore describes the persistence operations the auth subsystem needs.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByName(ctx context.Context, name string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, name, passwordHash string) error
}
