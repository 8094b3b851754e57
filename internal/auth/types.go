package auth

import "time"

// User is a principal known to the system. Name and email are each globally
// unique. Inactive users are rejected at every gate regardless of token
// validity, so deactivation takes effect on the very next request.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenPair carries freshly issued access and refresh tokens.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
