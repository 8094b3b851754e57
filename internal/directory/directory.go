// Package directory exposes read access to the branch/location hierarchy and
// the administrative catalog tables. These are the thin collaborators behind
// the resource-protected endpoints; the interesting behavior lives in the
// auth gate in front of them.
package directory

import (
	"context"
	"time"
)

// Record is a named catalog row (a role or a protectable resource).
type Record struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Branch is a physical branch within a township.
type Branch struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Township string `json:"township"`
	City     string `json:"city"`
	State    string `json:"state"`
}

// Location is one row of the state/city/township hierarchy.
type Location struct {
	State    string `json:"state"`
	City     string `json:"city"`
	Township string `json:"township"`
}

// Store describes the read queries the HTTP layer serves.
type Store interface {
	Roles(ctx context.Context) ([]Record, error)
	Resources(ctx context.Context) ([]Record, error)
	Branches(ctx context.Context) ([]Branch, error)
	Locations(ctx context.Context) ([]Location, error)
}
