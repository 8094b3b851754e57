package directory

import (
	"context"
	"database/sql"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Roles(ctx context.Context) ([]Record, error) {
	return s.records(ctx, `select name, created_at, updated_at from roles order by name`)
}

func (s *PGStore) Resources(ctx context.Context) ([]Record, error) {
	return s.records(ctx, `select name, created_at, updated_at from resources order by name`)
}

// ResourceNames lists just the catalog names; the seeder builds the admin
// grant matrix from it.
func (s *PGStore) ResourceNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `select name from resources order by name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *PGStore) Branches(ctx context.Context) ([]Branch, error) {
	rows, err := s.db.QueryContext(ctx, `
		select b.name, b.address, t.name, c.name, st.name
		from branches b
		join townships t on t.id = b.township_id
		join cities c on c.id = t.city_id
		join states st on st.id = c.state_id
		order by b.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.Name, &b.Address, &b.Township, &b.City, &b.State); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func (s *PGStore) Locations(ctx context.Context) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		select st.name, c.name, t.name
		from townships t
		join cities c on c.id = t.city_id
		join states st on st.id = c.state_id
		order by st.name, c.name, t.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.State, &l.City, &l.Township); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (s *PGStore) records(ctx context.Context, query string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Name, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
