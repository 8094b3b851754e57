package rbac

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
)

const ruleColumns = 6

var _ persist.Adapter = (*Adapter)(nil)
var _ persist.BatchAdapter = (*Adapter)(nil)

// Adapter persists casbin p/g rules in the casbin_rule table. Batch inserts
// run in a single transaction so concurrent readers never observe a
// half-applied grant set, and the unique constraint plus ON CONFLICT DO
// NOTHING makes grant insertion idempotent.
type Adapter struct {
	db *sql.DB
}

func NewAdapter(db *sql.DB) *Adapter {
	return &Adapter{db: db}
}

// EnsureTable creates the policy table when it does not exist yet.
func (a *Adapter) EnsureTable(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, `
		create table if not exists casbin_rule (
			id bigserial primary key,
			ptype text not null,
			v0 text not null default '',
			v1 text not null default '',
			v2 text not null default '',
			v3 text not null default '',
			v4 text not null default '',
			v5 text not null default '',
			unique (ptype, v0, v1, v2, v3, v4, v5)
		)
	`)
	return err
}

// DropTable removes the policy table. Used by seed downgrade only.
func (a *Adapter) DropTable(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, `drop table if exists casbin_rule`)
	return err
}

// LoadPolicy reads the full rule set into the in-memory model.
func (a *Adapter) LoadPolicy(m model.Model) error {
	rows, err := a.db.Query(`select ptype, v0, v1, v2, v3, v4, v5 from casbin_rule order by id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ptype string
		values := make([]string, ruleColumns)
		if err := rows.Scan(&ptype, &values[0], &values[1], &values[2], &values[3], &values[4], &values[5]); err != nil {
			return err
		}
		if err := persist.LoadPolicyLine(ruleLine(ptype, values), m); err != nil {
			return err
		}
	}
	return rows.Err()
}

// SavePolicy rewrites the table from the in-memory model.
func (a *Adapter) SavePolicy(m model.Model) error {
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`delete from casbin_rule`); err != nil {
		return err
	}
	for _, sec := range []string{"p", "g"} {
		for ptype, ast := range m[sec] {
			for _, rule := range ast.Policy {
				if err := insertRule(tx, ptype, rule); err != nil {
					return err
				}
			}
		}
	}
	return tx.Commit()
}

func (a *Adapter) AddPolicy(sec, ptype string, rule []string) error {
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := insertRule(tx, ptype, rule); err != nil {
		return err
	}
	return tx.Commit()
}

// AddPolicies inserts all rules or none of them.
func (a *Adapter) AddPolicies(sec, ptype string, rules [][]string) error {
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, rule := range rules {
		if err := insertRule(tx, ptype, rule); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (a *Adapter) RemovePolicy(sec, ptype string, rule []string) error {
	padded := padRule(rule)
	_, err := a.db.Exec(
		`delete from casbin_rule where ptype=$1 and v0=$2 and v1=$3 and v2=$4 and v3=$5 and v4=$6 and v5=$7`,
		ptype, padded[0], padded[1], padded[2], padded[3], padded[4], padded[5],
	)
	return err
}

// RemovePolicies removes all rules or none of them.
func (a *Adapter) RemovePolicies(sec, ptype string, rules [][]string) error {
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, rule := range rules {
		padded := padRule(rule)
		if _, err := tx.Exec(
			`delete from casbin_rule where ptype=$1 and v0=$2 and v1=$3 and v2=$4 and v3=$5 and v4=$6 and v5=$7`,
			ptype, padded[0], padded[1], padded[2], padded[3], padded[4], padded[5],
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (a *Adapter) RemoveFilteredPolicy(sec, ptype string, fieldIndex int, fieldValues ...string) error {
	where := []string{"ptype=$1"}
	args := []any{ptype}
	for i, v := range fieldValues {
		if v == "" {
			continue
		}
		args = append(args, v)
		where = append(where, fmt.Sprintf("v%d=$%d", fieldIndex+i, len(args)))
	}
	query := `delete from casbin_rule where ` + strings.Join(where, " and ")
	_, err := a.db.Exec(query, args...)
	return err
}

func insertRule(tx *sql.Tx, ptype string, rule []string) error {
	padded := padRule(rule)
	_, err := tx.Exec(
		`insert into casbin_rule(ptype, v0, v1, v2, v3, v4, v5)
		 values($1,$2,$3,$4,$5,$6,$7)
		 on conflict (ptype, v0, v1, v2, v3, v4, v5) do nothing`,
		ptype, padded[0], padded[1], padded[2], padded[3], padded[4], padded[5],
	)
	return err
}

func padRule(rule []string) []string {
	padded := make([]string, ruleColumns)
	copy(padded, rule)
	return padded
}

func ruleLine(ptype string, values []string) string {
	parts := []string{ptype}
	for _, v := range values {
		if v == "" {
			break
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, ", ")
}
