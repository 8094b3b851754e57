// Command seed provisions role grants and the admin role binding. Upgrade
// builds the full admin grant matrix over the resources catalog; both
// directions are safe to re-run.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"poly.org/internal/config"
	"poly.org/internal/directory"
	"poly.org/internal/rbac"
)

const adminRole = "role_admin"

var actions = []string{"DELETE", "GET", "POST", "PUT"}

func main() {
	direction := flag.String("type", "upgrade", "upgrade or downgrade")
	flag.Parse()

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sql.Open("pgx", settings.DSN())
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch *direction {
	case "upgrade":
		if err := upgrade(ctx, db, settings.AdminUsername); err != nil {
			log.Fatalf("upgrade: %v", err)
		}
		log.Println("Policy seeded")
	case "downgrade":
		if err := downgrade(ctx, db); err != nil {
			log.Fatalf("downgrade: %v", err)
		}
		log.Println("Policy removed")
	default:
		log.Fatalf("unknown seed type %q", *direction)
	}
}

func upgrade(ctx context.Context, db *sql.DB, adminUsername string) error {
	resources, err := directory.NewPGStore(db).ResourceNames(ctx)
	if err != nil {
		return err
	}
	if len(resources) == 0 {
		log.Fatal("resources catalog is empty; load it before seeding policy")
	}

	grants := make([][]string, 0, len(resources)*len(actions)+2)
	for _, resource := range resources {
		for _, action := range actions {
			grants = append(grants, []string{adminRole, resource, action})
		}
	}
	grants = append(grants,
		[]string{adminRole, "locations", "GET"},
		[]string{adminRole, "resources", "GET"},
	)

	store, err := rbac.New(ctx, db)
	if err != nil {
		return err
	}
	if err := store.AddGrants(grants); err != nil {
		return err
	}
	return store.AssignRole(adminUsername, adminRole)
}

func downgrade(ctx context.Context, db *sql.DB) error {
	return rbac.NewAdapter(db).DropTable(ctx)
}
