// Command migrate runs goose against the configured database.
//
// Usage:
//
//	migrate -cmd up
//	migrate -cmd down
//	migrate -cmd status
//	migrate -cmd up-to -version 20260115101000
//	migrate -cmd create -name add_deal_index
//	migrate -cmd validate
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/dealerhubhq/dealerhub-backend/pkg/config"
	"github.com/dealerhubhq/dealerhub-backend/pkg/migrate"
)

func main() {
	cmd := flag.String("cmd", "up", "goose command: up, down, status, up-to, create, validate")
	dir := flag.String("dir", migrate.DefaultDir, "migrations directory")
	version := flag.String("version", "", "target version for up-to")
	name := flag.String("name", "", "migration name for create")
	flag.Parse()

	if err := run(*cmd, *dir, *version, *name); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd, dir, version, name string) error {
	ctx := context.Background()

	switch cmd {
	case "validate":
		if err := migrate.ValidateDir(dir); err != nil {
			return err
		}
		fmt.Println("migrations directory is valid")
		return nil
	case "create":
		if name == "" {
			return fmt.Errorf("-name is required for create")
		}
		path, err := migrate.CreateSQLMigration(dir, name)
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	conn, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	switch cmd {
	case "up", "down", "status":
		return migrate.Run(ctx, conn, dir, cmd)
	case "up-to":
		if version == "" {
			return fmt.Errorf("-version is required for up-to")
		}
		return migrate.MigrateToVersion(ctx, conn, dir, version)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
