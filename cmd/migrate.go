package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/access-bridge/internal"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateTarget   string
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.Flags().StringVar(&migrateTarget, "db", "terminal", "which database to migrate: terminal or directory")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "", "sql migrations directory (defaults to db/migrations/<db>)")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	var dbCfg internal.DatabaseConfig
	switch migrateTarget {
	case "terminal":
		dbCfg = cfg.TerminalDB
	case "directory":
		dbCfg = cfg.DirectoryDB
	default:
		return fmt.Errorf("unknown migration target %q, want terminal or directory", migrateTarget)
	}

	driver := "pgx"
	if dbCfg.Driver == "sqlite" {
		driver = "sqlite3"
	}

	dir := migrateDir
	if dir == "" {
		dir = "db/migrations/" + migrateTarget
	}

	db, err := goose.OpenDBWithDriver(driver, dbCfg.Source)
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v\n", err)
	}
	goose.SetTableName("schema_migrations")

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, db, dir); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}

	return nil
}
