// Command migrate applies or rolls back the schema in migrations/,
// grounded in the teacher's own sql-migrate usage
// (internal/testutils.RunMigrations/RollbackMigrations).
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/iota-uz/persistsvc/internal/config"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
)

const migrationsDir = "migrations"

func main() {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the persistsvc database schema",
	}
	root.AddCommand(upCmd(), downCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(migrate.Up)
		},
	}
}

func downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recently applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(migrate.Down)
		},
	}
}

func runMigrations(direction migrate.MigrationDirection) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.DatabaseConnection)
	if err != nil {
		return err
	}
	defer db.Close()

	migrations := &migrate.FileMigrationSource{Dir: migrationsDir}
	n, err := migrate.Exec(db, "postgres", migrations, direction)
	if err != nil {
		return err
	}
	fmt.Printf("applied %d migration(s)\n", n)
	return nil
}
