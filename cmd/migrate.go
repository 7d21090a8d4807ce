package cmd

import (
	"fmt"
	"strings"

	"github.com/killallgit/digest-api/internal/database"
	"github.com/killallgit/digest-api/internal/models"
	"github.com/killallgit/digest-api/pkg/config"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage the database schema of the Video Digest API.

The schema is derived from the registered models. Running up applies
any missing tables, columns, and indexes; status lists the tables the
application expects and whether they exist.

Available subcommands:
  up      - Apply schema changes
  status  - Show current schema status`,
}

// migrateUpCmd applies pending schema changes
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply schema changes",
	Long: `Apply schema changes for all registered models.

Missing tables, columns, and indexes are created. Existing data is
left untouched.`,
	RunE: runMigrateUp,
}

// migrateStatusCmd shows schema status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema status",
	Long:  `Display which of the expected tables exist in the database.`,
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func openDatabase() (*database.DB, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return err
	}

	fmt.Println("Schema is up to date")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	fmt.Println("Database Schema Status")
	fmt.Println(strings.Repeat("=", 50))

	migrator := db.DB.Migrator()
	for _, model := range models.AllModels() {
		state := "missing"
		if migrator.HasTable(model) {
			state = "present"
		}
		fmt.Printf("  %-20T %s\n", model, state)
	}

	return nil
}
