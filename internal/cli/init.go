package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frackdev/frack/internal/db"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing database")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize frack for first-time use",
	Long: `Initialize frack by creating the ~/.frack/ directory and database.

This command:
- Creates ~/.frack/ directory if it doesn't exist
- Creates frack.db with the database schema
- Runs any pending migrations

Use --force to overwrite an existing database.`,
	RunE: runInit,
}

type initResult struct {
	Database string `json:"database"`
	Created  bool   `json:"created"`
	Schema   int64  `json:"schema_version"`
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetDBPath()

	if db.Exists(path) && !initForce {
		displayPath := path
		if displayPath == "" {
			displayPath = db.DefaultDBPath
		}
		return fmt.Errorf("database already exists at %s (use --force to overwrite)", displayPath)
	}

	if initForce && db.Exists(path) {
		if err := db.Delete(path); err != nil {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}

	database, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := database.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	if IsJSON() {
		result := initResult{
			Database: database.Path(),
			Created:  true,
			Schema:   version,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	OutputLine("Initialized frack database at %s", database.Path())
	OutputLine("Schema version: %d", version)
	return nil
}
