// Package cli implements the frack command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frackdev/frack/internal/config"
)

// Version information (set at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global flags
var (
	dbPath  string
	jsonOut bool
	noColor bool
	user    string
)

// Global configuration (loaded once at startup)
var globalConfig *config.Config

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitNotFound     = 3
	ExitUnauthorized = 4
	ExitDBError      = 5
	ExitCollision    = 6
)

var rootCmd = &cobra.Command{
	Use:   "frack",
	Short: "Ticket tracker with a Trac-compatible database",
	Long: `Frack is an issue tracker that stores its data in a Trac-compatible
SQLite database: tickets, an append-only change log, attachments, and
email-keyed user accounts.

Use "frack init" to initialize a new database.
Use "frack serve" to start the JSON API server.
Use "frack --help" to see all available commands.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	// Load global configuration at startup
	var err error
	globalConfig, err = config.Load()
	if err != nil {
		// If config file is invalid, print warning but continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: failed to load config file: %v\n", err)
		globalConfig = config.DefaultConfig()
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (default ~/.frack/frack.db)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&user, "user", "u", "", "Acting username for mutations")

	rootCmd.SetVersionTemplate(fmt.Sprintf("frack %s (%s, %s)\n", Version, shortCommit(), shortDate()))

	rootCmd.AddCommand(versionCmd)
}

// shortCommit returns the first 7 characters of the git commit hash
func shortCommit() string {
	if len(GitCommit) >= 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

// shortDate returns just the date portion of BuildDate (YYYY-MM-DD)
func shortDate() string {
	if len(BuildDate) >= 10 {
		return BuildDate[:10]
	}
	return BuildDate
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// GetDBPath returns the database path from flags, config, or default.
// Priority: flag > env > config file > default
func GetDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	// Config already handles env > file > default
	if globalConfig != nil {
		return globalConfig.DB
	}
	return "" // Will use default in db.Open
}

// GetUser returns the acting username from flags or config.
// Priority: flag > env > config file
func GetUser() string {
	if user != "" {
		return user
	}
	if globalConfig != nil {
		return globalConfig.DefaultUser
	}
	return ""
}

// IsJSON returns whether JSON output is requested
func IsJSON() bool {
	return jsonOut
}

// IsNoColor returns whether colored output should be disabled.
// Priority: flag > env > config file > default
func IsNoColor() bool {
	if noColor {
		return true
	}
	if globalConfig != nil {
		return globalConfig.NoColor
	}
	return false
}

// GetConfig returns the global configuration.
func GetConfig() *config.Config {
	if globalConfig != nil {
		return globalConfig
	}
	return config.DefaultConfig()
}

// OutputLine prints a line to stdout
func OutputLine(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// ErrorOutput prints to stderr
func ErrorOutput(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}
