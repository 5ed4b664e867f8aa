// Package config provides configuration file and environment variable support for frack.
//
// Configuration priority (highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Config file (~/.frack/config.toml)
//  4. Built-in defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config represents the frack configuration.
type Config struct {
	// DB is the path to the database file.
	// Default: ~/.frack/frack.db
	DB string `toml:"db"`

	// Host is the address the API server binds to.
	// Default: localhost
	Host string `toml:"host"`

	// Port is the port the API server listens on.
	// Default: 1353
	Port int `toml:"port"`

	// FileRoot is the directory attachment files are stored under.
	// Default: ~/.frack/files
	FileRoot string `toml:"file_root"`

	// BaseURL is the externally visible URL prefix, used when
	// composing links in API responses.
	BaseURL string `toml:"base_url"`

	// SecureCookies marks auth cookies Secure so browsers only send
	// them over HTTPS.
	// Default: true
	SecureCookies bool `toml:"secure_cookies"`

	// NoColor disables colored output.
	// Default: false
	NoColor bool `toml:"no_color"`

	// DefaultUser is the acting username for CLI commands.
	// Used when --user flag is not specified.
	DefaultUser string `toml:"default_user"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		DB:            "", // Empty means use db.DefaultDBPath
		Host:          "localhost",
		Port:          1353,
		FileRoot:      "",
		SecureCookies: true,
		NoColor:       false,
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".frack", "config.toml")
}

// DefaultFileRoot returns the default attachment storage directory.
func DefaultFileRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "files"
	}
	return filepath.Join(home, ".frack", "files")
}

// Load loads configuration from the config file and environment variables.
// Environment variables take precedence over file settings.
// Returns default config if the config file doesn't exist.
func Load() (*Config, error) {
	return LoadFromPath(DefaultConfigPath())
}

// LoadFromPath loads configuration from a specific file path.
// Environment variables take precedence over file settings.
// Returns default config if the config file doesn't exist.
func LoadFromPath(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if _, err := toml.DecodeFile(configPath, cfg); err != nil {
				return nil, err
			}
		}
		// If file doesn't exist, just continue with defaults
	}

	// Apply environment variable overrides
	cfg.applyEnv()

	return cfg, nil
}

// applyEnv applies environment variable overrides to the config.
func (c *Config) applyEnv() {
	if db := os.Getenv("FRACK_DB"); db != "" {
		c.DB = db
	}

	if host := os.Getenv("FRACK_HOST"); host != "" {
		c.Host = host
	}

	if port := os.Getenv("FRACK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.Port = p
		}
	}

	if root := os.Getenv("FRACK_FILE_ROOT"); root != "" {
		c.FileRoot = root
	}

	if base := os.Getenv("FRACK_BASE_URL"); base != "" {
		c.BaseURL = base
	}

	// FRACK_NO_COLOR - any value means true
	if _, ok := os.LookupEnv("FRACK_NO_COLOR"); ok {
		c.NoColor = true
	}

	if user := os.Getenv("FRACK_USER"); user != "" {
		c.DefaultUser = user
	}
}

// GetFileRoot returns the attachment storage directory, using the
// default if not set.
func (c *Config) GetFileRoot() string {
	if c.FileRoot != "" {
		return c.FileRoot
	}
	return DefaultFileRoot()
}

// SampleConfig returns a sample configuration file content.
func SampleConfig() string {
	return `# Frack Configuration File
# Location: ~/.frack/config.toml
#
# Configuration priority (highest to lowest):
#   1. Command-line flags
#   2. Environment variables (FRACK_*)
#   3. This config file
#   4. Built-in defaults

# Path to the database file
# Default: ~/.frack/frack.db
# Environment: FRACK_DB
# db = "/path/to/frack.db"

# Address the API server binds to
# Default: localhost
# Environment: FRACK_HOST
# host = "localhost"

# Port the API server listens on
# Default: 1353
# Environment: FRACK_PORT
# port = 1353

# Directory attachment files are stored under
# Default: ~/.frack/files
# Environment: FRACK_FILE_ROOT
# file_root = "/path/to/files"

# Externally visible URL prefix for links in responses
# Environment: FRACK_BASE_URL
# base_url = "https://tickets.example.com"

# Mark auth cookies Secure (HTTPS only)
# Default: true
# secure_cookies = true

# Disable colored output
# Default: false
# Environment: FRACK_NO_COLOR (any value = true)
# no_color = false

# Acting username for CLI commands
# Used when --user flag is not specified
# Environment: FRACK_USER
# default_user = "alice"
`
}

// WriteConfigFile writes the sample config file to the specified path.
// Creates parent directories if needed.
func WriteConfigFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(SampleConfig()), 0644)
}
