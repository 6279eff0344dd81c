// Package config provides application configuration management with support for
// environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	Store   StoreConfig
	Catalog CatalogConfig
	Merge   MergeConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 30s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	// APIKey guards mutating endpoints (mirror, merge, undo, upload).
	// Empty disables those endpoints entirely.
	APIKey string
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	// DatabasePath is the SQLite file location (default: ~/covers/covers.db).
	DatabasePath string
}

// CatalogConfig holds external catalog aggregation configuration.
type CatalogConfig struct {
	// Territories queried per search, in preference order.
	Territories []string
	// ResultLimit per territory query (default: 40).
	ResultLimit int
	// ProbeTimeout bounds each artwork dimension probe (default: 5s).
	ProbeTimeout time.Duration
}

// MergeConfig holds artist-merge configuration.
type MergeConfig struct {
	// UndoWindow is how long a merge snapshot stays undoable (default: 3s).
	UndoWindow time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dbPath := flag.String("db-path", "", "Path to the SQLite database file")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	apiKey := flag.String("api-key", "", "Bearer key for mutating endpoints")
	territories := flag.String("territories", "", "Comma-separated territory codes in preference order (default: us,au,mx,jp)")
	resultLimit := flag.String("result-limit", "", "Catalog results requested per territory (default: 40)")
	probeTimeout := flag.String("probe-timeout", "", "Artwork dimension probe timeout (default: 5s)")
	undoWindow := flag.String("undo-window", "", "Merge undo window (default: 3s)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:   getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			APIKey: getConfigValue(*apiKey, "API_KEY", ""),
		},
		Store: StoreConfig{
			DatabasePath: getConfigValue(*dbPath, "DATABASE_PATH", ""),
		},
		Catalog: CatalogConfig{
			Territories: splitTerritories(getConfigValue(*territories, "CATALOG_TERRITORIES", "us,au,mx,jp")),
			ResultLimit: getIntConfigValue(*resultLimit, "CATALOG_RESULT_LIMIT", 40),
		},
	}

	var err error
	cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	cfg.Catalog.ProbeTimeout, err = parseDurationValue(*probeTimeout, "CATALOG_PROBE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	cfg.Merge.UndoWindow, err = parseDurationValue(*undoWindow, "MERGE_UNDO_WINDOW", "3s")
	if err != nil {
		return nil, err
	}

	if err := cfg.expandDatabasePath(); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if len(c.Catalog.Territories) == 0 {
		return errors.New("at least one catalog territory is required")
	}
	if c.Catalog.ResultLimit < 1 || c.Catalog.ResultLimit > 200 {
		return fmt.Errorf("invalid result limit: %d (must be 1-200)", c.Catalog.ResultLimit)
	}
	if c.Merge.UndoWindow <= 0 {
		return errors.New("merge undo window must be positive")
	}

	if c.Store.DatabasePath == "" {
		return errors.New("database path cannot be empty after expansion")
	}

	return nil
}

// expandDatabasePath expands ~ and makes the path absolute.
// Defaults to ~/covers/covers.db.
func (c *Config) expandDatabasePath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "covers", "covers.db")

	expanded, err := expandPath(c.Store.DatabasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Store.DatabasePath = expanded
	return nil
}

// splitTerritories parses a comma-separated territory list, lowercased,
// duplicates removed, order preserved (first entry is the preferred territory).
func splitTerritories(value string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(value, ",") {
		code := strings.ToLower(strings.TrimSpace(part))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// parseDurationValue resolves flag/env/default precedence then parses the duration.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), raw, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		// Only set if not already present; real env wins over .env.
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}
