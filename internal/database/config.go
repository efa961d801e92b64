package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"smartspend/internal/config"
)

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// postgresDSN returns the key/value PostgreSQL connection string used by gorm.
func postgresDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

// sqliteDSN makes sure the database directory exists and enables foreign keys,
// which SQLite leaves off by default.
func sqliteDSN(cfg *config.Config) (string, error) {
	path := cfg.DBPath
	if path != ":memory:" && !hasURIPrefix(path) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on", nil
}

func hasURIPrefix(path string) bool {
	return strings.HasPrefix(path, "file:")
}
