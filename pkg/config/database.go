package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Driver         string        `koanf:"driver"`
	URL            string        `koanf:"url"`
	Timeout        time.Duration `koanf:"timeout"`
	MaxConns       int32         `koanf:"maxconns"`
	MigrationsPath string        `koanf:"migrationspath"`
	MigrateOnStart bool          `koanf:"migrateonstart"`
}

// UsesMemory reports whether products are kept in process memory instead of PostgreSQL.
func (c *DatabaseConfig) UsesMemory() bool {
	return c.Driver == DriverMemory
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverMemory:
		return nil
	case DriverPostgres, "":
	default:
		return fmt.Errorf("unsupported database driver %q, expected %q or %q", c.Driver, DriverPostgres, DriverMemory)
	}
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if !isValidPostgresURL(c.URL) {
		return fmt.Errorf("database URL must start with 'postgres://'")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("database connect timeout must be greater than 0")
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("database max connections must not be negative: %d", c.MaxConns)
	}
	if c.MigrateOnStart && c.MigrationsPath == "" {
		return fmt.Errorf("migrations are enabled but the migrations path is not configured")
	}
	return nil
}

// isValidPostgresURL checks if the provided URL is a valid PostgreSQL URL
func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}
