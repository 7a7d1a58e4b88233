package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/gocatalog/pkg/config"
	"github.com/abgdnv/gocatalog/pkg/config/configloader"
)

const ServiceName = "catalog"

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Cache      config.CacheConfig      `koanf:"cache"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Events     config.EventsConfig     `koanf:"events"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
}

// Defaults are applied below config.yaml and the environment.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":                     8080,
		"server.maxheaderbytes":           1 << 20,
		"server.timeout.read":             10 * time.Second,
		"server.timeout.write":            10 * time.Second,
		"server.timeout.idle":             60 * time.Second,
		"server.timeout.readheader":       5 * time.Second,
		"database.driver":                 config.DriverPostgres,
		"database.timeout":                5 * time.Second,
		"database.maxconns":               10,
		"database.migrationspath":         "migrations",
		"log.level":                       "info",
		"grpc.enabled":                    true,
		"grpc.port":                       "9090",
		"grpc.requesttimeout":             5 * time.Second,
		"shutdown.timeout":                15 * time.Second,
		"cache.ttl":                       5 * time.Minute,
		"cache.timeout":                   500 * time.Millisecond,
		"nats.timeout":                    5 * time.Second,
		"nats.maxreconnects":              10,
		"events.stream":                   "CATALOG",
		"events.maxage":                   72 * time.Hour,
		"resilience.retry.maxattempts":    5,
		"resilience.retry.initialbackoff": 500 * time.Millisecond,
		"resilience.circuitbreaker.consecutivefailures": 5,
		"resilience.circuitbreaker.errorratepercent":    50,
		"resilience.circuitbreaker.opentimeout":         10 * time.Second,
	}
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())

	b.WriteString("\n--- Database Configuration ---\n")
	b.WriteString(fmt.Sprintf("  database.driver: %s\n", c.Database.Driver))
	b.WriteString(fmt.Sprintf("  database.url: %s\n", maskURL(c.Database.URL)))
	b.WriteString(fmt.Sprintf("  database.connect.timeout: %s\n", c.Database.Timeout))
	b.WriteString(fmt.Sprintf("  database.maxconns: %d\n", c.Database.MaxConns))
	b.WriteString(fmt.Sprintf("  database.migrationspath: %s\n", c.Database.MigrationsPath))
	b.WriteString(fmt.Sprintf("  database.migrateonstart: %t\n", c.Database.MigrateOnStart))

	b.WriteString(c.GRPC.String())
	b.WriteString(c.Cache.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Events.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Telemetry.String())

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.address: %s\n", c.PProf.Addr))

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))

	return b.String()
}

func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	// Mask the URL by replacing the username and password with "****"
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.Database,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
		&c.GRPC,
		&c.Cache,
		&c.Events,
		&c.Resilience,
		&c.Telemetry,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if c.Events.Enabled {
		if err := c.NATS.Validate(); err != nil {
			return fmt.Errorf("events are enabled: %w", err)
		}
	}
	return nil
}
