package config

import (
	"fmt"
	"strings"
	"time"
)

type GrpcServerConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Port              string        `koanf:"port"`
	ReflectionEnabled bool          `koanf:"reflection"`
	RequestTimeout    time.Duration `koanf:"requesttimeout"`
}

// String returns a string representation of the gRPC server configuration.
func (c *GrpcServerConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- gRPC Server ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  port: %s\n", c.Port))
	b.WriteString(fmt.Sprintf("  reflection: %t\n", c.ReflectionEnabled))
	b.WriteString(fmt.Sprintf("  requesttimeout: %s\n", c.RequestTimeout))
	return b.String()
}

func (c *GrpcServerConfig) Validate() error {
	if c.Enabled && c.Port == "" {
		return fmt.Errorf("gRPC port is not configured")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("gRPC request timeout must not be negative")
	}
	return nil
}
