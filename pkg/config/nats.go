package config

import (
	"fmt"
	"strings"
	"time"
)

type NATSConfig struct {
	Url  string `koanf:"url"`
	Name string `koanf:"name"`
	// Timeout bounds the initial dial.
	Timeout time.Duration `koanf:"timeout"`
	// MaxReconnects is the number of reconnect attempts after a lost connection; -1 retries forever.
	MaxReconnects int `koanf:"maxreconnects"`
}

// String returns a string representation of the NATS configuration.
func (c *NATSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", c.Url))
	b.WriteString(fmt.Sprintf("  name: %s\n", c.Name))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  maxreconnects: %d\n", c.MaxReconnects))
	return b.String()
}

func (c *NATSConfig) Validate() error {
	if c.Url == "" {
		return fmt.Errorf("NATS URL is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("nats dial timeout is not configured")
	}
	if c.MaxReconnects < -1 {
		return fmt.Errorf("nats maxreconnects must be -1 or greater, got %d", c.MaxReconnects)
	}
	return nil
}
