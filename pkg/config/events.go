package config

import (
	"fmt"
	"strings"
	"time"
)

// EventsConfig controls publishing of product events to JetStream.
type EventsConfig struct {
	Enabled bool          `koanf:"enabled"`
	Stream  string        `koanf:"stream"`
	MaxAge  time.Duration `koanf:"maxage"`
}

// String returns a string representation of the events configuration.
func (c *EventsConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Events ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  stream: %s\n", c.Stream))
	b.WriteString(fmt.Sprintf("  maxage: %s\n", c.MaxAge))
	return b.String()
}

func (c *EventsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Stream == "" {
		return fmt.Errorf("events are enabled but the stream name is not configured")
	}
	if c.MaxAge < 0 {
		return fmt.Errorf("events max age must not be negative")
	}
	return nil
}
