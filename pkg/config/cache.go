package config

import (
	"fmt"
	"strings"
	"time"
)

// CacheConfig configures the Redis cache placed in front of product lookups.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
	Timeout  time.Duration `koanf:"timeout"`
}

// String returns a string representation of the cache configuration. The password is never printed.
func (c *CacheConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Cache ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  addr: %s\n", c.Addr))
	b.WriteString(fmt.Sprintf("  password set: %t\n", c.Password != ""))
	b.WriteString(fmt.Sprintf("  db: %d\n", c.DB))
	b.WriteString(fmt.Sprintf("  ttl: %s\n", c.TTL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("cache is enabled but redis address is not configured")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("cache ttl must be greater than 0")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("cache timeout must be greater than 0")
	}
	return nil
}
