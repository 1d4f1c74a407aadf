package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// PProfConfig enables the optional profiling listener.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- PProf ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	if c.Enabled {
		b.WriteString(fmt.Sprintf("  addr: %s\n", c.Addr))
	}
	return b.String()
}

// Validate requires a host:port address when profiling is enabled.
func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid pprof address %q: %w", c.Addr, err)
	}
	return nil
}

// ShutdownConfig bounds how long in-flight requests may take to drain.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return fmt.Sprintf("\n--- Shutdown ---\n  timeout: %s\n", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %v", c.Timeout)
	}
	return nil
}
