package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// maxShutdownTimeout caps how long a drain may take before the process is killed anyway.
const maxShutdownTimeout = 5 * time.Minute

// ShutdownConfig bounds how long servers may drain on exit.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the ShutdownConfig.
func (c *ShutdownConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Shutdown ---\n")
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 || c.Timeout > maxShutdownTimeout {
		return fmt.Errorf("invalid shutdown timeout: %v (must be in (0, %v])", c.Timeout, maxShutdownTimeout)
	}
	return nil
}

// DrainContext returns a context that expires after the configured timeout.
// It is detached from any parent so a cancelled run context does not cut the drain short.
func (c *ShutdownConfig) DrainContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.Timeout)
}
