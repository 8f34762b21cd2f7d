package config

import (
	"strings"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

// ServiceName prefixes the service's environment variables (PRODUCT_SERVER_PORT, ...).
const ServiceName = "product"

type Config struct {
	HTTPServer config.HTTPConfig     `koanf:"server"`
	Log        config.LogConfig      `koanf:"log"`
	PProf      config.PProfConfig    `koanf:"pprof"`
	Metrics    config.MetricsConfig  `koanf:"metrics"`
	Shutdown   config.ShutdownConfig `koanf:"shutdown"`
	Store      StoreConfig           `koanf:"store"`
}

// StoreConfig controls the in-memory catalogue.
type StoreConfig struct {
	// Seed loads the three starter products on startup.
	Seed bool `koanf:"seed"`
}

// Defaults returns the built-in configuration; a bare start listens on port 3000.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":               3000,
		"server.maxheaderbytes":     1 << 20,
		"server.timeout.read":       "5s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "60s",
		"server.timeout.readheader": "2s",
		"log.level":                 "info",
		"pprof.enabled":             false,
		"pprof.addr":                "localhost:6060",
		"metrics.enabled":           true,
		"metrics.namespace":         "product_catalog",
		"shutdown.timeout":          "10s",
		"store.seed":                true,
	}
}

// Load reads the configuration from defaults, config.yaml, .env and PRODUCT_* variables.
func Load() (*Config, error) {
	return configloader.Load[*Config](ServiceName, Defaults())
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Metrics.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString("\n--- Store ---\n")
	if c.Store.Seed {
		b.WriteString("  seed: true\n")
	} else {
		b.WriteString("  seed: false\n")
	}
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}
