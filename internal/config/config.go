// Package config holds the catalog service configuration.
package config

import (
	"strings"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig      `koanf:"server"`
	Storage    config.StorageConfig   `koanf:"storage"`
	Log        config.LogConfig       `koanf:"log"`
	PProf      config.PProfConfig     `koanf:"pprof"`
	Shutdown   config.ShutdownConfig  `koanf:"shutdown"`
	Telemetry  config.TelemetryConfig `koanf:"telemetry"`
}

// Defaults returns the built-in configuration: port 3000 and the products.json file store.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":               3000,
		"server.maxHeaderBytes":     1 << 20,
		"server.timeout.read":       "5s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "120s",
		"server.timeout.readHeader": "2s",
		"storage.driver":            config.StorageDriverFile,
		"storage.file.path":         "products.json",
		"storage.database.timeout":  "5s",
		"log.level":                 "info",
		"pprof.enabled":             false,
		"pprof.addr":                "localhost:6060",
		"shutdown.timeout":          "5s",

		"telemetry.traces.enabled":           false,
		"telemetry.traces.otlphttp.endpoint": "localhost:4318",
		"telemetry.traces.otlphttp.insecure": true,
		"telemetry.traces.otlphttp.timeout":  "5s",
		"telemetry.metrics.enabled":          false,
		"telemetry.metrics.path":             "/metrics",
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Storage.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Telemetry.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	return nil
}
