package config

import (
	"fmt"
	"strings"
)

// Supported snapshot drivers.
const (
	StorageDriverFile     = "file"
	StorageDriverPostgres = "postgres"
)

// StorageConfig selects where the product collection is persisted.
type StorageConfig struct {
	Driver string `koanf:"driver"`
	File   struct {
		Path string `koanf:"path"`
	} `koanf:"file"`
	Database DatabaseConfig `koanf:"database"`
}

// String returns a string representation of the storage configuration.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	switch c.Driver {
	case StorageDriverFile:
		b.WriteString(fmt.Sprintf("  file.path: %s\n", c.File.Path))
	case StorageDriverPostgres:
		b.WriteString(c.Database.String())
	}
	return b.String()
}

func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case StorageDriverFile:
		if c.File.Path == "" {
			return fmt.Errorf("storage file path is not configured")
		}
		return nil
	case StorageDriverPostgres:
		return c.Database.Validate()
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Driver)
	}
}
