// Package configloader loads typed service configuration from defaults, a YAML file,
// a .env file and the process environment, in increasing order of priority.
package configloader

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	configFile = "config.yaml"
	envFile    = ".env"
)

type Validator interface {
	Validate() error
}

// Load builds a configuration of type T for the given service.
// Environment variables are expected to be prefixed with <SERVICE_NAME>_,
// e.g. CATALOG_SERVER_PORT maps to the key server.port.
func Load[T Validator](serviceName string, defaults map[string]any) (T, error) {
	var cfg T
	k := koanf.New(".")
	envPrefix := fmt.Sprintf("%s_", strings.ToUpper(serviceName))

	// 1. Built-in defaults, the lowest priority
	if len(defaults) > 0 {
		if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
			return cfg, fmt.Errorf("error loading default config: %w", err)
		}
	}

	// 2. Load configuration from yaml file
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: error loading YAML config file '%s': %v", configFile, err)
		}
	}

	// 3. Load environment variables from .env file
	envTransformer := func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(envPrefix))
		return strings.ReplaceAll(key, "_", ".")
	}
	if envFileMap, err := godotenv.Read(envFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if !strings.HasPrefix(strings.ToUpper(key), envPrefix) {
				continue
			}
			envMap[envTransformer(key)] = value
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 4. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(envPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	// 5. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 6. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
