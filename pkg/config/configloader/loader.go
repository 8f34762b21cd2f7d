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

type Validator interface {
	Validate() error
}

// Options controls where configuration is read from.
type Options struct {
	// Defaults is the lowest-priority layer, keyed by dotted koanf paths.
	Defaults map[string]any
	// ConfigFile is an optional YAML file.
	ConfigFile string
	// EnvFile is an optional dotenv file.
	EnvFile string
	// EnvPrefix selects process environment variables, e.g. "PRODUCT_".
	EnvPrefix string
}

// Load reads config.yaml and .env from the working directory and <SERVICE_NAME>_* variables
// from the environment, on top of the given defaults.
func Load[T Validator](serviceName string, defaults map[string]any) (T, error) {
	return LoadWith[T](Options{
		Defaults:   defaults,
		ConfigFile: "config.yaml",
		EnvFile:    ".env",
		EnvPrefix:  fmt.Sprintf("%s_", strings.ToUpper(serviceName)),
	})
}

// LoadWith layers defaults, the YAML file, the dotenv file and the process environment,
// later layers overriding earlier ones, then unmarshals and validates the result.
func LoadWith[T Validator](opts Options) (T, error) {
	var cfg T
	// Create a new Koanf instance
	k := koanf.New(".")

	// 0. Built-in defaults
	if len(opts.Defaults) > 0 {
		if err := k.Load(confmap.Provider(opts.Defaults, "."), nil); err != nil {
			return cfg, fmt.Errorf("error loading default config: %w", err)
		}
	}

	// 1. Load configuration from yaml file
	if opts.ConfigFile != "" {
		if err := k.Load(file.Provider(opts.ConfigFile), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				log.Printf("WARN: error loading YAML config file '%s': %v", opts.ConfigFile, err)
			}
		}
	}

	// 2. Load environment variables from .env file
	envTransformer := func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(opts.EnvPrefix))
		return strings.ReplaceAll(key, "_", ".")
	}
	if opts.EnvFile != "" {
		if envFileMap, err := godotenv.Read(opts.EnvFile); err == nil {
			envMap := make(map[string]any)
			for key, value := range envFileMap {
				envMap[envTransformer(key)] = value
			}
			// Load the envMap into Koanf
			if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
				log.Printf("WARN: error loading .env config: %v", err)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("WARN: error reading .env file: %v", err)
		}
	}

	// 3. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(opts.EnvPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	// 4. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 5. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
