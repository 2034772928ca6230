// Package configloader fills a typed configuration from a YAML file, an optional .env file
// and prefixed environment variables, in increasing order of priority.
package configloader

import (
	"errors"
	"fmt"
	"io/fs"
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

type options struct {
	configFile string
	envFile    string
}

// Option changes where Load looks for its sources.
type Option func(*options)

// WithConfigFile overrides the default "config.yaml".
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFile = path }
}

// WithEnvFile overrides the default ".env".
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

// Load reads the configuration of serviceName into T and validates it.
// Environment variables are expected as <SERVICENAME>_<SECTION>_<KEY>, e.g. PRODUCT_DATABASE_URL.
// Keys are case-insensitive: every source is folded to lowercase, so koanf tags must be lowercase.
// Missing files are skipped; a file that exists but cannot be parsed is an error.
func Load[T Validator](serviceName string, opts ...Option) (T, error) {
	var cfg T
	o := options{configFile: "config.yaml", envFile: ".env"}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")
	prefix := strings.ToUpper(serviceName) + "_"
	toKey := func(name string) string {
		name = strings.TrimPrefix(strings.ToUpper(name), prefix)
		return strings.ReplaceAll(strings.ToLower(name), "_", ".")
	}

	if err := loadFile(k, o.configFile); err != nil {
		return cfg, err
	}
	if err := loadDotEnv(k, o.envFile, prefix, toKey); err != nil {
		return cfg, err
	}
	// system environment has the highest priority
	if err := k.Load(env.Provider(prefix, ".", toKey), nil); err != nil {
		return cfg, fmt.Errorf("error loading environment: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile merges the YAML file at path into k with its keys lowercased,
// so that an environment variable overrides a camelCase YAML key instead of sitting next to it.
func loadFile(k *koanf.Koanf, path string) error {
	fk := koanf.New(".")
	if err := fk.Load(file.Provider(path), yaml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading config file %s: %w", path, err)
	}
	values := make(map[string]any, len(fk.Keys()))
	for key, value := range fk.All() {
		values[strings.ToLower(key)] = value
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return fmt.Errorf("error loading config file %s: %w", path, err)
	}
	return nil
}

// loadDotEnv merges the prefixed variables of path into k without touching the process environment.
func loadDotEnv(k *koanf.Koanf, path, prefix string, toKey func(string) string) error {
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	values := make(map[string]any, len(vars))
	for name, value := range vars {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			values[toKey(name)] = value
		}
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}
