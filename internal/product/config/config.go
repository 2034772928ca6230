package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// StoreConfig selects the product store backend.
type StoreConfig struct {
	Backend string `koanf:"backend"`
}

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Store      StoreConfig             `koanf:"store"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Nats       config.NATSConfig       `koanf:"nats"`
	// Publisher guards event publishing.
	Publisher config.CircuitBreakerConfig `koanf:"publisher"`
}

// UsesPostgres reports whether products are kept in PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.Store.Backend == "" || strings.EqualFold(c.Store.Backend, StorePostgres)
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())
	b.WriteString("\n--- Store ---\n")
	fmt.Fprintf(&b, "  backend: %s\n", c.Store.Backend)
	if c.UsesPostgres() {
		b.WriteString(c.Database.String())
	}
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Nats.String())
	if c.Nats.Enabled {
		b.WriteString(c.Publisher.String())
	}
	b.WriteString(c.Shutdown.String())

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	switch strings.ToLower(c.Store.Backend) {
	case "", StorePostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store backend: %q", c.Store.Backend)
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
	if err := c.GRPC.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Nats.Validate(); err != nil {
		return err
	}
	if c.Nats.Enabled {
		if err := c.Publisher.Validate(); err != nil {
			return fmt.Errorf("publisher: %w", err)
		}
	}
	return nil
}
