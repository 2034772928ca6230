package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// GrpcClientConfig configures a connection to the product gRPC service.
type GrpcClientConfig struct {
	// Addr is host:port of the target.
	Addr string `koanf:"addr"`
	// Timeout bounds every call that has no sooner deadline of its own.
	Timeout    time.Duration    `koanf:"timeout"`
	Resilience ResilienceConfig `koanf:"resilience"`
}

// String returns a string representation of the gRPC client configuration.
func (c *GrpcClientConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- gRPC Client ---\n")
	fmt.Fprintf(&b, "  addr: %s\n", c.Addr)
	fmt.Fprintf(&b, "  timeout: %s\n", c.Timeout)
	b.WriteString(c.Resilience.String())
	return b.String()
}

func (c *GrpcClientConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("gRPC address is not configured")
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid gRPC address %q: %w", c.Addr, err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("gRPC timeout is not configured")
	}
	return c.Resilience.Validate()
}
