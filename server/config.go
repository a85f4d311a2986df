package server

import (
	"fmt"

	"github.com/kbukum/bg/auth"
	"github.com/kbukum/bg/security"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string             `yaml:"host" mapstructure:"host"`
	Port         int                `yaml:"port" mapstructure:"port"`
	ReadTimeout  int                `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int                `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds, bounds capture-mode launches
	IdleTimeout  int                `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	MaxBodySize  string             `yaml:"max_body_size" mapstructure:"max_body_size"` // e.g. "1MB"
	RateLimit    int                `yaml:"rate_limit" mapstructure:"rate_limit"`       // launches per minute per caller, 0 = off
	Auth         auth.Config        `yaml:"auth" mapstructure:"auth"`
	TLS          security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 7411
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 300
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
	c.Auth.ApplyDefaults()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must be non-negative (got: %d)", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("server.write_timeout must be non-negative (got: %d)", c.WriteTimeout)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("server.idle_timeout must be non-negative (got: %d)", c.IdleTimeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must be non-negative (got: %d)", c.RateLimit)
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("server.tls: %w", err)
	}
	if err := c.Auth.Validate(c.Host); err != nil {
		return fmt.Errorf("server.%w", err)
	}
	return nil
}
