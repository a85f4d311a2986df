package main

import (
	"fmt"

	"github.com/kbukum/bg/config"
	"github.com/kbukum/bg/observability"
	"github.com/kbukum/bg/process"
	"github.com/kbukum/bg/server"
	"github.com/kbukum/bg/version"
)

const serviceName = "bg"

// Config is the bg configuration file.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Launcher      process.Config       `yaml:"launcher" mapstructure:"launcher"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.GetShortVersion()
	}
	c.ServiceConfig.ApplyDefaults()
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Launcher.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the sections every command uses. The server section is
// only checked by serve, so a one-shot launch never fails on auth settings.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Launcher.Validate(); err != nil {
		return err
	}
	if err := c.Observability.Validate(); err != nil {
		return err
	}
	return nil
}

// loadConfig reads the config file and BG_* variables. Only .env.bg is
// picked up from disk: anything loaded from a .env file lands in the
// environment launched children inherit.
func loadConfig(path string) (*Config, error) {
	opts := []config.LoaderOption{config.WithEnvFileNames(".env." + serviceName)}
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
