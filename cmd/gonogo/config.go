package main

import (
	"errors"

	"github.com/kbukum/gonogo/config"
	"github.com/kbukum/gonogo/experiment"
	"github.com/kbukum/gonogo/mturk"
	"github.com/kbukum/gonogo/observability"
	"github.com/kbukum/gonogo/server"
	"github.com/kbukum/gonogo/store"
	"github.com/kbukum/gonogo/version"
)

const serviceName = "gonogo"

// Config is the complete application configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Store         store.Config         `yaml:"store" mapstructure:"store"`
	Experiment    experiment.Config    `yaml:"experiment" mapstructure:"experiment"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	MTurk         mturk.Config         `yaml:"mturk" mapstructure:"mturk"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.Experiment.ApplyDefaults()
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
	c.MTurk.ApplyDefaults()
}

// Validate reports the problems of every section at once.
func (c *Config) Validate() error {
	return errors.Join(
		c.ServiceConfig.Validate(),
		c.Server.Validate(),
		c.Store.Validate(),
		c.Experiment.Validate(),
		c.Observability.Validate(),
		c.MTurk.Validate(),
	)
}

// loadConfig reads config.yml, .env and the environment. MONGODB_URI and
// PORT are honoured for platform compatibility.
func loadConfig(opts *rootOptions) (*Config, error) {
	cfg := &Config{}
	err := config.LoadConfig(serviceName, cfg,
		config.WithConfigFile(opts.ConfigFile),
		config.WithEnvFile(opts.EnvFile),
		config.WithEnvAlias("store.uri", "MONGODB_URI"),
		config.WithEnvAlias("server.port", "PORT"),
	)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
