package config

import (
	"github.com/kbukum/gonogo/logger"
	"github.com/kbukum/gonogo/validation"
)

// Environments a deployment may declare. "sandbox" is a pilot run against
// the MTurk sandbox with production settings otherwise.
var Environments = []string{"development", "staging", "sandbox", "production"}

// ServiceConfig holds the fields every service needs. Application configs
// embed it with `mapstructure:",squash"` and gain GetServiceConfig,
// ApplyDefaults and Validate through promotion.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the base ServiceConfig.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// IsProduction reports whether participants are being paid for this run.
func (c *ServiceConfig) IsProduction() bool {
	return c.Environment == "production"
}

// ApplyDefaults fills the environment (development, with debug on) and
// names the logger after the service.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate reports every invalid base field at once.
func (c *ServiceConfig) Validate() error {
	v := validation.New().
		Required("config.name", c.Name).
		Custom(c.Environment != "", "config.environment", "is required").
		OneOf("config.environment", c.Environment, Environments)
	if err := c.Logging.Validate(); err != nil {
		v.AddError("config.logging", err.Error())
	}
	return v.Validate()
}
