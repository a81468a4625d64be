package observability

import (
	"time"

	"github.com/kbukum/gonogo/validation"
)

// Config is the `observability` config section.
type Config struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"` // OTLP HTTP host:port
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Environment string  `mapstructure:"environment"`
	// MetricsInterval is the export period, e.g. "15s".
	MetricsInterval string `mapstructure:"metrics_interval"`
}

// ApplyDefaults fills development defaults.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.MetricsInterval == "" {
		c.MetricsInterval = "15s"
	}
}

// Validate checks the section. Disabled sections always pass.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	_, err := time.ParseDuration(c.MetricsInterval)
	return validation.New().
		Required("observability.endpoint", c.Endpoint).
		Custom(c.SampleRate >= 0 && c.SampleRate <= 1, "observability.sample_rate", "must be between 0 and 1").
		Custom(err == nil, "observability.metrics_interval", "must be a duration such as 15s").
		Validate()
}

func (c *Config) interval() time.Duration {
	d, err := time.ParseDuration(c.MetricsInterval)
	if err != nil {
		return 15 * time.Second
	}
	return d
}
