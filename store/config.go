package store

import (
	"time"

	"github.com/kbukum/gonogo/security"
	"github.com/kbukum/gonogo/validation"
)

// Mode controls the lifetime of the backend connection.
type Mode string

const (
	// ModePooled shares one connection pool across requests and closes it
	// at shutdown.
	ModePooled Mode = "pooled"
	// ModeSingleUse closes the connection after the first successful write.
	ModeSingleUse Mode = "single_use"
)

const (
	DefaultCollection     = "test"
	DefaultDatabase       = "gonogo"
	DefaultConnectTimeout = "10s"
)

// Config is the `store` config section.
type Config struct {
	// URI locates the document store. Empty disables persistence.
	URI            string `yaml:"uri" mapstructure:"uri"`
	Mode           Mode   `yaml:"mode" mapstructure:"mode"`
	Database       string `yaml:"database" mapstructure:"database"`
	Collection     string `yaml:"collection" mapstructure:"collection"`
	ConnectTimeout string `yaml:"connect_timeout" mapstructure:"connect_timeout"`
	// LogLevel is the SQL log level for the sqlite backend (silent|error|warn|info).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// TLS configures client TLS for the mongodb and redis backends.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModePooled
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.ConnectTimeout == "" {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks the configuration. The URI itself is not validated here:
// a bad URI disables persistence at Connect instead of failing startup.
func (c *Config) Validate() error {
	if err := c.TLS.Validate("store.tls"); err != nil {
		return err
	}
	d, err := time.ParseDuration(c.ConnectTimeout)
	return validation.New().
		OneOf("store.mode", string(c.Mode), []string{string(ModePooled), string(ModeSingleUse)}).
		Required("store.collection", c.Collection).
		Custom(err == nil && d > 0, "store.connect_timeout", "must be a positive duration such as 10s").
		OneOf("store.log_level", c.LogLevel, []string{"silent", "error", "warn", "info"}).
		Validate()
}

// Timeout returns the parsed connect timeout, falling back to the default.
func (c *Config) Timeout() time.Duration {
	if d, err := time.ParseDuration(c.ConnectTimeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultConnectTimeout)
	return d
}
