package mturk

import "github.com/kbukum/gonogo/validation"

const (
	// Region is the only region Mechanical Turk is served from.
	Region = "us-east-1"

	SandboxEndpoint    = "https://mturk-requester-sandbox.us-east-1.amazonaws.com"
	ProductionEndpoint = "https://mturk-requester.us-east-1.amazonaws.com"

	// BonusReason is shown to workers with every bonus.
	BonusReason = "Performance bonus"

	// DefaultRateLimit keeps a CSV run under the requester API throttle.
	DefaultRateLimit = 5.0
)

// Verbosity levels.
const (
	VerboseNone   = 0
	VerboseErrors = 1
	VerboseAll    = 2
)

// Config is the `mturk` config section. Empty keys fall back to the AWS
// default credential chain (AWS_ACCESS_KEY_ID, shared config, ...).
type Config struct {
	AccessKeyID     string `yaml:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" mapstructure:"secret_access_key"`
	Sandbox         bool   `yaml:"sandbox" mapstructure:"sandbox"`
	// Endpoint overrides the sandbox/production endpoint.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Verbose is 0 for no output, 1 for errors only, 2 for every action.
	// Unset means 2.
	Verbose *int `yaml:"verbose" mapstructure:"verbose"`
	DryRun  bool `yaml:"dry_run" mapstructure:"dry_run"`
	// Repeat bonuses assignments that were already bonused.
	Repeat bool `yaml:"repeat" mapstructure:"repeat"`
	// RateLimit caps API calls per second.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ApplyDefaults sets the rate limit. Verbosity stays unset so that an
// explicit 0 can be told apart; see Verbosity.
func (c *Config) ApplyDefaults() {
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
}

// Verbosity returns the configured level, VerboseAll when unset.
func (c *Config) Verbosity() int {
	if c.Verbose == nil {
		return VerboseAll
	}
	return *c.Verbose
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.New().
		Range("mturk.verbose", c.Verbosity(), VerboseNone, VerboseAll).
		Custom(c.RateLimit >= 0, "mturk.rate_limit", "must not be negative").
		Custom((c.AccessKeyID == "") == (c.SecretAccessKey == ""), "mturk.secret_access_key",
			"access_key_id and secret_access_key must be set together").
		Validate()
}

// ResolvedEndpoint returns the API endpoint for the configuration.
func (c *Config) ResolvedEndpoint() string {
	switch {
	case c.Endpoint != "":
		return c.Endpoint
	case c.Sandbox:
		return SandboxEndpoint
	default:
		return ProductionEndpoint
	}
}
