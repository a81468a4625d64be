package experiment

import (
	"strings"

	"github.com/kbukum/gonogo/validation"
)

// DefaultCondition is the condition served when none is configured.
const DefaultCondition = 2

// Config is the `experiment` config section.
type Config struct {
	// Condition is the experimental condition for this deployment. Zero means
	// unset; conditions are numbered from 1.
	Condition int    `yaml:"condition" mapstructure:"condition"`
	PublicDir string `yaml:"public_dir" mapstructure:"public_dir"`
	ImageDir  string `yaml:"image_dir" mapstructure:"image_dir"`
	// ViewsDir, when set, replaces the embedded page template with the
	// *.tmpl files in this directory.
	ViewsDir string `yaml:"views_dir" mapstructure:"views_dir"`
	// StaticMounts maps URL prefixes to directories, e.g. /jsPsych -> jsPsych.
	StaticMounts map[string]string `yaml:"static_mounts" mapstructure:"static_mounts"`
	// RecordSession adds session_id and received_at to stored records.
	RecordSession bool `yaml:"record_session" mapstructure:"record_session"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Condition == 0 {
		c.Condition = DefaultCondition
	}
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}
	if c.ImageDir == "" {
		c.ImageDir = c.PublicDir + "/img"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	v := validation.New().
		Min("experiment.condition", c.Condition, 1).
		Required("experiment.public_dir", c.PublicDir).
		Required("experiment.image_dir", c.ImageDir)
	for prefix, dir := range c.StaticMounts {
		field := "experiment.static_mounts." + prefix
		v.Custom(strings.HasPrefix(prefix, "/") && prefix != "/", field, "prefix must start with / and not be the root").
			Required(field, dir)
	}
	return v.Validate()
}
