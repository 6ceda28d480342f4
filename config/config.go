// Package config defines the framekit configuration file and reads it from disk.
package config

import (
	"github.com/pkg/errors"

	"go.viam.com/framekit/capture"
	"go.viam.com/framekit/logging"
	"go.viam.com/framekit/rimage/augment"
)

// Config is the top-level configuration. Capture and Augment are optional sections; each is
// validated only when present.
type Config struct {
	Capture  *capture.Config `json:"capture,omitempty" yaml:"capture,omitempty"`
	Augment  *augment.Config `json:"augment,omitempty" yaml:"augment,omitempty"`
	LogLevel string          `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	Debug    bool            `json:"debug,omitempty" yaml:"debug,omitempty"`

	ConfigFilePath string `json:"-" yaml:"-"`
}

// Ensure validates every section of the config.
func (c *Config) Ensure() error {
	if c.Capture != nil {
		if err := c.Capture.Validate("capture"); err != nil {
			return err
		}
	}
	if c.Augment != nil {
		if err := c.Augment.Validate("augment"); err != nil {
			return err
		}
	}
	if c.LogLevel != "" {
		if _, err := logging.LevelFromString(c.LogLevel); err != nil {
			return errors.Wrap(err, `error validating "log_level"`)
		}
	}
	return nil
}

// Level returns the configured log level. Debug overrides LogLevel; an empty LogLevel means INFO.
func (c *Config) Level() logging.Level {
	if c.Debug {
		return logging.DEBUG
	}
	level, err := logging.LevelFromString(c.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}
