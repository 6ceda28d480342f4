package capture

import (
	"github.com/pkg/errors"

	"go.viam.com/framekit/utils"
)

// Config describes the stream to open and the frames to produce from it.
type Config struct {
	// Path is a video file or stream URL. When empty, the webcam at Device is opened.
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Device int    `json:"device" yaml:"device"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`

	DontClose bool `json:"dont_close" yaml:"dont_close"`
	Letterbox bool `json:"letterbox" yaml:"letterbox"`

	Width    int `json:"width" yaml:"width"`
	Height   int `json:"height" yaml:"height"`
	Channels int `json:"channels" yaml:"channels"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Width == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "width")
	}
	if cfg.Height == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "height")
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("got illegal negative dimensions for width and height (%d, %d)", cfg.Width, cfg.Height))
	}
	switch cfg.Channels {
	case 0, 1, 3, 4:
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("channels must be 0, 1, 3 or 4, got %d", cfg.Channels))
	}
	if cfg.Path == "" && cfg.Device < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("device must not be negative, got %d", cfg.Device))
	}
	return nil
}

// Open opens the source cfg names.
func (cfg *Config) Open() (Source, error) {
	if cfg.Path != "" {
		return OpenVideo(cfg.Path)
	}
	return OpenWebcam(cfg.Device)
}

// Options returns the Acquirer options cfg implies.
func (cfg *Config) Options(metrics *Metrics) Options {
	return Options{Name: cfg.Name, DontClose: cfg.DontClose, Metrics: metrics}
}
