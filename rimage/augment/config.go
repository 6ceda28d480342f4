package augment

import (
	"github.com/pkg/errors"

	"go.viam.com/framekit/rimage"
	"go.viam.com/framekit/utils"
)

// Config holds the randomization ranges a Sampler draws Params from.
type Config struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
	// Jitter is the fraction of the source size each crop edge may move by.
	Jitter float64 `json:"jitter" yaml:"jitter"`
	// Hue is the maximum absolute hue shift in periods.
	Hue float64 `json:"hue" yaml:"hue"`
	// Saturation and Exposure are the maximum scale factors; 0 or 1 disables them.
	Saturation float64 `json:"saturation" yaml:"saturation"`
	Exposure   float64 `json:"exposure" yaml:"exposure"`
	Flip       bool    `json:"flip" yaml:"flip"`
	// Blur enables random blurring; values above 1 set the kernel of the strong variant.
	Blur          int `json:"blur" yaml:"blur"`
	GaussianNoise int `json:"gaussian_noise" yaml:"gaussian_noise"`
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
	if cfg.Jitter < 0 || cfg.Jitter >= 0.5 {
		return utils.NewConfigValidationError(path, errors.Errorf("jitter must be in [0, 0.5), got %v", cfg.Jitter))
	}
	if cfg.Hue < 0 || cfg.Hue > 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("hue must be in [0, 1], got %v", cfg.Hue))
	}
	if cfg.Saturation != 0 && cfg.Saturation < 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("saturation must be 0 or at least 1, got %v", cfg.Saturation))
	}
	if cfg.Exposure != 0 && cfg.Exposure < 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("exposure must be 0 or at least 1, got %v", cfg.Exposure))
	}
	if cfg.Blur < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("blur must not be negative, got %d", cfg.Blur))
	}
	if cfg.GaussianNoise < 0 || cfg.GaussianNoise > rimage.MaxNoiseSigma {
		return utils.NewConfigValidationError(path,
			errors.Errorf("gaussian_noise must be in [0, %d], got %d", rimage.MaxNoiseSigma, cfg.GaussianNoise))
	}
	return nil
}
