// Package augment turns a decoded image into one randomized training sample: crop and resize,
// optional mirror, HSV jitter, blur and noise, ending in the normalized planar layout.
package augment

import (
	"image"
	"math/rand/v2"

	"github.com/pkg/errors"

	"go.viam.com/framekit/rimage"
	"go.viam.com/framekit/vision/objectdetection"
)

// Params fully describes one augmentation. Augment is deterministic given the source and Params.
type Params struct {
	// Width and Height are the output dimensions.
	Width, Height int
	// Crop is the source region to sample; it may extend past the source bounds. The zero
	// rectangle selects the whole source.
	Crop image.Rectangle
	Flip bool
	// Hue is a shift in hue periods; Saturation and Exposure are multipliers (1 keeps them).
	Hue, Saturation, Exposure float64
	// Noise is the standard deviation of additive Gaussian noise, clamped to [0, 127].
	Noise int
	// Blur selects the blur kernel; see rimage.BlurKernelSize. 0 disables blurring.
	Blur int
	// Boxes are ground-truth boxes in output-normalized coordinates. With Blur equal to
	// rimage.BoxPreservingBlur they are kept sharp. A box with X == 0 ends the list.
	Boxes     []objectdetection.Box
	NoiseSeed uint64
}

// DefaultParams returns Params that only resize to w x h.
func DefaultParams(w, h int) Params {
	return Params{Width: w, Height: h, Saturation: 1, Exposure: 1}
}

// NewNoiseSource returns the random source Augment draws noise from for seed.
func NewNoiseSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))
}

// Augment produces the planar sample described by p from src. Every step works on a fresh buffer;
// src is never modified.
func Augment(src *rimage.Native, p Params) (out *rimage.Planar, err error) {
	const op = "Augment"
	if src == nil || !src.Valid() {
		return nil, rimage.NewInvalidInputError(op, "nil or empty source image")
	}
	if p.Width < 1 || p.Height < 1 {
		return nil, rimage.NewInvalidInputError(op, "non-positive output size %dx%d", p.Width, p.Height)
	}
	defer func() {
		if r := recover(); r != nil {
			err = rimage.NewInternalError(op, errors.Errorf("panic while augmenting image (%dx%d): %v", p.Width, p.Height, r))
		}
	}()

	rect := p.Crop
	if rect.Empty() {
		rect = src.Bounds()
	}
	sized, err := rimage.CropResize(src, rect, p.Width, p.Height)
	if err != nil {
		return nil, errors.Wrap(err, "crop")
	}

	if p.Flip {
		if sized, err = rimage.FlipHorizontal(sized); err != nil {
			return nil, errors.Wrap(err, "flip")
		}
	}

	if sized, err = rimage.JitterHSV(sized, p.Hue, p.Saturation, p.Exposure); err != nil {
		return nil, errors.Wrap(err, "hsv")
	}

	if sized, err = blur(sized, p.Blur, p.Boxes); err != nil {
		return nil, errors.Wrap(err, "blur")
	}

	if p.Noise != 0 {
		if sized, err = rimage.AddGaussianNoise(sized, p.Noise, NewNoiseSource(p.NoiseSeed)); err != nil {
			return nil, errors.Wrap(err, "noise")
		}
	}

	return rimage.ToPlanar(sized)
}

func blur(img *rimage.Native, param int, boxes []objectdetection.Box) (*rimage.Native, error) {
	ksize, err := rimage.BlurKernelSize(param)
	if err != nil || ksize == 0 {
		return img, err
	}
	blurred, err := rimage.GaussianBlur(img, ksize)
	if err != nil {
		return nil, err
	}
	if param != rimage.BoxPreservingBlur || len(boxes) == 0 {
		return blurred, nil
	}
	regions := make([]image.Rectangle, 0, len(boxes))
	for _, b := range boxes {
		if b.X == 0 {
			break
		}
		regions = append(regions, b.Rect(img.Width(), img.Height()))
	}
	return rimage.BlurOutsideBoxes(blurred, img, regions)
}
