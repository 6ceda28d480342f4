package rimage

import (
	"fmt"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"

	"go.viam.com/framekit/utils"
)

// HuePeriod is the size of the hue domain jitter operates in; a shift of one full period is the
// identity.
const HuePeriod = 179

// MaxNoiseSigma bounds the standard deviation accepted by AddGaussianNoise.
const MaxNoiseSigma = 127

// JitterHSV returns a copy of src with its hue shifted by dhue periods, saturation scaled by dsat
// and value scaled by dexp. Buffers with fewer than three channels only get the exposure scale.
// The identity parameters (dhue 0, dsat 1, dexp 1) return an unchanged copy. Alpha is untouched.
func JitterHSV(src *Native, dhue, dsat, dexp float64) (out *Native, err error) {
	const op = "JitterHSV"
	if err := checkNative(op, src); err != nil {
		return nil, err
	}
	defer recoverInternal(op, &err, fmt.Sprintf("%s dhue=%g dsat=%g dexp=%g",
		dims(src.width, src.height, src.channels), dhue, dsat, dexp))

	jittered := NativeFromBuffer(src, src.Order)
	if dsat == 1 && dexp == 1 && dhue == 0 {
		return jittered, nil
	}

	c := jittered.channels
	if c < 3 {
		for y := 0; y < jittered.height; y++ {
			row := jittered.pix[y*jittered.stride : y*jittered.stride+jittered.width*c]
			for i, p := range row {
				row[i] = utils.SaturateUint8(float64(p) * dexp)
			}
		}
		return jittered, nil
	}

	r, b := 0, 2
	if jittered.Order == OrderBGR {
		r, b = 2, 0
	}
	shift := HuePeriod * dhue
	if err := utils.ParallelForEachRow(jittered.height, func(y int) {
		row := jittered.pix[y*jittered.stride : y*jittered.stride+jittered.width*c]
		for i := 0; i < len(row); i += c {
			p := row[i : i+c]
			col := colorful.Color{R: float64(p[r]) / 255, G: float64(p[1]) / 255, B: float64(p[b]) / 255}
			h, s, v := col.Hsv()
			hue := utils.ModFloat(h/360*HuePeriod+shift, HuePeriod)
			s = utils.Clamp01(s * dsat)
			v = utils.Clamp01(v * dexp)
			deg := hue / HuePeriod * 360
			if deg >= 360 {
				deg -= 360
			}
			col = colorful.Hsv(deg, s, v)
			p[r] = utils.SaturateUint8(col.R * 255)
			p[1] = utils.SaturateUint8(col.G * 255)
			p[b] = utils.SaturateUint8(col.B * 255)
		}
	}); err != nil {
		return nil, NewInternalError(op, err)
	}
	return jittered, nil
}

// AddGaussianNoise returns a copy of src with zero-mean Gaussian noise of standard deviation sigma
// added to every sample and saturated. sigma is clamped to [0, MaxNoiseSigma]; zero returns a copy.
func AddGaussianNoise(src *Native, sigma int, rng *rand.Rand) (out *Native, err error) {
	const op = "AddGaussianNoise"
	if err := checkNative(op, src); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, NewInvalidInputError(op, "nil random source")
	}
	defer recoverInternal(op, &err, fmt.Sprintf("%s sigma=%d", dims(src.width, src.height, src.channels), sigma))

	sigma = utils.ClampInt(sigma, 0, MaxNoiseSigma)
	noisy := NativeFromBuffer(src, src.Order)
	if sigma == 0 {
		return noisy, nil
	}
	sd := float64(sigma)
	for i, p := range noisy.pix {
		noisy.pix[i] = utils.SaturateUint8(float64(p) + rng.NormFloat64()*sd)
	}
	return noisy, nil
}

// Blend computes dst = alpha*dst + beta*src sample by sample. Both buffers must share dimensions.
func Blend(dst *Planar, alpha float32, src *Planar, beta float32) error {
	const op = "Blend"
	if err := checkPlanar(op, dst); err != nil {
		return err
	}
	if err := checkPlanar(op, src); err != nil {
		return err
	}
	if dst.width != src.width || dst.height != src.height || dst.channels != src.channels {
		return NewInvalidInputError(op, "dimension mismatch %s vs %s",
			dims(dst.width, dst.height, dst.channels), dims(src.width, src.height, src.channels))
	}
	for i := range dst.data {
		dst.data[i] = alpha*dst.data[i] + beta*src.data[i]
	}
	return nil
}
