package augment

import (
	"image"
	"math"
	"math/rand/v2"

	"go.viam.com/framekit/rimage"
	"go.viam.com/framekit/vision/objectdetection"
)

// Sampler draws per-sample Params from a Config the way a darknet-style detection loader does:
// jittered crop edges, a random scale in [1/s, s] for saturation and exposure, a uniform hue
// shift, a coin-flip mirror and randomly gated blur and noise.
type Sampler struct {
	cfg Config
	rng *rand.Rand
}

// NewSampler returns a Sampler seeded with seed. It does not validate cfg.
func NewSampler(cfg Config, seed uint64) *Sampler {
	return &Sampler{cfg: cfg, rng: rand.New(rand.NewPCG(seed, ^seed))}
}

func (s *Sampler) uniform(lo, hi float64) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + (hi-lo)*s.rng.Float64()
}

// scale returns a factor in [1, limit] or its inverse, with equal odds.
func (s *Sampler) scale(limit float64) float64 {
	if limit <= 1 {
		return 1
	}
	f := s.uniform(1, limit)
	if s.rng.IntN(2) == 0 {
		return f
	}
	return 1 / f
}

// Sample draws Params for a srcW x srcH source. boxes are normalized to the source; the returned
// Params carry them mapped into the output frame, dropping boxes that leave it.
func (s *Sampler) Sample(srcW, srcH int, boxes []objectdetection.Box) Params {
	dw := int(s.cfg.Jitter * float64(srcW))
	dh := int(s.cfg.Jitter * float64(srcH))
	edge := func(d int) int {
		if d == 0 {
			return 0
		}
		return s.rng.IntN(2*d+1) - d
	}
	pleft, pright := edge(dw), edge(dw)
	ptop, pbot := edge(dh), edge(dh)
	crop := image.Rect(pleft, ptop, srcW-pright, srcH-pbot)

	p := Params{
		Width:      s.cfg.Width,
		Height:     s.cfg.Height,
		Crop:       crop,
		Hue:        s.uniform(-s.cfg.Hue, s.cfg.Hue),
		Saturation: s.scale(s.cfg.Saturation),
		Exposure:   s.scale(s.cfg.Exposure),
		NoiseSeed:  s.rng.Uint64(),
	}
	if s.cfg.Flip {
		p.Flip = s.rng.IntN(2) == 1
	}
	if s.cfg.Blur > 0 {
		switch s.rng.IntN(3) {
		case 0:
			p.Blur = 0
		case 1:
			p.Blur = rimage.BoxPreservingBlur
		default:
			p.Blur = s.cfg.Blur
		}
	}
	if s.cfg.GaussianNoise > 0 && s.rng.IntN(2) == 1 {
		p.Noise = s.cfg.GaussianNoise
	}
	p.Boxes = MapBoxes(boxes, srcW, srcH, crop, p.Flip)
	return p
}

// MapBoxes converts source-normalized boxes into the normalized frame of crop, mirrored when flip
// is set. Boxes are clipped to the crop and dropped when nothing is left.
func MapBoxes(boxes []objectdetection.Box, srcW, srcH int, crop image.Rectangle, flip bool) []objectdetection.Box {
	cw, ch := float64(crop.Dx()), float64(crop.Dy())
	if cw <= 0 || ch <= 0 {
		return nil
	}
	out := make([]objectdetection.Box, 0, len(boxes))
	for _, b := range boxes {
		b = b.Clamp()
		left := ((b.X-b.W/2)*float64(srcW) - float64(crop.Min.X)) / cw
		right := ((b.X+b.W/2)*float64(srcW) - float64(crop.Min.X)) / cw
		top := ((b.Y-b.H/2)*float64(srcH) - float64(crop.Min.Y)) / ch
		bot := ((b.Y+b.H/2)*float64(srcH) - float64(crop.Min.Y)) / ch
		left, right = math.Max(0, left), math.Min(1, right)
		top, bot = math.Max(0, top), math.Min(1, bot)
		if flip {
			left, right = 1-right, 1-left
		}
		if right <= left || bot <= top {
			continue
		}
		out = append(out, objectdetection.Box{
			X: (left + right) / 2,
			Y: (top + bot) / 2,
			W: right - left,
			H: bot - top,
		})
	}
	return out
}
