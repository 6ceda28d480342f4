package rimage

import (
	"math"
)

// ToPlanar converts an interleaved 8-bit buffer into a normalized planar one. Channels are not
// reordered; the result is in whatever order src was.
func ToPlanar(src NativeBuffer) (out *Planar, err error) {
	const op = "ToPlanar"
	if err := checkNative(op, src); err != nil {
		return nil, err
	}
	w, h, c, stride := src.Width(), src.Height(), src.Channels(), src.Stride()
	defer recoverInternal(op, &err, dims(w, h, c))

	pix := src.Bytes()
	planar := NewPlanar(w, h, c)
	for k := 0; k < c; k++ {
		plane := planar.Plane(k)
		for y := 0; y < h; y++ {
			row := pix[y*stride:]
			for x := 0; x < w; x++ {
				plane[y*w+x] = float32(row[x*c+k]) / 255
			}
		}
	}
	return planar, nil
}

// ToNative converts a planar buffer back to interleaved RGB bytes using round-to-nearest.
// Samples outside [0, 1] saturate at the byte boundary; call ClampPlanar first to constrain them
// explicitly.
func ToNative(src *Planar) (out *Native, err error) {
	const op = "ToNative"
	if err := checkPlanar(op, src); err != nil {
		return nil, err
	}
	w, h, c := src.width, src.height, src.channels
	defer recoverInternal(op, &err, dims(w, h, c))

	native := NewNative(w, h, c)
	for k := 0; k < c; k++ {
		plane := src.Plane(k)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				native.pix[y*native.stride+x*c+k] = quantize(plane[y*w+x])
			}
		}
	}
	return native, nil
}

// ClampPlanar constrains every sample of p to [0, 1] in place.
func ClampPlanar(p *Planar) error {
	if err := checkPlanar("ClampPlanar", p); err != nil {
		return err
	}
	for i, v := range p.data {
		switch {
		case v < 0 || v != v:
			p.data[i] = 0
		case v > 1:
			p.data[i] = 1
		}
	}
	return nil
}

func quantize(v float32) uint8 {
	r := math.Round(float64(v) * 255)
	switch {
	case r <= 0 || math.IsNaN(r):
		return 0
	case r >= 255:
		return 255
	default:
		return uint8(r)
	}
}
