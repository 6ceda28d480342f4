package rimage

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/floats"

	"go.viam.com/framekit/utils"
)

// MeanColor returns the per-channel mean of src rounded half-to-even.
func MeanColor(src *Native) ([]uint8, error) {
	if err := checkNative("MeanColor", src); err != nil {
		return nil, err
	}
	return meanColor(src), nil
}

func meanColor(src *Native) []uint8 {
	c := src.channels
	sums := make([]float64, c)
	for y := 0; y < src.height; y++ {
		row := src.pix[y*src.stride : y*src.stride+src.width*c]
		for i := 0; i < len(row); i += c {
			for k := 0; k < c; k++ {
				sums[k] += float64(row[i+k])
			}
		}
	}
	floats.Scale(1/float64(src.width*src.height), sums)
	mean := make([]uint8, c)
	for k, v := range sums {
		mean[k] = utils.SaturateUint8(utils.RoundHalfEven(v))
	}
	return mean
}

// Crop returns the rect region of src as a new buffer of rect's size. Parts of rect outside the
// source are padded with the source's mean color; the overlap is copied at its offset within rect.
func Crop(src *Native, rect image.Rectangle) (out *Native, err error) {
	const op = "Crop"
	if err := checkNative(op, src); err != nil {
		return nil, err
	}
	if rect.Dx() < 1 || rect.Dy() < 1 {
		return nil, NewInvalidInputError(op, "empty crop rectangle %v", rect)
	}
	defer recoverInternal(op, &err, fmt.Sprintf("rect=%v", rect))

	if rect == src.Bounds() {
		return NativeFromBuffer(src, src.Order), nil
	}

	c := src.channels
	dst := NewNative(rect.Dx(), rect.Dy(), c)
	dst.Order = src.Order
	mean := meanColor(src)
	for i := 0; i < len(dst.pix); i += c {
		copy(dst.pix[i:i+c], mean)
	}

	inter := rect.Intersect(src.Bounds())
	if inter.Empty() {
		return dst, nil
	}
	offX, offY := inter.Min.X-rect.Min.X, inter.Min.Y-rect.Min.Y
	rowBytes := inter.Dx() * c
	for y := 0; y < inter.Dy(); y++ {
		from := src.offset(inter.Min.X, inter.Min.Y+y, 0)
		to := dst.offset(offX, offY+y, 0)
		copy(dst.pix[to:to+rowBytes], src.pix[from:from+rowBytes])
	}
	return dst, nil
}

// CropResize crops rect out of src and resizes it to w x h. A rect equal to the source bounds
// resizes the source directly.
func CropResize(src *Native, rect image.Rectangle, w, h int) (*Native, error) {
	const op = "CropResize"
	if err := checkNative(op, src); err != nil {
		return nil, err
	}
	if err := checkSize(op, w, h); err != nil {
		return nil, err
	}
	if rect == src.Bounds() {
		return Resize(src, w, h)
	}
	cropped, err := Crop(src, rect)
	if err != nil {
		return nil, err
	}
	return Resize(cropped, w, h)
}

// linearTap is one destination coordinate's pair of source indices and the weight of the second.
type linearTap struct {
	i0, i1 int
	frac   float64
}

// linearTaps maps dst pixel centers onto src with (d+0.5)*src/dst-0.5, clamping at the edges.
func linearTaps(srcLen, dstLen int) []linearTap {
	scale := float64(srcLen) / float64(dstLen)
	taps := make([]linearTap, dstLen)
	for d := range taps {
		f := (float64(d)+0.5)*scale - 0.5
		s := int(math.Floor(f))
		f -= float64(s)
		if s < 0 {
			s, f = 0, 0
		}
		if s >= srcLen-1 {
			s, f = srcLen-1, 0
		}
		s1 := s + 1
		if s1 > srcLen-1 {
			s1 = srcLen - 1
		}
		taps[d] = linearTap{s, s1, f}
	}
	return taps
}

// Resize scales src to w x h with bilinear interpolation on pixel centers, rounding to the nearest
// byte. A same-size resize is an exact copy.
func Resize(src *Native, w, h int) (out *Native, err error) {
	const op = "Resize"
	if err := checkNative(op, src); err != nil {
		return nil, err
	}
	if err := checkSize(op, w, h); err != nil {
		return nil, err
	}
	defer recoverInternal(op, &err, dims(w, h, src.channels))

	if w == src.width && h == src.height {
		return NativeFromBuffer(src, src.Order), nil
	}
	resized, err := resizeNative(src, w, h)
	if err != nil {
		return nil, NewInternalError(op, err)
	}
	return resized, nil
}

// resizeLinear is the Go bilinear kernel behind Resize when OpenCV is not available or does not
// support the channel count.
func resizeLinear(src *Native, w, h int) (*Native, error) {
	c := src.channels
	dst := NewNative(w, h, c)
	dst.Order = src.Order
	xs, ys := linearTaps(src.width, w), linearTaps(src.height, h)
	if err := utils.ParallelForEachRow(h, func(dy int) {
		ty := ys[dy]
		r0 := src.pix[ty.i0*src.stride:]
		r1 := src.pix[ty.i1*src.stride:]
		row := dst.pix[dy*dst.stride:]
		for dx, tx := range xs {
			a0, a1 := tx.i0*c, tx.i1*c
			for k := 0; k < c; k++ {
				top := float64(r0[a0+k])*(1-tx.frac) + float64(r0[a1+k])*tx.frac
				bottom := float64(r1[a0+k])*(1-tx.frac) + float64(r1[a1+k])*tx.frac
				row[dx*c+k] = utils.SaturateUint8(top*(1-ty.frac) + bottom*ty.frac)
			}
		}
	}); err != nil {
		return nil, err
	}
	return dst, nil
}

// ResizePlanar is the planar counterpart of Resize. Samples are interpolated without rounding.
func ResizePlanar(src *Planar, w, h int) (out *Planar, err error) {
	const op = "ResizePlanar"
	if err := checkPlanar(op, src); err != nil {
		return nil, err
	}
	if err := checkSize(op, w, h); err != nil {
		return nil, err
	}
	defer recoverInternal(op, &err, dims(w, h, src.channels))

	if w == src.width && h == src.height {
		return src.Clone(), nil
	}
	resized := NewPlanar(w, h, src.channels)
	xs, ys := linearTaps(src.width, w), linearTaps(src.height, h)
	for k := 0; k < src.channels; k++ {
		in, dst := src.Plane(k), resized.Plane(k)
		for dy, ty := range ys {
			r0, r1 := in[ty.i0*src.width:], in[ty.i1*src.width:]
			fy := float32(ty.frac)
			for dx, tx := range xs {
				fx := float32(tx.frac)
				top := r0[tx.i0]*(1-fx) + r0[tx.i1]*fx
				bottom := r1[tx.i0]*(1-fx) + r1[tx.i1]*fx
				dst[dy*w+dx] = top*(1-fy) + bottom*fy
			}
		}
	}
	return resized, nil
}

// FlipHorizontal returns a mirrored copy of src (x reversed, y unchanged).
func FlipHorizontal(src *Native) (*Native, error) {
	const op = "FlipHorizontal"
	if err := checkNative(op, src); err != nil {
		return nil, err
	}
	w, c := src.width, src.channels
	out := NewNative(w, src.height, c)
	out.Order = src.Order
	for y := 0; y < src.height; y++ {
		in := src.pix[y*src.stride:]
		dst := out.pix[y*out.stride:]
		for x := 0; x < w; x++ {
			copy(dst[(w-1-x)*c:(w-x)*c], in[x*c:(x+1)*c])
		}
	}
	return out, nil
}

// ConvertChannels converts src between 1 (gray), 3 (color) and 4 (color with alpha) channels.
// Gray is computed with the BT.601 luma weights, honoring src.Order; added alpha is opaque.
func ConvertChannels(src *Native, c int) (*Native, error) {
	const op = "ConvertChannels"
	if err := checkNative(op, src); err != nil {
		return nil, err
	}
	from := src.channels
	if !validChannelCount(c) || !validChannelCount(from) {
		return nil, NewInvalidInputError(op, "unsupported conversion from %d to %d channels", from, c)
	}
	if from == c {
		return NativeFromBuffer(src, src.Order), nil
	}

	r, b := 0, 2
	if src.Order == OrderBGR {
		r, b = 2, 0
	}
	out := NewNative(src.width, src.height, c)
	out.Order = src.Order
	for y := 0; y < src.height; y++ {
		in := src.pix[y*src.stride:]
		dst := out.pix[y*out.stride:]
		for x := 0; x < src.width; x++ {
			p := in[x*from : (x+1)*from]
			q := dst[x*c : (x+1)*c]
			switch {
			case c == 1:
				q[0] = utils.SaturateUint8(0.299*float64(p[r]) + 0.587*float64(p[1]) + 0.114*float64(p[b]))
			case from == 1:
				q[0], q[1], q[2] = p[0], p[0], p[0]
			default:
				copy(q[:3], p[:3])
			}
			if c == 4 {
				q[3] = 255
			}
		}
	}
	return out, nil
}

func validChannelCount(c int) bool {
	return c == 1 || c == 3 || c == 4
}
