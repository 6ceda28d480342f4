package rimage

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/floats"

	"go.viam.com/framekit/utils"
)

// BoxPreservingBlur is the blur parameter that selects the fixed 17x17 kernel and keeps annotated
// regions sharp.
const BoxPreservingBlur = 1

// BlurKernelSize maps a blur parameter to an odd kernel size: 17 for BoxPreservingBlur, otherwise
// 2*(blur/2)+1. Zero means no blur and yields 0.
func BlurKernelSize(blur int) (int, error) {
	switch {
	case blur < 0:
		return 0, NewInvalidInputError("BlurKernelSize", "negative blur parameter %d", blur)
	case blur == 0:
		return 0, nil
	case blur == BoxPreservingBlur:
		return 17, nil
	default:
		return (blur/2)*2 + 1, nil
	}
}

// GaussianFunction1D takes in a sigma and returns a gaussian function useful for weighing averages or blurring.
func GaussianFunction1D(sigma float64) func(p float64) float64 {
	if sigma <= 0. {
		return func(p float64) float64 {
			return 1.
		}
	}
	return func(p float64) float64 {
		return math.Exp(-0.5*math.Pow(p, 2)/math.Pow(sigma, 2)) / (sigma * math.Sqrt(2.*math.Pi))
	}
}

// small kernels used when the sigma is derived from the size.
var fixedGaussianKernels = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// GaussianSigmaForSize returns the sigma implied by an odd kernel size.
func GaussianSigmaForSize(ksize int) float64 {
	return 0.3*((float64(ksize)-1)*0.5-1) + 0.8
}

// GaussianKernel1D returns a normalized odd-sized 1D kernel. Sizes up to 7 use the fixed binomial
// tables; larger sizes sample GaussianFunction1D at GaussianSigmaForSize.
func GaussianKernel1D(ksize int) []float64 {
	if k, ok := fixedGaussianKernels[ksize]; ok {
		out := make([]float64, ksize)
		copy(out, k)
		return out
	}
	gaus := GaussianFunction1D(GaussianSigmaForSize(ksize))
	half := ksize / 2
	kernel := make([]float64, ksize)
	for i := range kernel {
		kernel[i] = gaus(float64(i - half))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel
}

// reflect101 maps an out-of-range index into [0, n) mirroring around the edge samples
// (gfedcb|abcdefgh|gfedcba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// GaussianBlur smooths src with a ksize x ksize Gaussian whose sigma follows from ksize, using
// reflect-101 borders. ksize must be positive and odd.
func GaussianBlur(src *Native, ksize int) (out *Native, err error) {
	const op = "GaussianBlur"
	if err := checkNative(op, src); err != nil {
		return nil, err
	}
	if ksize < 1 || ksize%2 == 0 {
		return nil, NewInvalidInputError(op, "kernel size must be positive and odd, got %d", ksize)
	}
	defer recoverInternal(op, &err, fmt.Sprintf("%s ksize=%d", dims(src.width, src.height, src.channels), ksize))

	blurred, err := gaussianBlurNative(src, ksize)
	if err != nil {
		return nil, NewInternalError(op, err)
	}
	return blurred, nil
}

// gaussianBlurSeparable is the Go two-pass kernel behind GaussianBlur when OpenCV is not available
// or does not support the channel count.
func gaussianBlurSeparable(src *Native, ksize int) (*Native, error) {
	w, h, c := src.width, src.height, src.channels
	kernel := GaussianKernel1D(ksize)
	half := ksize / 2
	xIdx := make([][]int, w)
	for x := range xIdx {
		xIdx[x] = make([]int, ksize)
		for i := range kernel {
			xIdx[x][i] = reflect101(x+i-half, w)
		}
	}

	horiz := make([]float64, w*h*c)
	if err := utils.ParallelForEachRow(h, func(y int) {
		row := src.pix[y*src.stride:]
		dst := horiz[y*w*c:]
		for x := 0; x < w; x++ {
			for k := 0; k < c; k++ {
				var acc float64
				for i, wt := range kernel {
					acc += wt * float64(row[xIdx[x][i]*c+k])
				}
				dst[x*c+k] = acc
			}
		}
	}); err != nil {
		return nil, err
	}

	blurred := NewNative(w, h, c)
	blurred.Order = src.Order
	if err := utils.ParallelForEachRow(h, func(y int) {
		dst := blurred.pix[y*blurred.stride:]
		for i := 0; i < w*c; i++ {
			var acc float64
			for j, wt := range kernel {
				acc += wt * horiz[reflect101(y+j-half, h)*w*c+i]
			}
			dst[i] = utils.SaturateUint8(acc)
		}
	}); err != nil {
		return nil, err
	}
	return blurred, nil
}

// BlurOutsideBoxes copies each region from original back into a copy of blurred, so the regions
// stay sharp while the rest stays blurred. Regions are clipped to the image bounds.
func BlurOutsideBoxes(blurred, original *Native, regions []image.Rectangle) (*Native, error) {
	const op = "BlurOutsideBoxes"
	if err := checkNative(op, blurred); err != nil {
		return nil, err
	}
	if err := checkNative(op, original); err != nil {
		return nil, err
	}
	if blurred.Bounds() != original.Bounds() || blurred.channels != original.channels {
		return nil, NewInvalidInputError(op, "blurred %s and original %s differ",
			dims(blurred.width, blurred.height, blurred.channels), dims(original.width, original.height, original.channels))
	}
	out := NativeFromBuffer(blurred, blurred.Order)
	c := out.channels
	for _, r := range regions {
		r = r.Intersect(out.Bounds())
		if r.Empty() {
			continue
		}
		n := r.Dx() * c
		for y := r.Min.Y; y < r.Max.Y; y++ {
			from := original.offset(r.Min.X, y, 0)
			to := out.offset(r.Min.X, y, 0)
			copy(out.pix[to:to+n], original.pix[from:from+n])
		}
	}
	return out, nil
}

// BlurPlanar blurs a planar buffer with a ksize x ksize Gaussian through the 8-bit path.
func BlurPlanar(src *Planar, ksize int) (*Planar, error) {
	native, err := ToNative(src)
	if err != nil {
		return nil, err
	}
	blurred, err := GaussianBlur(native, ksize)
	if err != nil {
		return nil, err
	}
	return ToPlanar(blurred)
}
