//go:build !no_cgo

package rimage

import (
	"image"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"
)

var matTypes = map[int]gocv.MatType{
	1: gocv.MatTypeCV8UC1,
	2: gocv.MatTypeCV8UC2,
	3: gocv.MatTypeCV8UC3,
	4: gocv.MatTypeCV8UC4,
}

// toMat copies src into an 8-bit Mat. ok is false when no 8-bit Mat type has src's channel count.
func toMat(src *Native) (m gocv.Mat, ok bool, err error) {
	mt, ok := matTypes[src.channels]
	if !ok {
		return m, false, nil
	}
	row := src.width * src.channels
	pix := src.pix[:row*src.height]
	if src.stride != row {
		pix = make([]byte, row*src.height)
		for y := 0; y < src.height; y++ {
			copy(pix[y*row:(y+1)*row], src.pix[y*src.stride:])
		}
	}
	m, err = gocv.NewMatFromBytes(src.height, src.width, mt, pix)
	if err != nil {
		return m, true, errors.Wrapf(err, "cannot create %dx%d mat with %d channels", src.width, src.height, src.channels)
	}
	return m, true, nil
}

func fromMat(m *gocv.Mat, order ChannelOrder) *Native {
	out := NewNative(m.Cols(), m.Rows(), m.Channels())
	out.Order = order
	copy(out.pix, m.ToBytes())
	return out
}

// resizeNative resizes with OpenCV's INTER_LINEAR.
func resizeNative(src *Native, w, h int) (out *Native, err error) {
	m, ok, err := toMat(src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return resizeLinear(src, w, h)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(&m))

	dst := gocv.NewMat()
	defer multierr.AppendInvoke(&err, multierr.Close(&dst))
	if err := gocv.Resize(m, &dst, image.Point{X: w, Y: h}, 0, 0, gocv.InterpolationLinear); err != nil {
		return nil, errors.Wrap(err, "opencv resize")
	}
	return fromMat(&dst, src.Order), nil
}

// gaussianBlurNative blurs with OpenCV, letting it derive sigma from ksize. BorderDefault is
// reflect-101.
func gaussianBlurNative(src *Native, ksize int) (out *Native, err error) {
	m, ok, err := toMat(src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return gaussianBlurSeparable(src, ksize)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(&m))

	dst := gocv.NewMat()
	defer multierr.AppendInvoke(&err, multierr.Close(&dst))
	if err := gocv.GaussianBlur(m, &dst, image.Point{X: ksize, Y: ksize}, 0, 0, gocv.BorderDefault); err != nil {
		return nil, errors.Wrap(err, "opencv gaussian blur")
	}
	return fromMat(&dst, src.Order), nil
}
