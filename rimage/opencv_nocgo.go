//go:build no_cgo

package rimage

func resizeNative(src *Native, w, h int) (*Native, error) {
	return resizeLinear(src, w, h)
}

func gaussianBlurNative(src *Native, ksize int) (*Native, error) {
	return gaussianBlurSeparable(src, ksize)
}
