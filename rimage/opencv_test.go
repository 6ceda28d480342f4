package rimage

import (
	"testing"

	"go.viam.com/test"
)

func TestResizeMatchesLinearKernel(t *testing.T) {
	for _, c := range []int{1, 2, 3, 4, 5} {
		src := randomNative(t, 23, 17, c, 23*c+3, uint64(c))
		for _, size := range [][2]int{{41, 9}, {7, 30}, {11, 11}} {
			got, err := Resize(src, size[0], size[1])
			test.That(t, err, test.ShouldBeNil)
			want, err := resizeLinear(src, size[0], size[1])
			test.That(t, err, test.ShouldBeNil)
			assertNativeWithin(t, got, want, 1)
			test.That(t, got.Order, test.ShouldEqual, src.Order)
		}
	}
}

func TestGaussianBlurMatchesSeparableKernel(t *testing.T) {
	for _, c := range []int{1, 3, 4, 5} {
		src := randomNative(t, 19, 13, c, 19*c, uint64(10+c))
		for _, ksize := range []int{1, 3, 5, 9, 17} {
			got, err := GaussianBlur(src, ksize)
			test.That(t, err, test.ShouldBeNil)
			want, err := gaussianBlurSeparable(src, ksize)
			test.That(t, err, test.ShouldBeNil)
			assertNativeWithin(t, got, want, 1)
		}
	}
}
