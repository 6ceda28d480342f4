package rimage

import (
	"errors"
	"math/rand/v2"
	"testing"

	"go.viam.com/test"
)

func randomNative(t *testing.T, w, h, c, stride int, seed uint64) *Native {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	n := NewNativeWithStride(w, h, c, stride)
	for i := range n.pix {
		n.pix[i] = uint8(rng.IntN(256))
	}
	return n
}

func TestToPlanarLayout(t *testing.T) {
	// 2x1 RGB with a padded stride.
	src := NewNativeWithStride(2, 1, 3, 8)
	copy(src.pix, []byte{255, 0, 51, 0, 102, 255, 9, 9})

	p, err := ToPlanar(src)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Width(), test.ShouldEqual, 2)
	test.That(t, p.Height(), test.ShouldEqual, 1)
	test.That(t, p.Channels(), test.ShouldEqual, 3)
	test.That(t, p.Data(), test.ShouldResemble, []float32{1, 0, 0, 102. / 255, 51. / 255, 1})
	test.That(t, p.At(1, 0, 1), test.ShouldEqual, float32(102)/255)
}

func TestRoundTripQuantization(t *testing.T) {
	for _, tc := range []struct {
		w, h, c, stride int
	}{
		{1, 1, 1, 1},
		{7, 5, 3, 24},
		{16, 9, 4, 64},
		{33, 2, 1, 40},
	} {
		src := randomNative(t, tc.w, tc.h, tc.c, tc.stride, uint64(tc.w*tc.h*tc.c))
		p, err := ToPlanar(src)
		test.That(t, err, test.ShouldBeNil)
		back, err := ToNative(p)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, back.Order, test.ShouldEqual, OrderRGB)
		for y := 0; y < tc.h; y++ {
			for x := 0; x < tc.w; x++ {
				for k := 0; k < tc.c; k++ {
					diff := int(back.At(x, y, k)) - int(src.At(x, y, k))
					test.That(t, diff, test.ShouldBeBetweenOrEqual, -1, 1)
				}
			}
		}
	}
}

func TestToNativeRounds(t *testing.T) {
	p := NewPlanar(4, 1, 1)
	copy(p.Data(), []float32{0.6 / 255, 1.4 / 255, 1.6 / 255, 1.2})
	n, err := ToNative(p)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n.Bytes(), test.ShouldResemble, []byte{1, 1, 2, 255})

	copy(p.Data(), []float32{-0.2, 0.5, 1.7, 1})
	test.That(t, ClampPlanar(p), test.ShouldBeNil)
	test.That(t, p.Data(), test.ShouldResemble, []float32{0, 0.5, 1, 1})
}

func TestConvertInvalidInput(t *testing.T) {
	var nilNative *Native
	out, err := ToPlanar(nilNative)
	test.That(t, out, test.ShouldBeNil)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	out, err = ToPlanar(nil)
	test.That(t, out, test.ShouldBeNil)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	out, err = ToPlanar(EmptyNative())
	test.That(t, out, test.ShouldBeNil)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	native, err := ToNative(nil)
	test.That(t, native, test.ShouldBeNil)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrInternal), test.ShouldBeFalse)

	var typed *Error
	test.That(t, errors.As(err, &typed), test.ShouldBeTrue)
	test.That(t, typed.Op, test.ShouldEqual, "ToNative")
	test.That(t, typed.Kind, test.ShouldEqual, KindInvalidInput)
}

func TestPlanarTensor(t *testing.T) {
	p := NewPlanar(3, 2, 2)
	p.Set(2, 1, 1, 0.75)
	tens := p.Tensor()
	test.That(t, []int(tens.Shape()), test.ShouldResemble, []int{2, 2, 3})
	v, err := tens.At(1, 1, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, float32(0.75))

	back, err := PlanarFromTensor(tens)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.At(2, 1, 1), test.ShouldEqual, float32(0.75))

	_, err = PlanarFromTensor(nil)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
}

func TestRecoverInternal(t *testing.T) {
	fn := func() (err error) {
		defer recoverInternal("Test", &err, dims(4, 3, 2))
		var pix []byte
		_ = pix[10]
		return nil
	}
	err := fn()
	test.That(t, errors.Is(err, ErrInternal), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "w=4 h=3 c=2")
}

// shrinkingBuffer reports a full buffer for validation and then loses most of its bytes.
type shrinkingBuffer struct {
	*Native
	calls int
}

func (b *shrinkingBuffer) Bytes() []byte {
	b.calls++
	if b.calls > 1 {
		return b.Native.Bytes()[:5]
	}
	return b.Native.Bytes()
}

func TestToPlanarPanicLeavesNoResult(t *testing.T) {
	src := &shrinkingBuffer{Native: randomNative(t, 4, 4, 3, 12, 5)}
	out, err := ToPlanar(src)
	test.That(t, errors.Is(err, ErrInternal), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "w=4 h=4 c=3")
	test.That(t, out, test.ShouldBeNil)
}
