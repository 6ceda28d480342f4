package utils

import (
	"math"
	"sync/atomic"
	"testing"

	"go.viam.com/test"
)

func TestSaturateUint8(t *testing.T) {
	test.That(t, SaturateUint8(-3), test.ShouldEqual, uint8(0))
	test.That(t, SaturateUint8(0.49), test.ShouldEqual, uint8(0))
	test.That(t, SaturateUint8(0.5), test.ShouldEqual, uint8(1))
	test.That(t, SaturateUint8(254.6), test.ShouldEqual, uint8(255))
	test.That(t, SaturateUint8(1000), test.ShouldEqual, uint8(255))
	test.That(t, SaturateUint8(math.NaN()), test.ShouldEqual, uint8(0))
}

func TestClampAndMod(t *testing.T) {
	test.That(t, Clamp01(-0.1), test.ShouldEqual, 0.)
	test.That(t, Clamp01(0.25), test.ShouldEqual, 0.25)
	test.That(t, Clamp01(1.5), test.ShouldEqual, 1.)
	test.That(t, ClampInt(-1, 0, 10), test.ShouldEqual, 0)
	test.That(t, ClampInt(11, 0, 10), test.ShouldEqual, 10)
	test.That(t, ModFloat(-1, 179), test.ShouldEqual, 178.)
	test.That(t, ModFloat(358, 179), test.ShouldEqual, 0.)
	test.That(t, RoundHalfEven(2.5), test.ShouldEqual, 2.)
	test.That(t, RoundHalfEven(3.5), test.ShouldEqual, 4.)
}

func TestParallelForEachRow(t *testing.T) {
	var visits [37]int32
	err := ParallelForEachRow(len(visits), func(y int) {
		atomic.AddInt32(&visits[y], 1)
	})
	test.That(t, err, test.ShouldBeNil)
	for _, v := range visits {
		test.That(t, v, test.ShouldEqual, int32(1))
	}

	err = ParallelForEachRow(4, func(y int) {
		if y == 2 {
			panic("boom")
		}
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "boom")

	test.That(t, ParallelForEachRow(0, func(int) { t.Fatal("called") }), test.ShouldBeNil)
}

func TestConfigValidationErrors(t *testing.T) {
	err := NewConfigValidationFieldRequiredError("augment", "width")
	test.That(t, err.Error(), test.ShouldEqual, `error validating "augment": "width" is required`)
}
