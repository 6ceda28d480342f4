package rimage

import (
	"errors"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestSaveLoadPNG(t *testing.T) {
	dir := t.TempDir()
	src := randomNative(t, 10, 7, 3, 32, 41)
	path := filepath.Join(dir, "frame.png")
	test.That(t, SaveNative(src, path), test.ShouldBeNil)

	loaded, err := LoadNative(path, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loaded.Order, test.ShouldEqual, OrderRGB)
	assertNativeWithin(t, loaded, src, 0)

	gray, err := LoadNative(path, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gray.Channels(), test.ShouldEqual, 1)
	test.That(t, gray.Width(), test.ShouldEqual, 10)
}

func TestSaveLoadPPMAndQOI(t *testing.T) {
	dir := t.TempDir()
	src := randomNative(t, 9, 6, 3, 27, 43)
	for _, name := range []string{"frame.ppm", "frame.qoi"} {
		path := filepath.Join(dir, name)
		test.That(t, SaveNative(src, path), test.ShouldBeNil)
		loaded, err := LoadNative(path, 3)
		test.That(t, err, test.ShouldBeNil)
		assertNativeWithin(t, loaded, src, 0)
	}

	gray := randomNative(t, 5, 4, 1, 5, 44)
	path := filepath.Join(dir, "gray.ppm")
	test.That(t, SaveNative(gray, path), test.ShouldBeNil)
	loaded, err := LoadNative(path, 1)
	test.That(t, err, test.ShouldBeNil)
	assertNativeWithin(t, loaded, gray, 1)
}

func TestSaveSwapsBGR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bgr.png")
	bgr := solidNative(4, 4, 10, 20, 30)
	bgr.Order = OrderBGR
	test.That(t, SaveNative(bgr, path), test.ShouldBeNil)

	loaded, err := LoadNative(path, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loaded.Bytes()[:3], test.ShouldResemble, []byte{30, 20, 10})
}

func TestSaveLoadJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.jpg")
	src := solidNative(16, 16, 200, 100, 50)
	test.That(t, SaveNative(src, path), test.ShouldBeNil)

	loaded, err := LoadNative(path, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loaded.Channels(), test.ShouldEqual, 3)
	assertNativeWithin(t, loaded, src, 8)
}

func TestImageFileErrors(t *testing.T) {
	_, err := LoadNative("does-not-exist.png", 0)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "does-not-exist.png")

	_, err = LoadNative("whatever.png", 2)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	err = SaveNative(solidNative(2, 2, 1, 2, 3), filepath.Join(t.TempDir(), "frame.bmpx"))
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	err = SaveNative(nil, "out.png")
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
}

func TestNativeFromImage(t *testing.T) {
	src := randomNative(t, 5, 3, 4, 20, 8)
	// Force a translucent pixel so the alpha channel survives.
	src.Set(0, 0, 3, 10)
	back := NewNativeFromImage(src.ToImage())
	test.That(t, back.Channels(), test.ShouldEqual, 4)
	assertNativeWithin(t, back, src, 0)

	gray := NewNative(3, 2, 1)
	copy(gray.pix, []byte{1, 2, 3, 4, 5, 6})
	back = NewNativeFromImage(gray.ToImage())
	test.That(t, back.Bytes(), test.ShouldResemble, gray.Bytes())
	test.That(t, NewNativeFromImage(nil).Valid(), test.ShouldBeFalse)
}
