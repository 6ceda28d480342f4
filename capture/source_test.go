package capture_test

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/framekit/capture"
	"go.viam.com/framekit/capture/fake"
	"go.viam.com/framekit/rimage"
)

// stubSource reports fixed properties and reads through a callback.
type stubSource struct {
	props map[capture.Property]float64
	read  func() (rimage.NativeBuffer, error)
}

func (s *stubSource) IsOpened() bool                     { return true }
func (s *stubSource) Read() (rimage.NativeBuffer, error) { return s.read() }
func (s *stubSource) Get(prop capture.Property) float64  { return s.props[prop] }
func (s *stubSource) Set(capture.Property, float64) bool { return false }
func (s *stubSource) Close() error                       { return nil }

func TestSourceHelpers(t *testing.T) {
	test.That(t, capture.FPS(nil), test.ShouldEqual, capture.DefaultFPS)
	test.That(t, capture.GetProperty(nil, capture.PropFPS), test.ShouldEqual, 0.)
	test.That(t, capture.FrameCount(nil), test.ShouldEqual, 0)
	test.That(t, capture.SetPositionFrame(nil, 1), test.ShouldBeFalse)

	src := fake.NewSource(fake.Gradient(2, 2, 3, 0), fake.Gradient(2, 2, 3, 1), fake.Gradient(2, 2, 3, 2))
	test.That(t, capture.FPS(src), test.ShouldEqual, capture.DefaultFPS)

	src.SetProperty(capture.PropFPS, 29.97)
	test.That(t, capture.FPS(src), test.ShouldEqual, 30)
	test.That(t, capture.GetProperty(src, capture.PropFPS), test.ShouldEqual, 29.97)
	test.That(t, capture.FrameCount(src), test.ShouldEqual, 3)

	test.That(t, capture.SetPositionFrame(src, 2), test.ShouldBeTrue)
	test.That(t, capture.GetProperty(src, capture.PropPosFrames), test.ShouldEqual, 2.)
	frame, err := src.Read()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Bytes()[0], test.ShouldEqual, uint8(2))
	test.That(t, capture.SetPositionFrame(src, -1), test.ShouldBeFalse)
	test.That(t, capture.SetPositionFrame(src, 9), test.ShouldBeFalse)

	test.That(t, src.Close(), test.ShouldBeNil)
	test.That(t, capture.FPS(src), test.ShouldEqual, capture.DefaultFPS)
	test.That(t, capture.GetProperty(src, capture.PropFPS), test.ShouldEqual, 0.)
}

func TestConfigValidate(t *testing.T) {
	cfg := capture.Config{Path: "video.mp4", Width: 416, Height: 416, Channels: 3, DontClose: true}
	test.That(t, cfg.Validate("capture"), test.ShouldBeNil)
	test.That(t, cfg.Options(nil), test.ShouldResemble, capture.Options{DontClose: true})

	bad := cfg
	bad.Height = 0
	test.That(t, bad.Validate("capture").Error(), test.ShouldContainSubstring, `"height" is required`)

	bad = cfg
	bad.Channels = 2
	test.That(t, bad.Validate("capture"), test.ShouldNotBeNil)

	bad = cfg
	bad.Path = ""
	bad.Device = -1
	test.That(t, bad.Validate("capture"), test.ShouldNotBeNil)
}

func TestUnusableProperties(t *testing.T) {
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN(), -3} {
		src := &stubSource{props: map[capture.Property]float64{capture.PropFrameCount: v, capture.PropFPS: v}}
		test.That(t, capture.FrameCount(src), test.ShouldEqual, 0)
		test.That(t, capture.FPS(src), test.ShouldEqual, capture.DefaultFPS)
	}
}
