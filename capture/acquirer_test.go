package capture_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.viam.com/test"

	"go.viam.com/framekit/capture"
	"go.viam.com/framekit/capture/fake"
	"go.viam.com/framekit/logging"
	"go.viam.com/framekit/rimage"
)

func newAcquirer(t *testing.T, src capture.Source, dontClose bool) (*capture.Acquirer, *capture.Metrics) {
	t.Helper()
	metrics, err := capture.NewMetrics(prometheus.NewRegistry(), "test")
	test.That(t, err, test.ShouldBeNil)
	a, err := capture.NewAcquirer(src, capture.Options{Name: "test", DontClose: dontClose, Metrics: metrics}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return a, metrics
}

func TestWarmUp(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	metrics, err := capture.NewMetrics(prometheus.NewRegistry(), "cam")
	test.That(t, err, test.ShouldBeNil)
	src := fake.NewSource(rimage.EmptyNative(), rimage.EmptyNative(), fake.Gradient(640, 480, 3, 0), fake.Gradient(640, 480, 3, 1))
	a, err := capture.NewAcquirer(src, capture.Options{Metrics: metrics}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a.Name(), test.ShouldNotBeEmpty)
	test.That(t, a.State(), test.ShouldEqual, capture.StateUninitialized)

	frame, err := a.NextFrame(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Width(), test.ShouldEqual, 640)
	test.That(t, frame.Height(), test.ShouldEqual, 480)
	test.That(t, frame.Channels(), test.ShouldEqual, 3)
	test.That(t, frame.Order, test.ShouldEqual, rimage.OrderBGR)
	test.That(t, a.State(), test.ShouldEqual, capture.StateStreaming)
	test.That(t, src.Reads(), test.ShouldEqual, 3)
	test.That(t, testutil.ToFloat64(metrics.WarmupRetries), test.ShouldEqual, 2.)

	frame, err = a.NextFrame(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.At(0, 0, 0), test.ShouldEqual, uint8(1))

	// Past warm-up, an empty frame is handed back as is.
	frame, err = a.NextFrame(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Valid(), test.ShouldBeFalse)

	test.That(t, logs.FilterMessage("video stream started").Len(), test.ShouldEqual, 1)
	test.That(t, testutil.ToFloat64(metrics.FramesRead), test.ShouldEqual, 5.)
}

func TestWarmUpCanceled(t *testing.T) {
	src := fake.NewSource()
	a, _ := newAcquirer(t, src, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.NextFrame(ctx)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
	test.That(t, a.State(), test.ShouldEqual, capture.StateWarmingUp)
}

func TestEndOfStream(t *testing.T) {
	src := fake.NewSource(fake.Gradient(8, 6, 3, 0))
	a, metrics := newAcquirer(t, src, false)

	frame, err := a.NextFrameResized(context.Background(), 4, 3, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Planar.Width(), test.ShouldEqual, 4)
	test.That(t, frame.Planar.Height(), test.ShouldEqual, 3)

	_, err = a.NextFrameResized(context.Background(), 4, 3, 3)
	test.That(t, errors.Is(err, capture.ErrEndOfStream), test.ShouldBeTrue)
	test.That(t, a.State(), test.ShouldEqual, capture.StateClosed)
	test.That(t, testutil.ToFloat64(metrics.InvalidFrames), test.ShouldEqual, 1.)

	_, err = a.NextFrame(context.Background())
	test.That(t, errors.Is(err, capture.ErrEndOfStream), test.ShouldBeTrue)
	test.That(t, errors.Is(a.ConsumeFrame(context.Background()), capture.ErrEndOfStream), test.ShouldBeTrue)
}

func TestPlaceholder(t *testing.T) {
	src := fake.NewSource(fake.Gradient(8, 6, 3, 0))
	a, metrics := newAcquirer(t, src, true)

	_, err := a.NextFrameResized(context.Background(), 8, 6, 3)
	test.That(t, err, test.ShouldBeNil)

	frame, err := a.NextFrameResized(context.Background(), 8, 6, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a.State(), test.ShouldEqual, capture.StateStreaming)
	test.That(t, frame.Raw.Width(), test.ShouldEqual, capture.PlaceholderSize)
	test.That(t, frame.Raw.Height(), test.ShouldEqual, capture.PlaceholderSize)
	test.That(t, frame.Raw.Channels(), test.ShouldEqual, 3)
	for _, v := range frame.Planar.Data() {
		test.That(t, v, test.ShouldEqual, float32(0))
	}
	test.That(t, src.Reads(), test.ShouldEqual, 2+capture.MaxDiscardedFrames)
	test.That(t, testutil.ToFloat64(metrics.DiscardedFrames), test.ShouldEqual, float64(capture.MaxDiscardedFrames))
	test.That(t, testutil.ToFloat64(metrics.Placeholders), test.ShouldEqual, 1.)
}

func TestNextFrameResizedChannels(t *testing.T) {
	px := rimage.NewNative(2, 1, 3)
	px.Order = rimage.OrderBGR
	for x := 0; x < 2; x++ {
		px.Set(x, 0, 0, 10)
		px.Set(x, 0, 1, 20)
		px.Set(x, 0, 2, 30)
	}
	src := fake.NewSource(px)
	src.Loop = true
	a, _ := newAcquirer(t, src, false)
	ctx := context.Background()

	frame, err := a.NextFrameResized(ctx, 2, 1, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Planar.Channels(), test.ShouldEqual, 3)
	test.That(t, frame.Planar.At(0, 0, 0), test.ShouldEqual, float32(30)/255)
	test.That(t, frame.Planar.At(0, 0, 2), test.ShouldEqual, float32(10)/255)
	test.That(t, frame.Raw.At(0, 0, 0), test.ShouldEqual, uint8(10))
	test.That(t, frame.Raw.Order, test.ShouldEqual, rimage.OrderBGR)

	frame, err = a.NextFrameResized(ctx, 2, 1, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Planar.Channels(), test.ShouldEqual, 1)

	frame, err = a.NextFrameResized(ctx, 2, 1, 4)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Planar.Channels(), test.ShouldEqual, 4)
	test.That(t, frame.Planar.At(1, 0, 3), test.ShouldEqual, float32(1))

	_, err = a.NextFrameResized(ctx, 0, 1, 3)
	test.That(t, errors.Is(err, rimage.ErrInvalidInput), test.ShouldBeTrue)
	_, err = a.NextFrameResized(ctx, 2, 1, 2)
	test.That(t, errors.Is(err, rimage.ErrInvalidInput), test.ShouldBeTrue)
}

func TestNextFrameLetterboxed(t *testing.T) {
	src := fake.NewSource(fake.Gradient(100, 200, 3, 0))
	a, _ := newAcquirer(t, src, false)

	frame, err := a.NextFrameLetterboxed(context.Background(), 50, 50, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Planar.Width(), test.ShouldEqual, 50)
	test.That(t, frame.Planar.Height(), test.ShouldEqual, 50)
	test.That(t, frame.Planar.At(0, 25, 0), test.ShouldEqual, float32(rimage.LetterboxPad))
	test.That(t, frame.Planar.At(49, 25, 2), test.ShouldEqual, float32(rimage.LetterboxPad))
	test.That(t, frame.Raw.Width(), test.ShouldEqual, 100)
	test.That(t, frame.Raw.Height(), test.ShouldEqual, 200)
}

func TestConsumeFrameAndClose(t *testing.T) {
	src := fake.NewSource(fake.Gradient(4, 4, 3, 0), fake.Gradient(4, 4, 3, 1))
	a, _ := newAcquirer(t, src, false)

	test.That(t, a.ConsumeFrame(context.Background()), test.ShouldBeNil)
	test.That(t, src.Reads(), test.ShouldEqual, 1)

	frame, err := a.NextFrame(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.At(0, 0, 0), test.ShouldEqual, uint8(1))

	test.That(t, a.Close(), test.ShouldBeNil)
	test.That(t, a.Close(), test.ShouldBeNil)
	test.That(t, src.IsOpened(), test.ShouldBeFalse)
	test.That(t, a.State(), test.ShouldEqual, capture.StateClosed)
}

func TestReadError(t *testing.T) {
	src := fake.NewSource()
	src.ReadErr = errors.New("device gone")
	a, _ := newAcquirer(t, src, false)
	_, err := a.NextFrame(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "device gone")
}

func TestNewAcquirerNilSource(t *testing.T) {
	a, err := capture.NewAcquirer(nil, capture.Options{}, logging.NewTestLogger(t))
	test.That(t, a, test.ShouldBeNil)
	test.That(t, errors.Is(err, rimage.ErrInvalidInput), test.ShouldBeTrue)
}

func TestMetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := capture.NewMetrics(reg, "a")
	test.That(t, err, test.ShouldBeNil)
	_, err = capture.NewMetrics(reg, "b")
	test.That(t, err, test.ShouldBeNil)
	_, err = capture.NewMetrics(reg, "a")
	test.That(t, err, test.ShouldNotBeNil)
}

// truncatedFrame claims to be 4x4x3 but carries only 10 bytes.
type truncatedFrame struct{}

func (truncatedFrame) Width() int    { return 4 }
func (truncatedFrame) Height() int   { return 4 }
func (truncatedFrame) Channels() int { return 3 }
func (truncatedFrame) Stride() int   { return 12 }
func (truncatedFrame) Bytes() []byte { return make([]byte, 10) }

func TestMalformedFrame(t *testing.T) {
	a, metrics := newAcquirer(t, fake.NewSource(truncatedFrame{}), false)
	frame, err := a.NextFrameResized(context.Background(), 8, 8, 3)
	test.That(t, errors.Is(err, rimage.ErrInvalidInput), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "4x4x3")
	test.That(t, frame.Planar, test.ShouldBeNil)
	test.That(t, frame.Raw, test.ShouldBeNil)
	test.That(t, testutil.ToFloat64(metrics.FramesRead), test.ShouldEqual, 0.)
}

func TestSourcePanic(t *testing.T) {
	src := &stubSource{
		props: map[capture.Property]float64{capture.PropFPS: 30},
		read:  func() (rimage.NativeBuffer, error) { panic("decoder crashed") },
	}
	a, _ := newAcquirer(t, src, true)

	frame, err := a.NextFrameResized(context.Background(), 8, 6, 3)
	test.That(t, errors.Is(err, rimage.ErrInternal), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "decoder crashed")
	test.That(t, err.Error(), test.ShouldContainSubstring, "w=8 h=6 c=3")
	test.That(t, err.Error(), test.ShouldContainSubstring, "fps=30")
	test.That(t, frame.Planar, test.ShouldBeNil)

	_, err = a.NextFrameLetterboxed(context.Background(), 8, 6, 0)
	test.That(t, errors.Is(err, rimage.ErrInternal), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "c=0")

	_, err = a.NextFrame(context.Background())
	test.That(t, errors.Is(err, rimage.ErrInternal), test.ShouldBeTrue)
	err = a.ConsumeFrame(context.Background())
	test.That(t, errors.Is(err, rimage.ErrInternal), test.ShouldBeTrue)
}
