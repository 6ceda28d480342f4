package capture

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/framekit/logging"
	"go.viam.com/framekit/rimage"
	"go.viam.com/framekit/utils"
)

// ErrEndOfStream is returned once a source without DontClose delivers an invalid frame after
// warm-up, and by every call on an Acquirer after that.
var ErrEndOfStream = errors.New("end of stream")

const (
	// MaxDiscardedFrames is how many frames a DontClose acquirer drops after an invalid frame.
	MaxDiscardedFrames = 20
	// PlaceholderSize is the width and height of the frame substituted for an invalid one.
	PlaceholderSize = 416
)

// State is the lifecycle position of an Acquirer.
type State int

// Acquirer states.
const (
	StateUninitialized State = iota
	StateWarmingUp
	StateStreaming
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateWarmingUp:
		return "warming up"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options configure an Acquirer.
type Options struct {
	// Name identifies the source in logs and metrics. A random name is used when empty.
	Name string
	// DontClose keeps the stream alive across invalid frames by substituting a placeholder.
	DontClose bool
	// Metrics receives frame counters; nil disables them.
	Metrics *Metrics
}

// Frame is one acquired frame. Planar is normalized RGB (or gray) ready for inference; Raw is the
// frame as the source delivered it.
type Frame struct {
	Planar *rimage.Planar
	Raw    *rimage.Native
}

// An Acquirer pulls frames from a single Source, handling warm-up and invalid frames. It is not
// safe for concurrent use.
type Acquirer struct {
	name      string
	src       Source
	dontClose bool
	logger    logging.Logger
	metrics   *Metrics

	state    State
	released bool
}

// NewAcquirer returns an Acquirer reading from src. The Acquirer owns src and closes it on Close.
func NewAcquirer(src Source, opts Options, logger logging.Logger) (*Acquirer, error) {
	if src == nil {
		return nil, rimage.NewInvalidInputError("NewAcquirer", "nil source")
	}
	name := opts.Name
	if name == "" {
		name = uuid.NewString()
	}
	if logger == nil {
		logger = logging.Global()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = noopMetrics()
	}
	return &Acquirer{
		name:      name,
		src:       src,
		dontClose: opts.DontClose,
		logger:    logger.Sublogger(name),
		metrics:   metrics,
	}, nil
}

// Name returns the name of the acquirer's source.
func (a *Acquirer) Name() string {
	return a.name
}

// State returns the current lifecycle state.
func (a *Acquirer) State() State {
	return a.state
}

// Source returns the underlying source.
func (a *Acquirer) Source() Source {
	return a.src
}

func (a *Acquirer) endOfStream() error {
	return errors.Wrapf(ErrEndOfStream, "source %q", a.name)
}

func (a *Acquirer) read() (*rimage.Native, error) {
	buf, err := a.src.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "reading from source %q", a.name)
	}
	if !rimage.IsEmptyBuffer(buf) {
		if err := rimage.CheckNative("read", buf); err != nil {
			return nil, errors.Wrapf(err, "malformed frame from source %q", a.name)
		}
	}
	a.metrics.FramesRead.Inc()
	return rimage.NativeFromBuffer(buf, rimage.OrderBGR), nil
}

// recoverPanic turns a panic during an acquisition call into a KindInternal error carrying the
// request and the source's frame rate.
func (a *Acquirer) recoverPanic(op string, errp *error, params string) {
	if r := recover(); r != nil {
		desc := fmt.Sprintf("source=%s fps=%d", a.name, FPS(a.src))
		if params != "" {
			desc += " " + params
		}
		*errp = rimage.NewInternalError(op, errors.Wrapf(utils.PanicToError(r), "panic (%s)", desc))
	}
}

func request(w, h, c int) string {
	return fmt.Sprintf("w=%d h=%d c=%d", w, h, c)
}

// NextFrame returns the next frame in the source's order. The first call blocks until the source
// delivers a valid frame or ctx is done; later calls return whatever the source produced, which may
// be the empty sentinel.
func (a *Acquirer) NextFrame(ctx context.Context) (frame *rimage.Native, err error) {
	ctx, span := trace.StartSpan(ctx, "capture::Acquirer::NextFrame")
	defer span.End()
	defer a.recoverPanic("NextFrame", &err, "")
	return a.nextFrame(ctx)
}

func (a *Acquirer) nextFrame(ctx context.Context) (*rimage.Native, error) {
	switch a.state {
	case StateClosed:
		return nil, a.endOfStream()
	case StateStreaming:
		return a.read()
	case StateUninitialized, StateWarmingUp:
	}

	a.state = StateWarmingUp
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := a.read()
		if err != nil {
			return nil, err
		}
		if frame.Valid() {
			a.state = StateStreaming
			a.logger.Infow("video stream started",
				"width", frame.Width(), "height", frame.Height(), "channels", frame.Channels(), "fps", FPS(a.src))
			return frame, nil
		}
		a.metrics.WarmupRetries.Inc()
	}
}

// acquire returns a valid frame or fails, applying the invalid-frame policy.
func (a *Acquirer) acquire(ctx context.Context) (*rimage.Native, error) {
	frame, err := a.nextFrame(ctx)
	if err != nil {
		return nil, err
	}
	if frame.Valid() {
		return frame, nil
	}
	a.metrics.InvalidFrames.Inc()

	if !a.dontClose {
		a.logger.Info("stream closed")
		a.state = StateClosed
		return nil, a.endOfStream()
	}

	a.logger.Warnw("invalid frame, substituting placeholder", "discarding", MaxDiscardedFrames)
	for i := 0; i < MaxDiscardedFrames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := a.read(); err != nil {
			return nil, err
		}
		a.metrics.DiscardedFrames.Inc()
	}
	a.metrics.Placeholders.Inc()
	placeholder := rimage.NewNative(PlaceholderSize, PlaceholderSize, 3)
	placeholder.Order = rimage.OrderBGR
	return placeholder, nil
}

func checkRequest(op string, w, h, c int) (int, error) {
	if w < 1 || h < 1 {
		return 0, rimage.NewInvalidInputError(op, "non-positive target size %dx%d", w, h)
	}
	switch c {
	case 0:
		return 3, nil
	case 1, 3, 4:
		return c, nil
	default:
		return 0, rimage.NewInvalidInputError(op, "unsupported channel count %d", c)
	}
}

// toPlanar converts img to c channels in RGB order and normalizes it.
func toPlanar(img *rimage.Native, c int) (*rimage.Planar, error) {
	var err error
	if img.Channels() != c {
		if img, err = rimage.ConvertChannels(img, c); err != nil {
			return nil, err
		}
	}
	if c > 1 && img.Order == rimage.OrderBGR {
		img = img.SwapRB()
	}
	return rimage.ToPlanar(img)
}

// NextFrameResized acquires a frame and stretches it to w x h with c channels (0 means 3). An
// invalid frame either ends the stream with ErrEndOfStream or, with DontClose, is replaced by a
// black placeholder after discarding MaxDiscardedFrames frames.
func (a *Acquirer) NextFrameResized(ctx context.Context, w, h, c int) (frame Frame, err error) {
	ctx, span := trace.StartSpan(ctx, "capture::Acquirer::NextFrameResized")
	defer span.End()
	defer a.recoverPanic("NextFrameResized", &err, request(w, h, c))

	c, err = checkRequest("NextFrameResized", w, h, c)
	if err != nil {
		return Frame{}, err
	}
	raw, err := a.acquire(ctx)
	if err != nil {
		return Frame{}, err
	}
	sized, err := rimage.Resize(raw, w, h)
	if err != nil {
		return Frame{}, err
	}
	planar, err := toPlanar(sized, c)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Planar: planar, Raw: raw}, nil
}

// NextFrameLetterboxed is NextFrameResized with aspect-preserving scaling: the frame is fitted into
// w x h, centered and padded with mid gray.
func (a *Acquirer) NextFrameLetterboxed(ctx context.Context, w, h, c int) (frame Frame, err error) {
	ctx, span := trace.StartSpan(ctx, "capture::Acquirer::NextFrameLetterboxed")
	defer span.End()
	defer a.recoverPanic("NextFrameLetterboxed", &err, request(w, h, c))

	c, err = checkRequest("NextFrameLetterboxed", w, h, c)
	if err != nil {
		return Frame{}, err
	}
	raw, err := a.acquire(ctx)
	if err != nil {
		return Frame{}, err
	}
	planar, err := toPlanar(raw, c)
	if err != nil {
		return Frame{}, err
	}
	boxed, err := rimage.Letterbox(planar, w, h)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Planar: boxed, Raw: raw}, nil
}

// ConsumeFrame reads one frame and drops it.
func (a *Acquirer) ConsumeFrame(ctx context.Context) (err error) {
	ctx, span := trace.StartSpan(ctx, "capture::Acquirer::ConsumeFrame")
	defer span.End()
	defer a.recoverPanic("ConsumeFrame", &err, "")

	if a.state == StateClosed {
		return a.endOfStream()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err = a.read()
	return err
}

// Close moves the acquirer to StateClosed and releases the source. It is safe to call more than once.
func (a *Acquirer) Close() error {
	a.state = StateClosed
	if a.released {
		return nil
	}
	a.released = true
	return errors.Wrapf(a.src.Close(), "closing source %q", a.name)
}
