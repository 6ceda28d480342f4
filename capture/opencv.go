//go:build !no_cgo

package capture

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"go.viam.com/framekit/rimage"
)

// matBuffer exposes an 8-bit gocv.Mat as a rimage.NativeBuffer.
type matBuffer struct {
	w, h, c int
	pix     []byte
}

func newMatBuffer(m *gocv.Mat) (*matBuffer, error) {
	if m.Empty() {
		return &matBuffer{}, nil
	}
	if m.ElemSize() != m.Channels() {
		return nil, errors.Errorf("unsupported frame type %v, want 8-bit channels", m.Type())
	}
	return &matBuffer{w: m.Cols(), h: m.Rows(), c: m.Channels(), pix: m.ToBytes()}, nil
}

func (b *matBuffer) Width() int    { return b.w }
func (b *matBuffer) Height() int   { return b.h }
func (b *matBuffer) Channels() int { return b.c }
func (b *matBuffer) Stride() int   { return b.w * b.c }
func (b *matBuffer) Bytes() []byte { return b.pix }

// videoSource is a Source backed by a gocv.VideoCapture.
type videoSource struct {
	vc    *gocv.VideoCapture
	frame gocv.Mat
}

// OpenVideo opens a video file or stream URL.
func OpenVideo(path string) (Source, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open video %q", path)
	}
	return newVideoSource(vc), nil
}

// OpenWebcam opens the camera device with the given index.
func OpenWebcam(index int) (Source, error) {
	vc, err := gocv.VideoCaptureDevice(index)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open webcam %d", index)
	}
	return newVideoSource(vc), nil
}

func newVideoSource(vc *gocv.VideoCapture) *videoSource {
	return &videoSource{vc: vc, frame: gocv.NewMat()}
}

func (s *videoSource) IsOpened() bool {
	return s.vc.IsOpened()
}

// Read grabs the next frame. A failed grab is reported as an empty frame.
func (s *videoSource) Read() (rimage.NativeBuffer, error) {
	if !s.vc.Read(&s.frame) {
		return &matBuffer{}, nil
	}
	return newMatBuffer(&s.frame)
}

func (s *videoSource) Get(prop Property) float64 {
	return s.vc.Get(gocv.VideoCaptureProperties(prop))
}

func (s *videoSource) Set(prop Property, value float64) bool {
	if !s.vc.IsOpened() {
		return false
	}
	s.vc.Set(gocv.VideoCaptureProperties(prop), value)
	return true
}

func (s *videoSource) Close() error {
	return multierr.Combine(s.frame.Close(), s.vc.Close())
}
