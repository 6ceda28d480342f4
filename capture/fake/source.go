// Package fake implements a scripted in-memory capture source.
package fake

import (
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/framekit/capture"
	"go.viam.com/framekit/rimage"
)

// Source plays back a fixed list of frames. Once the script is exhausted it delivers empty frames,
// or starts over when Loop is set.
type Source struct {
	mu     sync.Mutex
	frames []rimage.NativeBuffer
	pos    int
	reads  int
	closed bool
	props  map[capture.Property]float64

	// Loop restarts the script when it runs out.
	Loop bool
	// ReadErr, when set, is returned by every Read.
	ReadErr error
}

// NewSource returns a Source that delivers frames in order.
func NewSource(frames ...rimage.NativeBuffer) *Source {
	return &Source{frames: frames, props: map[capture.Property]float64{}}
}

// IsOpened reports whether Close has not been called.
func (s *Source) IsOpened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Read returns the next scripted frame.
func (s *Source) Read() (rimage.NativeBuffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("source is closed")
	}
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	s.reads++
	if s.pos >= len(s.frames) {
		if !s.Loop || len(s.frames) == 0 {
			return rimage.EmptyNative(), nil
		}
		s.pos = 0
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

// Reads returns how many frames have been read.
func (s *Source) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Get returns the position and frame count from the script and any other property from SetProperty.
func (s *Source) Get(prop capture.Property) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch prop {
	case capture.PropPosFrames:
		return float64(s.pos)
	case capture.PropFrameCount:
		return float64(len(s.frames))
	default:
		return s.props[prop]
	}
}

// Set seeks when prop is PropPosFrames and stores any other property.
func (s *Source) Set(prop capture.Property, value float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prop == capture.PropPosFrames {
		idx := int(value)
		if idx < 0 || idx > len(s.frames) {
			return false
		}
		s.pos = idx
		return true
	}
	s.props[prop] = value
	return true
}

// SetProperty is Set without the result, for test setup.
func (s *Source) SetProperty(prop capture.Property, value float64) {
	s.Set(prop, value)
}

// Close marks the source closed.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Gradient returns a w x h x c frame in BGR order whose values ramp diagonally, offset by shift.
func Gradient(w, h, c, shift int) *rimage.Native {
	img := rimage.NewNative(w, h, c)
	img.Order = rimage.OrderBGR
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for k := 0; k < c; k++ {
				img.Set(x, y, k, uint8((x+y+shift+k*64)%256))
			}
		}
	}
	return img
}
