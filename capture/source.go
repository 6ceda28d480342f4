// Package capture acquires frames from a video source and normalizes them for inference.
package capture

import (
	"math"

	"go.viam.com/framekit/rimage"
)

// DefaultFPS is reported for sources that cannot tell their frame rate.
const DefaultFPS = 25

// Property identifies a capture property. The values follow the OpenCV numbering so backends can
// pass them through.
type Property int

// Capture properties.
const (
	PropPosMsec     Property = 0
	PropPosFrames   Property = 1
	PropFrameWidth  Property = 3
	PropFrameHeight Property = 4
	PropFPS         Property = 5
	PropFrameCount  Property = 7
)

func (p Property) String() string {
	switch p {
	case PropPosMsec:
		return "pos_msec"
	case PropPosFrames:
		return "pos_frames"
	case PropFrameWidth:
		return "frame_width"
	case PropFrameHeight:
		return "frame_height"
	case PropFPS:
		return "fps"
	case PropFrameCount:
		return "frame_count"
	default:
		return "unknown"
	}
}

// A Source is an open video stream or device. Read returns frames in the backend's native (BGR)
// order; a frame with zero dimensions means the source had nothing to deliver this time.
type Source interface {
	IsOpened() bool
	Read() (rimage.NativeBuffer, error)
	Get(prop Property) float64
	Set(prop Property, value float64) bool
	Close() error
}

func opened(src Source) bool {
	return src != nil && src.IsOpened()
}

// FPS returns the rounded frame rate of src, or DefaultFPS when src is unavailable or does not
// report a usable rate.
func FPS(src Source) int {
	if !opened(src) {
		return DefaultFPS
	}
	fps := src.Get(PropFPS)
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return DefaultFPS
	}
	return int(math.Round(fps))
}

// GetProperty returns the value of prop on src, or 0 when src is unavailable.
func GetProperty(src Source, prop Property) float64 {
	if !opened(src) {
		return 0
	}
	return src.Get(prop)
}

// FrameCount returns the number of frames src reports, or 0 when unknown.
func FrameCount(src Source) int {
	n := GetProperty(src, PropFrameCount)
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0
	}
	return int(n)
}

// SetPositionFrame seeks src to frame index. It reports whether the backend accepted the seek.
func SetPositionFrame(src Source, index int) bool {
	if !opened(src) || index < 0 {
		return false
	}
	return src.Set(PropPosFrames, float64(index))
}
