// Package objectdetection holds the detection records exchanged with the renderer and the
// augmentation pipeline, and draws them onto native frames.
package objectdetection

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// DontShow is the class name prefix that hides a class from rendering.
const DontShow = "dont_show"

// Box is a normalized center-format box: X, Y is the center and W, H the size, all as fractions
// of the image dimensions.
type Box struct {
	X, Y, W, H float64
}

// Clamp replaces NaN or infinite fields with 0.5 and caps every field at 1.
func (b Box) Clamp() Box {
	fix := func(v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0.5
		}
		return math.Min(v, 1)
	}
	return Box{fix(b.X), fix(b.Y), fix(b.W), fix(b.H)}
}

// Rect converts the box to a pixel rectangle of a w x h image. Edges are truncated toward zero
// and the result is clipped to the image.
func (b Box) Rect(w, h int) image.Rectangle {
	left := int((b.X - b.W/2) * float64(w))
	top := int((b.Y - b.H/2) * float64(h))
	width := int(b.W * float64(w))
	height := int(b.H * float64(h))
	return image.Rect(left, top, left+width, top+height).Intersect(image.Rect(0, 0, w, h))
}

// Detection is one detected object: its box, a probability per class and optional tracking data.
type Detection struct {
	Box     Box
	Prob    []float64
	TrackID int
	Sim     float64
}

// Label is the rendering summary of one detection.
type Label struct {
	// Class is the first class above the threshold; it selects the color.
	Class int
	Text  string
	Box   Box
}

// Labels returns one Label for every detection with at least one visible class whose probability
// exceeds thresh. Classes named with the DontShow prefix are skipped.
func Labels(dets []Detection, names []string, thresh float64) []Label {
	var out []Label
	for _, d := range dets {
		var sb strings.Builder
		class := -1
		for j, p := range d.Prob {
			if j >= len(names) || p <= thresh || strings.HasPrefix(names[j], DontShow) {
				continue
			}
			if class < 0 {
				class = j
				sb.WriteString(names[j])
				if d.TrackID != 0 {
					fmt.Fprintf(&sb, " (id: %d)", d.TrackID)
				}
				fmt.Fprintf(&sb, " (%2.0f%%)", p*100)
				continue
			}
			sb.WriteString(", ")
			sb.WriteString(names[j])
		}
		if class >= 0 {
			out = append(out, Label{Class: class, Text: sb.String(), Box: d.Box.Clamp()})
		}
	}
	return out
}
