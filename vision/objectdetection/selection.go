package objectdetection

import (
	"image"

	"go.uber.org/atomic"
)

// Selection is a rectangle chosen interactively on a displayed frame. Each coordinate is an
// independent atomic cell so a UI goroutine can update it while the render loop reads it.
type Selection struct {
	xStart, yStart atomic.Int32
	xEnd, yEnd     atomic.Int32
	drawing        atomic.Bool
	selected       atomic.Bool
}

// Begin starts a new selection at (x, y).
func (s *Selection) Begin(x, y int) {
	s.selected.Store(false)
	s.xStart.Store(int32(x))
	s.yStart.Store(int32(y))
	s.xEnd.Store(int32(x))
	s.yEnd.Store(int32(y))
	s.drawing.Store(true)
}

// Update moves the free corner of an in-progress selection.
func (s *Selection) Update(x, y int) {
	if !s.drawing.Load() {
		return
	}
	s.xEnd.Store(int32(x))
	s.yEnd.Store(int32(y))
}

// Finish completes the selection at (x, y).
func (s *Selection) Finish(x, y int) {
	s.Update(x, y)
	s.drawing.Store(false)
	s.selected.Store(true)
}

// Reset clears the selection.
func (s *Selection) Reset() {
	s.drawing.Store(false)
	s.selected.Store(false)
}

// Drawing reports whether a selection is in progress.
func (s *Selection) Drawing() bool {
	return s.drawing.Load()
}

// Selected reports whether a completed selection is available.
func (s *Selection) Selected() bool {
	return s.selected.Load()
}

// Rect returns the canonical selection rectangle.
func (s *Selection) Rect() image.Rectangle {
	return image.Rect(int(s.xStart.Load()), int(s.yStart.Load()), int(s.xEnd.Load()), int(s.yEnd.Load())).Canon()
}
