package objectdetection

import (
	"image"
	"image/color"
	"math"

	"go.viam.com/framekit/rimage"
)

var paletteColors = [6][3]float64{{1, 0, 1}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}

// paletteComponent interpolates channel c of the palette at position x of n.
func paletteComponent(c, x, n int) float64 {
	ratio := float64(x) / float64(n) * 5
	i, j := int(math.Floor(ratio)), int(math.Ceil(ratio))
	ratio -= float64(i)
	return (1-ratio)*paletteColors[i][c] + ratio*paletteColors[j][c]
}

// ClassColor returns the drawing color of class out of classes.
func ClassColor(class, classes int) color.NRGBA {
	if classes < 1 {
		classes = 1
	}
	offset := class * 123457 % classes
	to8 := func(v float64) uint8 { return uint8(math.Min(255, v*256)) }
	return color.NRGBA{
		R: to8(paletteComponent(2, offset, classes)),
		G: to8(paletteComponent(1, offset, classes)),
		B: to8(paletteComponent(0, offset, classes)),
		A: 255,
	}
}

// Overlay draws the boxes and labels of dets onto a copy of img and returns it with img's channel
// count and order. An in-progress or completed sel is outlined as well; sel may be nil.
func Overlay(img *rimage.Native, dets []Detection, names []string, thresh float64, sel *Selection) (*rimage.Native, error) {
	if img == nil || !img.Valid() {
		return nil, rimage.NewInvalidInputError("Overlay", "nil or empty image")
	}
	w, h := img.Width(), img.Height()
	dc := rimage.NewDrawContext(img)
	lineWidth := math.Max(1, float64(h)*0.002)
	fontSize := math.Max(10, float64(h)*0.02)

	for _, l := range Labels(dets, names, thresh) {
		b := l.Box
		left := int((b.X - b.W/2) * float64(w))
		right := int((b.X + b.W/2) * float64(w))
		top := int((b.Y - b.H/2) * float64(h))
		bot := int((b.Y + b.H/2) * float64(h))
		if left < 0 {
			left = 0
		}
		if right > w-1 {
			right = w - 1
		}
		if top < 0 {
			top = 0
		}
		if bot > h-1 {
			bot = h - 1
		}
		c := ClassColor(l.Class, len(names))
		rimage.DrawRectangleEmpty(dc, image.Rect(left, top, right, bot), c, lineWidth)
		rimage.DrawLabel(dc, l.Text, image.Pt(left, top), color.Black, c, fontSize)
	}

	if sel != nil && (sel.Drawing() || sel.Selected()) {
		rimage.DrawRectangleEmpty(dc, sel.Rect(), color.NRGBA{R: 255, G: 255, B: 255, A: 255}, lineWidth)
	}
	return rimage.NativeFromDrawContext(dc, img.Channels(), img.Order)
}
