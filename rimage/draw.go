package rimage

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

var font *truetype.Font

// init sets up the fonts we want to use.
func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Font returns the font we use for drawing.
func Font() *truetype.Font {
	return font
}

// NewDrawContext returns a gg context holding an RGB copy of img.
func NewDrawContext(img *Native) *gg.Context {
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img.ToImage(), image.Point{}, draw.Src)
	return gg.NewContextForRGBA(rgba)
}

// NativeFromDrawContext reads the context back into a Native with the requested channel count
// and order.
func NativeFromDrawContext(dc *gg.Context, channels int, order ChannelOrder) (*Native, error) {
	out := NewNativeFromImage(dc.Image())
	if out.Channels() != channels {
		var err error
		if out, err = ConvertChannels(out, channels); err != nil {
			return nil, err
		}
	}
	if order == OrderBGR {
		out = out.SwapRB()
	}
	return out, nil
}

// DrawLabel writes text at p on a filled background of color bg, sized to fit the text.
func DrawLabel(dc *gg.Context, text string, p image.Point, fg, bg color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(Font(), &truetype.Options{Size: size}))
	tw, th := dc.MeasureString(text)
	top := float64(p.Y) - th - 4
	if top < 0 {
		top = float64(p.Y)
	}
	dc.SetColor(bg)
	dc.DrawRectangle(float64(p.X), top, tw+4, th+4)
	dc.Fill()
	dc.SetColor(fg)
	dc.DrawStringAnchored(text, float64(p.X)+2, top+2, 0, 1)
}

// DrawRectangleEmpty draws the outline of r into the context with the given line width.
func DrawRectangleEmpty(dc *gg.Context, r image.Rectangle, c color.Color, width float64) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	dc.Stroke()
}
