// Package rimage holds the two pixel representations of the frame pipeline and the conversions,
// resampling and photometric operations between them.
package rimage

import (
	"image"
	"image/color"
	"reflect"
)

// ChannelOrder records which of the two interleaved orders a Native buffer is in.
type ChannelOrder int

const (
	// OrderRGB is the logical order used by everything downstream of a load or acquire.
	OrderRGB ChannelOrder = iota
	// OrderBGR is the order decoders and capture backends produce and encoders expect.
	OrderBGR
)

func (o ChannelOrder) String() string {
	if o == OrderBGR {
		return "BGR"
	}
	return "RGB"
}

// NativeBuffer is read access to a row-major, channel-interleaved 8-bit pixel buffer.
// Stride is the distance in bytes between two rows and is at least Width()*Channels().
type NativeBuffer interface {
	Width() int
	Height() int
	Channels() int
	Stride() int
	Bytes() []byte
}

// Native is an owned interleaved 8-bit buffer.
type Native struct {
	width, height, channels int
	stride                  int
	pix                     []byte

	Order ChannelOrder
}

// NewNative allocates a zeroed w x h x c buffer with a tight stride.
func NewNative(w, h, c int) *Native {
	return NewNativeWithStride(w, h, c, w*c)
}

// NewNativeWithStride allocates a zeroed buffer whose rows are stride bytes apart. A stride smaller
// than w*c is widened to w*c.
func NewNativeWithStride(w, h, c, stride int) *Native {
	if w < 1 || h < 1 || c < 1 {
		return EmptyNative()
	}
	if stride < w*c {
		stride = w * c
	}
	return &Native{width: w, height: h, channels: c, stride: stride, pix: make([]byte, stride*h)}
}

// EmptyNative returns the zero-dimension sentinel that producers hand out for "no frame".
func EmptyNative() *Native {
	return &Native{}
}

// NativeFromBuffer copies any NativeBuffer into a tightly packed Native tagged with order.
// Invalid buffers produce the empty sentinel.
func NativeFromBuffer(b NativeBuffer, order ChannelOrder) *Native {
	if IsEmptyBuffer(b) {
		return EmptyNative()
	}
	w, h, c := b.Width(), b.Height(), b.Channels()
	out := NewNative(w, h, c)
	out.Order = order
	src := b.Bytes()
	row := w * c
	for y := 0; y < h; y++ {
		copy(out.pix[y*row:(y+1)*row], src[y*b.Stride():y*b.Stride()+row])
	}
	return out
}

// NewNativeFromImage converts a stdlib image into an RGB Native. Gray images produce one channel,
// images with a non-opaque alpha produce four and everything else three.
func NewNativeFromImage(img image.Image) *Native {
	if img == nil {
		return EmptyNative()
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	switch typed := img.(type) {
	case *image.Gray:
		out := NewNative(w, h, 1)
		for y := 0; y < h; y++ {
			copy(out.pix[y*w:(y+1)*w], typed.Pix[y*typed.Stride:y*typed.Stride+w])
		}
		return out
	case *image.NRGBA:
		c := 3
		if !typed.Opaque() {
			c = 4
		}
		out := NewNative(w, h, c)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*typed.Stride + x*4
				copy(out.pix[y*out.stride+x*c:y*out.stride+x*c+c], typed.Pix[i:i+c])
			}
		}
		return out
	}

	c := 3
	if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
		c = 4
	}
	out := NewNative(w, h, c)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			nc := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := y*out.stride + x*c
			out.pix[i], out.pix[i+1], out.pix[i+2] = nc.R, nc.G, nc.B
			if c == 4 {
				out.pix[i+3] = nc.A
			}
		}
	}
	return out
}

// Width returns the width in pixels.
func (n *Native) Width() int { return n.width }

// Height returns the height in pixels.
func (n *Native) Height() int { return n.height }

// Channels returns the number of interleaved channels.
func (n *Native) Channels() int { return n.channels }

// Stride returns the distance in bytes between rows.
func (n *Native) Stride() int { return n.stride }

// Bytes returns the backing slice. It is not a copy.
func (n *Native) Bytes() []byte { return n.pix }

// Valid reports whether the buffer has positive dimensions.
func (n *Native) Valid() bool {
	return n != nil && n.width > 0 && n.height > 0 && n.channels > 0
}

// Bounds returns the pixel rectangle of the buffer.
func (n *Native) Bounds() image.Rectangle {
	return image.Rect(0, 0, n.width, n.height)
}

func (n *Native) offset(x, y, k int) int {
	return y*n.stride + x*n.channels + k
}

// At returns channel k of pixel (x, y).
func (n *Native) At(x, y, k int) uint8 {
	return n.pix[n.offset(x, y, k)]
}

// Set stores v in channel k of pixel (x, y).
func (n *Native) Set(x, y, k int, v uint8) {
	n.pix[n.offset(x, y, k)] = v
}

// Clone returns an independent copy that keeps the stride.
func (n *Native) Clone() *Native {
	if !n.Valid() {
		return EmptyNative()
	}
	out := *n
	out.pix = make([]byte, len(n.pix))
	copy(out.pix, n.pix)
	return &out
}

// SwapRB returns a copy with channels 0 and 2 exchanged and Order toggled. Buffers with fewer than
// three channels are copied unchanged apart from the order tag.
func (n *Native) SwapRB() *Native {
	out := n.Clone()
	if !out.Valid() {
		return out
	}
	if out.Order == OrderRGB {
		out.Order = OrderBGR
	} else {
		out.Order = OrderRGB
	}
	if out.channels < 3 {
		return out
	}
	for y := 0; y < out.height; y++ {
		row := out.pix[y*out.stride : y*out.stride+out.width*out.channels]
		for i := 0; i < len(row); i += out.channels {
			row[i], row[i+2] = row[i+2], row[i]
		}
	}
	return out
}

// ToImage converts the buffer to a stdlib image in RGB order: *image.Gray for one channel,
// *image.NRGBA otherwise. Two-channel buffers are treated as gray plus alpha.
func (n *Native) ToImage() image.Image {
	src := n
	if n.Order == OrderBGR {
		src = n.SwapRB()
	}
	w, h, c := src.width, src.height, src.channels
	if c == 1 {
		out := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+w], src.pix[y*src.stride:y*src.stride+w])
		}
		return out
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := src.offset(x, y, 0)
			o := y*out.Stride + x*4
			switch c {
			case 2:
				out.Pix[o], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = src.pix[i], src.pix[i], src.pix[i], src.pix[i+1]
			case 3:
				out.Pix[o], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = src.pix[i], src.pix[i+1], src.pix[i+2], 255
			default:
				copy(out.Pix[o:o+4], src.pix[i:i+4])
			}
		}
	}
	return out
}

// IsEmptyBuffer reports whether b is nil or has no pixels, the sentinel a source uses for "no frame".
func IsEmptyBuffer(b NativeBuffer) bool {
	return isNilBuffer(b) || b.Width() < 1 || b.Height() < 1 || b.Channels() < 1
}

func isNilBuffer(b NativeBuffer) bool {
	if b == nil {
		return true
	}
	v := reflect.ValueOf(b)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
