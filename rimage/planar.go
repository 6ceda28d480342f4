package rimage

import (
	"gorgonia.org/tensor"
)

// Planar is a normalized channel-planar float buffer: c contiguous planes of h*w samples,
// nominally in [0, 1], in logical RGB order.
type Planar struct {
	width, height, channels int
	data                    []float32
}

// NewPlanar allocates a zeroed w x h x c planar buffer. Non-positive dimensions produce the empty
// sentinel.
func NewPlanar(w, h, c int) *Planar {
	if w < 1 || h < 1 || c < 1 {
		return &Planar{}
	}
	return &Planar{width: w, height: h, channels: c, data: make([]float32, w*h*c)}
}

// Width returns the width in pixels.
func (p *Planar) Width() int { return p.width }

// Height returns the height in pixels.
func (p *Planar) Height() int { return p.height }

// Channels returns the number of planes.
func (p *Planar) Channels() int { return p.channels }

// Data returns the backing slice, plane after plane.
func (p *Planar) Data() []float32 { return p.data }

// Valid reports whether the buffer has positive dimensions.
func (p *Planar) Valid() bool {
	return p != nil && p.width > 0 && p.height > 0 && p.channels > 0
}

// At returns the sample of channel k at (x, y).
func (p *Planar) At(x, y, k int) float32 {
	return p.data[k*p.width*p.height+y*p.width+x]
}

// Set stores v as the sample of channel k at (x, y).
func (p *Planar) Set(x, y, k int, v float32) {
	p.data[k*p.width*p.height+y*p.width+x] = v
}

// Plane returns the backing samples of channel k.
func (p *Planar) Plane(k int) []float32 {
	n := p.width * p.height
	return p.data[k*n : (k+1)*n]
}

// Clone returns an independent copy.
func (p *Planar) Clone() *Planar {
	if !p.Valid() {
		return &Planar{}
	}
	out := &Planar{width: p.width, height: p.height, channels: p.channels, data: make([]float32, len(p.data))}
	copy(out.data, p.data)
	return out
}

// Fill sets every sample to v.
func (p *Planar) Fill(v float32) {
	for i := range p.data {
		p.data[i] = v
	}
}

// Tensor returns a (c, h, w) float32 tensor sharing the buffer's backing slice.
func (p *Planar) Tensor() *tensor.Dense {
	return tensor.New(tensor.WithShape(p.channels, p.height, p.width), tensor.WithBacking(p.data))
}

// PlanarFromTensor wraps a (c, h, w) float32 tensor as a Planar without copying.
func PlanarFromTensor(t *tensor.Dense) (*Planar, error) {
	const op = "PlanarFromTensor"
	if t == nil {
		return nil, NewInvalidInputError(op, "nil tensor")
	}
	shape := t.Shape()
	if len(shape) != 3 {
		return nil, NewInvalidInputError(op, "expected a (c, h, w) tensor, got shape %v", shape)
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, NewInvalidInputError(op, "expected float32 data, got %v", t.Dtype())
	}
	p := &Planar{channels: shape[0], height: shape[1], width: shape[2], data: data}
	if err := checkPlanar(op, p); err != nil {
		return nil, err
	}
	return p, nil
}
