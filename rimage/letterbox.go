package rimage

// LetterboxPad is the gray level used to fill the area around letterboxed content.
const LetterboxPad = 0.5

// LetterboxRect returns the size and top-left offset of srcW x srcH content scaled to fit inside
// w x h without distortion.
func LetterboxRect(srcW, srcH, w, h int) (newW, newH, offX, offY int) {
	if float64(w)/float64(srcW) < float64(h)/float64(srcH) {
		newW = w
		newH = srcH * w / srcW
	} else {
		newH = h
		newW = srcW * h / srcH
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return newW, newH, (w - newW) / 2, (h - newH) / 2
}

// Letterbox scales src to fit inside w x h preserving its aspect ratio, centers it and pads the
// remaining area with LetterboxPad.
func Letterbox(src *Planar, w, h int) (out *Planar, err error) {
	const op = "Letterbox"
	if err := checkPlanar(op, src); err != nil {
		return nil, err
	}
	if err := checkSize(op, w, h); err != nil {
		return nil, err
	}
	defer recoverInternal(op, &err, dims(w, h, src.channels))

	newW, newH, offX, offY := LetterboxRect(src.width, src.height, w, h)
	resized, err := ResizePlanar(src, newW, newH)
	if err != nil {
		return nil, err
	}
	boxed := NewPlanar(w, h, src.channels)
	boxed.Fill(LetterboxPad)
	for k := 0; k < src.channels; k++ {
		in, dst := resized.Plane(k), boxed.Plane(k)
		for y := 0; y < newH; y++ {
			copy(dst[(offY+y)*w+offX:(offY+y)*w+offX+newW], in[y*newW:(y+1)*newW])
		}
	}
	return boxed, nil
}
