package rimage

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
	"go.uber.org/multierr"
	"golang.org/x/image/draw"
)

// JPEGQuality is the quality SaveNative encodes JPEG files with.
const JPEGQuality = 75

// LoadNative decodes the image at path. channels selects the layout: 0 keeps the stored one,
// 1 forces grayscale and 3 forces color. EXIF orientation is applied. The result is in RGB order.
// Besides the formats imaging reads, PPM and QOI files are accepted.
func LoadNative(path string, channels int) (*Native, error) {
	const op = "LoadNative"
	if channels != 0 && channels != 1 && channels != 3 {
		return nil, NewInvalidInputError(op, "unsupported channel count %d for %q", channels, path)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &Error{Kind: KindInvalidInput, Op: op, Err: errors.Wrapf(err, "cannot load image %q", path)}
	}
	native := NewNativeFromImage(img)
	if !native.Valid() {
		return nil, NewInvalidInputError(op, "image %q has no pixels", path)
	}
	if channels == 0 || channels == native.Channels() {
		return native, nil
	}
	converted, err := ConvertChannels(native, channels)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load image %q", path)
	}
	return converted, nil
}

// SaveNative encodes img to path, choosing the format from the extension: .png at best
// compression, .jpg/.jpeg at JPEGQuality, .ppm and .qoi. BGR buffers are swapped back before
// encoding.
func SaveNative(img *Native, path string) error {
	const op = "SaveNative"
	if err := checkNative(op, img); err != nil {
		return err
	}
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = imaging.Save(img.ToImage(), path, imaging.PNGCompressionLevel(png.BestCompression))
	case ".jpg", ".jpeg":
		err = imaging.Save(img.ToImage(), path, imaging.JPEGQuality(JPEGQuality))
	case ".ppm":
		err = encodeFile(path, toRGBA(img.ToImage()), ppm.Encode)
	case ".qoi":
		err = encodeFile(path, img.ToImage(), qoi.Encode)
	default:
		return NewInvalidInputError(op, "unsupported image extension for %q", path)
	}
	if err != nil {
		return errors.Wrapf(err, "cannot save image %q", path)
	}
	return nil
}

// toRGBA converts img to the premultiplied RGBA model ppm.Encode requires.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

func encodeFile(path string, img image.Image, encode func(io.Writer, image.Image) error) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return encode(f, img)
}
