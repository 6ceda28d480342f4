//go:build no_cgo

package capture

import "github.com/pkg/errors"

var errNoVideoBackend = errors.New("video capture is not available in no_cgo builds")

// OpenVideo is unavailable without cgo.
func OpenVideo(path string) (Source, error) {
	return nil, errors.Wrapf(errNoVideoBackend, "cannot open video %q", path)
}

// OpenWebcam is unavailable without cgo.
func OpenWebcam(index int) (Source, error) {
	return nil, errors.Wrapf(errNoVideoBackend, "cannot open webcam %d", index)
}
