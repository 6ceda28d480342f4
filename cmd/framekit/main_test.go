package main

import (
	"context"
	"errors"
	"testing"

	"go.viam.com/test"

	"go.viam.com/framekit/capture"
	"go.viam.com/framekit/logging"
)

func TestIndexedPath(t *testing.T) {
	test.That(t, indexedPath("out/sample.png", 3), test.ShouldEqual, "out/sample_3.png")
	test.That(t, indexedPath("sample", 1), test.ShouldEqual, "sample_1")
}

func TestFakeSource(t *testing.T) {
	src := fakeSource()
	test.That(t, capture.FPS(src), test.ShouldEqual, fakeFPS)

	acq, err := capture.NewAcquirer(src, capture.Options{Name: "fake"}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	defer acq.Close()

	n := 0
	for {
		frame, err := acq.NextFrameLetterboxed(context.Background(), 416, 416, 3)
		if errors.Is(err, capture.ErrEndOfStream) {
			break
		}
		test.That(t, err, test.ShouldBeNil)
		test.That(t, frame.Planar.Width(), test.ShouldEqual, 416)
		test.That(t, frame.Raw.Width(), test.ShouldEqual, 640)
		n++
	}
	test.That(t, n, test.ShouldEqual, fakeFrameCount)

	summary := probeSummary(acq, n, 0)
	test.That(t, summary, test.ShouldContainSubstring, "fake")
	test.That(t, summary, test.ShouldContainSubstring, "640x480")
	test.That(t, summary, test.ShouldContainSubstring, "closed")
}
