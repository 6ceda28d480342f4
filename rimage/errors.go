package rimage

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/framekit/utils"
)

// ErrorKind classifies the failures of the pixel pipeline.
type ErrorKind int

const (
	// KindInvalidInput is a nil or empty buffer, an unreadable file or an unsupported parameter.
	KindInvalidInput ErrorKind = iota
	// KindTransient is a capture source that momentarily produced no usable frame.
	KindTransient
	// KindInternal is an unexpected failure inside a numeric routine.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindTransient:
		return "transient"
	case KindInternal:
		return "internal"
	default:
		return fmt.Sprintf("unknown kind %d", int(k))
	}
}

var (
	// ErrInvalidInput matches every error of kind KindInvalidInput via errors.Is.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTransient matches every error of kind KindTransient via errors.Is.
	ErrTransient = errors.New("transient failure")
	// ErrInternal matches every error of kind KindInternal via errors.Is.
	ErrInternal = errors.New("internal failure")
)

// Error is the typed error returned by the pixel pipeline. Op names the failing operation.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrTransient:
		return e.Kind == KindTransient
	case ErrInternal:
		return e.Kind == KindInternal
	}
	return false
}

// NewInvalidInputError returns a KindInvalidInput error for op.
func NewInvalidInputError(op, format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: errors.Errorf(format, args...)}
}

// NewInternalError wraps err as a KindInternal error for op.
func NewInternalError(op string, err error) error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// recoverInternal turns a panic in the deferring function into a KindInternal error stored in
// *errp. params describe the call for diagnosis (usually the requested output dimensions).
// Deferring functions assign their buffer result only in the final return, so a recovered panic
// leaves it nil.
func recoverInternal(op string, errp *error, params string) {
	if r := recover(); r != nil {
		*errp = NewInternalError(op, errors.Wrapf(utils.PanicToError(r), "panic (%s)", params))
	}
}

// CheckNative returns a KindInvalidInput error for op when src is nil, empty or has fewer bytes than
// its dimensions and stride need.
func CheckNative(op string, src NativeBuffer) error {
	return checkNative(op, src)
}

func checkNative(op string, src NativeBuffer) error {
	if isNilBuffer(src) {
		return NewInvalidInputError(op, "nil source buffer")
	}
	if src.Width() < 1 || src.Height() < 1 || src.Channels() < 1 {
		return NewInvalidInputError(op, "empty source buffer %dx%dx%d", src.Width(), src.Height(), src.Channels())
	}
	if src.Stride() < src.Width()*src.Channels() || len(src.Bytes()) < (src.Height()-1)*src.Stride()+src.Width()*src.Channels() {
		return NewInvalidInputError(op, "source buffer too small for %dx%dx%d with stride %d",
			src.Width(), src.Height(), src.Channels(), src.Stride())
	}
	return nil
}

func checkPlanar(op string, src *Planar) error {
	if src == nil {
		return NewInvalidInputError(op, "nil source buffer")
	}
	if !src.Valid() {
		return NewInvalidInputError(op, "empty source buffer %dx%dx%d", src.Width(), src.Height(), src.Channels())
	}
	return nil
}

func checkSize(op string, w, h int) error {
	if w < 1 || h < 1 {
		return NewInvalidInputError(op, "non-positive target size %dx%d", w, h)
	}
	return nil
}

func dims(w, h, c int) string {
	return fmt.Sprintf("w=%d h=%d c=%d", w, h, c)
}
