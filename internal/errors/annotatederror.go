// Package errors augments the standard library errors with annotations that
// carry structured logging attributes and the source location of the wrap site.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

// annotatedError is an error with slog attributes and the file:line of the
// place where it was wrapped.
type annotatedError struct {
	msg   string
	err   error
	attrs []slog.Attr
	file  string
	line  int
}

// Wrap annotates err with a message and optional slog attributes. The caller's
// source location is recorded so that log output points at the wrap site.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	ae := &annotatedError{
		msg:   msg,
		err:   err,
		attrs: attrs,
		file:  "",
		line:  0,
	}
	if _, file, line, ok := runtime.Caller(1); ok {
		ae.file = filepath.Base(file)
		ae.line = line
	}
	return ae
}

// NewSentinel creates a sentinel error meant for errors.Is comparisons.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// New mirrors the standard library errors.New.
func New(msg string) error {
	return errors.New(msg)
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// Is delegates to the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As delegates to the standard library.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap delegates to the standard library.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join delegates to the standard library.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// DecoratePanic converts a recovered panic value into an annotated error
// pointing at the panic site.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	ae := &annotatedError{
		msg:   fmt.Sprintf("panic: %v", recovered),
		err:   nil,
		attrs: nil,
		file:  "",
		line:  0,
	}
	// Skip past runtime frames to find where the panic originated.
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			ae.file = filepath.Base(frame.File)
			ae.line = frame.Line
			break
		}
		if !more {
			break
		}
	}
	return ae
}

// SlogError converts an error into a slog.Attr that exposes the message, the
// wrap-site source location, and any attributes collected along the chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}

	var (
		annotations []slog.Attr
		source      string
	)
	collectAnnotations(err, &annotations, &source)

	group := []slog.Attr{slog.String("message", err.Error())}
	if source != "" {
		group = append(group, slog.String("source", source))
	}
	if len(annotations) > 0 {
		group = append(group, slog.Attr{Key: "annotations", Value: slog.GroupValue(annotations...)})
	}

	return slog.Attr{Key: "error", Value: slog.GroupValue(group...)}
}

// collectAnnotations walks the error chain including joined errors and
// gathers attributes from every annotated error. The outermost wrap site wins.
func collectAnnotations(err error, annotations *[]slog.Attr, source *string) {
	if err == nil {
		return
	}

	if ae, ok := err.(*annotatedError); ok {
		*annotations = append(*annotations, ae.attrs...)
		if *source == "" && ae.file != "" {
			*source = fmt.Sprintf("%s:%d", ae.file, ae.line)
		}
		collectAnnotations(ae.err, annotations, source)
		return
	}

	switch unwrappable := err.(type) {
	case interface{ Unwrap() error }:
		collectAnnotations(unwrappable.Unwrap(), annotations, source)
	case interface{ Unwrap() []error }:
		for _, joined := range unwrappable.Unwrap() {
			collectAnnotations(joined, annotations, source)
		}
	}
}
