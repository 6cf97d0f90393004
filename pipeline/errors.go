package pipeline

import (
	"errors"
	"fmt"
)

// Common errors for the conversion pipeline.
var (
	// ErrCancelled marks the distinct user-cancellation outcome.
	ErrCancelled = errors.New("conversion cancelled")
	// ErrNoContent is returned when a document plans to zero segments.
	ErrNoContent = errors.New("document contains no narratable content")
)

// ConversionError carries the chapter/segment context of a failure so the
// caller can decide to retry or abort. The pipeline never retries on its
// own.
type ConversionError struct {
	Component string // pipeline stage, e.g. "tts", "assemble"
	Chapter   string // chapter title, empty for the implicit chapter
	Segment   int    // segment index within the chapter, -1 if not segment-scoped
	Err       error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	if e.Segment >= 0 {
		return fmt.Sprintf("%s: chapter %q segment %d: %v", e.Component, e.Chapter, e.Segment, e.Err)
	}
	if e.Chapter != "" {
		return fmt.Sprintf("%s: chapter %q: %v", e.Component, e.Chapter, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConversionError) Unwrap() error { return e.Err }

func segmentErr(component, chapter string, segment int, err error) *ConversionError {
	return &ConversionError{Component: component, Chapter: chapter, Segment: segment, Err: err}
}
