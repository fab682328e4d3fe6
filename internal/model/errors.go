package model

import (
	"errors"
	"fmt"
)

// ImageLoadError is returned when the input photo can't be decoded.
// It is fatal to the single request and never retried inside the engine.
// Callers check with errors.As(err, &loadErr).
type ImageLoadError struct {
	Err error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("loading image: %v", e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// RenderError is returned when a drawing surface can't be allocated or a
// render step fails. No artifact is ever returned alongside it.
type RenderError struct {
	Op  string // e.g. "meme", "story", "encode"
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ErrInvalidRequest marks compositions whose structured input can't be laid
// out at all (e.g. a battle with no entries).
var ErrInvalidRequest = errors.New("invalid composition request")
