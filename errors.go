package vgr

import (
	"errors"
	"fmt"
)

// Errors returned by the vector image and layer builders.
var (
	// ErrUnsupportedPattern is returned for a fill or stroke pattern the
	// renderer cannot draw yet. Only ColorPattern is supported.
	ErrUnsupportedPattern = errors.New("vgr: unsupported pattern")

	// ErrUnsupportedShape is returned for a Shape implementation the
	// tessellators do not know.
	ErrUnsupportedShape = errors.New("vgr: unsupported shape")

	// ErrBuilderConsumed is returned when a builder is used after Build.
	ErrBuilderConsumed = errors.New("vgr: builder already built")

	// ErrNilInstance is returned when a nil instance is added to a layer.
	ErrNilInstance = errors.New("vgr: nil vector image instance")

	// ErrImageMismatch is returned when a layer receives instances of two
	// different images carrying the same id, as happens across Contexts.
	ErrImageMismatch = errors.New("vgr: different vector images share an id")
)

// Op names the operation a TessellationError comes from.
type Op string

// Tessellation operations.
const (
	OpFill   Op = "fill"
	OpStroke Op = "stroke"
)

// TessellationError reports a shape that could not be tessellated while
// building a vector image.
type TessellationError struct {
	Op    Op
	Index int // position of the command in insertion order
	Shape Shape
	Err   error
}

func (e *TessellationError) Error() string {
	return fmt.Sprintf("vgr: %s #%d (%s): %v", e.Op, e.Index, describeShape(e.Shape), e.Err)
}

func (e *TessellationError) Unwrap() error { return e.Err }
