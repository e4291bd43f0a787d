package memory

import (
	"errors"

	"github.com/gogpu/vgr/internal/alloc"
)

// Device errors.
var (
	// ErrOutOfMemory is returned by Allocate when the budget is exhausted.
	ErrOutOfMemory = alloc.ErrOutOfMemory

	// ErrUnknownGeometry is returned when a draw command names geometry
	// that was never submitted.
	ErrUnknownGeometry = errors.New("memory: unknown geometry")

	// ErrRangeMismatch is returned when a range was not allocated by the
	// device or does not fit the data written to it.
	ErrRangeMismatch = errors.New("memory: range mismatch")

	// ErrBadAddress is returned when a primitive refers to memory outside
	// its instance or to an address space the device does not serve.
	ErrBadAddress = errors.New("memory: bad address")

	// ErrInvalidDimensions is returned when the canvas size is not positive.
	ErrInvalidDimensions = errors.New("memory: invalid dimensions")
)
