package backend

import (
	"errors"

	"github.com/gogpu/vgr"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Factory creates a device from a renderer configuration.
//
// Devices that need more than a configuration, such as a GPU device that
// renders into a window surface, are created by their packages directly
// and do not register.
type Factory func(cfg vgr.Config) (vgr.Device, error)
