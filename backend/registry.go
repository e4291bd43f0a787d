package backend

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/vgr"
)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for Default; the first registered name wins.
	priority = []string{"memory"}
)

// Register registers a device factory with the given name.
// This is typically called from init() functions in backend packages.
// If a factory with the same name is already registered, it is replaced.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = f
}

// Unregister removes a factory from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a factory with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open creates the named device.
func Open(name string, cfg vgr.Config) (vgr.Device, error) {
	registryMu.RLock()
	f, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrBackendNotAvailable, name, Available())
	}
	dev, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend: open %s: %w", name, err)
	}
	vgr.Logger().Debug("backend: opened device", "name", name)
	return dev, nil
}

// Default opens the preferred registered device: the first of the
// priority list, or else the first registered name in sorted order.
func Default(cfg vgr.Config) (vgr.Device, error) {
	for _, name := range priority {
		if IsRegistered(name) {
			return Open(name, cfg)
		}
	}
	names := Available()
	if len(names) == 0 {
		return nil, ErrBackendNotAvailable
	}
	return Open(names[0], cfg)
}
