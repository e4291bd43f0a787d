// Package backend is a registry of vgr devices.
//
// Device packages register a factory from init() and are selected by name
// at runtime, typically from a command line flag:
//
//	import _ "github.com/gogpu/vgr/backend/memory"
//
//	dev, err := backend.Open("memory", cfg)
//
// Default opens the preferred available device.
//
// # Available Devices
//
//   - "memory": host memory with a CPU rasterizer (backend/memory)
//
// The GPU device in backend/wgpu renders into a caller-owned device and
// surface and is created with wgpu.New or wgpu.NewFromProvider instead.
package backend
