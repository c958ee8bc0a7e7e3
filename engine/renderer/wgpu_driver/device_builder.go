package wgpu_driver

import "github.com/cogentcore/webgpu/wgpu"

// DeviceOption is a functional option for configuring a Device during construction.
type DeviceOption func(*device)

// WithLabel sets the debug label for the wgpu device.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - DeviceOption: the configured option
func WithLabel(label string) DeviceOption {
	return func(d *device) {
		d.label = label
	}
}

// WithSurfaceDescriptor creates a surface from the descriptor and selects an
// adapter compatible with it. Required for presenting to a window.
//
// Parameters:
//   - descriptor: the platform surface descriptor
//
// Returns:
//   - DeviceOption: the configured option
func WithSurfaceDescriptor(descriptor *wgpu.SurfaceDescriptor) DeviceOption {
	return func(d *device) {
		d.surface = d.instance.CreateSurface(descriptor)
	}
}
