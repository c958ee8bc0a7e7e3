// package wgpu_driver implements the graphics device contracts on top of wgpu.
// wgpu exposes a Vulkan-style binding model: uniform data always lives in GPU
// buffer objects bound through descriptor sets with whole-pipeline visibility,
// so the driver reports graphics.BackendTypeVulkan and leaves bind-by-pointer
// and loose-uniform paths to other backends.
package wgpu_driver

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/krite/igl/graphics"
)

// device is the implementation of the Device interface.
type device struct {
	label              string
	instance           *wgpu.Instance
	adapter            *wgpu.Adapter
	wgpuDevice         *wgpu.Device
	queue              *wgpu.Queue
	surface            *wgpu.Surface
	surfaceFormat      wgpu.TextureFormat
	uniformBufferLimit uint64
}

// Device is a wgpu-backed graphics device. It implements graphics.Device for
// uniform registry construction and adds the resource factories the rest of
// the renderer needs.
type Device interface {
	graphics.Device

	// CreateTextureRGBA8 creates a 2D RGBA8 texture and uploads the given pixels.
	//
	// Parameters:
	//   - label: debug label for the texture
	//   - width: texture width in pixels
	//   - height: texture height in pixels
	//   - pixels: tightly packed RGBA8 pixel data, width*height*4 bytes
	//
	// Returns:
	//   - graphics.Texture: the uploaded texture
	//   - error: an error if creation or upload failed
	CreateTextureRGBA8(label string, width, height uint32, pixels []byte) (graphics.Texture, error)

	// CreateSamplerState creates a sampler with the given configuration.
	// Zero-valued fields fall back to linear filtering with repeat addressing.
	//
	// Parameters:
	//   - label: debug label for the sampler
	//   - config: the sampler configuration
	//
	// Returns:
	//   - graphics.SamplerState: the created sampler
	//   - error: an error if creation failed
	CreateSamplerState(label string, config SamplerConfig) (graphics.SamplerState, error)

	// NewPipelineState builds the name-resolution view of a pipeline's reflection.
	//
	// Parameters:
	//   - reflection: the pipeline's reflected uniform interface
	//
	// Returns:
	//   - graphics.RenderPipelineState: the pipeline state for bind-time lookups
	NewPipelineState(reflection graphics.PipelineReflection) graphics.RenderPipelineState

	// NewRenderCommandEncoder creates an encoder that collects bind calls and
	// assembles them into wgpu bind groups.
	//
	// Parameters:
	//   - label: debug label for bind groups created by the encoder
	//
	// Returns:
	//   - RenderCommandEncoder: the encoder
	NewRenderCommandEncoder(label string) RenderCommandEncoder

	// Native returns the underlying wgpu device for pipeline creation.
	//
	// Returns:
	//   - *wgpu.Device: the wgpu device
	Native() *wgpu.Device

	// Queue returns the device's command queue.
	//
	// Returns:
	//   - *wgpu.Queue: the wgpu queue
	Queue() *wgpu.Queue

	// Surface returns the presentation surface created at construction.
	//
	// Returns:
	//   - *wgpu.Surface: the surface, or nil for headless devices
	Surface() *wgpu.Surface

	// ConfigureSurface is a wrapper for boilerplate logic required when calling
	// Configure on a surface. No-op on headless devices.
	//
	// Parameters:
	//   - width: framebuffer width in pixels
	//   - height: framebuffer height in pixels
	ConfigureSurface(width, height int)

	// SurfaceFormat returns the texture format selected by ConfigureSurface.
	//
	// Returns:
	//   - wgpu.TextureFormat: the swapchain format, or TextureFormatUndefined
	SurfaceFormat() wgpu.TextureFormat

	// Release frees the device, queue, adapter, and instance.
	Release()
}

var _ Device = &device{}

// NewDevice creates a wgpu device. With a surface descriptor the adapter is
// selected for surface compatibility; without one a headless adapter is used.
//
// Parameters:
//   - options: functional options to configure the device
//
// Returns:
//   - Device: the initialized device
func NewDevice(options ...DeviceOption) Device {
	runtime.LockOSThread()

	d := &device{
		label:    "Main Device",
		instance: wgpu.CreateInstance(nil),
	}
	for _, option := range options {
		option(d)
	}

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: false,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		panic(fmt.Sprintf("wgpu_driver: no compatible adapter: %v", err))
	}
	d.adapter = adapter
	d.uniformBufferLimit = uint64(adapter.GetLimits().Limits.MaxUniformBufferBindingSize)

	wgpuDevice, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: d.label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("wgpu_driver: device request failed: %v", err))
	}
	d.wgpuDevice = wgpuDevice
	d.queue = wgpuDevice.GetQueue()

	return d
}

func (d *device) BackendType() graphics.BackendType {
	return graphics.BackendTypeVulkan
}

func (d *device) HasFeature(feature graphics.DeviceFeature) bool {
	// wgpu has no bind-by-pointer fast path; uniform data always rides a buffer.
	return false
}

func (d *device) FeatureLimit(limit graphics.DeviceFeatureLimit) (uint64, bool) {
	switch limit {
	case graphics.FeatureLimitMaxUniformBufferBytes:
		return d.uniformBufferLimit, true
	default:
		return 0, false
	}
}

func (d *device) CreateBuffer(desc *graphics.BufferDescriptor) (graphics.Buffer, error) {
	usage := wgpu.BufferUsageCopyDst
	if desc.Type&graphics.BufferTypeUniform != 0 {
		usage |= wgpu.BufferUsageUniform
	}
	if desc.Type&graphics.BufferTypeVertex != 0 {
		usage |= wgpu.BufferUsageVertex
	}
	if desc.Type&graphics.BufferTypeIndex != 0 {
		usage |= wgpu.BufferUsageIndex
	}

	buf, err := d.wgpuDevice.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             desc.Length,
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_driver: create buffer %q: %w", desc.Label, err)
	}
	return &deviceBuffer{
		buffer: buf,
		queue:  d.queue,
		size:   desc.Length,
	}, nil
}

func (d *device) Native() *wgpu.Device {
	return d.wgpuDevice
}

func (d *device) Queue() *wgpu.Queue {
	return d.queue
}

func (d *device) Surface() *wgpu.Surface {
	return d.surface
}

func (d *device) ConfigureSurface(width, height int) {
	if d.surface == nil {
		return
	}

	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]

	d.surface.Configure(d.adapter, d.wgpuDevice, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (d *device) SurfaceFormat() wgpu.TextureFormat {
	return d.surfaceFormat
}

func (d *device) Release() {
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.wgpuDevice != nil {
		d.wgpuDevice.Release()
		d.wgpuDevice = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
