package graphics

// DeviceFeature identifies an optional device capability.
type DeviceFeature int

const (
	// DeviceFeatureBindBytes reports whether the device can push small uniform data
	// directly into the command stream without a persistent buffer object.
	DeviceFeatureBindBytes DeviceFeature = iota
)

// DeviceFeatureLimit identifies a queryable numeric device limit.
type DeviceFeatureLimit int

const (
	// FeatureLimitMaxBindBytes is the maximum byte size accepted by bind-by-pointer
	// pushes. Only meaningful when DeviceFeatureBindBytes is present.
	FeatureLimitMaxBindBytes DeviceFeatureLimit = iota

	// FeatureLimitMaxUniformBufferBytes is the maximum size of a uniform buffer.
	// A device may not report it; callers treat the limit as unbounded then.
	FeatureLimitMaxUniformBufferBytes
)

// ResourceStorage selects the memory domain of a buffer allocation.
type ResourceStorage int

const (
	// StorageShared places the buffer in memory visible to both CPU and GPU.
	StorageShared ResourceStorage = iota

	// StoragePrivate places the buffer in GPU-only memory.
	StoragePrivate
)

// BufferType is a bit set describing what a buffer is used for.
type BufferType uint8

const (
	// BufferTypeUniform marks a buffer holding shader uniform data.
	BufferTypeUniform BufferType = 1 << 0

	// BufferTypeVertex marks a buffer holding vertex data.
	BufferTypeVertex BufferType = 1 << 1

	// BufferTypeIndex marks a buffer holding index data.
	BufferTypeIndex BufferType = 1 << 2
)

// BufferHint is a bit set of driver hints attached to buffer creation.
type BufferHint uint8

const (
	// BufferHintUniformBlock hints that the buffer backs a reflected uniform block.
	BufferHintUniformBlock BufferHint = 1 << 0

	// BufferHintRing hints that the buffer is rewritten every frame and the driver
	// should cycle internal allocations to avoid stalls.
	BufferHintRing BufferHint = 1 << 1
)

// BufferDescriptor describes a buffer object to create.
type BufferDescriptor struct {
	// Label is a debug label added for convenience.
	Label string

	// Length is the buffer size in bytes.
	Length uint64

	// Storage selects the memory domain.
	Storage ResourceStorage

	// Type marks the buffer usage.
	Type BufferType

	// Hint carries driver hints.
	Hint BufferHint
}

// Buffer is an opaque GPU buffer object created by a Device.
type Buffer interface {
	// Upload copies data into the buffer at the given byte offset.
	// The upload is an enqueue operation and never blocks on the GPU.
	//
	// Parameters:
	//   - data: the bytes to copy
	//   - offset: destination byte offset within the buffer
	//
	// Returns:
	//   - error: an error if the range does not fit inside the buffer
	Upload(data []byte, offset uint64) error

	// Size returns the buffer length in bytes.
	//
	// Returns:
	//   - uint64: the buffer size
	Size() uint64
}

// Texture is an opaque GPU texture resource. The uniform layer never inspects
// textures; it only forwards them to bind calls.
type Texture interface {
	// Release frees the GPU resources held by this texture.
	Release()
}

// SamplerState is an opaque GPU sampler object.
type SamplerState interface {
	// Release frees the GPU resources held by this sampler.
	Release()
}

// Device is the narrow device contract consumed by the uniform layer.
type Device interface {
	// BackendType reports the binding model this device implements.
	//
	// Returns:
	//   - BackendType: the device's backend
	BackendType() BackendType

	// HasFeature reports whether an optional capability is available.
	//
	// Parameters:
	//   - feature: the capability to query
	//
	// Returns:
	//   - bool: true if the feature is supported
	HasFeature(feature DeviceFeature) bool

	// FeatureLimit queries a numeric device limit.
	//
	// Parameters:
	//   - limit: the limit to query
	//
	// Returns:
	//   - uint64: the limit value, meaningful only when found
	//   - bool: false if the device does not report this limit
	FeatureLimit(limit DeviceFeatureLimit) (uint64, bool)

	// CreateBuffer creates a GPU buffer object.
	//
	// Parameters:
	//   - desc: the buffer descriptor
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an error if the driver could not allocate the buffer
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
}
