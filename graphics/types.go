// package graphics defines the backend-agnostic contracts between the uniform
// management layer and the GPU drivers that execute it: device capability
// queries, opaque resources, command encoding, and shader reflection data.
// Drivers implement these interfaces; the engine packages only consume them.
package graphics

import "fmt"

// BackendType identifies the GPU binding model a device implements. The value is
// fixed at device creation and selects all per-call resource-layout policy in the
// uniform layer.
type BackendType int

const (
	// BackendTypeInvalid is the zero value and never identifies a real device.
	BackendTypeInvalid BackendType = iota

	// BackendTypeOpenGL is the legacy explicit-block model: true uniform blocks are
	// uploaded to buffer objects, loose uniforms are bound directly by location.
	BackendTypeOpenGL

	// BackendTypeMetal is the bind-by-pointer model: small uniform data is pushed
	// raw into the command stream, larger data goes through buffer objects.
	BackendTypeMetal

	// BackendTypeVulkan is the suballocated-ring model: one large buffer object
	// holds many logical instances of a block addressed by an integer index.
	BackendTypeVulkan
)

// String returns the backend name for logging.
func (b BackendType) String() string {
	switch b {
	case BackendTypeOpenGL:
		return "OpenGL"
	case BackendTypeMetal:
		return "Metal"
	case BackendTypeVulkan:
		return "Vulkan"
	default:
		return fmt.Sprintf("BackendType(%d)", int(b))
	}
}

// ShaderStage identifies the pipeline stage a reflected resource belongs to.
type ShaderStage int

const (
	// ShaderStageVertex is the vertex processing stage.
	ShaderStageVertex ShaderStage = iota

	// ShaderStageFragment is the fragment processing stage.
	ShaderStageFragment

	// ShaderStageCompute is the compute stage. Compute resources are reflected but
	// cannot be bound through a render command encoder.
	ShaderStageCompute
)

// String returns the stage name for logging.
func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	case ShaderStageCompute:
		return "compute"
	default:
		return fmt.Sprintf("ShaderStage(%d)", int(s))
	}
}

// BindTarget is a bit set of pipeline stages a bind call applies to.
type BindTarget uint8

const (
	// BindTargetVertex targets the vertex stage.
	BindTargetVertex BindTarget = 1 << 0

	// BindTargetFragment targets the fragment stage.
	BindTargetFragment BindTarget = 1 << 1

	// BindTargetAllGraphics targets every graphics stage. Used by backends whose
	// descriptor model binds buffers with whole-pipeline visibility.
	BindTargetAllGraphics = BindTargetVertex | BindTargetFragment
)

// UniformType is the element type of a reflected uniform member.
type UniformType int

const (
	// UniformTypeInvalid is the zero value for unreflectable member types.
	UniformTypeInvalid UniformType = iota

	// UniformTypeBool is a single boolean flag (1 byte packed).
	UniformTypeBool

	// UniformTypeInt is a 32-bit signed integer.
	UniformTypeInt

	// UniformTypeFloat is a 32-bit float scalar.
	UniformTypeFloat

	// UniformTypeFloat2 is a two-component float vector.
	UniformTypeFloat2

	// UniformTypeFloat3 is a three-component float vector. Its expected byte size
	// is backend dependent: 12 packed, 16 with SIMD padding.
	UniformTypeFloat3

	// UniformTypeFloat4 is a four-component float vector.
	UniformTypeFloat4

	// UniformTypeFloat2x2 is a 2x2 float matrix.
	UniformTypeFloat2x2

	// UniformTypeFloat3x3 is a 3x3 float matrix. Its expected byte size is backend
	// dependent: 36 packed, 48 with per-column SIMD padding.
	UniformTypeFloat3x3

	// UniformTypeFloat4x4 is a 4x4 float matrix.
	UniformTypeFloat4x4
)

// Size returns the natural byte-packed size of the uniform type, without any
// backend-specific SIMD padding. Returns 0 for UniformTypeInvalid.
//
// Returns:
//   - int: the packed size in bytes
func (t UniformType) Size() int {
	switch t {
	case UniformTypeBool:
		return 1
	case UniformTypeInt, UniformTypeFloat:
		return 4
	case UniformTypeFloat2:
		return 8
	case UniformTypeFloat3:
		return 12
	case UniformTypeFloat4, UniformTypeFloat2x2:
		return 16
	case UniformTypeFloat3x3:
		return 36
	case UniformTypeFloat4x4:
		return 64
	default:
		return 0
	}
}
