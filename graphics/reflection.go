package graphics

// BufferMemberDesc describes one named scalar/vector/matrix member inside a
// reflected uniform buffer.
type BufferMemberDesc struct {
	// Name is the member's shader-visible name.
	Name string

	// Type is the member's element type.
	Type UniformType

	// Offset is the member's byte offset within the buffer.
	Offset uint64

	// ArrayLength is the declared array length (1 for non-arrays).
	ArrayLength int
}

// BufferArgDesc describes one reflected shader buffer: either a true uniform
// block or the synthetic single-member buffer wrapping a loose uniform.
type BufferArgDesc struct {
	// Name is the buffer's shader-visible name. For a loose uniform the buffer
	// name equals the single member's name.
	Name string

	// Stage is the shader stage the buffer belongs to. The same name may be
	// reflected once per stage.
	Stage ShaderStage

	// DataSize is the buffer's total byte size as laid out by the compiler.
	DataSize uint64

	// IsUniformBlock is true for contiguously laid out uniform blocks and false
	// for loose single uniforms.
	IsUniformBlock bool

	// BufferIndex is the reflected bind index for the buffer.
	BufferIndex int

	// Members lists the buffer's members in declaration order.
	Members []BufferMemberDesc
}

// TextureArgDesc describes one reflected texture argument.
type TextureArgDesc struct {
	// Name is the texture's shader-visible name, unique across all stages.
	Name string

	// Stage is the shader stage the texture belongs to.
	Stage ShaderStage

	// TextureIndex is the reflected bind index for the texture and its sampler.
	TextureIndex int
}

// PipelineReflection enumerates the named resources of a compiled pipeline.
// Implementations preserve the compiler's declaration order; the uniform layer
// binds buffers in exactly this order.
type PipelineReflection interface {
	// UniformBuffers returns all reflected uniform buffers in declaration order.
	//
	// Returns:
	//   - []BufferArgDesc: the reflected buffer descriptors
	UniformBuffers() []BufferArgDesc

	// Textures returns all reflected texture arguments in declaration order.
	//
	// Returns:
	//   - []TextureArgDesc: the reflected texture descriptors
	Textures() []TextureArgDesc
}
