package graphics

// UniformDescriptor describes a single loose uniform bound directly by location
// on legacy-block backends, without an intervening buffer object.
type UniformDescriptor struct {
	// Location is the resolved shader location for the uniform.
	Location int

	// Type is the uniform element type.
	Type UniformType

	// Offset is the byte offset of the uniform within its staging allocation.
	Offset uint64

	// NumElements is the declared array length (1 for non-arrays).
	NumElements int

	// ElementStride is the byte stride between consecutive array elements.
	ElementStride int
}

// RenderPipelineState resolves reflected names to backend binding locations for
// a compiled pipeline.
type RenderPipelineState interface {
	// UniformBlockBindingPoint resolves the binding point of a true uniform block.
	//
	// Parameters:
	//   - name: the reflected block name
	//
	// Returns:
	//   - int: the binding point, meaningful only when found
	//   - bool: false if the pipeline has no block with that name
	UniformBlockBindingPoint(name string) (int, bool)

	// UniformLocation resolves the location of a loose uniform for a stage.
	// A uniform the shader compiler optimized away has no location.
	//
	// Parameters:
	//   - name: the reflected uniform name
	//   - stage: the shader stage to resolve against
	//
	// Returns:
	//   - int: the location, meaningful only when found
	//   - bool: false if the uniform has no resolvable location
	UniformLocation(name string, stage ShaderStage) (int, bool)
}

// RenderCommandEncoder consumes bind calls for one draw. All methods are opaque,
// non-blocking enqueue operations.
type RenderCommandEncoder interface {
	// BindBuffer binds a buffer object at a reflected buffer index.
	//
	// Parameters:
	//   - index: the reflected buffer bind index
	//   - target: the stage bit set the bind applies to
	//   - buffer: the buffer object to bind
	//   - offset: byte offset into the buffer where the bound range starts
	BindBuffer(index int, target BindTarget, buffer Buffer, offset uint64)

	// BindBytes pushes raw uniform bytes directly into the command stream at a
	// reflected buffer index, without a buffer object.
	//
	// Parameters:
	//   - index: the reflected buffer bind index
	//   - target: the stage bit set the bind applies to
	//   - data: the bytes to push
	BindBytes(index int, target BindTarget, data []byte)

	// BindUniform binds a single loose uniform value by resolved location.
	//
	// Parameters:
	//   - desc: the uniform location descriptor
	//   - data: the staged bytes for the uniform
	BindUniform(desc *UniformDescriptor, data []byte)

	// BindTexture binds a texture at a reflected texture index.
	//
	// Parameters:
	//   - index: the reflected texture bind index
	//   - target: the stage bit set the bind applies to
	//   - texture: the texture to bind
	BindTexture(index int, target BindTarget, texture Texture)

	// BindSamplerState binds a sampler at a reflected texture index.
	//
	// Parameters:
	//   - index: the reflected texture bind index
	//   - target: the stage bit set the bind applies to
	//   - sampler: the sampler to bind
	BindSamplerState(index int, target BindTarget, sampler SamplerState)
}
