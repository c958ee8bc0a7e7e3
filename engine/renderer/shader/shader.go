// package shader loads WGSL shader source and reflects its resource interface:
// entry points, vertex input layouts, bind group layouts for pipeline creation,
// and the uniform buffer and texture descriptors the uniform registry is built
// from. Reflection is computed once at load time with the WGSL struct layout
// rules, so registries and pipelines never re-parse source.
package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/krite/igl/graphics"
)

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	stage                      graphics.ShaderStage
	entryPoint                 string
	vertexLayouts              []wgpu.VertexBufferLayout
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	uniformBuffers             []graphics.BufferArgDesc
	textures                   []graphics.TextureArgDesc
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a loaded and parsed WGSL shader for one pipeline stage. It exposes
// the shader's unique key, source, entry point, vertex buffer layouts, bind group
// layout descriptors, and the reflected uniform interface.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Stage returns the pipeline stage this shader was loaded for.
	//
	// Returns:
	//   - graphics.ShaderStage: the shader's stage
	Stage() graphics.ShaderStage

	// EntryPoint returns the entry point function name for this shader's stage,
	// or an empty string when the source declares none.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// VertexLayouts retrieves the vertex buffer layouts parsed from the shader's
	// vertex input structs, in declaration order. Empty for non-vertex stages.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the parsed vertex buffer layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if not present
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors.
	// These are CPU-side descriptors the driver turns into wgpu.BindGroupLayout objects.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// UniformBuffers returns the reflected uniform buffer descriptors for this
	// stage, in declaration order.
	//
	// Returns:
	//   - []graphics.BufferArgDesc: the stage's uniform buffer descriptors
	UniformBuffers() []graphics.BufferArgDesc

	// Textures returns the reflected texture descriptors for this stage,
	// in declaration order.
	//
	// Returns:
	//   - []graphics.TextureArgDesc: the stage's texture descriptors
	Textures() []graphics.TextureArgDesc

	// Module returns the wgpu.ShaderModuleDescriptor built from the parsed source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the module descriptor with the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader loads and parses a WGSL shader from a file. The source is read,
// stripped, and reflected immediately; unreadable files are a fatal setup error.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and module labels
//   - stage: the pipeline stage to reflect for
//   - sourcePath: the file path to read WGSL source from
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, stage graphics.ShaderStage, sourcePath string) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader: %s must have a source path", key))
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", sourcePath, err))
	}
	return NewShaderFromSource(key, stage, string(data))
}

// NewShaderFromSource parses a WGSL shader from an in-memory source string.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and module labels
//   - stage: the pipeline stage to reflect for
//   - source: the WGSL source code
//
// Returns:
//   - Shader: the parsed shader
func NewShaderFromSource(key string, stage graphics.ShaderStage, source string) Shader {
	s := &shader{
		key:    key,
		source: source,
		stage:  stage,
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: source,
			},
		},
	}
	s.parse()
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Stage() graphics.ShaderStage {
	return s.stage
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) UniformBuffers() []graphics.BufferArgDesc {
	return s.uniformBuffers
}

func (s *shader) Textures() []graphics.TextureArgDesc {
	return s.textures
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

// parse strips comments once and derives everything the stage needs: entry point,
// vertex layouts for vertex stages, bind group layouts, and the uniform reflection.
func (s *shader) parse() {
	cleaned := stripComments(s.source)
	structs := parseStructBlocks(cleaned)
	structSizes := computeStructSizes(structs)
	resources := parseResources(cleaned)

	s.entryPoint = parseEntryPoint(cleaned, wgpuStage(s.stage))
	if s.stage == graphics.ShaderStageVertex {
		s.vertexLayouts = parseVertexLayouts(s.source)
	}
	s.bindGroupLayoutDescriptors = parseBindGroupLayouts(resources, structSizes, wgpuStage(s.stage))
	s.uniformBuffers, s.textures = reflectResources(resources, structSizes, s.stage)
}

// wgpuStage maps a pipeline stage to its wgpu visibility flag.
func wgpuStage(stage graphics.ShaderStage) wgpu.ShaderStage {
	switch stage {
	case graphics.ShaderStageVertex:
		return wgpu.ShaderStageVertex
	case graphics.ShaderStageFragment:
		return wgpu.ShaderStageFragment
	case graphics.ShaderStageCompute:
		return wgpu.ShaderStageCompute
	default:
		return wgpu.ShaderStageNone
	}
}
