package shader

import (
	"github.com/krite/igl/graphics"
)

// wgslUniformTypeMap maps WGSL value type names to the uniform member types
// consumed by the uniform registry. Types with no mapping (nested structs,
// atomics, f16 vectors) reflect as graphics.UniformTypeInvalid; their offsets
// are still reported so raw byte writes can reach them.
var wgslUniformTypeMap = map[string]graphics.UniformType{
	"bool":        graphics.UniformTypeBool,
	"i32":         graphics.UniformTypeInt,
	"u32":         graphics.UniformTypeInt,
	"f32":         graphics.UniformTypeFloat,
	"vec2f":       graphics.UniformTypeFloat2,
	"vec2<f32>":   graphics.UniformTypeFloat2,
	"vec3f":       graphics.UniformTypeFloat3,
	"vec3<f32>":   graphics.UniformTypeFloat3,
	"vec4f":       graphics.UniformTypeFloat4,
	"vec4<f32>":   graphics.UniformTypeFloat4,
	"mat2x2<f32>": graphics.UniformTypeFloat2x2,
	"mat3x3<f32>": graphics.UniformTypeFloat3x3,
	"mat4x4<f32>": graphics.UniformTypeFloat4x4,
}

// pipelineReflection is the reflected uniform interface of one or more shader
// stages, merged in stage order.
type pipelineReflection struct {
	buffers  []graphics.BufferArgDesc
	textures []graphics.TextureArgDesc
}

var _ graphics.PipelineReflection = &pipelineReflection{}

func (r *pipelineReflection) UniformBuffers() []graphics.BufferArgDesc {
	return r.buffers
}

func (r *pipelineReflection) Textures() []graphics.TextureArgDesc {
	return r.textures
}

// NewPipelineReflection merges the reflected interfaces of a pipeline's shaders
// into the single view the uniform registry consumes. Buffers and textures are
// reported in shader argument order, stage by stage.
//
// Parameters:
//   - shaders: the pipeline's shaders in stage order
//
// Returns:
//   - graphics.PipelineReflection: the merged reflection
func NewPipelineReflection(shaders ...Shader) graphics.PipelineReflection {
	merged := &pipelineReflection{}
	for _, s := range shaders {
		merged.buffers = append(merged.buffers, s.UniformBuffers()...)
		merged.textures = append(merged.textures, s.Textures()...)
	}
	return merged
}

// reflectResources converts a stage's parsed resource declarations into uniform
// buffer and texture descriptors. Struct-typed var<uniform> declarations reflect
// as uniform blocks carrying their member placements; primitive-typed ones
// reflect as single loose uniforms named after the variable. Samplers carry no
// descriptor of their own: the registry binds them alongside their texture.
func reflectResources(resources []parsedResource, structSizes map[string]wgslTypeLayout, stage graphics.ShaderStage) ([]graphics.BufferArgDesc, []graphics.TextureArgDesc) {
	var buffers []graphics.BufferArgDesc
	var textures []graphics.TextureArgDesc

	for _, res := range resources {
		switch {
		case res.addressSpace == "uniform":
			layout, ok := resolveTypeLayout(res.typeName, structSizes)
			if !ok || layout.size == 0 {
				continue
			}
			desc := graphics.BufferArgDesc{
				Name:        res.varName,
				Stage:       stage,
				DataSize:    layout.size,
				BufferIndex: res.binding,
			}
			if len(layout.members) > 0 {
				desc.IsUniformBlock = true
				for _, m := range layout.members {
					desc.Members = append(desc.Members, graphics.BufferMemberDesc{
						Name:        m.name,
						Type:        wgslUniformTypeMap[m.typeName],
						Offset:      m.offset,
						ArrayLength: m.arrayLength,
					})
				}
			} else {
				memberType := res.typeName
				arrayLength := 1
				if elemType, count, isArray := parseArrayType(res.typeName); isArray && count > 0 {
					memberType = elemType
					arrayLength = int(count)
				}
				desc.Members = []graphics.BufferMemberDesc{{
					Name:        res.varName,
					Type:        wgslUniformTypeMap[memberType],
					Offset:      0,
					ArrayLength: arrayLength,
				}}
			}
			buffers = append(buffers, desc)

		case res.addressSpace == "" && isTextureType(res.typeName):
			textures = append(textures, graphics.TextureArgDesc{
				Name:         res.varName,
				Stage:        stage,
				TextureIndex: res.binding,
			})
		}
	}

	return buffers, textures
}

func isTextureType(typeName string) bool {
	base, _ := splitTypeParams(typeName)
	_, ok := wgslSampledTextureDimMap[base]
	return ok
}
