package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/krite/igl/graphics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeVertexWGSL = `
// per-frame scene uniforms
struct SceneUniforms {
    viewProjection: mat4x4<f32>,
    lightDirection: vec3f,
    time: f32,
    tints: array<vec4f, 4>,
}

struct VertexInput {
    @location(0) position: vec3f,
    @location(1) normal: vec3f,
    @location(2) uv: vec2f,
}

struct VertexOutput {
    @builtin(position) clipPosition: vec4f,
    @location(0) uv: vec2f,
}

@group(0) @binding(0) var<uniform> scene: SceneUniforms;
@group(0) @binding(1) var<uniform> modelMatrix: mat4x4<f32>;

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clipPosition = scene.viewProjection * modelMatrix * vec4f(in.position, 1.0);
    out.uv = in.uv;
    return out;
}
`

const cubeFragmentWGSL = `
struct MaterialUniforms {
    baseColor: vec4f,
    roughness: f32,
}

@group(0) @binding(0) var<uniform> material: MaterialUniforms;
@group(1) @binding(0) var albedo: texture_2d<f32>;
@group(1) @binding(1) var albedoSampler: sampler;

@fragment
fn fs_main(@location(0) uv: vec2f) -> @location(0) vec4f {
    return textureSample(albedo, albedoSampler, uv) * material.baseColor;
}
`

func TestShaderEntryPoints(t *testing.T) {
	vs := NewShaderFromSource("cube_vs", graphics.ShaderStageVertex, cubeVertexWGSL)
	assert.Equal(t, "vs_main", vs.EntryPoint())
	assert.Equal(t, graphics.ShaderStageVertex, vs.Stage())

	fs := NewShaderFromSource("cube_fs", graphics.ShaderStageFragment, cubeFragmentWGSL)
	assert.Equal(t, "fs_main", fs.EntryPoint())
}

func TestShaderVertexLayouts(t *testing.T) {
	vs := NewShaderFromSource("cube_vs", graphics.ShaderStageVertex, cubeVertexWGSL)

	// VertexInput is the only pure-@location struct; VertexOutput mixes in a
	// @builtin and must not produce a layout.
	layouts := vs.VertexLayouts()
	require.Len(t, layouts, 1)
	layout := layouts[0]
	assert.Equal(t, uint64(32), layout.ArrayStride)
	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[0].Format)
	assert.Equal(t, uint64(0), layout.Attributes[0].Offset)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[2].Format)
	assert.Equal(t, uint64(24), layout.Attributes[2].Offset)
}

func TestShaderUniformBufferReflection(t *testing.T) {
	vs := NewShaderFromSource("cube_vs", graphics.ShaderStageVertex, cubeVertexWGSL)

	buffers := vs.UniformBuffers()
	require.Len(t, buffers, 2)

	scene := buffers[0]
	assert.Equal(t, "scene", scene.Name)
	assert.Equal(t, graphics.ShaderStageVertex, scene.Stage)
	assert.True(t, scene.IsUniformBlock)
	assert.Equal(t, 0, scene.BufferIndex)
	// mat4x4 (64) + vec3f (12) + f32 (4) + 4*vec4f (64), 16-aligned
	assert.Equal(t, uint64(144), scene.DataSize)

	require.Len(t, scene.Members, 4)
	assert.Equal(t, "viewProjection", scene.Members[0].Name)
	assert.Equal(t, graphics.UniformTypeFloat4x4, scene.Members[0].Type)
	assert.Equal(t, uint64(0), scene.Members[0].Offset)

	assert.Equal(t, "lightDirection", scene.Members[1].Name)
	assert.Equal(t, graphics.UniformTypeFloat3, scene.Members[1].Type)
	assert.Equal(t, uint64(64), scene.Members[1].Offset)

	// f32 packs into the vec3 padding lane
	assert.Equal(t, "time", scene.Members[2].Name)
	assert.Equal(t, uint64(76), scene.Members[2].Offset)

	assert.Equal(t, "tints", scene.Members[3].Name)
	assert.Equal(t, graphics.UniformTypeFloat4, scene.Members[3].Type)
	assert.Equal(t, uint64(80), scene.Members[3].Offset)
	assert.Equal(t, 4, scene.Members[3].ArrayLength)

	// A primitive-typed var<uniform> reflects as a loose single-member buffer.
	model := buffers[1]
	assert.Equal(t, "modelMatrix", model.Name)
	assert.False(t, model.IsUniformBlock)
	assert.Equal(t, 1, model.BufferIndex)
	assert.Equal(t, uint64(64), model.DataSize)
	require.Len(t, model.Members, 1)
	assert.Equal(t, "modelMatrix", model.Members[0].Name)
	assert.Equal(t, graphics.UniformTypeFloat4x4, model.Members[0].Type)
}

func TestShaderTextureReflection(t *testing.T) {
	fs := NewShaderFromSource("cube_fs", graphics.ShaderStageFragment, cubeFragmentWGSL)

	textures := fs.Textures()
	require.Len(t, textures, 1)
	assert.Equal(t, "albedo", textures[0].Name)
	assert.Equal(t, graphics.ShaderStageFragment, textures[0].Stage)
	assert.Equal(t, 0, textures[0].TextureIndex)
}

func TestShaderBindGroupLayouts(t *testing.T) {
	fs := NewShaderFromSource("cube_fs", graphics.ShaderStageFragment, cubeFragmentWGSL)

	mat := fs.BindGroupLayoutDescriptor(0)
	require.Len(t, mat.Entries, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, mat.Entries[0].Buffer.Type)
	// vec4f (16) + f32 (4), 16-aligned
	assert.Equal(t, uint64(32), mat.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageFragment, mat.Entries[0].Visibility)

	texGroup := fs.BindGroupLayoutDescriptor(1)
	require.Len(t, texGroup.Entries, 2)
	assert.Equal(t, wgpu.TextureViewDimension2D, texGroup.Entries[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, texGroup.Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, texGroup.Entries[1].Sampler.Type)
}

func TestNewPipelineReflectionMergesStages(t *testing.T) {
	vs := NewShaderFromSource("cube_vs", graphics.ShaderStageVertex, cubeVertexWGSL)
	fs := NewShaderFromSource("cube_fs", graphics.ShaderStageFragment, cubeFragmentWGSL)

	reflection := NewPipelineReflection(vs, fs)
	assert.Len(t, reflection.UniformBuffers(), 3)
	assert.Len(t, reflection.Textures(), 1)
	assert.Equal(t, graphics.ShaderStageVertex, reflection.UniformBuffers()[0].Stage)
	assert.Equal(t, graphics.ShaderStageFragment, reflection.UniformBuffers()[2].Stage)
}

func TestCommentsDoNotConfuseParsing(t *testing.T) {
	source := `
// @group(9) @binding(9) var<uniform> ghost: mat4x4<f32>;
/* struct Ghost { a: f32, } */
struct Real { a: f32, /* b: vec4f, */ }
@group(0) @binding(0) var<uniform> real: Real;
@vertex fn vs_main() {}
`
	s := NewShaderFromSource("commented", graphics.ShaderStageVertex, source)
	buffers := s.UniformBuffers()
	require.Len(t, buffers, 1)
	assert.Equal(t, "real", buffers[0].Name)
	require.Len(t, buffers[0].Members, 1)
	assert.Equal(t, "a", buffers[0].Members[0].Name)
}

func TestLibraryLoadsConcurrentlyAndReportsErrors(t *testing.T) {
	dir := t.TempDir()
	vsPath := filepath.Join(dir, "cube_vs.wgsl")
	fsPath := filepath.Join(dir, "cube_fs.wgsl")
	require.NoError(t, os.WriteFile(vsPath, []byte(cubeVertexWGSL), 0o644))
	require.NoError(t, os.WriteFile(fsPath, []byte(cubeFragmentWGSL), 0o644))

	lib := NewLibrary(4)
	err := lib.Load(
		Source{Key: "cube_vs", Stage: graphics.ShaderStageVertex, Path: vsPath},
		Source{Key: "cube_fs", Stage: graphics.ShaderStageFragment, Path: fsPath},
		Source{Key: "missing", Stage: graphics.ShaderStageVertex, Path: filepath.Join(dir, "nope.wgsl")},
	)
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing")

	vs, ok := lib.Shader("cube_vs")
	require.True(t, ok)
	assert.Equal(t, "vs_main", vs.EntryPoint())
	_, ok = lib.Shader("missing")
	assert.False(t, ok)

	reflection := lib.Reflection("cube_vs", "cube_fs")
	assert.Len(t, reflection.UniformBuffers(), 3)
	assert.Len(t, reflection.Textures(), 1)
}
