package uniforms

import (
	"testing"

	"github.com/krite/igl/common"
	"github.com/krite/igl/graphics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityMatrix() common.Float4x4 {
	var m common.Float4x4
	common.Identity(&m)
	return m
}

func TestFloat4RoundTripAtMemberOffsets(t *testing.T) {
	device := newMetalDevice(true, 4096)
	reflection := blockReflection("material", graphics.ShaderStageFragment, 32, true, 0,
		member("baseColor", graphics.UniformTypeFloat4, 0, 1),
		member("emissive", graphics.UniformTypeFloat4, 16, 1))
	su := NewShaderUniforms(device, reflection)
	defer su.Release()

	base := common.Float4{0.1, 0.2, 0.3, 1}
	emissive := common.Float4{2, 4, 8, 0}
	su.SetFloat4("baseColor", base, 0)
	su.SetFloat4("emissive", emissive, 0)

	encoder := &fakeEncoder{}
	su.Bind(device, &fakePipelineState{}, encoder)

	require.Len(t, encoder.byteBinds, 1)
	want := common.SliceToBytes([]common.Float4{base, emissive})
	assert.Equal(t, want, encoder.byteBinds[0].data)
	assert.Equal(t, graphics.BindTargetFragment, encoder.byteBinds[0].target)
}

func TestElementSizeMismatchLeavesStagingUntouched(t *testing.T) {
	device := newMetalDevice(true, 4096)
	reflection := blockReflection("material", graphics.ShaderStageFragment, 32, true, 0,
		member("baseColor", graphics.UniformTypeFloat4, 0, 1),
		member("lightDir", graphics.UniformTypeFloat3, 16, 1))
	su := NewShaderUniforms(device, reflection)
	defer su.Release()

	base := common.Float4{1, 2, 3, 4}
	su.SetFloat4("baseColor", base, 0)

	// A packed 12-byte write is wrong on a padded-vector backend and must be
	// rejected without corrupting the neighboring member.
	packed := []float32{9, 9, 9}
	su.SetUniformBytes("lightDir", common.SliceToBytes(packed), 12, 1, 0)

	encoder := &fakeEncoder{}
	su.Bind(device, &fakePipelineState{}, encoder)

	require.Len(t, encoder.byteBinds, 1)
	data := encoder.byteBinds[0].data
	assert.Equal(t, common.SliceToBytes([]common.Float4{base}), data[:16])
	assert.Equal(t, make([]byte, 16), data[16:])
}

func TestArrayRangeValidation(t *testing.T) {
	device := newMetalDevice(true, 8192)
	reflection := blockReflection("skinning", graphics.ShaderStageVertex, 256, true, 0,
		member("bones", graphics.UniformTypeFloat4x4, 0, 4))
	su := NewShaderUniforms(device, reflection)
	defer su.Release()

	// Last two elements of a four-element array fit exactly.
	su.SetFloat4x4Array("bones", []common.Float4x4{identityMatrix(), identityMatrix()}, 2)

	// One past the end is rejected whole, not truncated.
	var poison common.Float4x4
	for i := range poison {
		poison[i] = 99
	}
	su.SetFloat4x4Array("bones", []common.Float4x4{poison, poison}, 3)
	su.SetFloat4x4("bones", poison, -1)
	su.SetFloat4x4Array("bones", nil, 0)

	encoder := &fakeEncoder{}
	su.Bind(device, &fakePipelineState{}, encoder)

	require.Len(t, encoder.byteBinds, 1)
	data := encoder.byteBinds[0].data
	assert.Equal(t, make([]byte, 128), data[:128])
	assert.Equal(t, common.SliceToBytes([]common.Float4x4{identityMatrix(), identityMatrix()}), data[128:])
}

func TestFloat3PackingFollowsBackend(t *testing.T) {
	// The legacy-block backend strips the padding lane and tightens the stride.
	glDevice := newOpenGLDevice()
	glReflection := blockReflection("lightDirs", graphics.ShaderStageFragment, 24, false, 0,
		member("lightDirs", graphics.UniformTypeFloat3, 0, 2))
	glsu := NewShaderUniforms(glDevice, glReflection)
	defer glsu.Release()

	values := []common.Float3{common.NewFloat3(1, 2, 3), common.NewFloat3(4, 5, 6)}
	glsu.SetFloat3Array("lightDirs", values, 0)

	encoder := &fakeEncoder{}
	pipeline := &fakePipelineState{locations: map[string]int{"lightDirs@fragment": 7}}
	glsu.Bind(glDevice, pipeline, encoder)

	require.Len(t, encoder.uniformBinds, 1)
	bind := encoder.uniformBinds[0]
	assert.Equal(t, 7, bind.desc.Location)
	assert.Equal(t, 12, bind.desc.ElementStride)
	assert.Equal(t, 2, bind.desc.NumElements)
	assert.Equal(t, common.SliceToBytes([]float32{1, 2, 3, 4, 5, 6}), bind.data)

	// The padded-vector backend keeps the fourth lane in place.
	mtlDevice := newMetalDevice(true, 4096)
	mtlsu := NewShaderUniforms(mtlDevice, blockReflection("light", graphics.ShaderStageFragment, 16, true, 0,
		member("lightDir", graphics.UniformTypeFloat3, 0, 1)))
	defer mtlsu.Release()

	mtlsu.SetFloat3("lightDir", common.NewFloat3(1, 2, 3), 0)
	mtlEncoder := &fakeEncoder{}
	mtlsu.Bind(mtlDevice, &fakePipelineState{}, mtlEncoder)

	require.Len(t, mtlEncoder.byteBinds, 1)
	assert.Equal(t, common.SliceToBytes([]float32{1, 2, 3, 0}), mtlEncoder.byteBinds[0].data)
}

func TestFloat3x3PackingFollowsBackend(t *testing.T) {
	glDevice := newOpenGLDevice()
	glsu := NewShaderUniforms(glDevice, blockReflection("normalMatrix", graphics.ShaderStageVertex, 36, false, 0,
		member("normalMatrix", graphics.UniformTypeFloat3x3, 0, 1)))
	defer glsu.Release()

	m := common.Float3x3{1, 2, 3, 0, 4, 5, 6, 0, 7, 8, 9, 0}
	glsu.SetFloat3x3("normalMatrix", m, 0)

	encoder := &fakeEncoder{}
	pipeline := &fakePipelineState{locations: map[string]int{"normalMatrix@vertex": 2}}
	glsu.Bind(glDevice, pipeline, encoder)

	require.Len(t, encoder.uniformBinds, 1)
	assert.Equal(t, common.SliceToBytes([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9}), encoder.uniformBinds[0].data)

	// Padded column layout survives intact on the padded-vector backend.
	mtlDevice := newMetalDevice(true, 4096)
	mtlsu := NewShaderUniforms(mtlDevice, blockReflection("normals", graphics.ShaderStageVertex, 48, true, 0,
		member("normalMatrix", graphics.UniformTypeFloat3x3, 0, 1)))
	defer mtlsu.Release()

	mtlsu.SetFloat3x3("normalMatrix", m, 0)
	mtlEncoder := &fakeEncoder{}
	mtlsu.Bind(mtlDevice, &fakePipelineState{}, mtlEncoder)

	require.Len(t, mtlEncoder.byteBinds, 1)
	assert.Equal(t, common.SliceToBytes([]common.Float3x3{m}), mtlEncoder.byteBinds[0].data)
}

func TestScalarSetters(t *testing.T) {
	device := newMetalDevice(true, 4096)
	reflection := blockReflection("flags", graphics.ShaderStageFragment, 12, true, 0,
		member("enabled", graphics.UniformTypeBool, 0, 1),
		member("mode", graphics.UniformTypeInt, 4, 1),
		member("gamma", graphics.UniformTypeFloat, 8, 1))
	su := NewShaderUniforms(device, reflection)
	defer su.Release()

	su.SetBool("enabled", true, 0)
	su.SetInt("mode", 3, 0)
	su.SetFloat("gamma", 2.2, 0)

	encoder := &fakeEncoder{}
	su.Bind(device, &fakePipelineState{}, encoder)

	require.Len(t, encoder.byteBinds, 1)
	data := encoder.byteBinds[0].data
	assert.Equal(t, byte(1), data[0])
	assert.Equal(t, common.SliceToBytes([]common.Int1{3}), data[4:8])
	assert.Equal(t, common.SliceToBytes([]float32{2.2}), data[8:12])
}

func TestSetBytesUploadsWholeBuffer(t *testing.T) {
	device := newVulkanDevice(65536)
	su := NewShaderUniforms(device, blockReflection("particles", graphics.ShaderStageVertex, 64, true, 0,
		member("positions", graphics.UniformTypeFloat4, 0, 4)))
	defer su.Release()

	payload := make([]byte, 64)
	for i := range payload {
		payload[i] = byte(i)
	}
	su.SetBytes("particles", graphics.ShaderStageVertex, payload)

	require.Len(t, device.created, 1)
	assert.Equal(t, payload, device.created[0].data[:64])
	assert.Equal(t, 1, device.created[0].uploads)
}

func TestSetBytesRequiresGPUBuffer(t *testing.T) {
	device := newMetalDevice(true, 4096)
	su := NewShaderUniforms(device, blockReflection("material", graphics.ShaderStageFragment, 32, true, 0,
		member("baseColor", graphics.UniformTypeFloat4, 0, 1)))
	defer su.Release()

	assert.NotPanics(t, func() {
		su.SetBytes("material", graphics.ShaderStageFragment, make([]byte, 32))
		su.SetBytes("missing", graphics.ShaderStageFragment, nil)
	})
}

func TestSetTextureReplacementReleasesOwned(t *testing.T) {
	device := newMetalDevice(true, 4096)
	reflection := &fakeReflection{
		textures: []graphics.TextureArgDesc{{Name: "albedo", Stage: graphics.ShaderStageFragment, TextureIndex: 2}},
	}
	su := NewShaderUniforms(device, reflection)
	defer su.Release()

	first := &fakeTexture{}
	second := &fakeTexture{}
	sampler := &fakeSampler{}

	su.SetTexture("albedo", first, sampler)
	su.SetTexture("albedo", second, sampler)
	assert.Equal(t, 1, first.released)
	assert.Zero(t, second.released)

	// Swapping to a borrowed reference releases the owned one too.
	borrowed := &fakeTexture{}
	su.SetRawTexture("albedo", borrowed, sampler)
	assert.Equal(t, 1, second.released)

	encoder := &fakeEncoder{}
	su.Bind(device, &fakePipelineState{}, encoder)
	require.Len(t, encoder.textureBinds, 1)
	assert.Same(t, borrowed, encoder.textureBinds[0].texture.(*fakeTexture))
	assert.Equal(t, 2, encoder.textureBinds[0].index)
	require.Len(t, encoder.samplerBinds, 1)
	assert.Equal(t, 2, encoder.samplerBinds[0].index)
}

func TestUnknownNamesAreNoOps(t *testing.T) {
	device := newMetalDevice(true, 4096)
	su := NewShaderUniforms(device, blockReflection("material", graphics.ShaderStageFragment, 16, true, 0,
		member("baseColor", graphics.UniformTypeFloat4, 0, 1)))
	defer su.Release()

	assert.NotPanics(t, func() {
		su.SetFloat4("typoColor", common.Float4{}, 0)
		su.SetTexture("typoTexture", &fakeTexture{}, &fakeSampler{})
		su.SetRawTexture("typoTexture", &fakeTexture{}, &fakeSampler{})
	})
}
