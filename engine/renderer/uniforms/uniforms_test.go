package uniforms

import (
	"errors"
	"testing"

	"github.com/krite/igl/graphics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShaderUniformsSuballocatedAllocation(t *testing.T) {
	device := newVulkanDevice(65536)
	reflection := blockReflection("transforms", graphics.ShaderStageVertex, 256, true, 1,
		member("modelMatrix", graphics.UniformTypeFloat4x4, 0, 1))

	su := NewShaderUniforms(device, reflection, WithLabel("cube"))

	require.Len(t, device.created, 1)
	buf := device.created[0]
	assert.Equal(t, uint64(65536), buf.Size())
	assert.NotZero(t, buf.hint&graphics.BufferHintRing)
	assert.Equal(t, "cube transforms", buf.label)
	assert.Equal(t, graphics.BackendTypeVulkan, su.BackendType())

	desc, ok := su.BufferDescriptor("transforms", graphics.ShaderStageVertex)
	require.True(t, ok)
	assert.Equal(t, uint64(256), desc.DataSize)

	_, ok = su.BufferDescriptor("transforms", graphics.ShaderStageFragment)
	assert.False(t, ok)
	_, ok = su.BufferDescriptor("missing", graphics.ShaderStageVertex)
	assert.False(t, ok)
}

func TestNewShaderUniformsClampsAllocationToDeviceLimit(t *testing.T) {
	device := newVulkanDevice(16384)
	su := NewShaderUniforms(device, blockReflection("transforms", graphics.ShaderStageVertex, 256, true, 0,
		member("modelMatrix", graphics.UniformTypeFloat4x4, 0, 1)))
	defer su.Release()

	require.Len(t, device.created, 1)
	assert.Equal(t, uint64(16384), device.created[0].Size())
}

func TestNewShaderUniformsPanicsOnInvalidReflection(t *testing.T) {
	assert.Panics(t, func() {
		NewShaderUniforms(newVulkanDevice(65536),
			blockReflection("empty", graphics.ShaderStageVertex, 0, true, 0))
	})
	assert.Panics(t, func() {
		NewShaderUniforms(newVulkanDevice(65536),
			blockReflection("huge", graphics.ShaderStageVertex, 65537, true, 0))
	})
	assert.Panics(t, func() {
		NewShaderUniforms(newVulkanDevice(16384),
			blockReflection("overLimit", graphics.ShaderStageVertex, 32768, true, 0))
	})
	assert.Panics(t, func() {
		NewShaderUniforms(newVulkanDevice(65536), &fakeReflection{
			textures: []graphics.TextureArgDesc{
				{Name: "albedo", Stage: graphics.ShaderStageVertex, TextureIndex: 0},
				{Name: "albedo", Stage: graphics.ShaderStageFragment, TextureIndex: 1},
			},
		})
	})
}

func TestNewShaderUniformsSkipsReservedVertexBuffers(t *testing.T) {
	device := newMetalDevice(true, 4096)
	reflection := &fakeReflection{
		buffers: []graphics.BufferArgDesc{
			{Name: "vertexBuffer.0", Stage: graphics.ShaderStageVertex, DataSize: 64, BufferIndex: 0},
			{Name: "uniforms", Stage: graphics.ShaderStageVertex, DataSize: 64, BufferIndex: 1,
				Members: []graphics.BufferMemberDesc{member("modelMatrix", graphics.UniformTypeFloat4x4, 0, 1)}},
		},
	}
	su := NewShaderUniforms(device, reflection)
	defer su.Release()

	_, ok := su.BufferDescriptor("vertexBuffer.0", graphics.ShaderStageVertex)
	assert.False(t, ok)
	_, ok = su.BufferDescriptor("uniforms", graphics.ShaderStageVertex)
	assert.True(t, ok)
}

func TestNewShaderUniformsMetalBufferSelection(t *testing.T) {
	// Small buffers ride the command stream, so no GPU buffer exists.
	small := newMetalDevice(true, 4096)
	NewShaderUniforms(small, blockReflection("uniforms", graphics.ShaderStageVertex, 64, true, 0,
		member("modelMatrix", graphics.UniformTypeFloat4x4, 0, 1)))
	assert.Empty(t, small.created)

	// Over the bind-by-pointer limit a conventional buffer carries the bytes.
	large := newMetalDevice(true, 4096)
	NewShaderUniforms(large, blockReflection("uniforms", graphics.ShaderStageVertex, 8192, true, 0,
		member("bones", graphics.UniformTypeFloat4x4, 0, 128)))
	assert.Len(t, large.created, 1)

	// Without the fast path every buffer is a conventional buffer.
	noFastPath := newMetalDevice(false, 0)
	NewShaderUniforms(noFastPath, blockReflection("uniforms", graphics.ShaderStageVertex, 64, true, 0,
		member("modelMatrix", graphics.UniformTypeFloat4x4, 0, 1)))
	assert.Len(t, noFastPath.created, 1)
}

func TestNewShaderUniformsOpenGLBuffersOnlyForBlocks(t *testing.T) {
	device := newOpenGLDevice()
	reflection := &fakeReflection{
		buffers: []graphics.BufferArgDesc{
			{Name: "Lighting", Stage: graphics.ShaderStageFragment, DataSize: 32, IsUniformBlock: true, BufferIndex: 0,
				Members: []graphics.BufferMemberDesc{member("lightColor", graphics.UniformTypeFloat4, 0, 1)}},
			{Name: "modelMatrix", Stage: graphics.ShaderStageVertex, DataSize: 64, IsUniformBlock: false, BufferIndex: 1,
				Members: []graphics.BufferMemberDesc{member("modelMatrix", graphics.UniformTypeFloat4x4, 0, 1)}},
		},
	}
	NewShaderUniforms(device, reflection)
	assert.Len(t, device.created, 1)
	assert.Equal(t, "Lighting", device.created[0].label)
}

func TestNewShaderUniformsBufferCreationFailureIsNonFatal(t *testing.T) {
	device := newVulkanDevice(65536)
	device.createErr = errors.New("out of device memory")

	su := NewShaderUniforms(device, blockReflection("transforms", graphics.ShaderStageVertex, 256, true, 0,
		member("modelMatrix", graphics.UniformTypeFloat4x4, 0, 1)))

	_, ok := su.BufferDescriptor("transforms", graphics.ShaderStageVertex)
	assert.False(t, ok)

	// Writes to the skipped buffer's members degrade to no-ops.
	assert.NotPanics(t, func() {
		su.SetFloat4x4("modelMatrix", identityMatrix(), 0)
	})
	encoder := &fakeEncoder{}
	su.Bind(device, &fakePipelineState{}, encoder)
	assert.Empty(t, encoder.bufferBinds)
}

func TestReleaseIsIdempotentAndDisarmsSlots(t *testing.T) {
	device := newVulkanDevice(65536)
	reflection := &fakeReflection{
		buffers: []graphics.BufferArgDesc{{
			Name: "transforms", Stage: graphics.ShaderStageVertex, DataSize: 64, IsUniformBlock: true,
			Members: []graphics.BufferMemberDesc{member("modelMatrix", graphics.UniformTypeFloat4x4, 0, 1)},
		}},
		textures: []graphics.TextureArgDesc{{Name: "albedo", Stage: graphics.ShaderStageFragment, TextureIndex: 0}},
	}
	su := NewShaderUniforms(device, reflection)

	owned := &fakeTexture{}
	su.SetTexture("albedo", owned, &fakeSampler{})

	su.Release()
	su.Release()
	assert.Equal(t, 1, owned.released)

	assert.NotPanics(t, func() {
		su.SetFloat4x4("modelMatrix", identityMatrix(), 0)
	})
	encoder := &fakeEncoder{}
	su.Bind(device, &fakePipelineState{}, encoder)
	assert.Empty(t, encoder.bufferBinds)
	assert.Empty(t, encoder.textureBinds)
}

func TestReleaseKeepsBorrowedTexturesAlive(t *testing.T) {
	device := newMetalDevice(true, 4096)
	reflection := &fakeReflection{
		textures: []graphics.TextureArgDesc{{Name: "albedo", Stage: graphics.ShaderStageFragment, TextureIndex: 0}},
	}
	su := NewShaderUniforms(device, reflection)

	borrowed := &fakeTexture{}
	su.SetRawTexture("albedo", borrowed, &fakeSampler{})
	su.Release()
	assert.Zero(t, borrowed.released)
}
