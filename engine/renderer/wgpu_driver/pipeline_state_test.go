package wgpu_driver

import (
	"testing"

	"github.com/krite/igl/graphics"
	"github.com/stretchr/testify/assert"
)

type staticReflection struct {
	buffers []graphics.BufferArgDesc
}

func (r *staticReflection) UniformBuffers() []graphics.BufferArgDesc { return r.buffers }
func (r *staticReflection) Textures() []graphics.TextureArgDesc     { return nil }

func TestPipelineStateResolvesBufferIndices(t *testing.T) {
	d := &device{}
	ps := d.NewPipelineState(&staticReflection{
		buffers: []graphics.BufferArgDesc{
			{Name: "scene", BufferIndex: 0},
			{Name: "material", BufferIndex: 2},
		},
	})

	point, ok := ps.UniformBlockBindingPoint("material")
	assert.True(t, ok)
	assert.Equal(t, 2, point)

	_, ok = ps.UniformBlockBindingPoint("missing")
	assert.False(t, ok)

	// wgpu has no loose uniforms, so location lookups always miss.
	_, ok = ps.UniformLocation("scene", graphics.ShaderStageVertex)
	assert.False(t, ok)
}

func TestDeviceBufferUploadBoundsCheck(t *testing.T) {
	buf := &deviceBuffer{size: 16}
	err := buf.Upload(make([]byte, 8), 12)
	assert.Error(t, err)
}

func TestDeviceReportsVulkanBindingModel(t *testing.T) {
	d := &device{uniformBufferLimit: 65536}
	assert.Equal(t, graphics.BackendTypeVulkan, d.BackendType())
	assert.False(t, d.HasFeature(graphics.DeviceFeatureBindBytes))

	limit, ok := d.FeatureLimit(graphics.FeatureLimitMaxUniformBufferBytes)
	assert.True(t, ok)
	assert.Equal(t, uint64(65536), limit)

	_, ok = d.FeatureLimit(graphics.FeatureLimitMaxBindBytes)
	assert.False(t, ok)
}
