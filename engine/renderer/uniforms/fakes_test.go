package uniforms

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/krite/igl/graphics"
)

// readFloat32 decodes a little-endian float32 at a byte offset.
func readFloat32(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

// fakeDevice implements graphics.Device with scripted features and limits.
type fakeDevice struct {
	backend   graphics.BackendType
	features  map[graphics.DeviceFeature]bool
	limits    map[graphics.DeviceFeatureLimit]uint64
	createErr error
	created   []*fakeBuffer
}

func (d *fakeDevice) BackendType() graphics.BackendType {
	return d.backend
}

func (d *fakeDevice) HasFeature(feature graphics.DeviceFeature) bool {
	return d.features[feature]
}

func (d *fakeDevice) FeatureLimit(limit graphics.DeviceFeatureLimit) (uint64, bool) {
	v, ok := d.limits[limit]
	return v, ok
}

func (d *fakeDevice) CreateBuffer(desc *graphics.BufferDescriptor) (graphics.Buffer, error) {
	if d.createErr != nil {
		return nil, d.createErr
	}
	buf := &fakeBuffer{
		label: desc.Label,
		hint:  desc.Hint,
		data:  make([]byte, desc.Length),
	}
	d.created = append(d.created, buf)
	return buf, nil
}

func newOpenGLDevice() *fakeDevice {
	return &fakeDevice{backend: graphics.BackendTypeOpenGL}
}

func newMetalDevice(bindBytes bool, bindBytesLimit uint64) *fakeDevice {
	return &fakeDevice{
		backend:  graphics.BackendTypeMetal,
		features: map[graphics.DeviceFeature]bool{graphics.DeviceFeatureBindBytes: bindBytes},
		limits:   map[graphics.DeviceFeatureLimit]uint64{graphics.FeatureLimitMaxBindBytes: bindBytesLimit},
	}
}

func newVulkanDevice(uniformBufferLimit uint64) *fakeDevice {
	return &fakeDevice{
		backend: graphics.BackendTypeVulkan,
		limits:  map[graphics.DeviceFeatureLimit]uint64{graphics.FeatureLimitMaxUniformBufferBytes: uniformBufferLimit},
	}
}

// fakeBuffer implements graphics.Buffer over a byte slice.
type fakeBuffer struct {
	label     string
	hint      graphics.BufferHint
	data      []byte
	uploads   int
	uploadErr error
}

func (b *fakeBuffer) Upload(data []byte, offset uint64) error {
	if b.uploadErr != nil {
		return b.uploadErr
	}
	if offset+uint64(len(data)) > uint64(len(b.data)) {
		return fmt.Errorf("upload range [%d, %d) exceeds buffer size %d", offset, offset+uint64(len(data)), len(b.data))
	}
	copy(b.data[offset:], data)
	b.uploads++
	return nil
}

func (b *fakeBuffer) Size() uint64 {
	return uint64(len(b.data))
}

type fakeTexture struct {
	released int
}

func (t *fakeTexture) Release() {
	t.released++
}

type fakeSampler struct {
	released int
}

func (s *fakeSampler) Release() {
	s.released++
}

// fakePipelineState resolves names from scripted maps. Loose uniform locations
// are keyed by "name@stage".
type fakePipelineState struct {
	blockPoints map[string]int
	locations   map[string]int
}

func (ps *fakePipelineState) UniformBlockBindingPoint(name string) (int, bool) {
	point, ok := ps.blockPoints[name]
	return point, ok
}

func (ps *fakePipelineState) UniformLocation(name string, stage graphics.ShaderStage) (int, bool) {
	location, ok := ps.locations[name+"@"+stage.String()]
	return location, ok
}

type bufferBind struct {
	index  int
	target graphics.BindTarget
	buffer graphics.Buffer
	offset uint64
}

type bytesBind struct {
	index  int
	target graphics.BindTarget
	data   []byte
}

type uniformBind struct {
	desc graphics.UniformDescriptor
	data []byte
}

type textureBind struct {
	index   int
	target  graphics.BindTarget
	texture graphics.Texture
}

type samplerBind struct {
	index   int
	target  graphics.BindTarget
	sampler graphics.SamplerState
}

// fakeEncoder records every bind call, copying pushed byte slices so later
// staging writes cannot retroactively change what was observed at bind time.
type fakeEncoder struct {
	bufferBinds  []bufferBind
	byteBinds    []bytesBind
	uniformBinds []uniformBind
	textureBinds []textureBind
	samplerBinds []samplerBind
}

func (e *fakeEncoder) BindBuffer(index int, target graphics.BindTarget, buffer graphics.Buffer, offset uint64) {
	e.bufferBinds = append(e.bufferBinds, bufferBind{index, target, buffer, offset})
}

func (e *fakeEncoder) BindBytes(index int, target graphics.BindTarget, data []byte) {
	copied := make([]byte, len(data))
	copy(copied, data)
	e.byteBinds = append(e.byteBinds, bytesBind{index, target, copied})
}

func (e *fakeEncoder) BindUniform(desc *graphics.UniformDescriptor, data []byte) {
	copied := make([]byte, len(data))
	copy(copied, data)
	e.uniformBinds = append(e.uniformBinds, uniformBind{*desc, copied})
}

func (e *fakeEncoder) BindTexture(index int, target graphics.BindTarget, texture graphics.Texture) {
	e.textureBinds = append(e.textureBinds, textureBind{index, target, texture})
}

func (e *fakeEncoder) BindSamplerState(index int, target graphics.BindTarget, sampler graphics.SamplerState) {
	e.samplerBinds = append(e.samplerBinds, samplerBind{index, target, sampler})
}

// fakeReflection implements graphics.PipelineReflection from literal slices.
type fakeReflection struct {
	buffers  []graphics.BufferArgDesc
	textures []graphics.TextureArgDesc
}

func (r *fakeReflection) UniformBuffers() []graphics.BufferArgDesc {
	return r.buffers
}

func (r *fakeReflection) Textures() []graphics.TextureArgDesc {
	return r.textures
}

// blockReflection builds a single-buffer reflection for tests.
func blockReflection(name string, stage graphics.ShaderStage, size uint64, isBlock bool, bufferIndex int, members ...graphics.BufferMemberDesc) *fakeReflection {
	return &fakeReflection{
		buffers: []graphics.BufferArgDesc{{
			Name:           name,
			Stage:          stage,
			DataSize:       size,
			IsUniformBlock: isBlock,
			BufferIndex:    bufferIndex,
			Members:        members,
		}},
	}
}

func member(name string, t graphics.UniformType, offset uint64, arrayLength int) graphics.BufferMemberDesc {
	return graphics.BufferMemberDesc{Name: name, Type: t, Offset: offset, ArrayLength: arrayLength}
}
