package uniforms

import (
	"fmt"

	"github.com/krite/igl/graphics"
)

// backendPolicy folds every per-backend layout and binding decision into one
// place so the registry, setters, and bind paths stay backend-agnostic. The set
// of implementations is closed: one policy per supported backend, selected once
// at construction.
type backendPolicy interface {
	// suballocates reports whether buffer allocations hold multiple logical
	// instances addressed by a suballocation index.
	suballocates() bool

	// skipsBuffer reports whether a reflected buffer name is auto-managed by the
	// backend and must not produce a registry entry.
	skipsBuffer(name string) bool

	// allocationSize returns the staging (and GPU buffer) allocation length for
	// a reflected buffer of the requested size. limit is the device uniform
	// buffer ceiling, 0 when unbounded.
	allocationSize(requested, limit uint64) uint64

	// needsGPUBuffer reports whether a reflected buffer gets a GPU buffer object
	// at construction, as opposed to binding staging bytes directly.
	needsGPUBuffer(desc *graphics.BufferArgDesc) bool

	// bufferHint returns extra usage hints for created GPU buffers.
	bufferHint() graphics.BufferHint

	// checksWriteSize reports whether setters validate the caller's element size
	// against expectedSize before writing.
	checksWriteSize() bool

	// expectedSize returns the required per-element byte size for a uniform type
	// under this backend's memory layout rules.
	expectedSize(t graphics.UniformType) uint64

	// packsFloat3 reports whether three-component vectors strip their padding
	// lane when staged.
	packsFloat3() bool

	// packsFloat3x3 reports whether 3x3 matrices strip their per-column padding
	// lanes when staged.
	packsFloat3x3() bool

	// publish uploads one group's staged bytes and issues its bind calls.
	publish(su *shaderUniforms, group *bufferGroup, pipelineState graphics.RenderPipelineState, encoder graphics.RenderCommandEncoder)
}

// policyForBackend selects the layout policy for a device's binding model.
func policyForBackend(device graphics.Device) backendPolicy {
	switch device.BackendType() {
	case graphics.BackendTypeOpenGL:
		return openglPolicy{}
	case graphics.BackendTypeMetal:
		limit, _ := device.FeatureLimit(graphics.FeatureLimitMaxBindBytes)
		return metalPolicy{
			bindBytes:      device.HasFeature(graphics.DeviceFeatureBindBytes),
			bindBytesLimit: limit,
		}
	case graphics.BackendTypeVulkan:
		return vulkanPolicy{}
	default:
		panic(fmt.Sprintf("uniforms: unsupported backend: %s", device.BackendType()))
	}
}

// paddedExpectedSize is the layout shared by the padded-vector backends: every
// type occupies its four-byte-lane-aligned size.
func paddedExpectedSize(t graphics.UniformType) uint64 {
	switch t {
	case graphics.UniformTypeFloat3:
		return 16
	case graphics.UniformTypeFloat3x3:
		return 48
	default:
		return uint64(t.Size())
	}
}

// openglPolicy implements the legacy explicit-block model: GPU buffers exist
// only for true uniform blocks, loose uniforms are pushed by location at bind
// time, and vectors and matrices are tightly packed.
type openglPolicy struct{}

func (openglPolicy) suballocates() bool         { return false }
func (openglPolicy) skipsBuffer(string) bool    { return false }
func (openglPolicy) checksWriteSize() bool      { return true }
func (openglPolicy) packsFloat3() bool          { return true }
func (openglPolicy) packsFloat3x3() bool        { return true }
func (openglPolicy) bufferHint() graphics.BufferHint { return 0 }

func (openglPolicy) allocationSize(requested, _ uint64) uint64 {
	return requested
}

func (openglPolicy) needsGPUBuffer(desc *graphics.BufferArgDesc) bool {
	return desc.IsUniformBlock
}

func (openglPolicy) expectedSize(t graphics.UniformType) uint64 {
	return uint64(t.Size())
}

func (openglPolicy) publish(su *shaderUniforms, group *bufferGroup, pipelineState graphics.RenderPipelineState, encoder graphics.RenderCommandEncoder) {
	if group.desc.IsUniformBlock {
		bindingPoint, ok := pipelineState.UniformBlockBindingPoint(group.desc.Name)
		if !ok {
			su.errorOnce("uniforms: no binding point for uniform block", "buffer", group.desc.Name)
			return
		}
		if err := group.allocation.buffer.Upload(group.allocation.data, 0); err != nil {
			su.errorOnce("uniforms: uniform block upload failed",
				"buffer", group.desc.Name, "err", err)
			return
		}
		encoder.BindBuffer(bindingPoint, bindTargetForShaderStage(group.desc.Stage), group.allocation.buffer, 0)
		return
	}

	// Loose uniforms have no buffer object: each member is pushed by its
	// program location straight from staging memory.
	for _, slot := range group.uniforms {
		location, ok := pipelineState.UniformLocation(slot.member.Name, group.desc.Stage)
		if !ok {
			su.errorOnce("uniforms: no location for uniform", "uniform", slot.member.Name)
			continue
		}
		memberType := slot.member.Type
		elementStride := memberType.Size()
		numElements := max(slot.member.ArrayLength, 1)
		begin := slot.member.Offset
		end := begin + uint64(elementStride*numElements)
		encoder.BindUniform(&graphics.UniformDescriptor{
			Location:      location,
			Type:          memberType,
			Offset:        0,
			NumElements:   numElements,
			ElementStride: elementStride,
		}, group.allocation.data[begin:end])
	}
}

// metalPolicy implements the bind-by-pointer model: staging bytes ride along
// the command stream directly unless the buffer is too large or the fast path
// is unsupported, in which case a conventional GPU buffer carries them.
type metalPolicy struct {
	bindBytes      bool
	bindBytesLimit uint64
}

func (metalPolicy) suballocates() bool    { return false }
func (metalPolicy) checksWriteSize() bool { return true }
func (metalPolicy) packsFloat3() bool     { return false }
func (metalPolicy) packsFloat3x3() bool   { return false }
func (metalPolicy) bufferHint() graphics.BufferHint { return 0 }

func (metalPolicy) skipsBuffer(name string) bool {
	return isReservedVertexBuffer(name)
}

func (metalPolicy) allocationSize(requested, _ uint64) uint64 {
	return requested
}

func (p metalPolicy) needsGPUBuffer(desc *graphics.BufferArgDesc) bool {
	return !p.bindBytes || desc.DataSize > p.bindBytesLimit
}

func (metalPolicy) expectedSize(t graphics.UniformType) uint64 {
	return paddedExpectedSize(t)
}

func (p metalPolicy) publish(su *shaderUniforms, group *bufferGroup, pipelineState graphics.RenderPipelineState, encoder graphics.RenderCommandEncoder) {
	target := bindTargetForShaderStage(group.desc.Stage)
	if group.allocation.buffer == nil {
		encoder.BindBytes(group.desc.BufferIndex, target, group.allocation.data)
		return
	}
	if err := group.allocation.buffer.Upload(group.allocation.data, 0); err != nil {
		su.errorOnce("uniforms: uniform buffer upload failed",
			"buffer", group.desc.Name, "err", err)
		return
	}
	encoder.BindBuffer(group.desc.BufferIndex, target, group.allocation.buffer, 0)
}

// vulkanPolicy implements the suballocated-ring model: every buffer gets a GPU
// buffer object sliced into per-instance units, writes land byte-exact without a
// size check, and binds cover all graphics stages at the selected instance offset.
type vulkanPolicy struct{}

func (vulkanPolicy) suballocates() bool      { return true }
func (vulkanPolicy) skipsBuffer(string) bool { return false }
func (vulkanPolicy) checksWriteSize() bool   { return false }
func (vulkanPolicy) packsFloat3() bool       { return true }
func (vulkanPolicy) packsFloat3x3() bool     { return false }

func (vulkanPolicy) bufferHint() graphics.BufferHint {
	return graphics.BufferHintRing
}

func (vulkanPolicy) allocationSize(_, limit uint64) uint64 {
	if limit != 0 && limit < maxSuballocatedBufferSize {
		return limit
	}
	return maxSuballocatedBufferSize
}

func (vulkanPolicy) needsGPUBuffer(*graphics.BufferArgDesc) bool {
	return true
}

func (vulkanPolicy) expectedSize(t graphics.UniformType) uint64 {
	return paddedExpectedSize(t)
}

func (vulkanPolicy) publish(su *shaderUniforms, group *bufferGroup, _ graphics.RenderPipelineState, encoder graphics.RenderCommandEncoder) {
	// With an instance selected only that instance's slice is re-uploaded;
	// otherwise the whole allocation is.
	offset := group.writeOffset()
	payload := group.allocation.data
	if group.isSuballocated && group.currentIndex >= 0 {
		if offset+group.suballocationUnit > uint64(len(payload)) {
			su.errorOnce("uniforms: suballocation slice exceeds allocation",
				"buffer", group.desc.Name, "index", group.currentIndex)
			return
		}
		payload = payload[offset : offset+group.suballocationUnit]
	}
	if err := group.allocation.buffer.Upload(payload, offset); err != nil {
		su.errorOnce("uniforms: uniform buffer upload failed",
			"buffer", group.desc.Name, "err", err)
		return
	}
	encoder.BindBuffer(group.desc.BufferIndex, graphics.BindTargetAllGraphics, group.allocation.buffer, offset)
}
