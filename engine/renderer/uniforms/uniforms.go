// package uniforms manages the lifetime, layout, and per-frame update of shader
// uniform storage for a compiled pipeline. A ShaderUniforms registry is built once
// from the pipeline's reflection data, written through name-indexed typed setters
// every frame, and bound to a render command encoder once per draw. All
// backend-specific resource-layout policy (explicit uniform blocks, bind-by-pointer,
// suballocated ring buffers) is selected by the device's BackendType at construction.
package uniforms

import (
	"fmt"
	"strings"

	"github.com/krite/igl/common"
	"github.com/krite/igl/graphics"
)

// maxSuballocatedBufferSize caps the allocation of suballocated uniform buffers.
// The size is clamped further to the device's reported uniform buffer limit; on
// hardware whose limit is exactly 64K the whole allocation is used.
const maxSuballocatedBufferSize = 65536

// bufferAllocation is an exclusively-owned block of CPU staging memory plus the
// optional GPU buffer object the bytes are uploaded to. One allocation backs
// exactly one buffer group and is never aliased.
type bufferAllocation struct {
	// data is the staging memory. Uniform writes mutate it in place; publish
	// uploads it (or binds it raw on bind-by-pointer backends).
	data []byte

	// buffer is the associated GPU buffer object, or nil when the backend binds
	// the staging bytes directly.
	buffer graphics.Buffer
}

// bufferGroup represents one reflected shader buffer: a true uniform block or a
// synthetic single-member buffer wrapping a loose uniform.
type bufferGroup struct {
	desc       graphics.BufferArgDesc
	allocation *bufferAllocation
	uniforms   []*uniformSlot

	// isSuballocated marks groups whose allocation holds many logical instances
	// of the block's contents, addressed by a small integer index.
	isSuballocated bool

	// suballocationUnit is the per-instance byte size of a suballocated group.
	suballocationUnit uint64

	// currentIndex is the selected suballocation index, or -1 when none is selected.
	currentIndex int

	// suballocations lists the registered suballocation indices in registration order.
	suballocations []int
}

// writeOffset returns the byte offset added to every write targeting this group
// to land inside the currently selected suballocation instance.
func (g *bufferGroup) writeOffset() uint64 {
	if g.isSuballocated && g.currentIndex >= 0 {
		return uint64(g.currentIndex) * g.suballocationUnit
	}
	return 0
}

// uniformSlot is one named member inside a buffer group. The group reference is
// deliberately weak: it is nilled at teardown so late writes and binds resolve to
// a logged no-op instead of touching released staging memory.
type uniformSlot struct {
	member graphics.BufferMemberDesc
	group  *bufferGroup
}

// textureSlot holds the bindable texture for one reflected texture name. The two
// fields are mutually exclusive: owned textures are released at registry teardown,
// borrowed textures stay alive only as long as the caller keeps them.
type textureSlot struct {
	owned    graphics.Texture
	borrowed graphics.Texture
}

// active returns the texture to bind, preferring the owned reference.
func (s *textureSlot) active() graphics.Texture {
	if s.owned != nil {
		return s.owned
	}
	return s.borrowed
}

// bufferKey addresses a buffer group. Buffer names are unique per shader stage,
// not globally: the same block reflected from two stages yields two groups.
type bufferKey struct {
	name  string
	stage graphics.ShaderStage
}

// shaderUniforms is the unexported implementation of ShaderUniforms.
type shaderUniforms struct {
	label   string
	backend graphics.BackendType
	policy  backendPolicy

	// groups preserves reflection declaration order; Bind publishes in this order.
	groups      []*bufferGroup
	allocations []*bufferAllocation

	// uniformsByName is a one-to-many index: the same uniform name may be
	// reflected once per shader stage.
	uniformsByName map[string][]*uniformSlot
	buffersByName  map[bufferKey]*bufferGroup

	textureDescs   []graphics.TextureArgDesc
	texturesByName map[string]*textureSlot
	samplersByName map[string]graphics.SamplerState

	released bool
	once     onceIndex
}

// ShaderUniforms owns the CPU staging storage and GPU buffer objects for one
// compiled pipeline's uniform interface, and exposes a name-indexed API for
// writing typed values and binding the results to a render command encoder.
//
// Usage pattern:
//  1. Build once per pipeline with NewShaderUniforms from the pipeline's reflection
//  2. Call typed setters (and SetSuballocationIndex on suballocating backends) per frame
//  3. Call Bind once per draw to upload staged bytes and issue bind calls
//  4. Call Release when the pipeline is destroyed
//
// A registry is safe for concurrent readers once built, but setters, suballocation
// selection, and binds mutate shared staging state and must be serialized by the
// caller within a frame.
type ShaderUniforms interface {
	// Label returns the debug label for this registry.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BackendType returns the binding model the registry was built for.
	//
	// Returns:
	//   - graphics.BackendType: the device backend fixed at construction
	BackendType() graphics.BackendType

	// BufferDescriptor looks up the reflected descriptor of a named buffer for a
	// shader stage. A failed lookup is logged once per distinct name.
	//
	// Parameters:
	//   - name: the reflected buffer name
	//   - stage: the shader stage the buffer belongs to
	//
	// Returns:
	//   - graphics.BufferArgDesc: the reflected descriptor, meaningful only when found
	//   - bool: false if no buffer with that (name, stage) exists
	BufferDescriptor(name string, stage graphics.ShaderStage) (graphics.BufferArgDesc, bool)

	// SetUniformBytes writes raw bytes into every uniform slot matching name.
	// elementSize must equal the backend-adjusted expected size for the slot's
	// type (not checked on the suballocating backend, which is byte-exact by
	// construction). arrayIndex+count must not exceed the slot's declared array
	// length. Violations are logged once per distinct cause and skip only the
	// offending slot.
	//
	// Parameters:
	//   - name: the uniform member name
	//   - data: the source bytes (elementSize*count bytes are consumed)
	//   - elementSize: byte size of one element
	//   - count: number of consecutive array elements to write
	//   - arrayIndex: first destination array element
	SetUniformBytes(name string, data []byte, elementSize, count, arrayIndex int)

	// SetBool writes a boolean uniform.
	SetBool(name string, value bool, arrayIndex int)
	// SetBoolArray writes consecutive boolean array elements.
	SetBoolArray(name string, values []bool, arrayIndex int)
	// SetInt writes a 32-bit integer uniform.
	SetInt(name string, value common.Int1, arrayIndex int)
	// SetIntArray writes consecutive integer array elements.
	SetIntArray(name string, values []common.Int1, arrayIndex int)
	// SetFloat writes a float scalar uniform.
	SetFloat(name string, value float32, arrayIndex int)
	// SetFloatArray writes consecutive float array elements.
	SetFloatArray(name string, values []float32, arrayIndex int)
	// SetFloat2 writes a two-component vector uniform.
	SetFloat2(name string, value common.Float2, arrayIndex int)
	// SetFloat2Array writes consecutive two-component vector array elements.
	SetFloat2Array(name string, values []common.Float2, arrayIndex int)
	// SetFloat3 writes a three-component vector uniform. The padding lane is
	// stripped on byte-packed backends.
	SetFloat3(name string, value common.Float3, arrayIndex int)
	// SetFloat3Array writes consecutive three-component vector array elements,
	// packing the whole array once on byte-packed backends.
	SetFloat3Array(name string, values []common.Float3, arrayIndex int)
	// SetFloat4 writes a four-component vector uniform.
	SetFloat4(name string, value common.Float4, arrayIndex int)
	// SetFloat4Array writes consecutive four-component vector array elements.
	SetFloat4Array(name string, values []common.Float4, arrayIndex int)
	// SetFloat2x2 writes a 2x2 matrix uniform.
	SetFloat2x2(name string, value common.Float2x2, arrayIndex int)
	// SetFloat2x2Array writes consecutive 2x2 matrix array elements.
	SetFloat2x2Array(name string, values []common.Float2x2, arrayIndex int)
	// SetFloat3x3 writes a 3x3 matrix uniform. The per-column padding lanes are
	// stripped on the legacy-block backend.
	SetFloat3x3(name string, value common.Float3x3, arrayIndex int)
	// SetFloat3x3Array writes consecutive 3x3 matrix array elements, packing the
	// whole array once on the legacy-block backend.
	SetFloat3x3Array(name string, values []common.Float3x3, arrayIndex int)
	// SetFloat4x4 writes a 4x4 matrix uniform.
	SetFloat4x4(name string, value common.Float4x4, arrayIndex int)
	// SetFloat4x4Array writes consecutive 4x4 matrix array elements.
	SetFloat4x4Array(name string, values []common.Float4x4, arrayIndex int)

	// SetBytes re-uploads the named buffer's whole GPU-side content directly from
	// data, bypassing per-member validation. The buffer must exist and have a GPU
	// buffer object, else the call is a logged no-op. Bulk buffers are not arrayed.
	//
	// Parameters:
	//   - bufferName: the reflected buffer name
	//   - stage: the shader stage the buffer belongs to
	//   - data: the bytes to upload from offset 0
	SetBytes(bufferName string, stage graphics.ShaderStage, data []byte)

	// SetTexture stores an owning texture reference and its sampler for a reflected
	// texture name, fully replacing any prior slot content. Owned textures are
	// released at registry teardown. Unknown names are a logged no-op.
	//
	// Parameters:
	//   - name: the reflected texture name
	//   - texture: the texture, ownership transfers to the registry
	//   - sampler: the sampler state bound alongside the texture
	SetTexture(name string, texture graphics.Texture, sampler graphics.SamplerState)

	// SetRawTexture stores a borrowed texture reference and its sampler for a
	// reflected texture name, fully replacing any prior slot content. The caller
	// retains ownership and must keep the texture alive across subsequent binds.
	//
	// Parameters:
	//   - name: the reflected texture name
	//   - texture: the texture, ownership stays with the caller
	//   - sampler: the sampler state bound alongside the texture
	SetRawTexture(name string, texture graphics.Texture, sampler graphics.SamplerState)

	// SetSuballocationIndex selects the suballocation instance subsequent writes
	// and binds address for every suballocated buffer group owning a slot named
	// name, registering the index on first use after verifying capacity.
	//
	// Parameters:
	//   - name: a uniform member name inside the target buffer
	//   - index: the logical instance index (>= 0)
	//
	// Returns:
	//   - error: nil on success; wraps ErrUnsupported on non-suballocating
	//     backends, ErrIndexOutOfRange for negative or capacity-exceeding
	//     indices, ErrNotFound when no suballocated group matched
	SetSuballocationIndex(name string, index int) error

	// Bind publishes every buffer group in reflection order (uploading staged
	// bytes or pushing them raw, then issuing buffer binds) and binds all textures
	// and samplers. Textures missing a texture or sampler are skipped with a
	// once-per-name warning; the draw proceeds without them.
	//
	// Parameters:
	//   - device: the device the registry was built for
	//   - pipelineState: resolves block binding points and uniform locations
	//   - encoder: the command encoder consuming the bind calls
	Bind(device graphics.Device, pipelineState graphics.RenderPipelineState, encoder graphics.RenderCommandEncoder)

	// BindUniform publishes only the buffer group(s) owning uniform slots matching
	// name, without republishing the whole pipeline.
	//
	// Parameters:
	//   - device: the device the registry was built for
	//   - pipelineState: resolves block binding points and uniform locations
	//   - encoder: the command encoder consuming the bind calls
	//   - name: the uniform member name whose owning buffer(s) to publish
	BindUniform(device graphics.Device, pipelineState graphics.RenderPipelineState, encoder graphics.RenderCommandEncoder, name string)

	// Release frees the CPU staging allocations exactly once, releases owned
	// textures, and leaves all slots inert: subsequent writes and binds become
	// logged no-ops.
	Release()
}

// Compile-time check that shaderUniforms implements ShaderUniforms
var _ ShaderUniforms = &shaderUniforms{}

// NewShaderUniforms builds a uniform registry for one compiled pipeline from its
// reflection data. For every reflected buffer it allocates CPU staging memory,
// creates a GPU buffer object when the backend's layout policy calls for one, and
// indexes every member for name-based writes. For every reflected texture it
// creates an empty texture slot.
//
// Construction-time invariant violations are programmer errors and panic: a
// reflected buffer with size zero or exceeding the 64K per-buffer ceiling or the
// device's uniform buffer limit, and duplicate texture names across stages.
// A GPU buffer creation failure is non-fatal: the buffer is skipped and writes to
// its members degrade to logged no-ops.
//
// Parameters:
//   - device: the device whose backend selects all layout policy
//   - reflection: the compiled pipeline's reflected interface
//   - options: functional options to further configure the registry
//
// Returns:
//   - ShaderUniforms: the constructed registry
func NewShaderUniforms(device graphics.Device, reflection graphics.PipelineReflection, options ...ShaderUniformsOption) ShaderUniforms {
	su := &shaderUniforms{
		backend:        device.BackendType(),
		uniformsByName: make(map[string][]*uniformSlot),
		buffersByName:  make(map[bufferKey]*bufferGroup),
		texturesByName: make(map[string]*textureSlot),
		samplersByName: make(map[string]graphics.SamplerState),
	}
	for _, option := range options {
		option(su)
	}
	su.policy = policyForBackend(device)

	// 0 means the device does not bound uniform buffer size.
	uniformBufferLimit, _ := device.FeatureLimit(graphics.FeatureLimitMaxUniformBufferBytes)

	for _, desc := range reflection.UniformBuffers() {
		length := desc.DataSize
		if length == 0 {
			panic(fmt.Sprintf("uniforms: reflected buffer %q has size 0", desc.Name))
		}
		if length > maxSuballocatedBufferSize || (uniformBufferLimit != 0 && length > uniformBufferLimit) {
			panic(fmt.Sprintf("uniforms: reflected buffer %q size %d exceeds device limits", desc.Name, length))
		}

		// Backend-reserved buffers are auto-managed and produce no registry entry.
		if su.policy.skipsBuffer(desc.Name) {
			continue
		}

		allocationLength := su.policy.allocationSize(length, uniformBufferLimit)

		var buffer graphics.Buffer
		if su.policy.needsGPUBuffer(&desc) {
			label := desc.Name
			if su.label != "" {
				label = su.label + " " + desc.Name
			}
			created, err := device.CreateBuffer(&graphics.BufferDescriptor{
				Label:   label,
				Length:  allocationLength,
				Storage: graphics.StorageShared,
				Type:    graphics.BufferTypeUniform,
				Hint:    graphics.BufferHintUniformBlock | su.policy.bufferHint(),
			})
			if err != nil {
				// Degraded rendering, not a crash: the buffer produces no registry
				// entry and writes to its members become logged no-ops.
				Logger().Error("uniforms: buffer creation failed, skipping",
					"buffer", desc.Name, "err", err)
				continue
			}
			buffer = created
		}

		allocation := &bufferAllocation{
			data:   make([]byte, allocationLength),
			buffer: buffer,
		}
		group := &bufferGroup{
			desc:         desc,
			allocation:   allocation,
			currentIndex: -1,
		}
		if su.policy.suballocates() {
			group.isSuballocated = true
			group.suballocationUnit = length
		}

		for _, member := range desc.Members {
			slot := &uniformSlot{member: member, group: group}
			group.uniforms = append(group.uniforms, slot)
			su.uniformsByName[member.Name] = append(su.uniformsByName[member.Name], slot)
		}

		su.buffersByName[bufferKey{desc.Name, desc.Stage}] = group
		su.groups = append(su.groups, group)
		su.allocations = append(su.allocations, allocation)
	}

	for _, desc := range reflection.Textures() {
		if _, exists := su.texturesByName[desc.Name]; exists {
			panic(fmt.Sprintf("uniforms: texture names must be unique across all shader stages: %q", desc.Name))
		}
		su.textureDescs = append(su.textureDescs, desc)
		su.texturesByName[desc.Name] = &textureSlot{}
	}

	return su
}

func (su *shaderUniforms) Label() string {
	return su.label
}

func (su *shaderUniforms) BackendType() graphics.BackendType {
	return su.backend
}

func (su *shaderUniforms) BufferDescriptor(name string, stage graphics.ShaderStage) (graphics.BufferArgDesc, bool) {
	if group, ok := su.buffersByName[bufferKey{name, stage}]; ok {
		return group.desc, true
	}
	su.errorOnce("uniforms: invalid buffer name for shader stage",
		"buffer", name, "stage", stage.String())
	return graphics.BufferArgDesc{}, false
}

func (su *shaderUniforms) Release() {
	if su.released {
		return
	}
	su.released = true

	// Nil the weak back-references first so any caller still holding slot names
	// resolves to the inert no-op path rather than released staging memory.
	for _, group := range su.groups {
		for _, slot := range group.uniforms {
			slot.group = nil
		}
	}
	for _, allocation := range su.allocations {
		allocation.data = nil
		allocation.buffer = nil
	}
	for _, slot := range su.texturesByName {
		if slot.owned != nil {
			slot.owned.Release()
			slot.owned = nil
		}
		slot.borrowed = nil
	}
	su.groups = nil
	su.allocations = nil
	su.uniformsByName = map[string][]*uniformSlot{}
	su.buffersByName = map[bufferKey]*bufferGroup{}
	su.samplersByName = map[string]graphics.SamplerState{}
}

// bindTargetForShaderStage maps a reflected shader stage to its encoder bind
// target. Stages outside the render pipeline are a fatal configuration error.
func bindTargetForShaderStage(stage graphics.ShaderStage) graphics.BindTarget {
	switch stage {
	case graphics.ShaderStageVertex:
		return graphics.BindTargetVertex
	case graphics.ShaderStageFragment:
		return graphics.BindTargetFragment
	default:
		panic(fmt.Sprintf("uniforms: invalid shader stage for rendering: %s", stage))
	}
}

// reservedVertexBufferPrefix names the bind-by-pointer backend's implicit
// vertex staging buffers, which the backend manages without registry help.
const reservedVertexBufferPrefix = "vertexBuffer."

// isReservedVertexBuffer reports whether a reflected buffer name belongs to the
// bind-by-pointer backend's auto-managed vertex staging.
func isReservedVertexBuffer(name string) bool {
	return strings.HasPrefix(name, reservedVertexBufferPrefix)
}
