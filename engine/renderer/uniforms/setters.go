package uniforms

import (
	"github.com/krite/igl/common"
	"github.com/krite/igl/graphics"
)

func (su *shaderUniforms) SetUniformBytes(name string, data []byte, elementSize, count, arrayIndex int) {
	slots, ok := su.uniformsByName[name]
	if !ok {
		su.errorOnce("uniforms: unknown uniform name", "uniform", name)
		return
	}
	for _, slot := range slots {
		su.writeSlot(name, slot, data, elementSize, count, arrayIndex)
	}
}

// writeSlot stages one slot's bytes after running the validation ladder. Every
// violation is logged once per distinct cause and skips only this slot.
func (su *shaderUniforms) writeSlot(name string, slot *uniformSlot, data []byte, elementSize, count, arrayIndex int) {
	group := slot.group
	if group == nil {
		su.errorOnce("uniforms: write to released uniform storage", "uniform", name)
		return
	}
	if su.policy.checksWriteSize() {
		if expected := su.policy.expectedSize(slot.member.Type); uint64(elementSize) != expected {
			su.errorOnce("uniforms: element size mismatch",
				"uniform", name, "expected", expected, "got", elementSize)
			return
		}
	}
	arrayLength := max(slot.member.ArrayLength, 1)
	if arrayIndex < 0 || count < 0 || arrayIndex+count > arrayLength {
		su.errorOnce("uniforms: array range out of bounds",
			"uniform", name, "index", arrayIndex, "count", count, "declared", arrayLength)
		return
	}
	total := elementSize * count
	if len(data) < total {
		su.errorOnce("uniforms: source data too small",
			"uniform", name, "need", total, "got", len(data))
		return
	}
	begin := group.writeOffset() + slot.member.Offset + uint64(arrayIndex*elementSize)
	end := begin + uint64(total)
	if end > uint64(len(group.allocation.data)) {
		su.errorOnce("uniforms: write exceeds buffer allocation",
			"uniform", name, "buffer", group.desc.Name)
		return
	}
	copy(group.allocation.data[begin:end], data[:total])
}

func (su *shaderUniforms) SetBool(name string, value bool, arrayIndex int) {
	su.SetBoolArray(name, []bool{value}, arrayIndex)
}

func (su *shaderUniforms) SetBoolArray(name string, values []bool, arrayIndex int) {
	data := make([]byte, len(values))
	for i, v := range values {
		if v {
			data[i] = 1
		}
	}
	su.SetUniformBytes(name, data, 1, len(values), arrayIndex)
}

func (su *shaderUniforms) SetInt(name string, value common.Int1, arrayIndex int) {
	su.SetIntArray(name, []common.Int1{value}, arrayIndex)
}

func (su *shaderUniforms) SetIntArray(name string, values []common.Int1, arrayIndex int) {
	su.SetUniformBytes(name, common.SliceToBytes(values), 4, len(values), arrayIndex)
}

func (su *shaderUniforms) SetFloat(name string, value float32, arrayIndex int) {
	su.SetFloatArray(name, []float32{value}, arrayIndex)
}

func (su *shaderUniforms) SetFloatArray(name string, values []float32, arrayIndex int) {
	su.SetUniformBytes(name, common.SliceToBytes(values), 4, len(values), arrayIndex)
}

func (su *shaderUniforms) SetFloat2(name string, value common.Float2, arrayIndex int) {
	su.SetFloat2Array(name, []common.Float2{value}, arrayIndex)
}

func (su *shaderUniforms) SetFloat2Array(name string, values []common.Float2, arrayIndex int) {
	su.SetUniformBytes(name, common.SliceToBytes(values), 8, len(values), arrayIndex)
}

func (su *shaderUniforms) SetFloat3(name string, value common.Float3, arrayIndex int) {
	su.SetFloat3Array(name, []common.Float3{value}, arrayIndex)
}

func (su *shaderUniforms) SetFloat3Array(name string, values []common.Float3, arrayIndex int) {
	if su.policy.packsFloat3() {
		packed := common.PackFloat3Slice(values)
		su.SetUniformBytes(name, common.SliceToBytes(packed), 12, len(values), arrayIndex)
		return
	}
	su.SetUniformBytes(name, common.SliceToBytes(values), 16, len(values), arrayIndex)
}

func (su *shaderUniforms) SetFloat4(name string, value common.Float4, arrayIndex int) {
	su.SetFloat4Array(name, []common.Float4{value}, arrayIndex)
}

func (su *shaderUniforms) SetFloat4Array(name string, values []common.Float4, arrayIndex int) {
	su.SetUniformBytes(name, common.SliceToBytes(values), 16, len(values), arrayIndex)
}

func (su *shaderUniforms) SetFloat2x2(name string, value common.Float2x2, arrayIndex int) {
	su.SetFloat2x2Array(name, []common.Float2x2{value}, arrayIndex)
}

func (su *shaderUniforms) SetFloat2x2Array(name string, values []common.Float2x2, arrayIndex int) {
	su.SetUniformBytes(name, common.SliceToBytes(values), 16, len(values), arrayIndex)
}

func (su *shaderUniforms) SetFloat3x3(name string, value common.Float3x3, arrayIndex int) {
	su.SetFloat3x3Array(name, []common.Float3x3{value}, arrayIndex)
}

func (su *shaderUniforms) SetFloat3x3Array(name string, values []common.Float3x3, arrayIndex int) {
	if su.policy.packsFloat3x3() {
		packed := common.PackFloat3x3Slice(values)
		su.SetUniformBytes(name, common.SliceToBytes(packed), 36, len(values), arrayIndex)
		return
	}
	su.SetUniformBytes(name, common.SliceToBytes(values), 48, len(values), arrayIndex)
}

func (su *shaderUniforms) SetFloat4x4(name string, value common.Float4x4, arrayIndex int) {
	su.SetFloat4x4Array(name, []common.Float4x4{value}, arrayIndex)
}

func (su *shaderUniforms) SetFloat4x4Array(name string, values []common.Float4x4, arrayIndex int) {
	su.SetUniformBytes(name, common.SliceToBytes(values), 64, len(values), arrayIndex)
}

func (su *shaderUniforms) SetBytes(bufferName string, stage graphics.ShaderStage, data []byte) {
	group, ok := su.buffersByName[bufferKey{bufferName, stage}]
	if !ok {
		su.errorOnce("uniforms: unknown buffer name for shader stage",
			"buffer", bufferName, "stage", stage.String())
		return
	}
	if group.allocation.buffer == nil {
		su.errorOnce("uniforms: buffer has no GPU storage for bulk upload", "buffer", bufferName)
		return
	}
	if err := group.allocation.buffer.Upload(data, 0); err != nil {
		su.errorOnce("uniforms: bulk upload failed", "buffer", bufferName, "err", err)
	}
}

func (su *shaderUniforms) SetTexture(name string, texture graphics.Texture, sampler graphics.SamplerState) {
	su.setTextureSlot(name, texture, sampler, true)
}

func (su *shaderUniforms) SetRawTexture(name string, texture graphics.Texture, sampler graphics.SamplerState) {
	su.setTextureSlot(name, texture, sampler, false)
}

func (su *shaderUniforms) setTextureSlot(name string, texture graphics.Texture, sampler graphics.SamplerState, owned bool) {
	slot, ok := su.texturesByName[name]
	if !ok {
		su.errorOnce("uniforms: unknown texture name", "texture", name)
		return
	}
	// A set call fully replaces the slot; a previously owned texture is
	// released before the reference is dropped.
	if slot.owned != nil && slot.owned != texture {
		slot.owned.Release()
	}
	slot.owned, slot.borrowed = nil, nil
	if owned {
		slot.owned = texture
	} else {
		slot.borrowed = texture
	}
	su.samplersByName[name] = sampler
}
