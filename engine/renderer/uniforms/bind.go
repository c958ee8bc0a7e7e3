package uniforms

import (
	"slices"

	"github.com/krite/igl/graphics"
)

func (su *shaderUniforms) Bind(device graphics.Device, pipelineState graphics.RenderPipelineState, encoder graphics.RenderCommandEncoder) {
	if su.released {
		su.errorOnce("uniforms: bind after release", "label", su.label)
		return
	}
	for _, group := range su.groups {
		su.policy.publish(su, group, pipelineState, encoder)
	}
	su.bindTextures(encoder)
}

func (su *shaderUniforms) BindUniform(device graphics.Device, pipelineState graphics.RenderPipelineState, encoder graphics.RenderCommandEncoder, name string) {
	if su.released {
		su.errorOnce("uniforms: bind after release", "label", su.label)
		return
	}
	slots, ok := su.uniformsByName[name]
	if !ok {
		su.errorOnce("uniforms: unknown uniform name", "uniform", name)
		return
	}
	// The same uniform name can appear once per stage; publish each owning
	// buffer exactly once.
	var published []*bufferGroup
	for _, slot := range slots {
		group := slot.group
		if group == nil || slices.Contains(published, group) {
			continue
		}
		su.policy.publish(su, group, pipelineState, encoder)
		published = append(published, group)
	}
}

// bindTextures binds every reflected texture that has both a texture and a
// sampler set. Incomplete slots are skipped with a once-per-name warning so a
// draw can proceed while assets stream in.
func (su *shaderUniforms) bindTextures(encoder graphics.RenderCommandEncoder) {
	for _, desc := range su.textureDescs {
		slot := su.texturesByName[desc.Name]
		texture := slot.active()
		sampler := su.samplersByName[desc.Name]
		if texture == nil {
			su.warnOnce("uniforms: no texture set", "texture", desc.Name)
			continue
		}
		if sampler == nil {
			su.warnOnce("uniforms: no sampler state set", "texture", desc.Name)
			continue
		}
		target := bindTargetForShaderStage(desc.Stage)
		encoder.BindTexture(desc.TextureIndex, target, texture)
		encoder.BindSamplerState(desc.TextureIndex, target, sampler)
	}
}
