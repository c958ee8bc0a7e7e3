package wgpu_driver

import (
	"github.com/krite/igl/graphics"
)

// pipelineState resolves reflected buffer names to their bind indices. wgpu has
// no loose uniforms, so location lookups always miss and callers fall back to
// buffer binds.
type pipelineState struct {
	blockPoints map[string]int
}

var _ graphics.RenderPipelineState = &pipelineState{}

func (d *device) NewPipelineState(reflection graphics.PipelineReflection) graphics.RenderPipelineState {
	ps := &pipelineState{blockPoints: make(map[string]int)}
	for _, buf := range reflection.UniformBuffers() {
		ps.blockPoints[buf.Name] = buf.BufferIndex
	}
	return ps
}

func (ps *pipelineState) UniformBlockBindingPoint(name string) (int, bool) {
	point, ok := ps.blockPoints[name]
	return point, ok
}

func (ps *pipelineState) UniformLocation(name string, stage graphics.ShaderStage) (int, bool) {
	return 0, false
}
