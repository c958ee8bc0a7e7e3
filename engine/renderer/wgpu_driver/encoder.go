package wgpu_driver

import (
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/krite/igl/graphics"
)

// renderCommandEncoder collects bind calls and assembles them into a wgpu bind
// group on demand. wgpu issues all resource binds through descriptor sets, so
// the per-resource bind calls only stage entries here; BindGroup materializes
// them once the bind group layout is known.
type renderCommandEncoder struct {
	label   string
	device  *wgpu.Device
	entries map[int]wgpu.BindGroupEntry
	errs    []error
}

// RenderCommandEncoder is the wgpu implementation of the render bind surface.
type RenderCommandEncoder interface {
	graphics.RenderCommandEncoder

	// BindGroup assembles the staged binds into a wgpu bind group for the layout.
	// Bind calls the wgpu model cannot express (raw byte pushes, loose uniforms)
	// surface here as errors.
	//
	// Parameters:
	//   - layout: the bind group layout the entries must match
	//
	// Returns:
	//   - *wgpu.BindGroup: the assembled bind group
	//   - error: staged bind failures or bind group creation errors
	BindGroup(layout *wgpu.BindGroupLayout) (*wgpu.BindGroup, error)

	// Reset clears all staged binds and errors for reuse in the next draw.
	Reset()
}

var _ RenderCommandEncoder = &renderCommandEncoder{}

func (d *device) NewRenderCommandEncoder(label string) RenderCommandEncoder {
	return &renderCommandEncoder{
		label:   label,
		device:  d.wgpuDevice,
		entries: make(map[int]wgpu.BindGroupEntry),
	}
}

func (e *renderCommandEncoder) BindBuffer(index int, target graphics.BindTarget, buffer graphics.Buffer, offset uint64) {
	native, ok := buffer.(*deviceBuffer)
	if !ok {
		e.errs = append(e.errs, fmt.Errorf("wgpu_driver: buffer at index %d was not created by this driver", index))
		return
	}
	e.entries[index] = wgpu.BindGroupEntry{
		Binding: uint32(index),
		Buffer:  native.buffer,
		Offset:  offset,
		Size:    wgpu.WholeSize,
	}
}

func (e *renderCommandEncoder) BindBytes(index int, target graphics.BindTarget, data []byte) {
	e.errs = append(e.errs, fmt.Errorf("wgpu_driver: raw byte binds are not supported (index %d)", index))
}

func (e *renderCommandEncoder) BindUniform(desc *graphics.UniformDescriptor, data []byte) {
	e.errs = append(e.errs, fmt.Errorf("wgpu_driver: loose uniform binds are not supported (location %d)", desc.Location))
}

func (e *renderCommandEncoder) BindTexture(index int, target graphics.BindTarget, tex graphics.Texture) {
	native, ok := tex.(*texture)
	if !ok {
		e.errs = append(e.errs, fmt.Errorf("wgpu_driver: texture at index %d was not created by this driver", index))
		return
	}
	e.entries[index] = wgpu.BindGroupEntry{
		Binding:     uint32(index),
		TextureView: native.view,
	}
}

func (e *renderCommandEncoder) BindSamplerState(index int, target graphics.BindTarget, sampler graphics.SamplerState) {
	native, ok := sampler.(*samplerState)
	if !ok {
		e.errs = append(e.errs, fmt.Errorf("wgpu_driver: sampler at index %d was not created by this driver", index))
		return
	}
	// Samplers share the texture's reflected index; wgpu gives them their own
	// binding slot immediately after the texture view.
	e.entries[index+1] = wgpu.BindGroupEntry{
		Binding: uint32(index + 1),
		Sampler: native.sampler,
	}
}

func (e *renderCommandEncoder) BindGroup(layout *wgpu.BindGroupLayout) (*wgpu.BindGroup, error) {
	if len(e.errs) > 0 {
		return nil, fmt.Errorf("wgpu_driver: %d staged bind failures, first: %w", len(e.errs), e.errs[0])
	}

	indices := make([]int, 0, len(e.entries))
	for idx := range e.entries {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	entries := make([]wgpu.BindGroupEntry, 0, len(e.entries))
	for _, idx := range indices {
		entries = append(entries, e.entries[idx])
	}

	group, err := e.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   e.label + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_driver: create bind group %q: %w", e.label, err)
	}
	return group, nil
}

func (e *renderCommandEncoder) Reset() {
	clear(e.entries)
	e.errs = nil
}
