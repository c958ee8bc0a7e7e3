package wgpu_driver

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/krite/igl/common"
	"github.com/krite/igl/graphics"
)

// texture implements graphics.Texture over a wgpu texture plus its default view.
type texture struct {
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

var _ graphics.Texture = &texture{}

func (t *texture) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

// samplerState implements graphics.SamplerState over a wgpu sampler.
type samplerState struct {
	sampler *wgpu.Sampler
}

var _ graphics.SamplerState = &samplerState{}

func (s *samplerState) Release() {
	if s.sampler != nil {
		s.sampler.Release()
		s.sampler = nil
	}
}

// SamplerConfig configures sampler creation. Zero values fall back to linear
// filtering with repeat addressing.
type SamplerConfig struct {
	AddressModeU  wgpu.AddressMode
	AddressModeV  wgpu.AddressMode
	AddressModeW  wgpu.AddressMode
	MagFilter     wgpu.FilterMode
	MinFilter     wgpu.FilterMode
	MipmapFilter  wgpu.MipmapFilterMode
	LodMinClamp   float32
	LodMaxClamp   float32
	MaxAnisotropy uint16
}

func (d *device) CreateTextureRGBA8(label string, width, height uint32, pixels []byte) (graphics.Texture, error) {
	if want := uint64(width) * uint64(height) * 4; uint64(len(pixels)) < want {
		return nil, fmt.Errorf("wgpu_driver: texture %q needs %d pixel bytes, got %d", label, want, len(pixels))
	}

	size := wgpu.Extent3D{
		Width:              width,
		Height:             height,
		DepthOrArrayLayers: 1,
	}
	tex, err := d.wgpuDevice.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_driver: create texture %q: %w", label, err)
	}

	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("wgpu_driver: create texture view %q: %w", label, err)
	}
	return &texture{tex: tex, view: view}, nil
}

func (d *device) CreateSamplerState(label string, config SamplerConfig) (graphics.SamplerState, error) {
	samp, err := d.wgpuDevice.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  common.Coalesce(config.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(config.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(config.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(config.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(config.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(config.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   config.LodMinClamp,
		LodMaxClamp:   common.Coalesce(config.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(config.MaxAnisotropy, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_driver: create sampler %q: %w", label, err)
	}
	return &samplerState{sampler: samp}, nil
}
