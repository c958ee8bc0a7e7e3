package wgpu_driver

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/krite/igl/graphics"
)

// deviceBuffer implements graphics.Buffer over a wgpu buffer. Uploads go through
// the device queue, which stages the copy without blocking on the GPU.
type deviceBuffer struct {
	buffer *wgpu.Buffer
	queue  *wgpu.Queue
	size   uint64
}

var _ graphics.Buffer = &deviceBuffer{}

func (b *deviceBuffer) Upload(data []byte, offset uint64) error {
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("wgpu_driver: upload of %d bytes at offset %d exceeds buffer size %d",
			len(data), offset, b.size)
	}
	b.queue.WriteBuffer(b.buffer, offset, data)
	return nil
}

func (b *deviceBuffer) Size() uint64 {
	return b.size
}
