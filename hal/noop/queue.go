package noop

import (
	"github.com/gogpu/nexus/hal"
)

// Queue implements hal.Queue for the noop backend.
type Queue struct{}

// Submit simulates command buffer submission.
// If a fence is provided, it is signaled with the given value.
func (q *Queue) Submit(_ []hal.CommandBuffer, fence hal.Fence, fenceValue uint64) error {
	if fence != nil {
		if f, ok := fence.(*Fence); ok {
			f.value.Store(fenceValue)
		}
	}
	return nil
}

// WriteBuffer simulates immediate buffer writes.
// If the buffer has storage, copies data to it.
func (q *Queue) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error {
	if b, ok := buffer.(*Buffer); ok && b.data != nil {
		if offset+uint64(len(data)) > uint64(len(b.data)) {
			return hal.ErrBufferOutOfRange
		}
		copy(b.data[offset:], data)
	}
	return nil
}

// ReadBuffer copies a buffer's stored contents into dst. Buffers without
// storage read back as zeroes, matching a GPU whose contents were never
// observed.
func (q *Queue) ReadBuffer(buffer hal.Buffer, offset uint64, dst []byte) error {
	b, ok := buffer.(*Buffer)
	if !ok || b.data == nil {
		for i := range dst {
			dst[i] = 0
		}
		return nil
	}
	if offset+uint64(len(dst)) > uint64(len(b.data)) {
		return hal.ErrBufferOutOfRange
	}
	copy(dst, b.data[offset:])
	return nil
}

// WriteTexture simulates immediate texture writes.
// This is a no-op since textures don't store data.
func (q *Queue) WriteTexture(_ *hal.ImageCopyTexture, _ []byte, _ *hal.ImageDataLayout, _ *hal.Extent3D) {
}

// Present simulates surface presentation.
// Always succeeds.
func (q *Queue) Present(_ hal.Surface, _ hal.SurfaceTexture) error {
	return nil
}

// GetTimestampPeriod returns 1.0 nanosecond timestamp period.
func (q *Queue) GetTimestampPeriod() float32 {
	return 1.0
}
