package nexus

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/nexus/hal"
	"github.com/gogpu/nexus/internal/thread"
)

// defaultWaitTimeout is the maximum time Wait blocks for GPU work to
// complete. 30 seconds accommodates heavy compute workloads.
const defaultWaitTimeout = 30 * time.Second

// Queue handles command submission and data transfers.
//
// Every queue operation returns a submission id: a monotonically increasing
// 64-bit value marking the point on the queue's timeline at which the
// operation's effects become visible. Zero is reserved for "no submission".
// CompletedValue reports the highest id whose effects have definitely
// completed; Wait blocks until the timeline reaches a given id.
type Queue struct {
	hal       hal.Queue
	halDevice hal.Device
	fence     hal.Fence
	device    *Device

	// waiter is a dedicated OS-locked thread blocking fence waits run on,
	// so a Wait never parks a goroutine inside a backend's external-fence
	// call from an arbitrary thread (Vulkan drivers care).
	waiter *thread.Thread

	// submitted is the last issued submission id; completed trails it,
	// advancing as Wait/CompletedValue observe the fence.
	submitted atomic.Uint64
	completed atomic.Uint64

	// pending holds per-submission cleanup (command buffers to free,
	// readback staging to drain) settled once the fence passes the
	// submission's id. Guarded by mu; entries stay ordered by id.
	mu      sync.Mutex
	pending []pendingSubmission
}

type pendingSubmission struct {
	id      uint64
	buffers []hal.CommandBuffer
	read    *pendingRead
}

// pendingRead is an in-flight ReadBuffer: once the copy into staging has
// completed on the GPU timeline, the staging contents are drained into dst
// and the staging buffer destroyed.
type pendingRead struct {
	staging hal.Buffer
	dst     []byte
}

// Submit submits command buffers for execution and returns the submission
// id at which their effects become visible. Submit does not block; call
// Wait with the returned id (or WaitIdle) before depending on the results
// host-side.
func (q *Queue) Submit(commandBuffers ...*CommandBuffer) (uint64, error) {
	if q.hal == nil {
		return 0, fmt.Errorf("nexus: queue not available")
	}

	halBuffers := make([]hal.CommandBuffer, len(commandBuffers))
	for i, cb := range commandBuffers {
		halBuffers[i] = cb.halBuffer()
	}

	id := q.submitted.Add(1)
	if err := q.hal.Submit(halBuffers, q.fence, id); err != nil {
		return 0, fmt.Errorf("nexus: submit failed: %w", err)
	}

	q.mu.Lock()
	q.pending = append(q.pending, pendingSubmission{id: id, buffers: halBuffers})
	q.mu.Unlock()

	return id, nil
}

// WriteBuffer writes data to a buffer. The write is ordered before any
// later submission; the returned id marks the point at which the
// destination contents are visible to subsequent GPU work.
func (q *Queue) WriteBuffer(buffer *Buffer, offset uint64, data []byte) (uint64, error) {
	if q.hal == nil || buffer == nil {
		return 0, fmt.Errorf("nexus: WriteBuffer: queue or buffer is nil")
	}

	halBuffer := buffer.halBuffer()
	if halBuffer == nil {
		return 0, fmt.Errorf("nexus: WriteBuffer: no HAL buffer")
	}

	if err := q.hal.WriteBuffer(halBuffer, offset, data); err != nil {
		return 0, fmt.Errorf("nexus: WriteBuffer: %w", err)
	}

	// Stamp the write onto the timeline so callers get a real id to wait
	// on, and ordering against later submissions is explicit.
	id := q.submitted.Add(1)
	if err := q.hal.Submit(nil, q.fence, id); err != nil {
		return 0, fmt.Errorf("nexus: WriteBuffer: %w", err)
	}
	return id, nil
}

// ReadBuffer schedules a read of a GPU buffer into data. The copy into an
// internal staging buffer is submitted immediately; the call itself does
// not block. The returned id must be passed to Wait before data is read:
// Wait drains the staging contents into data once the copy has completed.
func (q *Queue) ReadBuffer(buffer *Buffer, offset uint64, data []byte) (uint64, error) {
	if q.hal == nil || q.halDevice == nil {
		return 0, fmt.Errorf("nexus: queue not available")
	}
	if buffer == nil {
		return 0, fmt.Errorf("nexus: buffer is nil")
	}

	halBuffer := buffer.halBuffer()
	if halBuffer == nil {
		return 0, ErrReleased
	}

	size := uint64(len(data))
	if size == 0 {
		return q.submitted.Load(), nil
	}

	staging, err := q.halDevice.CreateBuffer(&hal.BufferDescriptor{
		Label: "readback staging",
		Size:  size,
		Usage: types.BufferUsageMapRead | types.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("nexus: ReadBuffer: failed to create staging buffer: %w", err)
	}

	encoder, err := q.halDevice.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "readback"})
	if err != nil {
		q.halDevice.DestroyBuffer(staging)
		return 0, fmt.Errorf("nexus: ReadBuffer: failed to create encoder: %w", err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		q.halDevice.DestroyBuffer(staging)
		return 0, fmt.Errorf("nexus: ReadBuffer: failed to begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(halBuffer, staging, []hal.BufferCopy{
		{SrcOffset: offset, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		q.halDevice.DestroyBuffer(staging)
		return 0, fmt.Errorf("nexus: ReadBuffer: failed to end encoding: %w", err)
	}

	id := q.submitted.Add(1)
	if err := q.hal.Submit([]hal.CommandBuffer{cmdBuf}, q.fence, id); err != nil {
		q.halDevice.DestroyBuffer(staging)
		return 0, fmt.Errorf("nexus: ReadBuffer: submit failed: %w", err)
	}

	q.mu.Lock()
	q.pending = append(q.pending, pendingSubmission{
		id:      id,
		buffers: []hal.CommandBuffer{cmdBuf},
		read:    &pendingRead{staging: staging, dst: data},
	})
	q.mu.Unlock()

	return id, nil
}

// Wait blocks until the queue's completed value reaches the given
// submission id, then settles everything the wait unblocked: command
// buffers are freed and pending reads are drained into their destinations.
func (q *Queue) Wait(id uint64) error {
	if id == 0 || q.completed.Load() >= id {
		q.settle()
		return nil
	}
	if q.halDevice == nil {
		return fmt.Errorf("nexus: queue not available")
	}
	reached, err := q.blockingWait(id)
	if err != nil {
		return fmt.Errorf("nexus: wait failed: %w", err)
	}
	if !reached {
		return ErrTimeout
	}
	q.advanceCompleted(id)
	return q.settle()
}

// WaitIdle blocks until every submission issued so far has completed.
func (q *Queue) WaitIdle() error {
	return q.Wait(q.submitted.Load())
}

// CompletedValue returns the highest submission id whose effects have
// definitely completed, advancing it by polling the fence without
// blocking.
func (q *Queue) CompletedValue() uint64 {
	if q.halDevice == nil {
		return q.completed.Load()
	}
	for {
		next := q.completed.Load() + 1
		if next > q.submitted.Load() {
			break
		}
		reached, err := q.halDevice.Wait(q.fence, next, 0)
		if err != nil || !reached {
			break
		}
		q.advanceCompleted(next)
	}
	q.settle()
	return q.completed.Load()
}

// blockingWait runs the fence wait, on the dedicated wait thread when the
// queue has one.
func (q *Queue) blockingWait(id uint64) (bool, error) {
	if q.waiter == nil || !q.waiter.IsRunning() {
		return q.halDevice.Wait(q.fence, id, defaultWaitTimeout)
	}
	type waitResult struct {
		reached bool
		err     error
	}
	res, ok := q.waiter.Call(func() any {
		reached, err := q.halDevice.Wait(q.fence, id, defaultWaitTimeout)
		return waitResult{reached: reached, err: err}
	}).(waitResult)
	if !ok {
		return q.halDevice.Wait(q.fence, id, defaultWaitTimeout)
	}
	return res.reached, res.err
}

// advanceCompleted raises completed to at least id. The fence value only
// grows, so a stale CAS loser simply retries against the newer floor.
func (q *Queue) advanceCompleted(id uint64) {
	for {
		cur := q.completed.Load()
		if cur >= id || q.completed.CompareAndSwap(cur, id) {
			return
		}
	}
}

// settle frees command buffers and drains reads for every pending
// submission at or below the completed value.
func (q *Queue) settle() error {
	done := q.completed.Load()

	q.mu.Lock()
	var ready []pendingSubmission
	n := 0
	for _, p := range q.pending {
		if p.id <= done {
			ready = append(ready, p)
		} else {
			q.pending[n] = p
			n++
		}
	}
	q.pending = q.pending[:n]
	q.mu.Unlock()

	var firstErr error
	for _, p := range ready {
		if p.read != nil {
			if err := q.hal.ReadBuffer(p.read.staging, 0, p.read.dst); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("nexus: readback drain failed: %w", err)
			}
			q.halDevice.DestroyBuffer(p.read.staging)
		}
		for _, cb := range p.buffers {
			if cb != nil {
				q.halDevice.FreeCommandBuffer(cb)
			}
		}
	}
	return firstErr
}

// release cleans up queue resources. In-flight submissions are waited out
// first so staging buffers and command buffers are not leaked.
func (q *Queue) release() {
	if q.halDevice != nil {
		_ = q.WaitIdle()
	}
	if q.fence != nil && q.halDevice != nil {
		q.halDevice.DestroyFence(q.fence)
		q.fence = nil
	}
	if q.waiter != nil {
		q.waiter.Stop()
		q.waiter = nil
	}
}
