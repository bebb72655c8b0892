package omx

import (
	"fmt"

	"github.com/user/omxjpeg/pkg/ports"
)

// AllocateBuffer allocates the single buffer bound to port.
func (h *Handle) AllocateBuffer(port, size uint32) (*ports.BufferHeader, error) {
	if h.released {
		return nil, ErrReleased
	}
	if h.buffers[port] != nil {
		return nil, fmt.Errorf("%w: port %d", ErrBufferOutstanding, port)
	}

	buf, err := h.comp.AllocateBuffer(port, size)
	if err != nil {
		return nil, wrapCall(fmt.Sprintf("allocate %d bytes on port %d", size, port), err)
	}
	if buf == nil || buf.AllocLen < size {
		if buf != nil {
			h.comp.FreeBuffer(port, buf)
		}
		return nil, fmt.Errorf("%w: port %d allocation shorter than %d bytes", ErrResourceExhausted, port, size)
	}

	h.buffers[port] = buf
	h.allocs++
	h.log.Debug("Allocated %d bytes on port %d", buf.AllocLen, port)
	return buf, nil
}

// Buffer returns the buffer allocated on port, or nil.
func (h *Handle) Buffer(port uint32) *ports.BufferHeader {
	return h.buffers[port]
}

// FreeBuffer releases the buffer allocated on port. A port without a buffer
// is left alone. If the component refuses, the buffer stays recorded.
func (h *Handle) FreeBuffer(port uint32) error {
	buf := h.buffers[port]
	if buf == nil {
		return nil
	}
	if h.released {
		return ErrReleased
	}

	if err := h.comp.FreeBuffer(port, buf); err != nil {
		return wrapCall(fmt.Sprintf("free buffer on port %d", port), err)
	}
	delete(h.buffers, port)
	h.frees++
	h.log.Debug("Freed buffer on port %d", port)
	return nil
}

// BufferCounts returns how many buffers were allocated and freed.
func (h *Handle) BufferCounts() (allocs, frees int) {
	return h.allocs, h.frees
}
