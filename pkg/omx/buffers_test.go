package omx

import (
	"errors"
	"testing"

	"github.com/user/omxjpeg/pkg/mocks"
	"github.com/user/omxjpeg/pkg/ports"
)

func TestAllocateOneBufferPerPort(t *testing.T) {
	comp := &mocks.Component{}
	h := acquireMock(t, comp)

	buf, err := h.AllocateBuffer(340, 4096)
	if err != nil {
		t.Fatalf("AllocateBuffer: %v", err)
	}
	if h.Buffer(340) != buf {
		t.Error("Buffer(340) should return the allocated buffer")
	}
	if _, err := h.AllocateBuffer(340, 4096); !errors.Is(err, ErrBufferOutstanding) {
		t.Fatalf("second allocation: got %v, want ErrBufferOutstanding", err)
	}
	if comp.Allocated != 1 {
		t.Errorf("component saw %d allocations, want 1", comp.Allocated)
	}

	if err := h.FreeBuffer(340); err != nil {
		t.Fatalf("FreeBuffer: %v", err)
	}
	if err := h.FreeBuffer(340); err != nil {
		t.Fatalf("FreeBuffer without a buffer: %v", err)
	}
	if allocs, frees := h.BufferCounts(); allocs != 1 || frees != 1 {
		t.Errorf("counts = %d/%d, want 1/1", allocs, frees)
	}
	if comp.Freed != 1 {
		t.Errorf("component saw %d frees, want 1", comp.Freed)
	}
}

func TestAllocateFailures(t *testing.T) {
	t.Run("component out of memory", func(t *testing.T) {
		comp := &mocks.Component{
			AllocateBufferFunc: func(uint32, uint32) (*ports.BufferHeader, error) {
				return nil, ports.ErrorInsufficientResources
			},
		}
		h := acquireMock(t, comp)
		if _, err := h.AllocateBuffer(341, 1024); !errors.Is(err, ErrResourceExhausted) {
			t.Fatalf("got %v, want ErrResourceExhausted", err)
		}
		if h.Buffer(341) != nil {
			t.Error("no buffer should be recorded")
		}
	})

	t.Run("short allocation", func(t *testing.T) {
		comp := &mocks.Component{
			AllocateBufferFunc: func(port, size uint32) (*ports.BufferHeader, error) {
				return &ports.BufferHeader{Buffer: make([]byte, size/2), AllocLen: size / 2, PortIndex: port}, nil
			},
		}
		h := acquireMock(t, comp)
		if _, err := h.AllocateBuffer(341, 1024); !errors.Is(err, ErrResourceExhausted) {
			t.Fatalf("got %v, want ErrResourceExhausted", err)
		}
		if comp.Freed != 1 {
			t.Errorf("short buffer should be handed back, frees = %d", comp.Freed)
		}
		if allocs, _ := h.BufferCounts(); allocs != 0 {
			t.Errorf("allocs = %d, want 0", allocs)
		}
	})
}

func TestFreeBufferKeepsBufferWhenRefused(t *testing.T) {
	refuse := true
	comp := &mocks.Component{
		FreeBufferFunc: func(uint32, *ports.BufferHeader) error {
			if refuse {
				return ports.ErrorIncorrectStateOperation
			}
			return nil
		},
	}
	h := acquireMock(t, comp)
	buf, err := h.AllocateBuffer(340, 4096)
	if err != nil {
		t.Fatalf("AllocateBuffer: %v", err)
	}

	if err := h.FreeBuffer(340); !errors.Is(err, ports.ErrorIncorrectStateOperation) {
		t.Fatalf("refused free: got %v, want IncorrectStateOperation", err)
	}
	if h.Buffer(340) != buf {
		t.Error("refused buffer should stay recorded")
	}
	if allocs, frees := h.BufferCounts(); allocs != 1 || frees != 0 {
		t.Errorf("counts after refused free = %d/%d, want 1/0", allocs, frees)
	}

	refuse = false
	if err := h.FreeBuffer(340); err != nil {
		t.Fatalf("FreeBuffer retry: %v", err)
	}
	if h.Buffer(340) != nil {
		t.Error("buffer should be gone after a successful free")
	}
	if allocs, frees := h.BufferCounts(); allocs != 1 || frees != 1 {
		t.Errorf("counts = %d/%d, want 1/1", allocs, frees)
	}
	if comp.Freed != 2 {
		t.Errorf("component saw %d free calls, want 2", comp.Freed)
	}
}
