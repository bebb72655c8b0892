package mocks

import (
	"context"
	"sync"

	"github.com/user/omxjpeg/pkg/ports"
)

// ImageEncoder is a mock implementation of ports.ImageEncoder.
type ImageEncoder struct {
	ProcessFunc func(ctx context.Context, raw []byte) ([]byte, error)
	CloseFunc   func() error

	mu sync.Mutex

	// Recorded calls for verification
	ProcessCalls [][]byte
	CloseCalled  bool
}

func (m *ImageEncoder) Process(ctx context.Context, raw []byte) ([]byte, error) {
	m.mu.Lock()
	m.ProcessCalls = append(m.ProcessCalls, raw)
	m.mu.Unlock()
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, raw)
	}
	// Return an empty JPEG (SOI, EOI)
	return []byte{0xFF, 0xD8, 0xFF, 0xD9}, nil
}

func (m *ImageEncoder) Close() error {
	m.mu.Lock()
	m.CloseCalled = true
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns how many frames were processed.
func (m *ImageEncoder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ProcessCalls)
}

// Closed reports whether Close was called.
func (m *ImageEncoder) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CloseCalled
}

var _ ports.ImageEncoder = (*ImageEncoder)(nil)
