package omx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/user/omxjpeg/pkg/ports"
)

// cmdKey identifies a command completion.
type cmdKey struct {
	cmd   ports.Command
	param uint32
}

// signals is the state shared between the driving goroutine and component
// callbacks. Every mutation closes the current changed channel, so waiters
// wake on any change and then re-test their own predicate.
type signals struct {
	mu      sync.Mutex
	changed chan struct{}

	inputReady  bool
	outputReady bool
	completed   map[cmdKey]int
	failure     error
	shadowed    int
	corrupt     int
}

func newSignals() *signals {
	return &signals{
		changed:   make(chan struct{}),
		completed: make(map[cmdKey]int),
	}
}

// update applies fn under the lock and wakes every waiter once.
func (s *signals) update(fn func()) {
	s.mu.Lock()
	fn()
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()
}

// wait blocks until pred reports true or a failure is pending.
// pred runs with the lock held and may consume the state it tests.
// A pending failure is consumed and returned.
func (s *signals) wait(ctx context.Context, timeout time.Duration, pred func() bool) error {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		s.mu.Lock()
		if err := s.failure; err != nil {
			s.failure = nil
			s.mu.Unlock()
			return err
		}
		if pred() {
			s.mu.Unlock()
			return nil
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		case <-expired:
			return fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
	}
}

func (s *signals) complete(key cmdKey) {
	s.update(func() { s.completed[key]++ })
}

// awaitCommand waits for and consumes one completion of key.
func (s *signals) awaitCommand(ctx context.Context, timeout time.Duration, key cmdKey) error {
	return s.wait(ctx, timeout, func() bool {
		if s.completed[key] == 0 {
			return false
		}
		s.completed[key]--
		return true
	})
}

// fail records err unless an earlier failure is still pending, in which
// case err only counts as shadowed.
func (s *signals) fail(err error) {
	s.update(func() {
		if s.failure == nil {
			s.failure = err
			return
		}
		s.shadowed++
	})
}

func (s *signals) recoverable() {
	s.update(func() { s.corrupt++ })
}

func (s *signals) setInputReady() {
	s.update(func() { s.inputReady = true })
}

func (s *signals) setOutputReady() {
	s.update(func() { s.outputReady = true })
}

func (s *signals) reset(inputReady, outputReady bool) {
	s.update(func() {
		s.inputReady = inputReady
		s.outputReady = outputReady
	})
}

// drain drops a pending failure and stale completions.
func (s *signals) drain() error {
	var err error
	s.update(func() {
		err = s.failure
		s.failure = nil
		clear(s.completed)
	})
	return err
}

func (s *signals) shadowedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shadowed
}

func (s *signals) corruptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.corrupt
}
