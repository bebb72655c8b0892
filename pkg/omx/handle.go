// Package omx drives an OpenMAX IL style component: handle acquisition,
// state transitions, port configuration, buffer allocation and the
// completion signaling between the caller and component callbacks.
package omx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/omxjpeg/pkg/ports"
)

// DefaultCommandTimeout bounds every wait for a command confirmation.
const DefaultCommandTimeout = 5 * time.Second

// Options configures a Handle.
type Options struct {
	// CommandTimeout bounds state changes, port enable/disable and flushes.
	// Zero selects DefaultCommandTimeout; a negative value waits forever.
	CommandTimeout time.Duration
}

// Handle owns an acquired component.
// A Handle is driven from one goroutine; component callbacks may arrive on
// any goroutine and only touch the shared signals.
type Handle struct {
	comp    ports.Component
	name    string
	log     ports.Logger
	sig     *signals
	timeout time.Duration

	state    ports.State
	released bool

	buffers map[uint32]*ports.BufferHeader
	allocs  int
	frees   int
	dropped int
}

// Acquire obtains the named component from loader. The component must start
// in StateLoaded.
func Acquire(loader ports.Loader, name string, log ports.Logger, opts Options) (*Handle, error) {
	timeout := opts.CommandTimeout
	if timeout == 0 {
		timeout = DefaultCommandTimeout
	}
	if timeout < 0 {
		timeout = 0
	}

	h := &Handle{
		name:    name,
		log:     log,
		sig:     newSignals(),
		timeout: timeout,
		buffers: make(map[uint32]*ports.BufferHeader),
	}

	comp, err := loader.GetHandle(name, &callbackSink{sig: h.sig, log: log})
	if err != nil {
		err = wrapCall("get handle "+name, err)
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrResourceExhausted) {
			err = fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}
	h.comp = comp

	state, err := comp.GetState()
	if err != nil {
		comp.FreeHandle()
		return nil, wrapCall("get state", err)
	}
	if state != ports.StateLoaded {
		comp.FreeHandle()
		return nil, fmt.Errorf("%w: component %s starts in %s, want %s", ErrContractViolation, name, state, ports.StateLoaded)
	}
	h.state = state

	log.Debug("Acquired component %s", name)
	return h, nil
}

// Name returns the component name the handle was acquired with.
func (h *Handle) Name() string {
	return h.name
}

// State returns the last confirmed component state.
func (h *Handle) State() ports.State {
	return h.state
}

// Release frees the component handle. Calling it again is a no-op.
func (h *Handle) Release() error {
	if h.released {
		return nil
	}
	h.released = true
	if err := h.comp.FreeHandle(); err != nil {
		return wrapCall("free handle", err)
	}
	h.log.Debug("Released component %s", h.name)
	return nil
}

// legalTransition reports whether the protocol allows from -> to.
func legalTransition(from, to ports.State) bool {
	switch from {
	case ports.StateLoaded:
		return to == ports.StateIdle
	case ports.StateIdle:
		return to == ports.StateLoaded || to == ports.StateExecuting
	case ports.StateExecuting:
		return to == ports.StateIdle
	}
	return false
}

// SetState requests a transition and blocks until the component confirms it.
func (h *Handle) SetState(ctx context.Context, target ports.State) error {
	if h.released {
		return ErrReleased
	}
	if !legalTransition(h.state, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, h.state, target)
	}

	h.log.Debug("Switching state %s -> %s", h.state, target)
	if err := h.Command(ports.CommandStateSet, uint32(target)); err != nil {
		return err
	}
	if err := h.Await(ctx, ports.CommandStateSet, uint32(target)); err != nil {
		return fmt.Errorf("switch to %s: %w", target, err)
	}
	h.state = target
	return nil
}

// Command issues cmd without waiting for its completion.
func (h *Handle) Command(cmd ports.Command, param uint32) error {
	if h.released {
		return ErrReleased
	}
	if err := h.comp.SendCommand(cmd, param); err != nil {
		return wrapCall(fmt.Sprintf("send %s(%d)", cmd, param), err)
	}
	return nil
}

// Await blocks until the component confirms cmd(param), reports an error
// event, ctx ends or the command timeout elapses.
func (h *Handle) Await(ctx context.Context, cmd ports.Command, param uint32) error {
	return h.sig.awaitCommand(ctx, h.timeout, cmdKey{cmd: cmd, param: param})
}

// ResetReadiness sets both buffer readiness flags.
func (h *Handle) ResetReadiness(inputReady, outputReady bool) {
	h.sig.reset(inputReady, outputReady)
}

// WaitReady blocks until one of the wanted readiness flags is set, consumes
// it and reports which ones fired. A pending component failure is returned
// instead. A zero timeout waits forever.
func (h *Handle) WaitReady(ctx context.Context, timeout time.Duration, wantInput, wantOutput bool) (input, output bool, err error) {
	err = h.sig.wait(ctx, timeout, func() bool {
		if wantOutput && h.sig.outputReady {
			h.sig.outputReady = false
			output = true
		}
		if wantInput && h.sig.inputReady {
			h.sig.inputReady = false
			input = true
		}
		return input || output
	})
	return input, output, err
}

// DrainFailure drops stale completions and returns any pending failure.
// A returned failure counts as dropped.
func (h *Handle) DrainFailure() error {
	err := h.sig.drain()
	if err != nil {
		h.dropped++
	}
	return err
}

// DroppedErrors counts component failures that were discarded instead of
// failing an operation, including ones raised while another was pending.
func (h *Handle) DroppedErrors() int {
	return h.dropped + h.sig.shadowedCount()
}

// RecoveredErrors counts stream-corruption events that were tolerated.
func (h *Handle) RecoveredErrors() int {
	return h.sig.corruptCount()
}

// EmptyThisBuffer hands buf to the component for consumption.
func (h *Handle) EmptyThisBuffer(buf *ports.BufferHeader) error {
	if h.released {
		return ErrReleased
	}
	return wrapCall("empty buffer", h.comp.EmptyThisBuffer(buf))
}

// FillThisBuffer asks the component to fill buf.
func (h *Handle) FillThisBuffer(buf *ports.BufferHeader) error {
	if h.released {
		return ErrReleased
	}
	return wrapCall("fill buffer", h.comp.FillThisBuffer(buf))
}

// callbackSink receives component callbacks and funnels them into signals.
type callbackSink struct {
	sig *signals
	log ports.Logger
}

func (c *callbackSink) EventHandler(event ports.Event, data1, data2 uint32) {
	switch event {
	case ports.EventCmdComplete:
		cmd := ports.Command(data1)
		if cmd == ports.CommandStateSet {
			c.log.Debug("Command complete: %s %s", cmd, ports.State(data2))
		} else {
			c.log.Debug("Command complete: %s port %d", cmd, data2)
		}
		c.sig.complete(cmdKey{cmd: cmd, param: data2})

	case ports.EventError:
		code := ports.ErrorCode(data1)
		if code == ports.ErrorStreamCorrupt {
			c.log.Warn("Component reported corrupt stream, continuing")
			c.sig.recoverable()
			return
		}
		c.log.Debug("Component error event: %s (0x%x)", code, data2)
		c.sig.fail(&EventError{Code: code, Data: data2})

	default:
		c.log.Debug("Unhandled event %s: 0x%x 0x%x", event, data1, data2)
	}
}

func (c *callbackSink) EmptyBufferDone(buf *ports.BufferHeader) {
	c.sig.setInputReady()
}

func (c *callbackSink) FillBufferDone(buf *ports.BufferHeader) {
	c.sig.setOutputReady()
}
