package jpegenc

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/omxjpeg/pkg/ports"
)

// loopState is a state of the per-frame buffer exchange.
//
//	Priming   -> Streaming | Failed
//	Streaming -> Streaming | Draining | Failed
//	Draining  -> Draining | Done | Failed
type loopState int

const (
	statePriming loopState = iota
	stateStreaming
	stateDraining
	stateDone
	stateFailed
)

func (s loopState) String() string {
	switch s {
	case statePriming:
		return "priming"
	case stateStreaming:
		return "streaming"
	case stateDraining:
		return "draining"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	}
	return fmt.Sprintf("loopState(%d)", int(s))
}

// exchange is one frame moving through the component.
type exchange struct {
	e     *Encoder
	raw   []byte
	sent  int
	out   []byte
	state loopState
	err   error

	// inputHeld is true while the component owns the input buffer.
	inputHeld bool
	eof       bool
	slices    int
	chunks    int
}

// run drives the exchange until Done or Failed.
func (e *Encoder) run(ctx context.Context, raw []byte) ([]byte, error) {
	x := &exchange{e: e, raw: raw, state: statePriming}
	for {
		switch x.state {
		case statePriming:
			x.prime()
		case stateStreaming:
			x.stream(ctx)
		case stateDraining:
			x.drain(ctx)
		case stateDone:
			e.stats.Slices += x.slices
			e.stats.Chunks += x.chunks
			return x.out, nil
		case stateFailed:
			e.stats.Slices += x.slices
			e.stats.Chunks += x.chunks
			return nil, e.recover(ctx, x.err)
		}
	}
}

func (x *exchange) fail(err error) {
	x.err = fmt.Errorf("%s after %d of %d bytes: %w", x.state, x.sent, len(x.raw), err)
	x.state = stateFailed
}

// prime marks the input buffer as ours and hands the output buffer to the
// component.
func (x *exchange) prime() {
	h := x.e.h
	if err := h.DrainFailure(); err != nil {
		x.e.log.Warn("Discarding stale component error: %v", err)
	}
	h.ResetReadiness(true, false)
	if err := h.FillThisBuffer(h.Buffer(x.e.ports.Output)); err != nil {
		x.fail(err)
		return
	}
	x.state = stateStreaming
}

// stream sends slices while collecting any output that arrives.
func (x *exchange) stream(ctx context.Context) {
	input, output, err := x.e.h.WaitReady(ctx, x.e.opts.streamTimeout(), true, true)
	if err != nil {
		x.fail(err)
		return
	}

	if output {
		if x.collect() {
			x.fail(fmt.Errorf("%w: end of frame before all input was sent", ErrProtocol))
			return
		}
		if err := x.refill(); err != nil {
			x.fail(err)
			return
		}
	}

	if input {
		x.inputHeld = false
		if err := x.send(); err != nil {
			x.fail(err)
			return
		}
		if x.sent == len(x.raw) {
			x.state = stateDraining
		}
	}
}

// drain waits for the end of frame and for the last input buffer to come
// back. It only waits on conditions that can still occur.
func (x *exchange) drain(ctx context.Context) {
	input, output, err := x.e.h.WaitReady(ctx, x.e.opts.streamTimeout(), x.inputHeld, !x.eof)
	if err != nil {
		x.fail(err)
		return
	}

	if input {
		x.inputHeld = false
	}
	if output && !x.collect() {
		if err := x.refill(); err != nil {
			x.fail(err)
			return
		}
	}
	if x.eof && !x.inputHeld {
		x.state = stateDone
	}
}

// collect appends the filled output window and reports end of frame.
func (x *exchange) collect() bool {
	buf := x.e.h.Buffer(x.e.ports.Output)
	x.out = append(x.out, buf.Data()...)
	x.chunks++
	x.eof = buf.Flags&ports.FlagEndOfFrame != 0
	return x.eof
}

func (x *exchange) refill() error {
	return x.e.h.FillThisBuffer(x.e.h.Buffer(x.e.ports.Output))
}

// send copies the next slice into the input buffer and hands it over. The
// final slice is truncated to the bytes left.
func (x *exchange) send() error {
	buf := x.e.h.Buffer(x.e.ports.Input)
	n := min(int(buf.AllocLen), len(x.raw)-x.sent)
	copy(buf.Buffer[:n], x.raw[x.sent:x.sent+n])
	buf.Offset = 0
	buf.FilledLen = uint32(n)
	buf.Flags = 0

	if err := x.e.h.EmptyThisBuffer(buf); err != nil {
		return err
	}
	x.inputHeld = true
	x.sent += n
	x.slices++
	return nil
}

// recover flushes both ports so the next frame starts from a clean
// exchange. Error events raised during the flush are dropped. If the
// component does not confirm the flush the encoder is marked broken.
func (e *Encoder) recover(ctx context.Context, cause error) error {
	ctx = context.WithoutCancel(ctx)
	h := e.h

	if err := h.DrainFailure(); err != nil {
		e.log.Debug("Dropping further component error: %v", err)
	}
	if err := h.Flush(ctx, e.ports.Input, e.ports.Output); err != nil {
		e.broken = true
		e.log.Error("Encoder %s could not recover: %v", e.id, err)
		return errors.Join(cause, fmt.Errorf("%w: %w", ErrBroken, err))
	}
	if err := h.DrainFailure(); err != nil {
		e.log.Debug("Dropping further component error: %v", err)
	}

	e.log.Warn("Encoder %s dropped a frame: %v", e.id, cause)
	return cause
}
