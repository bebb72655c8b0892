// Package jpegenc encodes raw frames to JPEG through an image_encode component.
//
// An Encoder owns one component for its whole life: Init acquires and
// configures it, Process runs one frame through the buffer exchange and
// Deinit walks the component back to Loaded and releases it.
package jpegenc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/user/omxjpeg/pkg/adapters/logger"
	"github.com/user/omxjpeg/pkg/omx"
	"github.com/user/omxjpeg/pkg/ports"
	"github.com/user/omxjpeg/pkg/rawimage"
)

// Stats counts an encoder's activity.
type Stats struct {
	Frames          int // frames encoded
	Failures        int // Process calls that failed after the exchange started
	Slices          int // input buffers sent
	Chunks          int // output buffers received
	BytesIn         int64
	BytesOut        int64
	RecoveredErrors int // stream corruption events tolerated
	DroppedErrors   int // component errors discarded between frames or during a flush
	Allocs          int
	Frees           int
}

// Encoder is a configured component in Executing state.
// Process and Deinit may be called from any goroutine; calls are serialized.
type Encoder struct {
	id     string
	params Params
	opts   Options
	log    ports.Logger
	h      *omx.Handle
	ports  omx.Ports

	inSize    uint32
	outSize   uint32
	frameSize int

	// enabled tracks ports this encoder has asked to enable.
	enabled map[uint32]bool

	mu     sync.Mutex
	closed bool
	broken bool
	stats  Stats
}

// Init acquires the component from loader and brings it to Executing with
// both ports configured and one buffer allocated on each. On failure every
// completed step is undone and no Encoder is returned.
func Init(ctx context.Context, loader ports.Loader, params Params, log ports.Logger, opts Options) (*Encoder, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params = params.withDefaults()
	if log == nil {
		log = logger.NewNoop()
	}

	e := &Encoder{
		id:      uuid.NewString(),
		params:  params,
		opts:    opts,
		log:     log,
		enabled: make(map[uint32]bool),
	}

	h, err := omx.Acquire(loader, params.ComponentName, log, omx.Options{CommandTimeout: opts.CommandTimeout})
	if err != nil {
		return nil, fmt.Errorf("init %s: %w", params.ComponentName, err)
	}
	e.h = h

	if err := e.setup(ctx); err != nil {
		if rerr := e.teardown(context.WithoutCancel(ctx)); rerr != nil {
			log.Warn("Rollback of %s incomplete: %v", params.ComponentName, rerr)
		}
		return nil, fmt.Errorf("init %s: %w", params.ComponentName, err)
	}

	log.Debug("Encoder %s ready: %dx%d %s slice %d quality %d, input buffer %s, output buffer %s",
		e.id, params.Width, params.Height, params.ColorFormat, params.SliceHeight, params.Quality,
		humanize.IBytes(uint64(e.inSize)), humanize.IBytes(uint64(e.outSize)))
	return e, nil
}

func (e *Encoder) setup(ctx context.Context) error {
	h := e.h
	p := e.params

	pp, err := h.DiscoverPorts()
	if err != nil {
		return err
	}
	e.ports = pp

	// Ports are configured while disabled, so the Idle transition does not
	// wait for them to be populated.
	for _, port := range []uint32{pp.Input, pp.Output} {
		if err := h.SetPortEnabled(ctx, port, false); err != nil {
			return err
		}
	}
	if err := h.SetState(ctx, ports.StateIdle); err != nil {
		return err
	}

	e.inSize, err = h.ConfigureInputPort(pp.Input, p.Width, p.Height, p.SliceHeight, p.ColorFormat)
	if err != nil {
		return err
	}
	def, err := h.PortDefinition(pp.Input)
	if err != nil {
		return err
	}
	e.frameSize = expectedFrameSize(p, def)
	if err := e.enableWithBuffer(ctx, pp.Input, e.inSize); err != nil {
		return err
	}

	e.outSize, err = h.ConfigureOutputPort(pp.Output, p.Quality)
	if err != nil {
		return err
	}
	if err := e.enableWithBuffer(ctx, pp.Output, e.outSize); err != nil {
		return err
	}

	return h.SetState(ctx, ports.StateExecuting)
}

// enableWithBuffer enables port and allocates its buffer. The enable only
// completes once the port is populated.
func (e *Encoder) enableWithBuffer(ctx context.Context, port, size uint32) error {
	if err := e.h.BeginPortEnabled(port, true); err != nil {
		return err
	}
	e.enabled[port] = true
	if _, err := e.h.AllocateBuffer(port, size); err != nil {
		return err
	}
	return e.h.AwaitPortEnabled(ctx, port, true)
}

// expectedFrameSize returns the byte length Process accepts, or 0 when the
// format is unknown and the component reports no stride.
func expectedFrameSize(p Params, def ports.PortDefinition) int {
	if n, err := rawimage.FrameSize(p.ColorFormat, int(p.Width), int(p.Height)); err == nil {
		return n
	}
	if def.Image.Stride > 0 {
		return int(def.Image.Stride) * int(p.Height)
	}
	return 0
}

// teardown walks the component back to Loaded from wherever setup or
// Process left it and releases it. It keeps going after errors.
func (e *Encoder) teardown(ctx context.Context) error {
	h := e.h
	var errs []error

	if err := h.DrainFailure(); err != nil {
		e.log.Debug("Dropping pending component error: %v", err)
	}

	if h.State() == ports.StateExecuting {
		if err := h.SetState(ctx, ports.StateIdle); err != nil {
			errs = append(errs, err)
		}
	}

	if h.State() == ports.StateIdle {
		for _, port := range []uint32{e.ports.Input, e.ports.Output} {
			if !e.enabled[port] && h.Buffer(port) == nil {
				continue
			}
			if err := e.disableAndFree(ctx, port); err != nil {
				errs = append(errs, err)
			}
		}
		if err := h.SetState(ctx, ports.StateLoaded); err != nil {
			errs = append(errs, err)
		}
	}

	if h.State() == ports.StateLoaded {
		if err := h.Release(); err != nil {
			errs = append(errs, err)
		}
	} else {
		errs = append(errs, fmt.Errorf("component left in %s, handle not released", h.State()))
	}
	return errors.Join(errs...)
}

// disableAndFree disables port and frees its buffer. The disable only
// completes once the port is depopulated.
func (e *Encoder) disableAndFree(ctx context.Context, port uint32) error {
	if err := e.h.BeginPortEnabled(port, false); err != nil {
		// Free anyway so the buffer is not leaked on our side.
		return errors.Join(err, e.h.FreeBuffer(port))
	}
	e.enabled[port] = false
	if err := e.h.FreeBuffer(port); err != nil {
		return err
	}
	return e.h.AwaitPortEnabled(ctx, port, false)
}

// Process encodes one raw frame and returns the JPEG bitstream.
// raw must hold exactly FrameSize bytes. A failed call leaves the encoder
// usable unless it returns ErrBroken.
func (e *Encoder) Process(ctx context.Context, raw []byte) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}
	if e.broken {
		return nil, ErrBroken
	}
	if len(raw) == 0 || (e.frameSize > 0 && len(raw) != e.frameSize) {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(raw), e.frameSize)
	}

	start := time.Now()
	out, err := e.run(ctx, raw)
	e.stats.RecoveredErrors = e.h.RecoveredErrors()
	if err != nil {
		e.stats.Failures++
		return nil, err
	}

	e.stats.Frames++
	e.stats.BytesIn += int64(len(raw))
	e.stats.BytesOut += int64(len(out))
	e.log.Debug("Encoder %s: %s -> %s in %s", e.id,
		humanize.IBytes(uint64(len(raw))), humanize.IBytes(uint64(len(out))), time.Since(start).Round(time.Microsecond))
	return out, nil
}

// Deinit returns the component to Loaded, frees both buffers and releases
// the handle. Calling it again is a no-op.
func (e *Encoder) Deinit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if err := e.teardown(context.Background()); err != nil {
		return fmt.Errorf("deinit %s: %w", e.params.ComponentName, err)
	}
	e.log.Debug("Encoder %s closed", e.id)
	return nil
}

// Close implements ports.ImageEncoder.
func (e *Encoder) Close() error {
	return e.Deinit()
}

// ID returns a unique identifier used in log messages.
func (e *Encoder) ID() string {
	return e.id
}

// Params returns the parameters the encoder was built with, defaults applied.
func (e *Encoder) Params() Params {
	return e.params
}

// InputBufferSize returns the negotiated input buffer size.
func (e *Encoder) InputBufferSize() uint32 {
	return e.inSize
}

// OutputBufferSize returns the negotiated output buffer size.
func (e *Encoder) OutputBufferSize() uint32 {
	return e.outSize
}

// FrameSize returns the raw frame length Process expects, or 0 when any
// non-empty length is accepted.
func (e *Encoder) FrameSize() int {
	return e.frameSize
}

// Stats returns a snapshot of the encoder counters.
func (e *Encoder) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stats
	s.Allocs, s.Frees = e.h.BufferCounts()
	s.DroppedErrors = e.h.DroppedErrors()
	return s
}

var _ ports.ImageEncoder = (*Encoder)(nil)
