package jpegenc

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"sync"
	"testing"
	"time"

	"github.com/user/omxjpeg/pkg/adapters/softjpeg"
	"github.com/user/omxjpeg/pkg/mocks"
	"github.com/user/omxjpeg/pkg/omx"
	"github.com/user/omxjpeg/pkg/ports"
)

// gradientRGB888 returns a packed RGB888 frame with R = x, G = y, B = x+y.
func gradientRGB888(w, h int) []byte {
	raw := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			raw[i] = byte(x)
			raw[i+1] = byte(y)
			raw[i+2] = byte(x + y)
		}
	}
	return raw
}

func rgbParams(w, h, slice uint32) Params {
	return Params{
		Width:       w,
		Height:      h,
		SliceHeight: slice,
		Quality:     80,
		ColorFormat: ports.ColorFormat24bitRGB888,
	}
}

func fastOptions() Options {
	return Options{CommandTimeout: 2 * time.Second, StreamTimeout: 2 * time.Second}
}

// newEncoder builds an encoder on a fresh software component and returns
// the component for inspection.
func newEncoder(t *testing.T, opts softjpeg.Options, p Params, eo Options) (*Encoder, *softjpeg.Component) {
	t.Helper()
	loader := softjpeg.NewLoader(opts)
	enc, err := Init(context.Background(), loader, p, mocks.NewLogger(), eo)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	comps := loader.Components()
	if len(comps) != 1 {
		t.Fatalf("loader created %d components, want 1", len(comps))
	}
	return enc, comps[0]
}

// wrapSoft returns a loader whose components are software components
// wrapped by wrap.
func wrapSoft(soft *softjpeg.Loader, wrap func(ports.Component, ports.Callbacks) ports.Component) *mocks.Loader {
	return &mocks.Loader{
		GetHandleFunc: func(name string, cb ports.Callbacks) (ports.Component, error) {
			c, err := soft.GetHandle(name, cb)
			if err != nil {
				return nil, err
			}
			return wrap(c, cb), nil
		},
	}
}

func checkJPEG(t *testing.T, data []byte, w, h int) {
	t.Helper()
	if len(data) < 4 {
		t.Fatalf("output too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:2], []byte{0xFF, 0xD8}) {
		t.Errorf("missing SOI marker, got % x", data[:2])
	}
	if !bytes.Equal(data[len(data)-2:], []byte{0xFF, 0xD9}) {
		t.Errorf("missing EOI marker, got % x", data[len(data)-2:])
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds(); got.Dx() != w || got.Dy() != h {
		t.Errorf("decoded %dx%d, want %dx%d", got.Dx(), got.Dy(), w, h)
	}
}

func TestFullFrameRGB888(t *testing.T) {
	p := Params{Width: 640, Height: 480, SliceHeight: 480, Quality: 20, ColorFormat: ports.ColorFormat24bitRGB888}
	enc, comp := newEncoder(t, softjpeg.Options{}, p, fastOptions())

	if got := enc.FrameSize(); got != 640*480*3 {
		t.Errorf("FrameSize = %d", got)
	}
	if got := enc.InputBufferSize(); got != 640*480*3 {
		t.Errorf("InputBufferSize = %d", got)
	}
	if got := enc.OutputBufferSize(); got != softjpeg.DefaultOutputBufferSize {
		t.Errorf("OutputBufferSize = %d, want %d", got, softjpeg.DefaultOutputBufferSize)
	}
	if enc.ID() == "" {
		t.Error("ID should not be empty")
	}

	out, err := enc.Process(context.Background(), gradientRGB888(640, 480))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	checkJPEG(t, out, 640, 480)

	if s := enc.Stats(); s.Frames != 1 || s.Slices != 1 {
		t.Errorf("stats = %+v, want 1 frame in 1 slice", s)
	}
	if got := comp.Stats().Frames; got != 1 {
		t.Errorf("component encoded %d frames, want 1", got)
	}

	if err := enc.Deinit(); err != nil {
		t.Fatalf("Deinit: %v", err)
	}
	if _, err := enc.Process(context.Background(), gradientRGB888(640, 480)); !errors.Is(err, ErrClosed) {
		t.Errorf("Process after Deinit: got %v, want ErrClosed", err)
	}
}

func TestOutputSpansSeveralBuffers(t *testing.T) {
	enc, _ := newEncoder(t, softjpeg.Options{OutputBufferSize: 512}, rgbParams(128, 96, 96), fastOptions())
	defer enc.Close()

	out, err := enc.Process(context.Background(), gradientRGB888(128, 96))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	checkJPEG(t, out, 128, 96)

	s := enc.Stats()
	if s.Chunks <= 1 {
		t.Errorf("Chunks = %d, want several", s.Chunks)
	}
	if want := (len(out) + 511) / 512; s.Chunks != want {
		t.Errorf("Chunks = %d, want %d for %d bytes", s.Chunks, want, len(out))
	}
}

func TestSlicesForExactMultiple(t *testing.T) {
	enc, comp := newEncoder(t, softjpeg.Options{}, rgbParams(64, 64, 16), fastOptions())
	defer enc.Close()

	if got := enc.InputBufferSize(); got != 64*3*16 {
		t.Errorf("InputBufferSize = %d, want %d", got, 64*3*16)
	}

	for i := 0; i < 3; i++ {
		out, err := enc.Process(context.Background(), gradientRGB888(64, 64))
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		checkJPEG(t, out, 64, 64)
	}

	if got := enc.Stats().Slices; got != 12 {
		t.Errorf("encoder sent %d slices, want 12", got)
	}
	cs := comp.Stats()
	if cs.Slices != 12 || cs.Frames != 3 {
		t.Errorf("component saw %d slices in %d frames, want 12 in 3", cs.Slices, cs.Frames)
	}
}

func TestFinalSliceIsTruncated(t *testing.T) {
	// 40 rows in 16-row slices: 16 + 16 + 8.
	enc, comp := newEncoder(t, softjpeg.Options{}, rgbParams(32, 40, 16), fastOptions())
	defer enc.Close()

	out, err := enc.Process(context.Background(), gradientRGB888(32, 40))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	checkJPEG(t, out, 32, 40)
	if got := comp.Stats().Slices; got != 3 {
		t.Errorf("slices = %d, want 3", got)
	}
}

func TestTrustsNegotiatedBufferSize(t *testing.T) {
	enc, comp := newEncoder(t, softjpeg.Options{BufferPadding: 100}, rgbParams(32, 40, 16), fastOptions())
	defer enc.Close()

	if got := enc.InputBufferSize(); got != 32*3*16+100 {
		t.Fatalf("InputBufferSize = %d, want %d", got, 32*3*16+100)
	}

	out, err := enc.Process(context.Background(), gradientRGB888(32, 40))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	checkJPEG(t, out, 32, 40)
	// 3840 bytes in 1636-byte slices.
	if got := comp.Stats().Slices; got != 3 {
		t.Errorf("slices = %d, want 3", got)
	}
}

func TestInitDeinitBalancesBuffers(t *testing.T) {
	enc, comp := newEncoder(t, softjpeg.Options{}, rgbParams(64, 48, 48), fastOptions())
	if err := enc.Deinit(); err != nil {
		t.Fatalf("Deinit: %v", err)
	}
	if err := enc.Deinit(); err != nil {
		t.Fatalf("second Deinit should be a no-op: %v", err)
	}

	if s := enc.Stats(); s.Allocs != 2 || s.Frees != 2 {
		t.Errorf("encoder allocs/frees = %d/%d, want 2/2", s.Allocs, s.Frees)
	}
	cs := comp.Stats()
	if cs.Allocs != 2 || cs.Frees != 2 {
		t.Errorf("component allocs/frees = %d/%d, want 2/2", cs.Allocs, cs.Frees)
	}
	if !cs.Freed {
		t.Error("component handle not freed")
	}
}

func TestUnsupportedFormatLeavesNothingBehind(t *testing.T) {
	loader := softjpeg.NewLoader(softjpeg.Options{Formats: []ports.ColorFormat{ports.ColorFormat24bitRGB888}})
	p := rgbParams(64, 48, 48)
	p.ColorFormat = ports.ColorFormat24bitBGR888

	enc, err := Init(context.Background(), loader, p, nil, fastOptions())
	if !errors.Is(err, omx.ErrUnsupportedFormat) {
		t.Fatalf("got %v, want ErrUnsupportedFormat", err)
	}
	if enc != nil {
		t.Error("no encoder should be returned")
	}

	comp := loader.Components()[0]
	if got := comp.Stats().Allocs; got != 0 {
		t.Errorf("allocs = %d, want 0", got)
	}
	if !comp.Stats().Freed {
		t.Error("component handle not freed")
	}
	if comp.PortEnabled(softjpeg.InputPort) || comp.PortEnabled(softjpeg.OutputPort) {
		t.Error("ports should be left disabled")
	}
}

func TestInitRollsBackOnAllocationFailure(t *testing.T) {
	loader := softjpeg.NewLoader(softjpeg.Options{MaxBuffers: 1})
	_, err := Init(context.Background(), loader, rgbParams(64, 48, 48), nil, fastOptions())
	if !errors.Is(err, omx.ErrResourceExhausted) {
		t.Fatalf("got %v, want ErrResourceExhausted", err)
	}

	cs := loader.Components()[0].Stats()
	if cs.Allocs != 1 || cs.Frees != 1 {
		t.Errorf("allocs/frees = %d/%d, want 1/1", cs.Allocs, cs.Frees)
	}
	if !cs.Freed {
		t.Error("component handle not freed")
	}
}

func TestInitRejectedDefinition(t *testing.T) {
	loader := softjpeg.NewLoader(softjpeg.Options{FailSetDefinition: true})
	_, err := Init(context.Background(), loader, rgbParams(64, 48, 48), nil, fastOptions())
	if !errors.Is(err, omx.ErrRejectedParameters) {
		t.Fatalf("got %v, want ErrRejectedParameters", err)
	}
	if !loader.Components()[0].Stats().Freed {
		t.Error("component handle not freed")
	}
}

func TestInitUnknownComponent(t *testing.T) {
	p := rgbParams(64, 48, 48)
	p.ComponentName = "OMX.broadcom.video_encode"
	_, err := Init(context.Background(), softjpeg.NewLoader(softjpeg.Options{}), p, nil, fastOptions())
	if !errors.Is(err, omx.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestInitRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"zero width", Params{Height: 16, Quality: 50, ColorFormat: ports.ColorFormat24bitRGB888}},
		{"odd slice", Params{Width: 64, Height: 64, SliceHeight: 32, Quality: 50, ColorFormat: ports.ColorFormat24bitRGB888}},
		{"quality zero", Params{Width: 64, Height: 64, ColorFormat: ports.ColorFormat24bitRGB888}},
		{"quality above 100", Params{Width: 64, Height: 64, Quality: 101, ColorFormat: ports.ColorFormat24bitRGB888}},
		{"no format", Params{Width: 64, Height: 64, Quality: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &mocks.Loader{}
			_, err := Init(context.Background(), loader, tt.p, nil, fastOptions())
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("got %v, want ErrInvalidParams", err)
			}
			if len(loader.Names) != 0 {
				t.Errorf("no component may be acquired, got %v", loader.Names)
			}
		})
	}
}

func TestProcessRejectsWrongFrameSize(t *testing.T) {
	enc, _ := newEncoder(t, softjpeg.Options{}, rgbParams(64, 48, 48), fastOptions())
	defer enc.Close()

	if _, err := enc.Process(context.Background(), make([]byte, 100)); !errors.Is(err, ErrFrameSize) {
		t.Errorf("short frame: got %v, want ErrFrameSize", err)
	}
	if _, err := enc.Process(context.Background(), nil); !errors.Is(err, ErrFrameSize) {
		t.Errorf("empty frame: got %v, want ErrFrameSize", err)
	}
}

func TestCorruptStreamIsTolerated(t *testing.T) {
	opts := softjpeg.Options{Faults: []softjpeg.Fault{{AfterSlices: 2, Code: ports.ErrorStreamCorrupt}}}
	enc, _ := newEncoder(t, opts, rgbParams(64, 64, 16), fastOptions())
	defer enc.Close()

	out, err := enc.Process(context.Background(), gradientRGB888(64, 64))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	checkJPEG(t, out, 64, 64)
	if got := enc.Stats().RecoveredErrors; got != 1 {
		t.Errorf("RecoveredErrors = %d, want 1", got)
	}
}

func TestComponentErrorAbortsFrame(t *testing.T) {
	opts := softjpeg.Options{Faults: []softjpeg.Fault{{AfterSlices: 2, Code: ports.ErrorHardware}}}
	enc, comp := newEncoder(t, opts, rgbParams(64, 64, 16), fastOptions())
	defer enc.Close()

	_, err := enc.Process(context.Background(), gradientRGB888(64, 64))
	if !errors.Is(err, omx.ErrComponent) || !errors.Is(err, ports.ErrorHardware) {
		t.Fatalf("got %v, want a Hardware component error", err)
	}
	var ev *omx.EventError
	if !errors.As(err, &ev) {
		t.Fatalf("got %T, want *omx.EventError in the chain", err)
	}
	if ev.Code != ports.ErrorHardware {
		t.Errorf("event code = %s, want Hardware", ev.Code)
	}

	// The encoder recovered and the next frame goes through.
	out, err := enc.Process(context.Background(), gradientRGB888(64, 64))
	if err != nil {
		t.Fatalf("Process after recovery: %v", err)
	}
	checkJPEG(t, out, 64, 64)
	if got := comp.Stats().Frames; got != 1 {
		t.Errorf("component encoded %d frames, want 1", got)
	}

	if s := enc.Stats(); s.Frames != 1 || s.Failures != 1 {
		t.Errorf("frames/failures = %d/%d, want 1/1", s.Frames, s.Failures)
	}
}

// earlyEOF hands the first output buffer back empty and marked end of
// frame as soon as the first slice arrives.
type earlyEOF struct {
	ports.Component
	cb ports.Callbacks

	mu      sync.Mutex
	used    bool
	pending *ports.BufferHeader
}

func (c *earlyEOF) FillThisBuffer(buf *ports.BufferHeader) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.used {
		c.used = true
		c.pending = buf
		return nil
	}
	return c.Component.FillThisBuffer(buf)
}

func (c *earlyEOF) EmptyThisBuffer(buf *ports.BufferHeader) error {
	c.mu.Lock()
	out := c.pending
	c.pending = nil
	c.mu.Unlock()

	if out != nil {
		out.Offset = 0
		out.FilledLen = 0
		out.Flags = ports.FlagEndOfFrame
		c.cb.FillBufferDone(out)
	}
	return c.Component.EmptyThisBuffer(buf)
}

func TestEarlyEndOfFrameIsProtocolError(t *testing.T) {
	soft := softjpeg.NewLoader(softjpeg.Options{})
	loader := wrapSoft(soft, func(c ports.Component, cb ports.Callbacks) ports.Component {
		return &earlyEOF{Component: c, cb: cb}
	})
	enc, err := Init(context.Background(), loader, rgbParams(64, 64, 16), mocks.NewLogger(), fastOptions())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	_, err = enc.Process(context.Background(), gradientRGB888(64, 64))
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("got %v, want ErrProtocol", err)
	}
	if errors.Is(err, ErrBroken) {
		t.Fatalf("flush should have recovered the encoder: %v", err)
	}

	out, err := enc.Process(context.Background(), gradientRGB888(64, 64))
	if err != nil {
		t.Fatalf("Process after protocol error: %v", err)
	}
	checkJPEG(t, out, 64, 64)

	if err := enc.Deinit(); err != nil {
		t.Fatalf("Deinit: %v", err)
	}
	if !soft.Components()[0].Stats().Freed {
		t.Error("component handle not freed")
	}
}

// noisyFlush raises a hardware error each time the input port is flushed.
type noisyFlush struct {
	ports.Component
	cb      ports.Callbacks
	flushes int
}

func (c *noisyFlush) SendCommand(cmd ports.Command, param uint32) error {
	if cmd == ports.CommandFlush && param == softjpeg.InputPort {
		c.flushes++
		c.cb.EventHandler(ports.EventError, uint32(ports.ErrorHardware), 0)
	}
	return c.Component.SendCommand(cmd, param)
}

func TestLateErrorDuringFlushKeepsEncoder(t *testing.T) {
	soft := softjpeg.NewLoader(softjpeg.Options{
		Faults: []softjpeg.Fault{{AfterSlices: 2, Code: ports.ErrorHardware}},
	})
	noisy := &noisyFlush{}
	loader := wrapSoft(soft, func(c ports.Component, cb ports.Callbacks) ports.Component {
		noisy.Component, noisy.cb = c, cb
		return noisy
	})
	enc, err := Init(context.Background(), loader, rgbParams(64, 64, 16), mocks.NewLogger(), fastOptions())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer enc.Close()

	_, err = enc.Process(context.Background(), gradientRGB888(64, 64))
	if !errors.Is(err, ports.ErrorHardware) {
		t.Fatalf("got %v, want the Hardware fault", err)
	}
	if errors.Is(err, ErrBroken) {
		t.Fatalf("an error event during a completed flush must not break the encoder: %v", err)
	}
	if noisy.flushes != 1 {
		t.Fatalf("input port flushed %d times, want 1", noisy.flushes)
	}

	out, err := enc.Process(context.Background(), gradientRGB888(64, 64))
	if err != nil {
		t.Fatalf("Process after recovery: %v", err)
	}
	checkJPEG(t, out, 64, 64)

	s := enc.Stats()
	if s.DroppedErrors < 1 {
		t.Errorf("DroppedErrors = %d, want the flush error counted", s.DroppedErrors)
	}
	if s.Frames != 1 || s.Failures != 1 {
		t.Errorf("frames/failures = %d/%d, want 1/1", s.Frames, s.Failures)
	}
}

func TestStaleErrorIsCountedAsDropped(t *testing.T) {
	soft := softjpeg.NewLoader(softjpeg.Options{})
	var cb ports.Callbacks
	loader := wrapSoft(soft, func(c ports.Component, got ports.Callbacks) ports.Component {
		cb = got
		return c
	})
	enc, err := Init(context.Background(), loader, rgbParams(64, 64, 16), mocks.NewLogger(), fastOptions())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer enc.Close()

	// An error that arrives between frames belongs to no frame.
	cb.EventHandler(ports.EventError, uint32(ports.ErrorHardware), 0)

	out, err := enc.Process(context.Background(), gradientRGB888(64, 64))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	checkJPEG(t, out, 64, 64)
	if got := enc.Stats().DroppedErrors; got != 1 {
		t.Errorf("DroppedErrors = %d, want 1", got)
	}
}

func TestStalledComponentTimesOutAndRecovers(t *testing.T) {
	eo := Options{CommandTimeout: 2 * time.Second, StreamTimeout: 100 * time.Millisecond}
	enc, _ := newEncoder(t, softjpeg.Options{StallAfterSlices: 2}, rgbParams(64, 64, 16), eo)
	defer enc.Close()

	_, err := enc.Process(context.Background(), gradientRGB888(64, 64))
	if !errors.Is(err, omx.ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
	if errors.Is(err, ErrBroken) {
		t.Errorf("a stall the flush clears should not break the encoder: %v", err)
	}

	out, err := enc.Process(context.Background(), gradientRGB888(64, 64))
	if err != nil {
		t.Fatalf("Process after stall: %v", err)
	}
	checkJPEG(t, out, 64, 64)
}

// flushless forwards to a software component but never confirms a flush.
type flushless struct {
	ports.Component
}

func (c flushless) SendCommand(cmd ports.Command, param uint32) error {
	if cmd == ports.CommandFlush {
		return nil
	}
	return c.Component.SendCommand(cmd, param)
}

func TestFailedRecoveryBreaksEncoder(t *testing.T) {
	soft := softjpeg.NewLoader(softjpeg.Options{StallAfterSlices: 1})
	loader := wrapSoft(soft, func(c ports.Component, _ ports.Callbacks) ports.Component {
		return flushless{c}
	})

	eo := Options{CommandTimeout: 100 * time.Millisecond, StreamTimeout: 100 * time.Millisecond}
	enc, err := Init(context.Background(), loader, rgbParams(64, 64, 16), nil, eo)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	_, err = enc.Process(context.Background(), gradientRGB888(64, 64))
	if !errors.Is(err, ErrBroken) || !errors.Is(err, omx.ErrTimeout) {
		t.Fatalf("got %v, want ErrBroken after a flush timeout", err)
	}
	if _, err := enc.Process(context.Background(), gradientRGB888(64, 64)); !errors.Is(err, ErrBroken) {
		t.Errorf("broken encoder: got %v, want ErrBroken", err)
	}

	// Leaving Executing returns every held buffer, so teardown still works.
	if err := enc.Deinit(); err != nil {
		t.Fatalf("Deinit: %v", err)
	}
	if !soft.Components()[0].Stats().Freed {
		t.Error("component handle not freed")
	}
}

func TestCanceledContextAbortsFrame(t *testing.T) {
	opts := softjpeg.Options{Latency: 20 * time.Millisecond}
	enc, _ := newEncoder(t, opts, rgbParams(64, 64, 16), fastOptions())
	defer enc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := enc.Process(ctx, gradientRGB888(64, 64)); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}

	out, err := enc.Process(context.Background(), gradientRGB888(64, 64))
	if err != nil {
		t.Fatalf("Process after cancel: %v", err)
	}
	checkJPEG(t, out, 64, 64)
}

func TestDelayedCallbacks(t *testing.T) {
	opts := softjpeg.Options{Latency: 200 * time.Microsecond, OutputBufferSize: 1024}
	enc, comp := newEncoder(t, opts, rgbParams(48, 48, 16), fastOptions())
	defer enc.Close()

	raw := gradientRGB888(48, 48)
	for i := 0; i < 20; i++ {
		out, err := enc.Process(context.Background(), raw)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		checkJPEG(t, out, 48, 48)
	}
	cs := comp.Stats()
	if cs.Frames != 20 || cs.Slices != 60 {
		t.Errorf("component saw %d frames in %d slices, want 20 in 60", cs.Frames, cs.Slices)
	}
}

func TestOtherColorFormats(t *testing.T) {
	formats := []ports.ColorFormat{
		ports.ColorFormat32bitARGB8888,
		ports.ColorFormat16bitRGB565,
		ports.ColorFormatYUV420PackedPlanar,
		ports.ColorFormatYCbYCr,
		ports.ColorFormatL8,
	}
	for _, f := range formats {
		t.Run(f.String(), func(t *testing.T) {
			p := rgbParams(64, 48, 16)
			p.ColorFormat = f
			enc, _ := newEncoder(t, softjpeg.Options{}, p, fastOptions())
			defer enc.Close()

			out, err := enc.Process(context.Background(), make([]byte, enc.FrameSize()))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			checkJPEG(t, out, 64, 48)
		})
	}
}

func TestConcurrentProcessIsSerialized(t *testing.T) {
	enc, comp := newEncoder(t, softjpeg.Options{}, rgbParams(32, 32, 16), fastOptions())
	defer enc.Close()

	raw := gradientRGB888(32, 32)
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := enc.Process(context.Background(), raw)
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-errs; err != nil {
			t.Errorf("Process: %v", err)
		}
	}
	if got := comp.Stats().Frames; got != 8 {
		t.Errorf("component encoded %d frames, want 8", got)
	}
}
