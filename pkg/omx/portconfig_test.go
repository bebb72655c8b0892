package omx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/omxjpeg/pkg/adapters/softjpeg"
	"github.com/user/omxjpeg/pkg/mocks"
	"github.com/user/omxjpeg/pkg/ports"
	"github.com/user/omxjpeg/pkg/rawimage"
)

// portsComponent answers ImageInit and PortDefinition from dirs, keyed by port.
func portsComponent(start uint32, dirs []ports.Direction) *mocks.Component {
	return &mocks.Component{
		GetParameterFunc: func(index ports.Index, param any) error {
			switch p := param.(type) {
			case *ports.PortParam:
				*p = ports.PortParam{Ports: uint32(len(dirs)), StartPortNumber: start}
			case *ports.PortDefinition:
				p.Dir = dirs[p.PortIndex-start]
			}
			return nil
		},
	}
}

func acquireMock(t *testing.T, comp *mocks.Component) *Handle {
	t.Helper()
	loader := &mocks.Loader{
		GetHandleFunc: func(string, ports.Callbacks) (ports.Component, error) { return comp, nil },
	}
	h, err := Acquire(loader, "OMX.test", mocks.NewLogger(), Options{})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	return h
}

func TestDiscoverPorts(t *testing.T) {
	tests := []struct {
		name    string
		dirs    []ports.Direction
		want    Ports
		wantErr bool
	}{
		{"input then output", []ports.Direction{ports.DirInput, ports.DirOutput}, Ports{Input: 340, Output: 341}, false},
		{"output then input", []ports.Direction{ports.DirOutput, ports.DirInput}, Ports{Input: 341, Output: 340}, false},
		{"two inputs", []ports.Direction{ports.DirInput, ports.DirInput, ports.DirOutput}, Ports{}, true},
		{"two outputs", []ports.Direction{ports.DirInput, ports.DirOutput, ports.DirOutput}, Ports{}, true},
		{"no output", []ports.Direction{ports.DirInput}, Ports{}, true},
		{"no ports", nil, Ports{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := acquireMock(t, portsComponent(340, tt.dirs))
			got, err := h.DiscoverPorts()
			if tt.wantErr {
				if !errors.Is(err, ErrContractViolation) {
					t.Fatalf("got %v, want ErrContractViolation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DiscoverPorts: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConfigurePortsForEveryFormat(t *testing.T) {
	for _, f := range rawimage.SupportedFormats() {
		t.Run(f.String(), func(t *testing.T) {
			h, _ := acquireSoft(t, softjpeg.Options{})
			in, err := h.ConfigureInputPort(softjpeg.InputPort, 320, 240, SliceGranularity, f)
			if err != nil {
				t.Fatalf("ConfigureInputPort: %v", err)
			}
			out, err := h.ConfigureOutputPort(softjpeg.OutputPort, 75)
			if err != nil {
				t.Fatalf("ConfigureOutputPort: %v", err)
			}
			if in == 0 || out == 0 {
				t.Errorf("buffer sizes must be non-zero, got input %d output %d", in, out)
			}
		})
	}
}

func TestConfigureInputPortReturnsRequeriedSize(t *testing.T) {
	h, _ := acquireSoft(t, softjpeg.Options{BufferPadding: 64})
	got, err := h.ConfigureInputPort(softjpeg.InputPort, 100, 50, 50, ports.ColorFormat24bitRGB888)
	if err != nil {
		t.Fatalf("ConfigureInputPort: %v", err)
	}
	if want := uint32(100*3*50 + 64); got != want {
		t.Errorf("buffer size = %d, want %d", got, want)
	}
}

func TestConfigureInputPortPreconditions(t *testing.T) {
	h, _ := acquireSoft(t, softjpeg.Options{Formats: []ports.ColorFormat{ports.ColorFormatYUV420PackedPlanar}})

	if _, err := h.ConfigureInputPort(softjpeg.InputPort, 64, 64, 32, ports.ColorFormatYUV420PackedPlanar); !errors.Is(err, ErrRejectedParameters) {
		t.Errorf("slice height 32: got %v, want ErrRejectedParameters", err)
	}
	if _, err := h.ConfigureInputPort(softjpeg.InputPort, 0, 64, 64, ports.ColorFormatYUV420PackedPlanar); !errors.Is(err, ErrRejectedParameters) {
		t.Errorf("zero width: got %v, want ErrRejectedParameters", err)
	}
	if _, err := h.ConfigureInputPort(softjpeg.InputPort, 64, 64, 64, ports.ColorFormat24bitRGB888); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("unlisted format: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestConfigureRejectsZeroBufferSize(t *testing.T) {
	comp := &mocks.Component{
		GetParameterFunc: func(index ports.Index, param any) error {
			if p, ok := param.(*ports.ImageFormatParam); ok {
				if p.Index > 0 {
					return ports.ErrorNoMore
				}
				p.ColorFormat = ports.ColorFormat24bitRGB888
			}
			return nil
		},
	}
	h := acquireMock(t, comp)

	_, err := h.ConfigureInputPort(340, 64, 64, 64, ports.ColorFormat24bitRGB888)
	if !errors.Is(err, ErrRejectedParameters) {
		t.Fatalf("got %v, want ErrRejectedParameters", err)
	}
}

func TestConfigureOutputPortQuality(t *testing.T) {
	h, _ := acquireSoft(t, softjpeg.Options{})
	for _, q := range []uint32{0, 101} {
		if _, err := h.ConfigureOutputPort(softjpeg.OutputPort, q); !errors.Is(err, ErrRejectedParameters) {
			t.Errorf("quality %d: got %v, want ErrRejectedParameters", q, err)
		}
	}

	if _, err := h.ConfigureOutputPort(softjpeg.OutputPort, 1); err != nil {
		t.Fatalf("quality 1: %v", err)
	}
	q := ports.QFactor{PortIndex: softjpeg.OutputPort}
	if err := h.getParameter(ports.IndexParamQFactor, &q); err != nil {
		t.Fatalf("get QFactor: %v", err)
	}
	if q.QFactor != 1 {
		t.Errorf("QFactor = %d, want 1", q.QFactor)
	}
}

func TestEnableCompletesOncePopulated(t *testing.T) {
	h, _ := acquireSoft(t, softjpeg.Options{})
	ctx := context.Background()

	for _, p := range []uint32{softjpeg.InputPort, softjpeg.OutputPort} {
		if err := h.SetPortEnabled(ctx, p, false); err != nil {
			t.Fatalf("disable %d: %v", p, err)
		}
	}
	if err := h.SetState(ctx, ports.StateIdle); err != nil {
		t.Fatalf("Idle: %v", err)
	}

	size, err := h.ConfigureOutputPort(softjpeg.OutputPort, 50)
	if err != nil {
		t.Fatalf("ConfigureOutputPort: %v", err)
	}
	if err := h.BeginPortEnabled(softjpeg.OutputPort, true); err != nil {
		t.Fatalf("BeginPortEnabled: %v", err)
	}
	if _, err := h.AllocateBuffer(softjpeg.OutputPort, size); err != nil {
		t.Fatalf("AllocateBuffer: %v", err)
	}
	if err := h.AwaitPortEnabled(ctx, softjpeg.OutputPort, true); err != nil {
		t.Fatalf("AwaitPortEnabled: %v", err)
	}

	def, err := h.PortDefinition(softjpeg.OutputPort)
	if err != nil {
		t.Fatalf("PortDefinition: %v", err)
	}
	if !def.Enabled || !def.Populated {
		t.Errorf("output port enabled=%v populated=%v", def.Enabled, def.Populated)
	}
}

// flushingMock completes every flush, optionally raising an error event
// first.
func flushingMock(t *testing.T, raise bool) *Handle {
	t.Helper()
	var cb ports.Callbacks
	comp := &mocks.Component{}
	comp.SendCommandFunc = func(cmd ports.Command, param uint32) error {
		if cmd != ports.CommandFlush {
			return nil
		}
		if raise {
			cb.EventHandler(ports.EventError, uint32(ports.ErrorHardware), param)
		}
		cb.EventHandler(ports.EventCmdComplete, uint32(cmd), param)
		return nil
	}
	loader := &mocks.Loader{
		GetHandleFunc: func(_ string, c ports.Callbacks) (ports.Component, error) {
			cb = c
			return comp, nil
		},
	}
	h, err := Acquire(loader, "OMX.test", mocks.NewLogger(), Options{CommandTimeout: time.Second})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	return h
}

func TestFlushDropsErrorEvents(t *testing.T) {
	h := flushingMock(t, true)

	if err := h.Flush(context.Background(), 340, 341); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := h.DroppedErrors(); got != 2 {
		t.Errorf("DroppedErrors = %d, want 2", got)
	}
	if err := h.DrainFailure(); err != nil {
		t.Errorf("no failure should be left pending, got %v", err)
	}
}

func TestFlushTimesOutWithoutCompletion(t *testing.T) {
	comp := &mocks.Component{}
	loader := &mocks.Loader{
		GetHandleFunc: func(string, ports.Callbacks) (ports.Component, error) { return comp, nil },
	}
	h, err := Acquire(loader, "OMX.test", mocks.NewLogger(), Options{CommandTimeout: 30 * time.Millisecond})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if err := h.Flush(context.Background(), 340); !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
}

func TestDrainFailureCountsDropped(t *testing.T) {
	h := flushingMock(t, false)

	if err := h.DrainFailure(); err != nil {
		t.Fatalf("nothing pending, got %v", err)
	}
	h.sig.fail(&EventError{Code: ports.ErrorHardware})
	var event *EventError
	if err := h.DrainFailure(); !errors.As(err, &event) {
		t.Fatalf("got %v, want *EventError", err)
	}
	if got := h.DroppedErrors(); got != 1 {
		t.Errorf("DroppedErrors = %d, want 1", got)
	}
}
