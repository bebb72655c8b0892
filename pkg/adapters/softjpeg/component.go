// Package softjpeg provides a software image_encode component.
// It follows the OpenMAX IL state, port and buffer rules, delivers every
// callback from its own goroutine and compresses with image/jpeg.
package softjpeg

import (
	"sync"
	"time"

	"github.com/user/omxjpeg/pkg/ports"
	"github.com/user/omxjpeg/pkg/rawimage"
)

// ComponentName is the name the component answers to.
const ComponentName = "OMX.broadcom.image_encode"

// Port numbers, matching the VideoCore image_encode component.
const (
	InputPort  uint32 = 340
	OutputPort uint32 = 341
)

// DefaultOutputBufferSize is the output port buffer size unless overridden.
const DefaultOutputBufferSize = 81920

// Loader hands out software components.
type Loader struct {
	opts Options

	mu         sync.Mutex
	components []*Component
}

// NewLoader creates a loader for software components.
func NewLoader(opts Options) *Loader {
	return &Loader{opts: opts}
}

// GetHandle creates a component in StateLoaded.
func (l *Loader) GetHandle(name string, cb ports.Callbacks) (ports.Component, error) {
	if name != ComponentName && (l.opts.Name == "" || name != l.opts.Name) {
		return nil, ports.ErrorComponentNotFound
	}

	c := newComponent(l.opts, cb)
	l.mu.Lock()
	l.components = append(l.components, c)
	l.mu.Unlock()
	return c, nil
}

// Components returns every component created so far.
func (l *Loader) Components() []*Component {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Component(nil), l.components...)
}

// Stats summarizes a component's activity.
type Stats struct {
	Allocs int
	Frees  int
	Slices int
	Frames int
	Freed  bool // FreeHandle was called
}

// port is the component-side state of one port.
type port struct {
	def     ports.PortDefinition
	buffers []*ports.BufferHeader
	held    *ports.BufferHeader // buffer currently owned by the component
}

func (p *port) populated() bool {
	return len(p.buffers) >= int(p.def.BufferCountActual)
}

// Component is a software image_encode component.
type Component struct {
	opts Options
	cb   ports.Callbacks

	jobs chan func()
	quit chan struct{}

	mu           sync.Mutex
	state        ports.State
	pendingState *ports.State
	pendingPorts map[uint32]bool
	ports        map[uint32]*port
	formats      []ports.ColorFormat
	quality      uint32
	live         int
	freed        bool

	frame      []byte // input accumulated for the current frame
	output     []byte // encoded bitstream not yet delivered
	outPos     int
	faults     []Fault
	stallFired bool
	stats      Stats
}

func newComponent(opts Options, cb ports.Callbacks) *Component {
	formats := opts.Formats
	if len(formats) == 0 {
		formats = rawimage.SupportedFormats()
	}

	c := &Component{
		opts:         opts,
		cb:           cb,
		jobs:         make(chan func(), 256),
		quit:         make(chan struct{}),
		state:        ports.StateLoaded,
		pendingPorts: make(map[uint32]bool),
		formats:      formats,
		quality:      75,
		faults:       append([]Fault(nil), opts.Faults...),
		ports: map[uint32]*port{
			InputPort: {def: ports.PortDefinition{
				PortIndex:         InputPort,
				Dir:               ports.DirInput,
				BufferCountActual: 1,
				BufferCountMin:    1,
				Enabled:           true,
				Image: ports.ImagePortFormat{
					FrameWidth:        16,
					FrameHeight:       16,
					SliceHeight:       16,
					CompressionFormat: ports.CodingUnused,
					ColorFormat:       formats[0],
				},
			}},
			OutputPort: {def: ports.PortDefinition{
				PortIndex:         OutputPort,
				Dir:               ports.DirOutput,
				BufferCountActual: 1,
				BufferCountMin:    1,
				BufferSize:        opts.outputBufferSize(),
				Enabled:           true,
				Image: ports.ImagePortFormat{
					FrameWidth:        16,
					FrameHeight:       16,
					CompressionFormat: ports.CodingJPEG,
					ColorFormat:       ports.ColorFormatUnused,
				},
			}},
		},
	}
	c.ports[InputPort].def.BufferSize, c.ports[InputPort].def.Image.Stride = c.inputGeometry(c.ports[InputPort].def.Image)

	go c.run()
	return c
}

// Stats returns a snapshot of the component's counters.
func (c *Component) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Freed = c.freed
	return s
}

// PortEnabled reports whether port idx is enabled. It stays readable after
// FreeHandle.
func (c *Component) PortEnabled(idx uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.ports[idx]
	return ok && p.def.Enabled
}

// run executes queued jobs in order until FreeHandle.
func (c *Component) run() {
	for {
		select {
		case job := <-c.jobs:
			if c.opts.Latency > 0 {
				time.Sleep(c.opts.Latency)
			}
			job()
		case <-c.quit:
			return
		}
	}
}

// enqueue schedules job on the component goroutine. It must not be called
// with c.mu held.
func (c *Component) enqueue(job func()) {
	select {
	case c.jobs <- job:
	case <-c.quit:
	}
}

func (c *Component) raise(code ports.ErrorCode, data uint32) {
	c.enqueue(func() { c.cb.EventHandler(ports.EventError, uint32(code), data) })
}

// GetState implements ports.Component.
func (c *Component) GetState() (ports.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.freed {
		return ports.StateInvalid, ports.ErrorInvalidState
	}
	return c.state, nil
}

// FreeHandle implements ports.Component.
func (c *Component) FreeHandle() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.freed {
		return ports.ErrorInvalidState
	}
	if c.state != ports.StateLoaded {
		return ports.ErrorIncorrectStateOperation
	}
	c.freed = true
	close(c.quit)
	return nil
}

// SendCommand implements ports.Component.
func (c *Component) SendCommand(cmd ports.Command, param uint32) error {
	c.mu.Lock()
	if c.freed {
		c.mu.Unlock()
		return ports.ErrorInvalidState
	}

	switch cmd {
	case ports.CommandStateSet:
		target := ports.State(param)
		if c.pendingState != nil {
			c.mu.Unlock()
			return ports.ErrorNotReady
		}
		if target == c.state {
			c.mu.Unlock()
			c.raise(ports.ErrorSameState, 0)
			return nil
		}
		if !validTransition(c.state, target) {
			c.mu.Unlock()
			c.raise(ports.ErrorIncorrectStateTransition, 0)
			return nil
		}
		c.pendingState = &target

	case ports.CommandPortEnable, ports.CommandPortDisable:
		p, ok := c.ports[param]
		if !ok {
			c.mu.Unlock()
			return ports.ErrorBadPortIndex
		}
		enable := cmd == ports.CommandPortEnable
		p.def.Enabled = enable
		c.pendingPorts[param] = enable

	case ports.CommandFlush:
		if _, ok := c.ports[param]; !ok {
			c.mu.Unlock()
			return ports.ErrorBadPortIndex
		}
		c.mu.Unlock()
		c.enqueue(func() { c.flush(param) })
		return nil

	default:
		c.mu.Unlock()
		return ports.ErrorNotImplemented
	}

	c.mu.Unlock()
	c.enqueue(c.reconcile)
	return nil
}

func validTransition(from, to ports.State) bool {
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

// reconcile completes every pending command whose precondition now holds.
func (c *Component) reconcile() {
	var done []func()

	c.mu.Lock()
	if c.pendingState != nil {
		target := *c.pendingState
		ready := true
		switch {
		case c.state == ports.StateLoaded && target == ports.StateIdle:
			for _, p := range c.ports {
				if p.def.Enabled && !p.populated() {
					ready = false
				}
			}
		case c.state == ports.StateIdle && target == ports.StateLoaded:
			for _, p := range c.ports {
				if len(p.buffers) > 0 {
					ready = false
				}
			}
		case c.state == ports.StateExecuting && target == ports.StateIdle:
			done = append(done, c.returnHeldLocked(InputPort)...)
			done = append(done, c.returnHeldLocked(OutputPort)...)
			c.resetFrameLocked()
		}
		if ready {
			c.state = target
			c.pendingState = nil
			done = append(done, func() {
				c.cb.EventHandler(ports.EventCmdComplete, uint32(ports.CommandStateSet), uint32(target))
			})
		}
	}

	for idx, enable := range c.pendingPorts {
		p := c.ports[idx]
		ready := true
		cmd := ports.CommandPortEnable
		if enable {
			if c.state != ports.StateLoaded && !p.populated() {
				ready = false
			}
		} else {
			cmd = ports.CommandPortDisable
			done = append(done, c.returnHeldLocked(idx)...)
			if len(p.buffers) > 0 {
				ready = false
			}
		}
		if ready {
			delete(c.pendingPorts, idx)
			done = append(done, func() {
				c.cb.EventHandler(ports.EventCmdComplete, uint32(cmd), idx)
			})
		}
	}
	c.mu.Unlock()

	for _, fn := range done {
		fn()
	}
}

// returnHeldLocked hands a buffer held on idx back to the client.
func (c *Component) returnHeldLocked(idx uint32) []func() {
	p := c.ports[idx]
	buf := p.held
	if buf == nil {
		return nil
	}
	p.held = nil
	if idx == InputPort {
		return []func(){func() { c.cb.EmptyBufferDone(buf) }}
	}
	buf.FilledLen = 0
	buf.Flags = 0
	return []func(){func() { c.cb.FillBufferDone(buf) }}
}

func (c *Component) resetFrameLocked() {
	c.frame = c.frame[:0]
	c.output = nil
	c.outPos = 0
}

// flush returns held buffers on idx, drops partial work and confirms.
func (c *Component) flush(idx uint32) {
	c.mu.Lock()
	done := c.returnHeldLocked(idx)
	if idx == InputPort {
		c.frame = c.frame[:0]
	} else {
		c.output = nil
		c.outPos = 0
	}
	c.mu.Unlock()

	for _, fn := range done {
		fn()
	}
	c.cb.EventHandler(ports.EventCmdComplete, uint32(ports.CommandFlush), idx)
}
