package softjpeg

import (
	"bytes"
	"image/jpeg"
	"slices"

	"github.com/user/omxjpeg/pkg/ports"
	"github.com/user/omxjpeg/pkg/rawimage"
)

// AllocateBuffer implements ports.Component.
func (c *Component) AllocateBuffer(idx uint32, size uint32) (*ports.BufferHeader, error) {
	c.mu.Lock()
	if c.freed {
		c.mu.Unlock()
		return nil, ports.ErrorInvalidState
	}
	p, ok := c.ports[idx]
	if !ok {
		c.mu.Unlock()
		return nil, ports.ErrorBadPortIndex
	}

	toIdle := c.state == ports.StateLoaded && c.pendingState != nil && *c.pendingState == ports.StateIdle
	if !p.def.Enabled || (c.state == ports.StateLoaded && !toIdle) {
		c.mu.Unlock()
		return nil, ports.ErrorIncorrectStateOperation
	}
	if size < p.def.BufferSize {
		c.mu.Unlock()
		return nil, ports.ErrorBadParameter
	}
	if c.opts.MaxBuffers > 0 && c.live >= c.opts.MaxBuffers {
		c.mu.Unlock()
		return nil, ports.ErrorInsufficientResources
	}

	buf := &ports.BufferHeader{
		Buffer:    make([]byte, size),
		AllocLen:  size,
		PortIndex: idx,
	}
	p.buffers = append(p.buffers, buf)
	c.live++
	c.stats.Allocs++
	c.mu.Unlock()

	c.enqueue(c.reconcile)
	return buf, nil
}

// FreeBuffer implements ports.Component.
func (c *Component) FreeBuffer(idx uint32, buf *ports.BufferHeader) error {
	c.mu.Lock()
	if c.freed {
		c.mu.Unlock()
		return ports.ErrorInvalidState
	}
	p, ok := c.ports[idx]
	if !ok {
		c.mu.Unlock()
		return ports.ErrorBadPortIndex
	}
	i := slices.Index(p.buffers, buf)
	if i < 0 {
		c.mu.Unlock()
		return ports.ErrorBadParameter
	}
	p.buffers = slices.Delete(p.buffers, i, i+1)
	if p.held == buf {
		p.held = nil
	}
	c.live--
	c.stats.Frees++

	enable, pending := c.pendingPorts[idx]
	disabling := pending && !enable
	unloading := c.pendingState != nil && *c.pendingState == ports.StateLoaded
	unpopulated := p.def.Enabled && !disabling && !unloading && c.state != ports.StateLoaded
	c.mu.Unlock()

	if unpopulated {
		c.raise(ports.ErrorPortUnpopulated, idx)
	}
	c.enqueue(c.reconcile)
	return nil
}

// EmptyThisBuffer implements ports.Component.
func (c *Component) EmptyThisBuffer(buf *ports.BufferHeader) error {
	if err := c.take(InputPort, buf); err != nil {
		return err
	}
	c.enqueue(func() { c.consume(buf) })
	return nil
}

// FillThisBuffer implements ports.Component.
func (c *Component) FillThisBuffer(buf *ports.BufferHeader) error {
	if err := c.take(OutputPort, buf); err != nil {
		return err
	}
	c.enqueue(c.deliver)
	return nil
}

// take transfers ownership of buf to the component.
func (c *Component) take(idx uint32, buf *ports.BufferHeader) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.freed {
		return ports.ErrorInvalidState
	}
	if c.state != ports.StateExecuting {
		return ports.ErrorIncorrectStateOperation
	}
	if buf == nil || buf.PortIndex != idx {
		return ports.ErrorBadPortIndex
	}
	p := c.ports[idx]
	if !p.def.Enabled || !slices.Contains(p.buffers, buf) {
		return ports.ErrorBadParameter
	}
	if p.held != nil {
		return ports.ErrorNotReady
	}
	p.held = buf
	return nil
}

// consume appends an input slice to the current frame, encodes the frame
// once complete and returns the buffer.
func (c *Component) consume(buf *ports.BufferHeader) {
	c.mu.Lock()
	p := c.ports[InputPort]
	if p.held != buf {
		// Flushed or returned by a state change in the meantime.
		c.mu.Unlock()
		return
	}
	if n := c.opts.StallAfterSlices; n > 0 && !c.stallFired && c.stats.Slices == n {
		c.stallFired = true
		c.mu.Unlock()
		return
	}

	c.frame = append(c.frame, buf.Data()...)
	c.stats.Slices++

	var fault *Fault
	if len(c.faults) > 0 && c.stats.Slices >= c.faults[0].AfterSlices {
		f := c.faults[0]
		c.faults = c.faults[1:]
		fault = &f
	}

	var raw []byte
	var img ports.ImagePortFormat
	if size := c.frameSizeLocked(); len(c.frame) >= size {
		raw = slices.Clone(c.frame[:size])
		img = p.def.Image
		c.frame = c.frame[:0]
	}
	quality := c.quality
	p.held = nil
	c.mu.Unlock()

	if fault != nil {
		c.cb.EventHandler(ports.EventError, uint32(fault.Code), InputPort)
	}
	c.cb.EmptyBufferDone(buf)

	if raw == nil {
		return
	}
	out, err := encode(raw, img, quality)
	if err != nil {
		c.cb.EventHandler(ports.EventError, uint32(ports.ErrorUndefined), OutputPort)
		return
	}

	c.mu.Lock()
	c.output = out
	c.outPos = 0
	c.stats.Frames++
	c.mu.Unlock()
	c.deliver()
}

// deliver copies pending bitstream into a held output buffer.
func (c *Component) deliver() {
	c.mu.Lock()
	p := c.ports[OutputPort]
	buf := p.held
	if buf == nil || c.output == nil {
		c.mu.Unlock()
		return
	}

	n := copy(buf.Buffer, c.output[c.outPos:])
	buf.Offset = 0
	buf.FilledLen = uint32(n)
	buf.Flags = 0
	c.outPos += n
	if c.outPos >= len(c.output) {
		buf.Flags |= ports.FlagEndOfFrame
		c.output = nil
		c.outPos = 0
	}
	p.held = nil
	c.mu.Unlock()

	c.cb.FillBufferDone(buf)
}

func encode(raw []byte, img ports.ImagePortFormat, quality uint32) ([]byte, error) {
	src, err := rawimage.Unpack(raw, img.ColorFormat, int(img.FrameWidth), int(img.FrameHeight))
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := jpeg.Encode(&out, src, &jpeg.Options{Quality: int(quality)}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
