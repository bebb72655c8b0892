package omx

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/omxjpeg/pkg/ports"
)

// SliceGranularity is the hardware slice height; input slices are either
// this many rows or the whole frame.
const SliceGranularity = 16

// maxPortFormats caps the ParamImagePortFormat enumeration.
const maxPortFormats = 256

// Ports holds the discovered image port indices.
type Ports struct {
	Input  uint32
	Output uint32
}

func (h *Handle) getParameter(index ports.Index, param any) error {
	if h.released {
		return ErrReleased
	}
	return wrapCall("get "+index.String(), h.comp.GetParameter(index, param))
}

func (h *Handle) setParameter(index ports.Index, param any) error {
	if h.released {
		return ErrReleased
	}
	return wrapCall("set "+index.String(), h.comp.SetParameter(index, param))
}

// PortDefinition returns the current definition of port.
func (h *Handle) PortDefinition(port uint32) (ports.PortDefinition, error) {
	def := ports.PortDefinition{PortIndex: port}
	err := h.getParameter(ports.IndexParamPortDefinition, &def)
	return def, err
}

// DiscoverPorts finds the single image input port and single image output port.
func (h *Handle) DiscoverPorts() (Ports, error) {
	var param ports.PortParam
	if err := h.getParameter(ports.IndexParamImageInit, &param); err != nil {
		return Ports{}, err
	}

	var found Ports
	var haveInput, haveOutput bool
	end := param.StartPortNumber + param.Ports
	for p := param.StartPortNumber; p < end; p++ {
		def, err := h.PortDefinition(p)
		if err != nil {
			return Ports{}, err
		}

		switch def.Dir {
		case ports.DirInput:
			if haveInput {
				return Ports{}, fmt.Errorf("%w: second input port %d (first %d)", ErrContractViolation, p, found.Input)
			}
			found.Input, haveInput = p, true
		case ports.DirOutput:
			if haveOutput {
				return Ports{}, fmt.Errorf("%w: second output port %d (first %d)", ErrContractViolation, p, found.Output)
			}
			found.Output, haveOutput = p, true
		default:
			return Ports{}, fmt.Errorf("%w: port %d has direction %s", ErrContractViolation, p, def.Dir)
		}
	}

	if !haveInput || !haveOutput {
		return Ports{}, fmt.Errorf("%w: component exposes %d image ports from %d, need one input and one output",
			ErrContractViolation, param.Ports, param.StartPortNumber)
	}

	h.log.Debug("Discovered ports: input %d, output %d", found.Input, found.Output)
	return found, nil
}

// SupportsColorFormat reports whether port lists format among its image formats.
func (h *Handle) SupportsColorFormat(port uint32, format ports.ColorFormat) (bool, error) {
	for i := uint32(0); i < maxPortFormats; i++ {
		param := ports.ImageFormatParam{PortIndex: port, Index: i}
		err := h.getParameter(ports.IndexParamImagePortFormat, &param)
		if errors.Is(err, ports.ErrorNoMore) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if param.ColorFormat == format {
			return true, nil
		}
	}
	return false, nil
}

// ConfigureInputPort sets the raw frame geometry and color format on port and
// returns the buffer size the component demands for it.
func (h *Handle) ConfigureInputPort(port, width, height, sliceHeight uint32, format ports.ColorFormat) (uint32, error) {
	if width == 0 || height == 0 {
		return 0, fmt.Errorf("%w: frame %dx%d", ErrRejectedParameters, width, height)
	}
	if sliceHeight != SliceGranularity && sliceHeight != height {
		return 0, fmt.Errorf("%w: slice height %d must be %d or the frame height %d",
			ErrRejectedParameters, sliceHeight, SliceGranularity, height)
	}

	ok, err := h.SupportsColorFormat(port, format)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s on port %d", ErrUnsupportedFormat, format, port)
	}

	def, err := h.PortDefinition(port)
	if err != nil {
		return 0, err
	}
	def.Image.FrameWidth = width
	def.Image.FrameHeight = height
	def.Image.SliceHeight = sliceHeight
	def.Image.Stride = 0
	def.Image.FlagErrorConcealment = false
	def.Image.CompressionFormat = ports.CodingUnused
	def.Image.ColorFormat = format
	if err := h.setParameter(ports.IndexParamPortDefinition, &def); err != nil {
		return 0, fmt.Errorf("%w: input port %d: %w", ErrRejectedParameters, port, err)
	}

	def, err = h.PortDefinition(port)
	if err != nil {
		return 0, err
	}
	if def.BufferSize == 0 {
		return 0, fmt.Errorf("%w: input port %d reports zero buffer size", ErrRejectedParameters, port)
	}

	h.log.Debug("Input port %d: %dx%d slice %d %s, buffer %d bytes",
		port, width, height, sliceHeight, format, def.BufferSize)
	return def.BufferSize, nil
}

// ConfigureOutputPort selects JPEG output at quality and returns the output
// buffer size the component demands.
func (h *Handle) ConfigureOutputPort(port, quality uint32) (uint32, error) {
	if quality < 1 || quality > 100 {
		return 0, fmt.Errorf("%w: quality %d outside [1,100]", ErrRejectedParameters, quality)
	}

	def, err := h.PortDefinition(port)
	if err != nil {
		return 0, err
	}
	def.Image.FlagErrorConcealment = false
	def.Image.CompressionFormat = ports.CodingJPEG
	def.Image.ColorFormat = ports.ColorFormatYUV420PackedPlanar
	if err := h.setParameter(ports.IndexParamPortDefinition, &def); err != nil {
		return 0, fmt.Errorf("%w: output port %d: %w", ErrRejectedParameters, port, err)
	}

	def, err = h.PortDefinition(port)
	if err != nil {
		return 0, err
	}
	if def.BufferSize == 0 {
		return 0, fmt.Errorf("%w: output port %d reports zero buffer size", ErrRejectedParameters, port)
	}

	q := ports.QFactor{PortIndex: port, QFactor: quality}
	if err := h.setParameter(ports.IndexParamQFactor, &q); err != nil {
		return 0, fmt.Errorf("%w: quality %d: %w", ErrRejectedParameters, quality, err)
	}

	h.log.Debug("Output port %d: JPEG quality %d, buffer %d bytes", port, quality, def.BufferSize)
	return def.BufferSize, nil
}

// BeginPortEnabled issues the enable or disable command for port without
// waiting. Components finish enabling once the port is populated and finish
// disabling once it is depopulated, so callers allocate or free in between
// and then call AwaitPortEnabled.
func (h *Handle) BeginPortEnabled(port uint32, enabled bool) error {
	h.log.Debug("Port %d enabled=%v", port, enabled)
	return h.Command(portCommand(enabled), port)
}

// AwaitPortEnabled waits for a command issued by BeginPortEnabled.
func (h *Handle) AwaitPortEnabled(ctx context.Context, port uint32, enabled bool) error {
	if err := h.Await(ctx, portCommand(enabled), port); err != nil {
		return fmt.Errorf("port %d enabled=%v: %w", port, enabled, err)
	}
	return nil
}

// SetPortEnabled toggles port and blocks until the component confirms.
func (h *Handle) SetPortEnabled(ctx context.Context, port uint32, enabled bool) error {
	if err := h.BeginPortEnabled(port, enabled); err != nil {
		return err
	}
	return h.AwaitPortEnabled(ctx, port, enabled)
}

func portCommand(enabled bool) ports.Command {
	if enabled {
		return ports.CommandPortEnable
	}
	return ports.CommandPortDisable
}

// Flush returns every buffer the component holds on the given ports and
// waits for each flush to complete. Error events raised while a flush is
// pending are dropped and counted. The command timeout bounds the whole
// flush.
func (h *Handle) Flush(ctx context.Context, portIndices ...uint32) error {
	parent := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	for _, p := range portIndices {
		if err := h.Command(ports.CommandFlush, p); err != nil {
			return err
		}
	}
	for _, p := range portIndices {
		if err := h.awaitFlush(ctx, p); err != nil {
			if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
				err = fmt.Errorf("%w after %s", ErrTimeout, h.timeout)
			}
			return fmt.Errorf("flush port %d: %w", p, err)
		}
	}
	return nil
}

func (h *Handle) awaitFlush(ctx context.Context, port uint32) error {
	for {
		err := h.Await(ctx, ports.CommandFlush, port)
		var event *EventError
		if !errors.As(err, &event) {
			return err
		}
		h.dropped++
		h.log.Warn("Dropping component error during flush of port %d: %v", port, err)
	}
}
