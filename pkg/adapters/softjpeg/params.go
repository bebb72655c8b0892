package softjpeg

import (
	"slices"

	"github.com/user/omxjpeg/pkg/ports"
	"github.com/user/omxjpeg/pkg/rawimage"
)

// inputGeometry returns the input buffer size and stride for img.
func (c *Component) inputGeometry(img ports.ImagePortFormat) (uint32, int32) {
	stride, err := rawimage.Stride(img.ColorFormat, int(img.FrameWidth))
	if err != nil {
		// Formats rawimage cannot describe are treated as 32 bits per pixel.
		stride = int(img.FrameWidth) * 4
	}
	size, err := rawimage.FrameSize(img.ColorFormat, int(img.FrameWidth), int(img.SliceHeight))
	if err != nil {
		size = stride * int(img.SliceHeight)
	}
	return uint32(size) + c.opts.BufferPadding, int32(stride)
}

// frameSizeLocked returns the byte size of a full input frame.
func (c *Component) frameSizeLocked() int {
	img := c.ports[InputPort].def.Image
	size, err := rawimage.FrameSize(img.ColorFormat, int(img.FrameWidth), int(img.FrameHeight))
	if err != nil {
		return int(img.FrameWidth) * 4 * int(img.FrameHeight)
	}
	return size
}

// GetParameter implements ports.Component.
func (c *Component) GetParameter(index ports.Index, param any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.freed {
		return ports.ErrorInvalidState
	}

	switch index {
	case ports.IndexParamImageInit:
		p, ok := param.(*ports.PortParam)
		if !ok {
			return ports.ErrorBadParameter
		}
		*p = ports.PortParam{Ports: 2, StartPortNumber: InputPort}
		return nil

	case ports.IndexParamPortDefinition:
		p, ok := param.(*ports.PortDefinition)
		if !ok {
			return ports.ErrorBadParameter
		}
		pt, ok := c.ports[p.PortIndex]
		if !ok {
			return ports.ErrorBadPortIndex
		}
		*p = pt.def
		p.Populated = pt.populated()
		return nil

	case ports.IndexParamImagePortFormat:
		p, ok := param.(*ports.ImageFormatParam)
		if !ok {
			return ports.ErrorBadParameter
		}
		switch p.PortIndex {
		case InputPort:
			if int(p.Index) >= len(c.formats) {
				return ports.ErrorNoMore
			}
			p.CompressionFormat = ports.CodingUnused
			p.ColorFormat = c.formats[p.Index]
		case OutputPort:
			if p.Index > 0 {
				return ports.ErrorNoMore
			}
			p.CompressionFormat = ports.CodingJPEG
			p.ColorFormat = ports.ColorFormatUnused
		default:
			return ports.ErrorBadPortIndex
		}
		return nil

	case ports.IndexParamQFactor:
		p, ok := param.(*ports.QFactor)
		if !ok {
			return ports.ErrorBadParameter
		}
		if p.PortIndex != OutputPort {
			return ports.ErrorBadPortIndex
		}
		p.QFactor = c.quality
		return nil
	}
	return ports.ErrorUnsupportedIndex
}

// SetParameter implements ports.Component.
func (c *Component) SetParameter(index ports.Index, param any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.freed {
		return ports.ErrorInvalidState
	}

	switch index {
	case ports.IndexParamPortDefinition:
		p, ok := param.(*ports.PortDefinition)
		if !ok {
			return ports.ErrorBadParameter
		}
		return c.setPortDefinitionLocked(*p)

	case ports.IndexParamQFactor:
		p, ok := param.(*ports.QFactor)
		if !ok {
			return ports.ErrorBadParameter
		}
		if p.PortIndex != OutputPort {
			return ports.ErrorBadPortIndex
		}
		if p.QFactor < 1 || p.QFactor > 100 {
			return ports.ErrorBadParameter
		}
		c.quality = p.QFactor
		return nil
	}
	return ports.ErrorUnsupportedIndex
}

func (c *Component) setPortDefinitionLocked(def ports.PortDefinition) error {
	pt, ok := c.ports[def.PortIndex]
	if !ok {
		return ports.ErrorBadPortIndex
	}
	if c.opts.FailSetDefinition {
		return ports.ErrorBadParameter
	}
	if c.state != ports.StateLoaded && pt.def.Enabled {
		return ports.ErrorIncorrectStateOperation
	}

	img := def.Image
	switch def.PortIndex {
	case InputPort:
		if img.FrameWidth == 0 || img.FrameHeight == 0 {
			return ports.ErrorBadParameter
		}
		if img.CompressionFormat != ports.CodingUnused {
			return ports.ErrorUnsupportedSetting
		}
		if !slices.Contains(c.formats, img.ColorFormat) {
			return ports.ErrorUnsupportedSetting
		}
		if img.SliceHeight == 0 || img.SliceHeight > img.FrameHeight {
			img.SliceHeight = img.FrameHeight
		}
		pt.def.Image = img
		pt.def.BufferSize, pt.def.Image.Stride = c.inputGeometry(img)

		out := &c.ports[OutputPort].def.Image
		out.FrameWidth = img.FrameWidth
		out.FrameHeight = img.FrameHeight

	case OutputPort:
		if img.CompressionFormat != ports.CodingJPEG {
			return ports.ErrorUnsupportedSetting
		}
		pt.def.Image.CompressionFormat = img.CompressionFormat
		pt.def.Image.ColorFormat = img.ColorFormat
		pt.def.Image.FlagErrorConcealment = img.FlagErrorConcealment
		pt.def.BufferSize = c.opts.outputBufferSize()
	}
	return nil
}
