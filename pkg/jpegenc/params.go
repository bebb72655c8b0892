package jpegenc

import (
	"fmt"
	"time"

	"github.com/user/omxjpeg/pkg/omx"
	"github.com/user/omxjpeg/pkg/ports"
)

// DefaultComponentName is the VideoCore image encoder.
const DefaultComponentName = "OMX.broadcom.image_encode"

// DefaultStreamTimeout bounds each wait for a buffer to come back.
const DefaultStreamTimeout = 10 * time.Second

// Params are the encoding parameters fixed at Init.
type Params struct {
	Width  uint32
	Height uint32
	// SliceHeight is 16 or Height. Zero selects Height.
	SliceHeight uint32
	// Quality is the JPEG quality factor in [1,100].
	Quality     uint32
	ColorFormat ports.ColorFormat
	// ComponentName defaults to DefaultComponentName.
	ComponentName string
}

// withDefaults fills zero-valued optional fields.
func (p Params) withDefaults() Params {
	if p.SliceHeight == 0 {
		p.SliceHeight = p.Height
	}
	if p.ComponentName == "" {
		p.ComponentName = DefaultComponentName
	}
	return p
}

// Validate checks p before any component call is made.
func (p Params) Validate() error {
	p = p.withDefaults()
	if p.Width == 0 || p.Height == 0 {
		return fmt.Errorf("%w: frame %dx%d", ErrInvalidParams, p.Width, p.Height)
	}
	if p.SliceHeight != omx.SliceGranularity && p.SliceHeight != p.Height {
		return fmt.Errorf("%w: slice height %d must be %d or the frame height %d",
			ErrInvalidParams, p.SliceHeight, omx.SliceGranularity, p.Height)
	}
	if p.Quality < 1 || p.Quality > 100 {
		return fmt.Errorf("%w: quality %d outside [1,100]", ErrInvalidParams, p.Quality)
	}
	if p.ColorFormat == ports.ColorFormatUnused {
		return fmt.Errorf("%w: no color format", ErrInvalidParams)
	}
	return nil
}

// Options configures an Encoder.
type Options struct {
	// CommandTimeout bounds state changes, port commands and flushes.
	// Zero selects omx.DefaultCommandTimeout; negative waits forever.
	CommandTimeout time.Duration
	// StreamTimeout bounds each wait for an input or output buffer.
	// Zero selects DefaultStreamTimeout; negative waits forever.
	StreamTimeout time.Duration
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		CommandTimeout: omx.DefaultCommandTimeout,
		StreamTimeout:  DefaultStreamTimeout,
	}
}

func (o Options) streamTimeout() time.Duration {
	switch {
	case o.StreamTimeout == 0:
		return DefaultStreamTimeout
	case o.StreamTimeout < 0:
		return 0
	}
	return o.StreamTimeout
}
