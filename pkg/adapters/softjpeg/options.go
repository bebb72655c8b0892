package softjpeg

import (
	"time"

	"github.com/user/omxjpeg/pkg/ports"
)

// Fault raises an asynchronous error event once AfterSlices input buffers
// have been consumed.
type Fault struct {
	AfterSlices int
	Code        ports.ErrorCode
}

// Options configures the software component.
type Options struct {
	// Name is accepted by GetHandle in addition to ComponentName.
	Name string

	// Formats lists the input color formats advertised on the input port.
	// Empty selects every format rawimage can unpack.
	Formats []ports.ColorFormat

	// BufferPadding is added to the natural input buffer size.
	BufferPadding uint32

	// OutputBufferSize is the output port buffer size. Zero selects DefaultOutputBufferSize.
	OutputBufferSize uint32

	// MaxBuffers limits live buffers across both ports. Zero means unlimited.
	MaxBuffers int

	// FailSetDefinition makes every port definition update fail.
	FailSetDefinition bool

	// Faults are raised in order as slices are consumed. Each fires once.
	Faults []Fault

	// StallAfterSlices stops returning input buffers after that many slices. Zero never stalls.
	StallAfterSlices int

	// Latency delays every asynchronous callback.
	Latency time.Duration
}

func (o Options) outputBufferSize() uint32 {
	if o.OutputBufferSize == 0 {
		return DefaultOutputBufferSize
	}
	return o.OutputBufferSize
}
