// Package ports defines interfaces for external dependencies.
package ports

// Component abstracts an OpenMAX IL style processing component.
// Commands complete asynchronously through the Callbacks registered when the
// component was acquired; every other method is synchronous.
type Component interface {
	// GetState returns the component's current state.
	GetState() (State, error)

	// SendCommand issues a command. Completion is reported later via
	// Callbacks.EventHandler with EventCmdComplete or EventError.
	SendCommand(cmd Command, param uint32) error

	// GetParameter fills param, which must be the structure matching index.
	GetParameter(index Index, param any) error

	// SetParameter applies param, which must be the structure matching index.
	SetParameter(index Index, param any) error

	// AllocateBuffer allocates a buffer of the given size bound to port.
	AllocateBuffer(port uint32, size uint32) (*BufferHeader, error)

	// FreeBuffer releases a buffer previously returned by AllocateBuffer.
	FreeBuffer(port uint32, buf *BufferHeader) error

	// EmptyThisBuffer hands a filled input buffer to the component.
	// Callbacks.EmptyBufferDone fires when the component is done with it.
	EmptyThisBuffer(buf *BufferHeader) error

	// FillThisBuffer hands an output buffer to the component.
	// Callbacks.FillBufferDone fires once it holds data.
	FillThisBuffer(buf *BufferHeader) error

	// FreeHandle releases the component. The component must be in StateLoaded.
	FreeHandle() error
}

// Callbacks receives asynchronous notifications from a Component.
// Implementations must be safe to call from any goroutine.
type Callbacks interface {
	EventHandler(event Event, data1, data2 uint32)
	EmptyBufferDone(buf *BufferHeader)
	FillBufferDone(buf *BufferHeader)
}

// Loader acquires components by symbolic name.
type Loader interface {
	GetHandle(name string, cb Callbacks) (Component, error)
}

// BufferHeader describes a buffer exchanged with a component.
type BufferHeader struct {
	Buffer    []byte // Backing memory, len(Buffer) == AllocLen
	AllocLen  uint32
	FilledLen uint32
	Offset    uint32
	Flags     uint32
	PortIndex uint32

	// Private is owned by the component implementation.
	Private any
}

// Data returns the filled window of the buffer.
func (b *BufferHeader) Data() []byte {
	end := b.Offset + b.FilledLen
	if end > uint32(len(b.Buffer)) {
		end = uint32(len(b.Buffer))
	}
	if b.Offset >= end {
		return nil
	}
	return b.Buffer[b.Offset:end]
}

// Buffer flags.
const (
	FlagEndOfStream uint32 = 0x00000001
	FlagDataCorrupt uint32 = 0x00000008
	FlagEndOfFrame  uint32 = 0x00000010
)

// PortParam answers IndexParamImageInit.
type PortParam struct {
	Ports           uint32
	StartPortNumber uint32
}

// PortDefinition answers IndexParamPortDefinition.
type PortDefinition struct {
	PortIndex         uint32
	Dir               Direction
	BufferCountActual uint32
	BufferCountMin    uint32
	BufferSize        uint32
	Enabled           bool
	Populated         bool
	Image             ImagePortFormat
}

// ImagePortFormat carries the image-domain fields of a port definition.
type ImagePortFormat struct {
	FrameWidth           uint32
	FrameHeight          uint32
	Stride               int32
	SliceHeight          uint32
	FlagErrorConcealment bool
	CompressionFormat    Coding
	ColorFormat          ColorFormat
}

// QFactor answers IndexParamQFactor.
type QFactor struct {
	PortIndex uint32
	QFactor   uint32
}

// ImageFormatParam answers IndexParamImagePortFormat. Querying with
// increasing Index enumerates the formats a port supports until the
// component returns ErrorNoMore.
type ImageFormatParam struct {
	PortIndex         uint32
	Index             uint32
	CompressionFormat Coding
	ColorFormat       ColorFormat
}
