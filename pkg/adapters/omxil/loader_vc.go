//go:build linux && omx && cgo

package omxil

/*
#cgo CFLAGS: -I/opt/vc/include -I/opt/vc/include/interface/vcos/pthreads -I/opt/vc/include/interface/vmcs_host/linux -DOMX_SKIP64BIT
#cgo LDFLAGS: -L/opt/vc/lib -lopenmaxil -lbcm_host -lvcos -lpthread

#include <stdint.h>
#include <stdlib.h>
#include <string.h>
#include <bcm_host.h>
#include <IL/OMX_Core.h>
#include <IL/OMX_Component.h>
#include <IL/OMX_Image.h>
#include <IL/OMX_Broadcom.h>

extern OMX_ERRORTYPE goEventHandler(OMX_HANDLETYPE, OMX_PTR, OMX_EVENTTYPE, OMX_U32, OMX_U32, OMX_PTR);
extern OMX_ERRORTYPE goEmptyBufferDone(OMX_HANDLETYPE, OMX_PTR, OMX_BUFFERHEADERTYPE *);
extern OMX_ERRORTYPE goFillBufferDone(OMX_HANDLETYPE, OMX_PTR, OMX_BUFFERHEADERTYPE *);

static OMX_CALLBACKTYPE callbacks = {
    .EventHandler = goEventHandler,
    .EmptyBufferDone = goEmptyBufferDone,
    .FillBufferDone = goFillBufferDone,
};

static OMX_ERRORTYPE platform_init(void) {
    bcm_host_init();
    return OMX_Init();
}

static OMX_ERRORTYPE get_handle(OMX_HANDLETYPE *h, char *name, uintptr_t app) {
    return OMX_GetHandle(h, name, (OMX_PTR)app, &callbacks);
}

// OMX_INIT_STRUCTURE for each parameter struct used.
#define DEFINE_INIT(T) \
    static void init_##T(T *p) { \
        memset(p, 0, sizeof(T)); \
        p->nSize = sizeof(T); \
        p->nVersion.s.nVersionMajor = OMX_VERSION_MAJOR; \
        p->nVersion.s.nVersionMinor = OMX_VERSION_MINOR; \
        p->nVersion.s.nRevision = OMX_VERSION_REVISION; \
        p->nVersion.s.nStep = OMX_VERSION_STEP; \
    }
DEFINE_INIT(OMX_PORT_PARAM_TYPE)
DEFINE_INIT(OMX_PARAM_PORTDEFINITIONTYPE)
DEFINE_INIT(OMX_IMAGE_PARAM_QFACTORTYPE)
DEFINE_INIT(OMX_IMAGE_PARAM_PORTFORMATTYPE)

static OMX_IMAGE_PORTDEFINITIONTYPE *image_def(OMX_PARAM_PORTDEFINITIONTYPE *d) {
    return &d->format.image;
}

// The component entry points are macros in OMX_Core.h.
static OMX_ERRORTYPE get_state(OMX_HANDLETYPE h, OMX_STATETYPE *s) {
    return OMX_GetState(h, s);
}
static OMX_ERRORTYPE send_command(OMX_HANDLETYPE h, OMX_COMMANDTYPE c, OMX_U32 p) {
    return OMX_SendCommand(h, c, p, NULL);
}
static OMX_ERRORTYPE get_parameter(OMX_HANDLETYPE h, OMX_INDEXTYPE i, void *p) {
    return OMX_GetParameter(h, i, p);
}
static OMX_ERRORTYPE set_parameter(OMX_HANDLETYPE h, OMX_INDEXTYPE i, void *p) {
    return OMX_SetParameter(h, i, p);
}
static OMX_ERRORTYPE allocate_buffer(OMX_HANDLETYPE h, OMX_BUFFERHEADERTYPE **b, OMX_U32 port, OMX_U32 size) {
    return OMX_AllocateBuffer(h, b, port, NULL, size);
}
static OMX_ERRORTYPE free_buffer(OMX_HANDLETYPE h, OMX_U32 port, OMX_BUFFERHEADERTYPE *b) {
    return OMX_FreeBuffer(h, port, b);
}
static OMX_ERRORTYPE empty_this_buffer(OMX_HANDLETYPE h, OMX_BUFFERHEADERTYPE *b) {
    return OMX_EmptyThisBuffer(h, b);
}
static OMX_ERRORTYPE fill_this_buffer(OMX_HANDLETYPE h, OMX_BUFFERHEADERTYPE *b) {
    return OMX_FillThisBuffer(h, b);
}
*/
import "C"

import (
	"fmt"
	"runtime/cgo"
	"sync"
	"unsafe"

	"github.com/user/omxjpeg/pkg/ports"
)

var (
	initOnce sync.Once
	initErr  error
)

func platformInit() error {
	initOnce.Do(func() {
		if code := C.platform_init(); code != C.OMX_ErrorNone {
			initErr = fmt.Errorf("%w: %w", ErrInitFailed, ports.ErrorCode(code))
		}
	})
	return initErr
}

// Loader acquires VideoCore components.
type Loader struct{}

// NewLoader creates a VideoCore loader. OMX_Init runs on first use.
func NewLoader() *Loader {
	return &Loader{}
}

// Available reports whether this build can load OpenMAX IL components.
func Available() bool {
	return true
}

// GetHandle implements ports.Loader.
func (l *Loader) GetHandle(name string, cb ports.Callbacks) (ports.Component, error) {
	if err := platformInit(); err != nil {
		return nil, err
	}

	c := &component{
		cb:      cb,
		buffers: make(map[*C.OMX_BUFFERHEADERTYPE]*ports.BufferHeader),
	}
	c.self = cgo.NewHandle(c)

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	if code := C.get_handle(&c.handle, cname, C.uintptr_t(c.self)); code != C.OMX_ErrorNone {
		c.self.Delete()
		return nil, ports.ErrorCode(code)
	}
	return c, nil
}

// component is one VideoCore component handle.
type component struct {
	handle C.OMX_HANDLETYPE
	self   cgo.Handle
	cb     ports.Callbacks

	mu      sync.Mutex
	buffers map[*C.OMX_BUFFERHEADERTYPE]*ports.BufferHeader
}

func check(code C.OMX_ERRORTYPE) error {
	if code == C.OMX_ErrorNone {
		return nil
	}
	return ports.ErrorCode(code)
}

func omxBool(b bool) C.OMX_BOOL {
	if b {
		return C.OMX_TRUE
	}
	return C.OMX_FALSE
}

func (c *component) GetState() (ports.State, error) {
	var s C.OMX_STATETYPE
	if err := check(C.get_state(c.handle, &s)); err != nil {
		return ports.StateInvalid, err
	}
	return ports.State(s), nil
}

func (c *component) SendCommand(cmd ports.Command, param uint32) error {
	return check(C.send_command(c.handle, C.OMX_COMMANDTYPE(cmd), C.OMX_U32(param)))
}

func (c *component) GetParameter(index ports.Index, param any) error {
	idx := C.OMX_INDEXTYPE(index)
	switch p := param.(type) {
	case *ports.PortParam:
		var s C.OMX_PORT_PARAM_TYPE
		C.init_OMX_PORT_PARAM_TYPE(&s)
		if err := check(C.get_parameter(c.handle, idx, unsafe.Pointer(&s))); err != nil {
			return err
		}
		p.Ports = uint32(s.nPorts)
		p.StartPortNumber = uint32(s.nStartPortNumber)

	case *ports.PortDefinition:
		var s C.OMX_PARAM_PORTDEFINITIONTYPE
		if err := c.getPortDefinition(p.PortIndex, &s); err != nil {
			return err
		}
		img := C.image_def(&s)
		*p = ports.PortDefinition{
			PortIndex:         uint32(s.nPortIndex),
			Dir:               ports.Direction(s.eDir),
			BufferCountActual: uint32(s.nBufferCountActual),
			BufferCountMin:    uint32(s.nBufferCountMin),
			BufferSize:        uint32(s.nBufferSize),
			Enabled:           s.bEnabled == C.OMX_TRUE,
			Populated:         s.bPopulated == C.OMX_TRUE,
			Image: ports.ImagePortFormat{
				FrameWidth:           uint32(img.nFrameWidth),
				FrameHeight:          uint32(img.nFrameHeight),
				Stride:               int32(img.nStride),
				SliceHeight:          uint32(img.nSliceHeight),
				FlagErrorConcealment: img.bFlagErrorConcealment == C.OMX_TRUE,
				CompressionFormat:    ports.Coding(img.eCompressionFormat),
				ColorFormat:          ports.ColorFormat(img.eColorFormat),
			},
		}

	case *ports.QFactor:
		var s C.OMX_IMAGE_PARAM_QFACTORTYPE
		C.init_OMX_IMAGE_PARAM_QFACTORTYPE(&s)
		s.nPortIndex = C.OMX_U32(p.PortIndex)
		if err := check(C.get_parameter(c.handle, idx, unsafe.Pointer(&s))); err != nil {
			return err
		}
		p.QFactor = uint32(s.nQFactor)

	case *ports.ImageFormatParam:
		var s C.OMX_IMAGE_PARAM_PORTFORMATTYPE
		C.init_OMX_IMAGE_PARAM_PORTFORMATTYPE(&s)
		s.nPortIndex = C.OMX_U32(p.PortIndex)
		s.nIndex = C.OMX_U32(p.Index)
		if err := check(C.get_parameter(c.handle, idx, unsafe.Pointer(&s))); err != nil {
			return err
		}
		p.CompressionFormat = ports.Coding(s.eCompressionFormat)
		p.ColorFormat = ports.ColorFormat(s.eColorFormat)

	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedParameter, param)
	}
	return nil
}

func (c *component) getPortDefinition(port uint32, s *C.OMX_PARAM_PORTDEFINITIONTYPE) error {
	C.init_OMX_PARAM_PORTDEFINITIONTYPE(s)
	s.nPortIndex = C.OMX_U32(port)
	return check(C.get_parameter(c.handle, C.OMX_IndexParamPortDefinition, unsafe.Pointer(s)))
}

func (c *component) SetParameter(index ports.Index, param any) error {
	idx := C.OMX_INDEXTYPE(index)
	switch p := param.(type) {
	case *ports.PortDefinition:
		// Start from the component's own definition so fields not mirrored
		// in ports.PortDefinition keep their values.
		var s C.OMX_PARAM_PORTDEFINITIONTYPE
		if err := c.getPortDefinition(p.PortIndex, &s); err != nil {
			return err
		}
		s.nBufferCountActual = C.OMX_U32(p.BufferCountActual)
		img := C.image_def(&s)
		img.nFrameWidth = C.OMX_U32(p.Image.FrameWidth)
		img.nFrameHeight = C.OMX_U32(p.Image.FrameHeight)
		img.nStride = C.OMX_S32(p.Image.Stride)
		img.nSliceHeight = C.OMX_U32(p.Image.SliceHeight)
		img.bFlagErrorConcealment = omxBool(p.Image.FlagErrorConcealment)
		img.eCompressionFormat = C.OMX_IMAGE_CODINGTYPE(p.Image.CompressionFormat)
		img.eColorFormat = C.OMX_COLOR_FORMATTYPE(p.Image.ColorFormat)
		return check(C.set_parameter(c.handle, idx, unsafe.Pointer(&s)))

	case *ports.QFactor:
		var s C.OMX_IMAGE_PARAM_QFACTORTYPE
		C.init_OMX_IMAGE_PARAM_QFACTORTYPE(&s)
		s.nPortIndex = C.OMX_U32(p.PortIndex)
		s.nQFactor = C.OMX_U32(p.QFactor)
		return check(C.set_parameter(c.handle, idx, unsafe.Pointer(&s)))

	case *ports.ImageFormatParam:
		var s C.OMX_IMAGE_PARAM_PORTFORMATTYPE
		C.init_OMX_IMAGE_PARAM_PORTFORMATTYPE(&s)
		s.nPortIndex = C.OMX_U32(p.PortIndex)
		s.nIndex = C.OMX_U32(p.Index)
		s.eCompressionFormat = C.OMX_IMAGE_CODINGTYPE(p.CompressionFormat)
		s.eColorFormat = C.OMX_COLOR_FORMATTYPE(p.ColorFormat)
		return check(C.set_parameter(c.handle, idx, unsafe.Pointer(&s)))
	}
	return fmt.Errorf("%w: %T", ErrUnsupportedParameter, param)
}

func (c *component) AllocateBuffer(port, size uint32) (*ports.BufferHeader, error) {
	var hdr *C.OMX_BUFFERHEADERTYPE
	if err := check(C.allocate_buffer(c.handle, &hdr, C.OMX_U32(port), C.OMX_U32(size))); err != nil {
		return nil, err
	}

	buf := &ports.BufferHeader{
		Buffer:    unsafe.Slice((*byte)(unsafe.Pointer(hdr.pBuffer)), int(hdr.nAllocLen)),
		AllocLen:  uint32(hdr.nAllocLen),
		PortIndex: port,
		Private:   hdr,
	}
	c.mu.Lock()
	c.buffers[hdr] = buf
	c.mu.Unlock()
	return buf, nil
}

func header(buf *ports.BufferHeader) (*C.OMX_BUFFERHEADERTYPE, error) {
	if buf == nil {
		return nil, ErrUnknownBuffer
	}
	hdr, ok := buf.Private.(*C.OMX_BUFFERHEADERTYPE)
	if !ok || hdr == nil {
		return nil, ErrUnknownBuffer
	}
	return hdr, nil
}

func (c *component) FreeBuffer(port uint32, buf *ports.BufferHeader) error {
	hdr, err := header(buf)
	if err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.buffers, hdr)
	c.mu.Unlock()
	buf.Buffer = nil
	return check(C.free_buffer(c.handle, C.OMX_U32(port), hdr))
}

func (c *component) EmptyThisBuffer(buf *ports.BufferHeader) error {
	hdr, err := header(buf)
	if err != nil {
		return err
	}
	hdr.nFilledLen = C.OMX_U32(buf.FilledLen)
	hdr.nOffset = C.OMX_U32(buf.Offset)
	hdr.nFlags = C.OMX_U32(buf.Flags)
	return check(C.empty_this_buffer(c.handle, hdr))
}

func (c *component) FillThisBuffer(buf *ports.BufferHeader) error {
	hdr, err := header(buf)
	if err != nil {
		return err
	}
	hdr.nFilledLen = 0
	hdr.nOffset = 0
	hdr.nFlags = 0
	return check(C.fill_this_buffer(c.handle, hdr))
}

func (c *component) FreeHandle() error {
	if err := check(C.OMX_FreeHandle(c.handle)); err != nil {
		return err
	}
	c.self.Delete()
	return nil
}

// lookup returns the Go header mirroring hdr, with the fields the
// component may have changed copied over.
func (c *component) lookup(hdr *C.OMX_BUFFERHEADERTYPE) *ports.BufferHeader {
	c.mu.Lock()
	buf := c.buffers[hdr]
	c.mu.Unlock()
	if buf == nil {
		return nil
	}
	buf.FilledLen = uint32(hdr.nFilledLen)
	buf.Offset = uint32(hdr.nOffset)
	buf.Flags = uint32(hdr.nFlags)
	return buf
}

var _ ports.Loader = (*Loader)(nil)
