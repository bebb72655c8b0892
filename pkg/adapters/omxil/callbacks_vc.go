//go:build linux && omx && cgo

package omxil

/*
#include <IL/OMX_Core.h>
*/
import "C"

import (
	"runtime/cgo"

	"github.com/user/omxjpeg/pkg/ports"
)

// fromApp recovers the component registered as pAppData.
func fromApp(app C.OMX_PTR) *component {
	return cgo.Handle(uintptr(app)).Value().(*component)
}

//export goEventHandler
func goEventHandler(h C.OMX_HANDLETYPE, app C.OMX_PTR, event C.OMX_EVENTTYPE, data1, data2 C.OMX_U32, data C.OMX_PTR) C.OMX_ERRORTYPE {
	c := fromApp(app)
	c.cb.EventHandler(ports.Event(event), uint32(data1), uint32(data2))
	return C.OMX_ErrorNone
}

//export goEmptyBufferDone
func goEmptyBufferDone(h C.OMX_HANDLETYPE, app C.OMX_PTR, hdr *C.OMX_BUFFERHEADERTYPE) C.OMX_ERRORTYPE {
	c := fromApp(app)
	if buf := c.lookup(hdr); buf != nil {
		c.cb.EmptyBufferDone(buf)
	}
	return C.OMX_ErrorNone
}

//export goFillBufferDone
func goFillBufferDone(h C.OMX_HANDLETYPE, app C.OMX_PTR, hdr *C.OMX_BUFFERHEADERTYPE) C.OMX_ERRORTYPE {
	c := fromApp(app)
	if buf := c.lookup(hdr); buf != nil {
		c.cb.FillBufferDone(buf)
	}
	return C.OMX_ErrorNone
}
