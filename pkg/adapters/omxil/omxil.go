// Package omxil binds the Broadcom VideoCore OpenMAX IL implementation.
//
// The binding is compiled only on linux with cgo and the omx build tag
// (go build -tags omx), against the userland headers and libraries under
// /opt/vc. Other builds provide a Loader whose GetHandle always fails with
// ErrPlatformNotSupported.
package omxil

import "errors"

var (
	// ErrPlatformNotSupported is returned when the binary was built without OpenMAX IL.
	ErrPlatformNotSupported = errors.New("omxil: OpenMAX IL not available in this build")

	// ErrInitFailed is returned when OMX_Init fails.
	ErrInitFailed = errors.New("omxil: OMX_Init failed")

	// ErrUnknownBuffer is returned for a buffer header this binding did not allocate.
	ErrUnknownBuffer = errors.New("omxil: unknown buffer header")

	// ErrUnsupportedParameter is returned for a parameter struct the binding cannot marshal.
	ErrUnsupportedParameter = errors.New("omxil: unsupported parameter type")
)
