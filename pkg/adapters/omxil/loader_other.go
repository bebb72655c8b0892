//go:build !(linux && omx && cgo)

package omxil

import "github.com/user/omxjpeg/pkg/ports"

// Loader is a placeholder for builds without OpenMAX IL.
type Loader struct{}

// NewLoader creates a loader that cannot load anything.
func NewLoader() *Loader {
	return &Loader{}
}

// Available reports whether this build can load OpenMAX IL components.
func Available() bool {
	return false
}

// GetHandle always fails with ErrPlatformNotSupported.
func (l *Loader) GetHandle(name string, cb ports.Callbacks) (ports.Component, error) {
	return nil, ErrPlatformNotSupported
}

var _ ports.Loader = (*Loader)(nil)
