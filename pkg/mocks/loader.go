package mocks

import (
	"github.com/user/omxjpeg/pkg/ports"
)

// Loader is a mock implementation of ports.Loader.
type Loader struct {
	GetHandleFunc func(name string, cb ports.Callbacks) (ports.Component, error)

	// Recorded calls for verification
	Names     []string
	Callbacks ports.Callbacks
}

func (m *Loader) GetHandle(name string, cb ports.Callbacks) (ports.Component, error) {
	m.Names = append(m.Names, name)
	m.Callbacks = cb
	if m.GetHandleFunc != nil {
		return m.GetHandleFunc(name, cb)
	}
	return &Component{}, nil
}

// Component is a mock implementation of ports.Component.
// Unset funcs succeed; GetState reports StateLoaded.
type Component struct {
	GetStateFunc        func() (ports.State, error)
	SendCommandFunc     func(cmd ports.Command, param uint32) error
	GetParameterFunc    func(index ports.Index, param any) error
	SetParameterFunc    func(index ports.Index, param any) error
	AllocateBufferFunc  func(port, size uint32) (*ports.BufferHeader, error)
	FreeBufferFunc      func(port uint32, buf *ports.BufferHeader) error
	EmptyThisBufferFunc func(buf *ports.BufferHeader) error
	FillThisBufferFunc  func(buf *ports.BufferHeader) error
	FreeHandleFunc      func() error

	// Recorded calls for verification
	Commands      []CommandCall
	SetParameters []ports.Index
	Allocated     int
	Freed         int
	HandleFreed   bool
}

// CommandCall records a call to SendCommand.
type CommandCall struct {
	Cmd   ports.Command
	Param uint32
}

func (m *Component) GetState() (ports.State, error) {
	if m.GetStateFunc != nil {
		return m.GetStateFunc()
	}
	return ports.StateLoaded, nil
}

func (m *Component) SendCommand(cmd ports.Command, param uint32) error {
	m.Commands = append(m.Commands, CommandCall{Cmd: cmd, Param: param})
	if m.SendCommandFunc != nil {
		return m.SendCommandFunc(cmd, param)
	}
	return nil
}

func (m *Component) GetParameter(index ports.Index, param any) error {
	if m.GetParameterFunc != nil {
		return m.GetParameterFunc(index, param)
	}
	return nil
}

func (m *Component) SetParameter(index ports.Index, param any) error {
	m.SetParameters = append(m.SetParameters, index)
	if m.SetParameterFunc != nil {
		return m.SetParameterFunc(index, param)
	}
	return nil
}

func (m *Component) AllocateBuffer(port, size uint32) (*ports.BufferHeader, error) {
	m.Allocated++
	if m.AllocateBufferFunc != nil {
		return m.AllocateBufferFunc(port, size)
	}
	return &ports.BufferHeader{Buffer: make([]byte, size), AllocLen: size, PortIndex: port}, nil
}

func (m *Component) FreeBuffer(port uint32, buf *ports.BufferHeader) error {
	m.Freed++
	if m.FreeBufferFunc != nil {
		return m.FreeBufferFunc(port, buf)
	}
	return nil
}

func (m *Component) EmptyThisBuffer(buf *ports.BufferHeader) error {
	if m.EmptyThisBufferFunc != nil {
		return m.EmptyThisBufferFunc(buf)
	}
	return nil
}

func (m *Component) FillThisBuffer(buf *ports.BufferHeader) error {
	if m.FillThisBufferFunc != nil {
		return m.FillThisBufferFunc(buf)
	}
	return nil
}

func (m *Component) FreeHandle() error {
	m.HandleFreed = true
	if m.FreeHandleFunc != nil {
		return m.FreeHandleFunc()
	}
	return nil
}

var (
	_ ports.Loader    = (*Loader)(nil)
	_ ports.Component = (*Component)(nil)
)
