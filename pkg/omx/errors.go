package omx

import (
	"errors"
	"fmt"

	"github.com/user/omxjpeg/pkg/ports"
)

var (
	// ErrNotFound is returned when the loader does not know the component name.
	ErrNotFound = errors.New("omx: component not found")

	// ErrResourceExhausted is returned when the component cannot allocate a handle or buffer.
	ErrResourceExhausted = errors.New("omx: resources exhausted")

	// ErrInvalidTransition is returned for a state change outside Loaded<->Idle<->Executing.
	ErrInvalidTransition = errors.New("omx: invalid state transition")

	// ErrComponent wraps every asynchronous error event except stream corruption.
	ErrComponent = errors.New("omx: component error")

	// ErrRejectedParameters is returned when the component refuses a port configuration.
	ErrRejectedParameters = errors.New("omx: parameters rejected")

	// ErrUnsupportedFormat is returned when a port does not list the requested color format.
	ErrUnsupportedFormat = errors.New("omx: unsupported color format")

	// ErrContractViolation is returned when the component behaves outside the protocol.
	ErrContractViolation = errors.New("omx: contract violation")

	// ErrTimeout is returned when the component does not confirm a command in time.
	ErrTimeout = errors.New("omx: timed out waiting for component")

	// ErrReleased is returned by methods called after Release.
	ErrReleased = errors.New("omx: handle released")

	// ErrBufferOutstanding is returned when a port already holds an allocated buffer.
	ErrBufferOutstanding = errors.New("omx: port already holds a buffer")
)

// EventError is an error reported through the component's event callback.
type EventError struct {
	Code ports.ErrorCode
	Data uint32
}

func (e *EventError) Error() string {
	return fmt.Sprintf("omx: component error event %s (data 0x%x)", e.Code, e.Data)
}

// Unwrap lets errors.Is match both ErrComponent and the raw code.
func (e *EventError) Unwrap() []error {
	return []error{ErrComponent, e.Code}
}

// wrapCall classifies a synchronous error returned by a component method.
func wrapCall(op string, err error) error {
	if err == nil {
		return nil
	}
	var code ports.ErrorCode
	if errors.As(err, &code) {
		switch code {
		case ports.ErrorInsufficientResources:
			return fmt.Errorf("%s: %w: %w", op, ErrResourceExhausted, err)
		case ports.ErrorComponentNotFound, ports.ErrorInvalidComponentName:
			return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
		case ports.ErrorIncorrectStateTransition, ports.ErrorSameState:
			return fmt.Errorf("%s: %w: %w", op, ErrInvalidTransition, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
