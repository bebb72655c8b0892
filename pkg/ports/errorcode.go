package ports

import "fmt"

// ErrorCode is a component error, returned synchronously from Component
// methods or delivered asynchronously as data1 of an EventError.
type ErrorCode uint32

const (
	ErrorNone                     ErrorCode = 0
	ErrorInsufficientResources    ErrorCode = 0x80001000
	ErrorUndefined                ErrorCode = 0x80001001
	ErrorInvalidComponentName     ErrorCode = 0x80001002
	ErrorComponentNotFound        ErrorCode = 0x80001003
	ErrorBadParameter             ErrorCode = 0x80001005
	ErrorNotImplemented           ErrorCode = 0x80001006
	ErrorHardware                 ErrorCode = 0x80001009
	ErrorInvalidState             ErrorCode = 0x8000100A
	ErrorStreamCorrupt            ErrorCode = 0x8000100B
	ErrorNoMore                   ErrorCode = 0x8000100E
	ErrorNotReady                 ErrorCode = 0x80001010
	ErrorTimeout                  ErrorCode = 0x80001011
	ErrorSameState                ErrorCode = 0x80001012
	ErrorIncorrectStateTransition ErrorCode = 0x80001017
	ErrorIncorrectStateOperation  ErrorCode = 0x80001018
	ErrorUnsupportedSetting       ErrorCode = 0x80001019
	ErrorUnsupportedIndex         ErrorCode = 0x8000101A
	ErrorBadPortIndex             ErrorCode = 0x8000101B
	ErrorPortUnpopulated          ErrorCode = 0x8000101C
)

var errorCodeNames = map[ErrorCode]string{
	ErrorNone:                     "None",
	ErrorInsufficientResources:    "InsufficientResources",
	ErrorUndefined:                "Undefined",
	ErrorInvalidComponentName:     "InvalidComponentName",
	ErrorComponentNotFound:        "ComponentNotFound",
	ErrorBadParameter:             "BadParameter",
	ErrorNotImplemented:           "NotImplemented",
	ErrorHardware:                 "Hardware",
	ErrorInvalidState:             "InvalidState",
	ErrorStreamCorrupt:            "StreamCorrupt",
	ErrorNoMore:                   "NoMore",
	ErrorNotReady:                 "NotReady",
	ErrorTimeout:                  "Timeout",
	ErrorSameState:                "SameState",
	ErrorIncorrectStateTransition: "IncorrectStateTransition",
	ErrorIncorrectStateOperation:  "IncorrectStateOperation",
	ErrorUnsupportedSetting:       "UnsupportedSetting",
	ErrorUnsupportedIndex:         "UnsupportedIndex",
	ErrorBadPortIndex:             "BadPortIndex",
	ErrorPortUnpopulated:          "PortUnpopulated",
}

func (e ErrorCode) String() string {
	if name, ok := errorCodeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(0x%08x)", uint32(e))
}

// Error implements error so codes can travel through %w wrapping.
func (e ErrorCode) Error() string {
	return "component error: " + e.String()
}
