package ports

import "fmt"

// State is a component lifecycle state.
type State uint32

const (
	StateInvalid State = iota
	StateLoaded
	StateIdle
	StateExecuting
	StatePause
	StateWaitForResources
)

func (s State) String() string {
	switch s {
	case StateInvalid:
		return "Invalid"
	case StateLoaded:
		return "Loaded"
	case StateIdle:
		return "Idle"
	case StateExecuting:
		return "Executing"
	case StatePause:
		return "Pause"
	case StateWaitForResources:
		return "WaitForResources"
	default:
		return fmt.Sprintf("State(%d)", uint32(s))
	}
}

// Command is an asynchronous component command.
type Command uint32

const (
	CommandStateSet Command = iota
	CommandFlush
	CommandPortDisable
	CommandPortEnable
	CommandMarkBuffer
)

func (c Command) String() string {
	switch c {
	case CommandStateSet:
		return "StateSet"
	case CommandFlush:
		return "Flush"
	case CommandPortDisable:
		return "PortDisable"
	case CommandPortEnable:
		return "PortEnable"
	case CommandMarkBuffer:
		return "MarkBuffer"
	default:
		return fmt.Sprintf("Command(%d)", uint32(c))
	}
}

// Event is the kind of an asynchronous component notification.
type Event uint32

const (
	EventCmdComplete Event = iota
	EventError
	EventMark
	EventPortSettingsChanged
	EventBufferFlag
	EventResourcesAcquired
	EventComponentResumed
	EventDynamicResourcesAvailable
	EventPortFormatDetected
)

func (e Event) String() string {
	switch e {
	case EventCmdComplete:
		return "CmdComplete"
	case EventError:
		return "Error"
	case EventMark:
		return "Mark"
	case EventPortSettingsChanged:
		return "PortSettingsChanged"
	case EventBufferFlag:
		return "BufferFlag"
	case EventResourcesAcquired:
		return "ResourcesAcquired"
	case EventComponentResumed:
		return "ComponentResumed"
	case EventDynamicResourcesAvailable:
		return "DynamicResourcesAvailable"
	case EventPortFormatDetected:
		return "PortFormatDetected"
	default:
		return fmt.Sprintf("Event(%d)", uint32(e))
	}
}

// Index selects the parameter structure for GetParameter/SetParameter.
type Index uint32

const (
	IndexParamImageInit       Index = 0x01000003
	IndexParamPortDefinition  Index = 0x02000001
	IndexParamImagePortFormat Index = 0x05000001
	IndexParamQFactor         Index = 0x05000004
)

func (i Index) String() string {
	switch i {
	case IndexParamImageInit:
		return "ParamImageInit"
	case IndexParamPortDefinition:
		return "ParamPortDefinition"
	case IndexParamImagePortFormat:
		return "ParamImagePortFormat"
	case IndexParamQFactor:
		return "ParamQFactor"
	default:
		return fmt.Sprintf("Index(0x%08x)", uint32(i))
	}
}

// Direction is a port's data direction.
type Direction uint32

const (
	DirInput Direction = iota
	DirOutput
)

func (d Direction) String() string {
	switch d {
	case DirInput:
		return "Input"
	case DirOutput:
		return "Output"
	default:
		return fmt.Sprintf("Direction(%d)", uint32(d))
	}
}

// Coding is an image compression format.
type Coding uint32

const (
	CodingUnused Coding = iota
	CodingAutoDetect
	CodingJPEG
)

func (c Coding) String() string {
	switch c {
	case CodingUnused:
		return "Unused"
	case CodingAutoDetect:
		return "AutoDetect"
	case CodingJPEG:
		return "JPEG"
	default:
		return fmt.Sprintf("Coding(%d)", uint32(c))
	}
}
