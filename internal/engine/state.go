package engine

import "time"

// State is the engine's position in the script lifecycle.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateInLoop
	StateDiverting
	StateStopped
	StateExited
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateInLoop:
		return "in-loop"
	case StateDiverting:
		return "diverting"
	case StateStopped:
		return "stopped"
	case StateExited:
		return "exited"
	case StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

// EventKind identifies an engine notification.
type EventKind int

const (
	EventScriptStarted EventKind = iota
	EventScriptFinished
	EventLine
	EventLoopIteration
	EventDiversion
	EventReport
	EventSessionEnded
)

// Event is delivered to the observer from the script goroutine.
type Event struct {
	Kind   EventKind
	State  State
	Script string
	Line   int
	Text   string
	Depth  int
	Err    error
	Time   time.Time
}

// Observer receives engine events. It must not block for long.
type Observer func(Event)

// Summary describes a finished session.
type Summary struct {
	State      State
	Steps      int
	Diversions int
	Reports    int
	Duration   time.Duration
}
