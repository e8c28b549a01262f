package coordinator

import "time"

// State is the lifecycle state of one command slot.
type State int

const (
	// StateIdle means the slot is reserved but its factory has not started.
	// A slot waits here while its predecessor unwinds.
	StateIdle State = iota
	// StateRunning means the factory is executing.
	StateRunning
	// StateCompleted means the factory returned nil.
	StateCompleted
	// StateFailed means the factory returned an error or panicked.
	StateFailed
	// StateCancelled means the slot was superseded, either before its factory
	// started or while it was running.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Event describes one slot transition. It is the payload published on the
// coordinator's broker.
type Event struct {
	CommandID  string
	SessionKey string
	Name       string
	State      State
	// Err is set for failed commands.
	Err error
	At  time.Time
}
