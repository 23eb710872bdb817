package pipeline

// State is one of the four observable pipeline lifecycle states.
// Transitions are driven exclusively by the control worker.
type State int32

const (
	// StateIdle: workers not running, modules not initialised.
	StateIdle State = iota
	// StateRunning: the demuxer/decoder/filterer workers are alive.
	StateRunning
	// StateDying: workers signaled to exit, not yet joined.
	StateDying
	// StateDead: joined; needs re-init to run again.
	StateDead
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDying:
		return "dying"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}
