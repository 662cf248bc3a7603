package app

// State represents the current application state.
type State int

const (
	StateConnecting State = iota // Session bootstrap in flight
	StateIdle                    // Ready for user input
	StateStreaming               // A reply is being streamed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}
