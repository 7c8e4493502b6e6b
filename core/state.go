package orchestration

// CallState is the lifecycle state of a call session.
//
//	AWAITING_START -> ACTIVE -> GENERATING -> SYNTHESIZING -> STREAMING_BACK -> ACTIVE ...
//
// Any state moves to CLOSED once the call has shut down.
type CallState int32

const (
	StateAwaitingStart CallState = iota
	StateActive
	StateGenerating
	StateSynthesizing
	StateStreamingBack
	StateClosed
)

func (s CallState) String() string {
	switch s {
	case StateAwaitingStart:
		return "awaiting_start"
	case StateActive:
		return "active"
	case StateGenerating:
		return "generating"
	case StateSynthesizing:
		return "synthesizing"
	case StateStreamingBack:
		return "streaming_back"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
