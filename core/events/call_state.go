package events

import "time"

const (
	KindCallStarted Kind = "call_state.started"
	KindCallEnded   Kind = "call_state.ended"
)

type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// Turn is one line of the conversation.
type Turn struct {
	Role TurnRole
	Text string
	At   time.Time
}

type CallStarted struct {
	Base
	StreamSID string
	CallSID   string
}

func NewCallStarted(callID, streamSID, callSID string) CallStarted {
	return CallStarted{Base: NewBase(KindCallStarted, callID), StreamSID: streamSID, CallSID: callSID}
}

// CallEnded carries the conversation and the error that ended the call, if
// any.
type CallEnded struct {
	Base
	StreamSID string
	Turns     []Turn
	Err       error
}

func NewCallEnded(callID, streamSID string, turns []Turn, err error) CallEnded {
	return CallEnded{Base: NewBase(KindCallEnded, callID), StreamSID: streamSID, Turns: turns, Err: err}
}
