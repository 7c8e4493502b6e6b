package events

const (
	KindTurnStarted   Kind = "turn_state.started"
	KindTurnCompleted Kind = "turn_state.completed"
	KindTurnFailed    Kind = "turn_state.failed"
	KindTurnCancelled Kind = "turn_state.cancelled"
)

type TurnStarted struct {
	Base
	Utterance string
}

func NewTurnStarted(callID, utterance string) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted, callID), Utterance: utterance}
}

type TurnCompleted struct{ Base }

func NewTurnCompleted(callID string) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted, callID)}
}

// TurnFailed reports the stage a reply cycle failed at, such as
// "synthesizing" or "streaming_back".
type TurnFailed struct {
	Base
	Stage string
	Err   error
}

func NewTurnFailed(callID, stage string, err error) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed, callID), Stage: stage, Err: err}
}

// TurnCancelled reports an utterance that was never answered.
type TurnCancelled struct {
	Base
	Utterance string
}

func NewTurnCancelled(callID, utterance string) TurnCancelled {
	return TurnCancelled{Base: NewBase(KindTurnCancelled, callID), Utterance: utterance}
}
