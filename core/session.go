package orchestration

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-helpline/core/events"
	"github.com/koscakluka/ema-helpline/core/speechtotext"
	"github.com/koscakluka/ema-helpline/core/telephony"
)

// TelephonyConn is the media stream websocket of one phone call.
// *websocket.Conn satisfies it.
type TelephonyConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// CallSession is the state of one phone call. The frame relay sets the
// stream sid; the reply worker is the only writer to the telephony
// connection.
type CallSession struct {
	ID string

	telephony   TelephonyConn
	recognition speechtotext.Stream

	state atomic.Int32

	mu        sync.RWMutex
	streamSID string
	callSID   string
	turns     []events.Turn

	releaseOnce sync.Once
	releaseErr  error
}

func newCallSession(telephony TelephonyConn, recognition speechtotext.Stream) *CallSession {
	session := &CallSession{
		ID:          uuid.NewString(),
		telephony:   telephony,
		recognition: recognition,
	}
	session.state.Store(int32(StateAwaitingStart))
	return session
}

func (s *CallSession) State() CallState {
	return CallState(s.state.Load())
}

func (s *CallSession) transition(from, to CallState) bool {
	return s.state.CompareAndSwap(int32(from), int32(to))
}

func (s *CallSession) setClosed() {
	s.state.Store(int32(StateClosed))
}

// start records the stream identifiers. Only the first start frame of a
// stream is honoured.
func (s *CallSession) start(streamSID, callSID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.transition(StateAwaitingStart, StateActive) {
		return false
	}
	s.streamSID = streamSID
	s.callSID = callSID
	return true
}

func (s *CallSession) StreamSID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streamSID
}

func (s *CallSession) addTurn(role events.TurnRole, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, events.Turn{Role: role, Text: text, At: time.Now()})
}

// Turns returns a copy of the conversation so far.
func (s *CallSession) Turns() []events.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]events.Turn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

func (s *CallSession) send(msg any) error {
	payload, err := telephony.Encode(msg)
	if err != nil {
		return fmt.Errorf("failed to encode telephony message: %w", err)
	}
	if err := s.telephony.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("failed to write telephony message: %w", err)
	}
	return nil
}

// release closes the recognition stream and the telephony connection. Only
// the first call has an effect.
func (s *CallSession) release() error {
	s.releaseOnce.Do(func() {
		var errs []error
		if err := s.recognition.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close recognition stream: %w", err))
		}
		if err := s.telephony.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close telephony connection: %w", err))
		}
		s.releaseErr = errors.Join(errs...)
	})
	return s.releaseErr
}
