package deepgram

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
)

var ErrInputClosed = errors.New("recognition stream input already closed")

const closeWriteTimeout = time.Second

type controlMessage struct {
	Type string `json:"type"`
}

type stream struct {
	conn *websocket.Conn

	connMu      sync.Mutex
	lastAudioTs time.Time
	inputClosed bool

	closeOnce sync.Once
	closed    chan struct{}
}

func newStream(conn *websocket.Conn, keepAliveInterval time.Duration) *stream {
	s := &stream{
		conn:        conn,
		lastAudioTs: time.Now(),
		closed:      make(chan struct{}),
	}
	if keepAliveInterval > 0 {
		go s.keepAlive(keepAliveInterval)
	}
	return s
}

func (s *stream) SendAudio(audio []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.inputClosed {
		return ErrInputClosed
	}

	s.lastAudioTs = time.Now()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

// CloseStream sends the end-of-input message. Deepgram answers with the
// remaining results and a Metadata message, then closes the connection.
func (s *stream) CloseStream() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.inputClosed {
		return nil
	}
	s.inputClosed = true

	if err := s.conn.WriteJSON(controlMessage{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		return fmt.Errorf("failed to close deepgram stream: %w", err)
	}
	return nil
}

func (s *stream) ReadMessage() ([]byte, error) {
	for {
		msgType, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || s.isClosed() {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read deepgram websocket message: %w", err)
		}
		if msgType == websocket.TextMessage {
			return msg, nil
		}
	}
}

func (s *stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWriteTimeout))
		err = s.conn.Close()
	})
	return err
}

func (s *stream) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *stream) keepAlive(interval time.Duration) {
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.closed:
			return
		case <-ticker.C:
			s.sendKeepAlive(interval)
		}
	}
}

func (s *stream) sendKeepAlive(interval time.Duration) {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.inputClosed || time.Since(s.lastAudioTs) < interval {
		return
	}

	s.lastAudioTs = time.Now()
	if err := s.conn.WriteJSON(controlMessage{Type: "KeepAlive"}); err != nil {
		logger.Warn("failed to send keep-alive to deepgram", "error", err)
	}
}
