// Package calllog appends helpline conversations to a plain text file.
package calllog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/koscakluka/ema-helpline/core/events"
	"github.com/koscakluka/ema-helpline/core/incident"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const (
	scopeName       = "github.com/koscakluka/ema-helpline/internal/calllog"
	timestampLayout = "2006-01-02 15:04:05"
	separator       = "------------------------------"
)

var logger = otelslog.NewLogger(scopeName)

// Log is safe for concurrent use by every call.
type Log struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time

	closer io.Closer
}

type Option func(*Log)

func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// Open appends to the file at path, creating it when needed.
func Open(path string, opts ...Option) (*Log, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation log: %w", err)
	}
	l := New(file, opts...)
	l.closer = file
	return l, nil
}

func New(out io.Writer, opts ...Option) *Log {
	l := &Log{out: out, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// HandleEvent records call starts and finalized turns. It satisfies
// events.Handler.
func (l *Log) HandleEvent(event events.Event) {
	switch event := event.(type) {
	case events.CallStarted:
		l.write(fmt.Sprintf("\n%s\nNEW CALL STARTED AT %s (stream %s)\n%s\n",
			separator, event.Timestamp().Format(timestampLayout), event.StreamSID, separator))
	case events.UserTranscriptFinal:
		l.writeTurn("User", event.Transcript)
	case events.AssistantResponseFinal:
		l.writeTurn("AI", event.Text)
	}
}

// WriteReport appends the incident report extracted from a call.
func (l *Log) WriteReport(streamSID string, report incident.Report, verification *incident.Verification) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nINCIDENT REPORT (stream %s)\n%s\n", separator, streamSID, report)
	if verification != nil {
		fmt.Fprintf(&b, "\nReady to dispatch: %t\nFollow-up question: %s\n", verification.Complete, verification.FollowUpQuestion)
	}
	fmt.Fprintf(&b, "%s\n", separator)
	l.write(b.String())
}

func (l *Log) writeTurn(role, text string) {
	l.write(fmt.Sprintf("[%s] %s: %s\n", l.now().Format(timestampLayout), role, text))
}

func (l *Log) write(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := io.WriteString(l.out, entry); err != nil {
		logger.Warn("failed to write conversation log", "error", err)
	}
}

func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
