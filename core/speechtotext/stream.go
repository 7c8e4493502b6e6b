package speechtotext

import "context"

// Stream is an open, bidirectional recognition session.
//
// SendAudio and CloseStream may be called concurrently with ReadMessage.
// ReadMessage returns io.EOF once the service has closed the stream
// normally. Close releases the connection; repeated calls are ignored.
type Stream interface {
	SendAudio(audio []byte) error
	// CloseStream tells the service that no more audio will follow. The
	// service flushes its remaining results and then closes the stream.
	CloseStream() error
	ReadMessage() ([]byte, error)
	Close() error
}

// StreamOpener opens recognition streams, one per call.
type StreamOpener interface {
	OpenStream(ctx context.Context) (Stream, error)
}
