package texttospeech

import (
	"context"
	"fmt"
)

// Synthesizer turns a complete reply into audio in a single request.
type Synthesizer interface {
	// Synthesize returns the audio for text. Empty text yields empty audio.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// SynthesisError is returned when the synthesis service answers with a
// non-success status.
type SynthesisError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *SynthesisError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("synthesis failed with status %s", e.Status)
	}
	return fmt.Sprintf("synthesis failed with status %s: %s", e.Status, e.Body)
}
