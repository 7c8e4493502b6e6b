package audio

import (
	"bytes"
	"testing"
	"time"
)

func TestTelephonyFrameSize(t *testing.T) {
	if TelephonyFrameSize != 160 {
		t.Fatalf("expected 160 byte frames, got %d", TelephonyFrameSize)
	}
}

func TestChunk(t *testing.T) {
	testCases := []struct {
		name       string
		size       int
		frameSize  int
		wantFrames int
		wantLast   int
	}{
		{name: "empty", size: 0, frameSize: 160, wantFrames: 0},
		{name: "shorter than a frame", size: 100, frameSize: 160, wantFrames: 1, wantLast: 100},
		{name: "exact multiple", size: 480, frameSize: 160, wantFrames: 3, wantLast: 160},
		{name: "remainder", size: 500, frameSize: 160, wantFrames: 4, wantLast: 20},
		{name: "invalid frame size", size: 500, frameSize: 0, wantFrames: 0},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			audio := make([]byte, testCase.size)
			for i := range audio {
				audio[i] = byte(i)
			}

			frames := Chunk(audio, testCase.frameSize)
			if len(frames) != testCase.wantFrames {
				t.Fatalf("expected %d frames, got %d", testCase.wantFrames, len(frames))
			}
			if len(frames) == 0 {
				return
			}
			if got := len(frames[len(frames)-1]); got != testCase.wantLast {
				t.Fatalf("expected last frame of %d bytes, got %d", testCase.wantLast, got)
			}
			if joined := bytes.Join(frames, nil); !bytes.Equal(joined, audio) {
				t.Fatalf("expected frames to reassemble the input")
			}
		})
	}
}

func TestDurationMatchesBytesPer(t *testing.T) {
	encoding := GetTelephonyEncodingInfo()
	if got := encoding.Duration(encoding.BytesPer(time.Second)); got != time.Second {
		t.Fatalf("expected one second round trip, got %s", got)
	}
	if got := (EncodingInfo{SampleRate: 16000, Format: EncodingLinear16}).BytesPer(FrameDuration); got != 640 {
		t.Fatalf("expected 640 bytes for 20ms linear16, got %d", got)
	}
}
