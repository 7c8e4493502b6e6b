package audio

import "time"

// FrameDuration is the playback length of a single outbound telephony frame.
const FrameDuration = 20 * time.Millisecond

// TelephonyFrameSize is the byte length of a FrameDuration frame of
// telephony audio (160 bytes).
var TelephonyFrameSize = GetTelephonyEncodingInfo().BytesPer(FrameDuration)

// Chunk splits audio into consecutive frames of frameSize bytes. The last
// frame holds the remainder and may be shorter. Frames share the backing
// array of audio.
func Chunk(audio []byte, frameSize int) [][]byte {
	if len(audio) == 0 || frameSize <= 0 {
		return nil
	}

	frames := make([][]byte, 0, (len(audio)+frameSize-1)/frameSize)
	for start := 0; start < len(audio); start += frameSize {
		end := min(start+frameSize, len(audio))
		frames = append(frames, audio[start:end:end])
	}
	return frames
}
