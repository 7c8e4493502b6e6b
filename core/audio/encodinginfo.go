package audio

import "time"

const (
	TelephonySampleRate = 8000
	TelephonyFormat     = EncodingMulaw
)

// GetTelephonyEncodingInfo returns the encoding used on both legs of a phone
// call: 8kHz single-channel mu-law.
func GetTelephonyEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: TelephonySampleRate, Format: TelephonyFormat}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	case EncodingLinear16:
		return 0
	}

	return 0
}

// BytesPer returns how many bytes of single-channel audio cover d. It returns
// 0 for unknown formats.
func (e EncodingInfo) BytesPer(d time.Duration) int {
	byteSize := e.Format.ByteSize()
	if byteSize <= 0 {
		return 0
	}
	return int(int64(e.SampleRate) * int64(byteSize) * int64(d) / int64(time.Second))
}

// Duration is the inverse of BytesPer.
func (e EncodingInfo) Duration(size int) time.Duration {
	byteSize := e.Format.ByteSize()
	if byteSize <= 0 || e.SampleRate == 0 {
		return 0
	}
	return time.Duration(int64(size) * int64(time.Second) / int64(e.SampleRate*byteSize))
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
