package deepgram

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/koscakluka/ema-helpline/core/audio"
)

// listenEncoding is the raw audio description sent with every stream.
type listenEncoding struct {
	name       string
	sampleRate int
}

// Companded telephony formats are only accepted at 8kHz.
var supportedSampleRates = map[string][]int{
	audio.EncodingLinear16.Name(): {8000, 16000, 24000, 32000, 48000},
	audio.EncodingMulaw.Name():    {8000},
	audio.EncodingALaw.Name():     {8000},
}

func toListenEncoding(encoding audio.EncodingInfo) (listenEncoding, error) {
	rates, ok := supportedSampleRates[encoding.Format.Name()]
	if !ok {
		return listenEncoding{}, fmt.Errorf("unsupported encoding %q", encoding.Format.Name())
	}
	if !slices.Contains(rates, encoding.SampleRate) {
		return listenEncoding{}, fmt.Errorf("unsupported sample rate %d for %s", encoding.SampleRate, encoding.Format.Name())
	}
	return listenEncoding{name: encoding.Format.Name(), sampleRate: encoding.SampleRate}, nil
}

func (e listenEncoding) setQuery(query url.Values) {
	query.Set("encoding", e.name)
	query.Set("sample_rate", strconv.Itoa(e.sampleRate))
	query.Set("channels", "1")
}
