package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/koscakluka/ema-helpline/core/texttospeech"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultSpeakURL = "https://api.deepgram.com/v1/speak"

// maxErrorBodySize caps how much of a failed response is kept in the error.
const maxErrorBodySize = 4 << 10

var (
	ErrMissingAPIKey = errors.New("deepgram api key is empty")
	ErrInvalidVoice  = errors.New("invalid voice")
)

// TextToSpeechClient synthesizes complete replies with the Deepgram speak
// REST endpoint.
type TextToSpeechClient struct {
	apiKey   string
	speakURL string
	voice    deepgramVoice
	options  texttospeech.SynthesisOptions
	client   *http.Client
}

type ClientOption func(*TextToSpeechClient)

func WithSpeakURL(speakURL string) ClientOption {
	return func(c *TextToSpeechClient) { c.speakURL = speakURL }
}

func WithSynthesisOptions(opts ...texttospeech.SynthesisOption) ClientOption {
	return func(c *TextToSpeechClient) {
		for _, opt := range opts {
			opt(&c.options)
		}
	}
}

func NewTextToSpeechClient(apiKey string, voice deepgramVoice, opts ...ClientOption) (*TextToSpeechClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if voice == "" {
		voice = defaultVoice
	}
	if !slices.Contains(GetAvailableVoices(), voice) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidVoice, voice)
	}

	client := &TextToSpeechClient{
		apiKey:   apiKey,
		speakURL: defaultSpeakURL,
		voice:    voice,
		options:  texttospeech.DefaultSynthesisOptions(),
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.options.HTTPClient != nil {
		client.client = client.options.HTTPClient
	} else {
		client.client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	return client, nil
}

func (c *TextToSpeechClient) SetVoice(voice deepgramVoice) error {
	if !slices.Contains(GetAvailableVoices(), voice) {
		return fmt.Errorf("%w: %s", ErrInvalidVoice, voice)
	}
	c.voice = voice
	return nil
}

type speakRequestBody struct {
	Text string `json:"text"`
}

// Synthesize returns raw audio (no container) for text in the configured
// encoding. Non-success responses are returned as
// *texttospeech.SynthesisError.
func (c *TextToSpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []byte{}, nil
	}

	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	speakURL, err := c.requestURL()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	requestBodyBytes, err := json.Marshal(speakRequestBody{Text: text})
	if err != nil {
		err = fmt.Errorf("failed to marshal speak request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, speakURL, bytes.NewReader(requestBodyBytes))
	if err != nil {
		err = fmt.Errorf("failed to create speak request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	span.SetAttributes(
		attribute.String("request.url", req.URL.String()),
		attribute.String("request.voice", string(c.voice)),
		attribute.Int("request.text_length", len(text)),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to send speak request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if readErr != nil {
			logger.WarnContext(ctx, "failed to read speak error body", "error", readErr)
		}
		span.SetAttributes(attribute.String("response.error", string(errorBody)))

		err := &texttospeech.SynthesisError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(errorBody)),
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	speech, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed to read speak response: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("response.audio_bytes", len(speech)))

	return speech, nil
}

func (c *TextToSpeechClient) requestURL() (string, error) {
	speakURL, err := url.Parse(c.speakURL)
	if err != nil {
		return "", fmt.Errorf("invalid speak url: %w", err)
	}

	urlValues := speakURL.Query()
	urlValues.Set("model", string(c.voice))
	urlValues.Set("encoding", c.options.EncodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(c.options.EncodingInfo.SampleRate))
	urlValues.Set("container", "none")
	speakURL.RawQuery = urlValues.Encode()

	return speakURL.String(), nil
}
