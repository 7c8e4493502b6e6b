package deepgram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-helpline/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultListenURL = "wss://api.deepgram.com/v1/listen"

var ErrMissingAPIKey = errors.New("deepgram api key is empty")

// TranscriptionClient opens live transcription streams against the Deepgram
// listen endpoint. It holds no per-call state and is safe to share.
type TranscriptionClient struct {
	apiKey    string
	listenURL string
	options   speechtotext.StreamOptions
	encoding  listenEncoding
	dialer    *websocket.Dialer
}

type ClientOption func(*TranscriptionClient)

// WithListenURL points the client at a different listen endpoint.
func WithListenURL(listenURL string) ClientOption {
	return func(c *TranscriptionClient) { c.listenURL = listenURL }
}

func WithStreamOptions(opts ...speechtotext.StreamOption) ClientOption {
	return func(c *TranscriptionClient) {
		for _, opt := range opts {
			opt(&c.options)
		}
	}
}

func WithDialer(dialer *websocket.Dialer) ClientOption {
	return func(c *TranscriptionClient) { c.dialer = dialer }
}

func NewTranscriptionClient(apiKey string, opts ...ClientOption) (*TranscriptionClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := &TranscriptionClient{
		apiKey:    apiKey,
		listenURL: defaultListenURL,
		options:   speechtotext.DefaultStreamOptions(),
		dialer:    websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(client)
	}

	encoding, err := toListenEncoding(client.options.EncodingInfo)
	if err != nil {
		return nil, fmt.Errorf("invalid encoding: %w", err)
	}
	client.encoding = encoding

	if _, err := client.streamURL(); err != nil {
		return nil, err
	}

	return client, nil
}

// OpenStream dials a new recognition stream. The stream stays open until it
// is closed by either side; ctx only bounds the dial.
func (c *TranscriptionClient) OpenStream(ctx context.Context) (speechtotext.Stream, error) {
	ctx, span := tracer.Start(ctx, "open recognition stream")
	defer span.End()

	streamURL, err := c.streamURL()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("request.model", c.options.Model),
		attribute.String("request.encoding", c.encoding.name),
		attribute.Int("request.sample_rate", c.encoding.sampleRate),
	)

	conn, resp, err := c.dialer.DialContext(ctx, streamURL,
		http.Header{"Authorization": {"Token " + c.apiKey}})
	if resp != nil {
		span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	}
	if err != nil {
		err = fmt.Errorf("failed to open socket connection to deepgram: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return newStream(conn, c.options.KeepAliveInterval), nil
}

func (c *TranscriptionClient) streamURL() (string, error) {
	listenURL, err := url.Parse(c.listenURL)
	if err != nil {
		return "", fmt.Errorf("invalid listen url: %w", err)
	}

	queryParams := listenURL.Query()
	c.encoding.setQuery(queryParams)
	if c.options.Model != "" {
		queryParams.Set("model", c.options.Model)
	}
	if c.options.Language != "" {
		queryParams.Set("language", c.options.Language)
	}
	if c.options.SmartFormat {
		queryParams.Set("smart_format", "true")
	}
	if c.options.InterimResults {
		queryParams.Set("interim_results", "true")
	}
	if c.options.Endpointing > 0 {
		queryParams.Set("endpointing", strconv.FormatInt(c.options.Endpointing.Milliseconds(), 10))
	}

	listenURL.RawQuery = queryParams.Encode()
	return listenURL.String(), nil
}
