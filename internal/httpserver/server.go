// Package httpserver exposes the helpline over HTTP: the Twilio voice
// webhook, the media stream websocket and a text chat endpoint.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	orchestration "github.com/koscakluka/ema-helpline/core"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/twilio/twilio-go/twiml"
)

// CallHandler runs one phone call on an upgraded media stream.
type CallHandler interface {
	HandleCall(ctx context.Context, conn orchestration.TelephonyConn) error
	ActiveCalls() int64
}

type Config struct {
	// PublicHost is the host Twilio reaches this server on, without scheme.
	PublicHost      string
	Greeting        string
	TwilioAuthToken string
}

type Server struct {
	echo *echo.Echo

	calls     CallHandler
	responder orchestration.Responder
	config    Config
	upgrader  websocket.Upgrader

	// callCtx outlives individual requests and is cancelled on shutdown.
	callCtx    context.Context
	cancelCall context.CancelFunc
	activeWG   sync.WaitGroup
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

func New(cfg Config, calls CallHandler, responder orchestration.Responder) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.Any("error", v.Error),
			)
			return nil
		},
	}))

	callCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		echo:       e,
		calls:      calls,
		responder:  responder,
		config:     cfg,
		callCtx:    callCtx,
		cancelCall: cancel,
	}

	e.GET("/", s.handleIndex)
	e.GET("/healthz", s.handleHealth)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/incoming_call", s.handleIncomingCall, TwilioSignature(cfg.TwilioAuthToken))
	e.GET("/audio_stream", s.handleAudioStream)
	e.POST("/chat", s.handleChat)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(address string) error {
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, ends the calls in progress and waits
// for them to release their connections or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancelCall()
	err := s.echo.Shutdown(ctx)

	// Hijacked media streams are not tracked by the HTTP server.
	callsDone := make(chan struct{})
	go func() {
		s.activeWG.Wait()
		close(callsDone)
	}()
	select {
	case <-callsDone:
		return err
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Server is up and running"})
}

func (s *Server) handleHealth(c echo.Context) error {
	c.Response().Header().Set("X-Active-Calls", fmt.Sprint(s.calls.ActiveCalls()))
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleIncomingCall(c echo.Context) error {
	streamURL := fmt.Sprintf("wss://%s/audio_stream", s.config.PublicHost)
	response, err := twiml.Voice([]twiml.Element{
		&twiml.VoiceSay{Message: s.config.Greeting},
		&twiml.VoiceConnect{InnerElements: []twiml.Element{
			&twiml.VoiceStream{Url: streamURL},
		}},
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build TwiML").SetInternal(err)
	}

	logger.InfoContext(c.Request().Context(), "incoming call",
		"call_sid", c.FormValue("CallSid"),
		"from", c.FormValue("From"))
	return c.Blob(http.StatusOK, echo.MIMEApplicationXML, []byte(response))
}

func (s *Server) handleAudioStream(c echo.Context) error {
	// Counted before the upgrade, while the HTTP server still tracks the
	// request.
	s.activeWG.Add(1)
	defer s.activeWG.Done()

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response.
		logger.WarnContext(c.Request().Context(), "failed to upgrade media stream", "error", err)
		return nil
	}

	if err := s.calls.HandleCall(s.callCtx, conn); err != nil {
		logger.ErrorContext(c.Request().Context(), "call failed", "error", err)
	}
	return nil
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid chat request")
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	reply := s.responder.Respond(c.Request().Context(), message)
	return c.JSON(http.StatusOK, ChatResponse{Reply: reply.Text})
}
