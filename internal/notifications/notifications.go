package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"karaokeforge/internal/config"
	"karaokeforge/internal/logging"
	"karaokeforge/internal/queue"
)

// Event is one status transition reported to the external sink.
type Event struct {
	Artist     string       `json:"artist"`
	Title      string       `json:"title"`
	Status     queue.Status `json:"status"`
	ID         string       `json:"id,omitempty"`
	YouTubeURL string       `json:"youtube_url,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// Service delivers status events. Delivery is fire and forget; a failure is
// logged and never propagated to the pipeline.
type Service interface {
	Publish(event Event)
	Close()
}

// NewService returns the HTTP notifier, or a noop service when no sink URL
// is configured.
func NewService(cfg *config.Config, logger *slog.Logger) Service {
	if cfg == nil || cfg.Notifications.SinkURL == "" {
		return noopService{}
	}
	return newHTTPService(cfg, logger)
}

type noopService struct{}

func (noopService) Publish(Event) {}
func (noopService) Close()        {}

type httpService struct {
	url    string
	client *http.Client
	logger *slog.Logger

	events    chan Event
	closeOnce sync.Once
	done      chan struct{}
}

func newHTTPService(cfg *config.Config, logger *slog.Logger) *httpService {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	buffer := cfg.Notifications.BufferSize
	if buffer <= 0 {
		buffer = 64
	}
	s := &httpService{
		url:    cfg.Notifications.SinkURL,
		client: &http.Client{Timeout: timeout},
		logger: logger.With(logging.String(logging.FieldComponent, "notifications")),
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	go s.drain()
	return s
}

// Publish hands the event to the notifier goroutine without blocking. When
// the buffer is full the event is dropped; a slow sink must never stall the
// pipeline worker.
func (s *httpService) Publish(event Event) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("notification buffer full; dropping event",
			logging.String("status", string(event.Status)),
			logging.String("title", event.Title),
		)
	}
}

// Close stops the notifier after the buffered events are delivered.
func (s *httpService) Close() {
	s.closeOnce.Do(func() {
		close(s.events)
		<-s.done
	})
}

func (s *httpService) drain() {
	defer close(s.done)
	for event := range s.events {
		s.send(event)
	}
}

func (s *httpService) send(event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("encode event failed", logging.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("build notification request failed", logging.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("notification delivery failed",
			logging.String("status", string(event.Status)),
			logging.Error(err),
		)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		s.logger.Warn("notification rejected by sink",
			logging.Int("http_status", resp.StatusCode),
			logging.String("status", string(event.Status)),
		)
	}
}
