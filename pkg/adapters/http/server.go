package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/mercato/internal/logging"
	"github.com/aretw0/mercato/pkg/adapters/whatsapp"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// maxBodySize caps an inbound webhook payload.
const maxBodySize = 1 << 20

// Dispatcher handles one inbound customer event. It owns every reply and never fails.
type Dispatcher interface {
	Dispatch(ctx context.Context, in domain.Inbound)
}

// Server is the channel's webhook surface.
type Server struct {
	dispatcher  Dispatcher
	verifyToken string
	version     string
	metrics     http.Handler
	logger      *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithVerifyToken sets the token expected by the subscription handshake.
func WithVerifyToken(token string) Option {
	return func(s *Server) {
		s.verifyToken = token
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the version reported on /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewHandler creates the HTTP handler routing webhook calls to d.
func NewHandler(d Dispatcher, opts ...Option) http.Handler {
	s := &Server{
		dispatcher: d,
		version:    "dev",
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/webhook", s.Verify)
	r.Post("/webhook", s.Receive)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Verify answers the subscription handshake: the challenge when the token matches, 403 otherwise.
func (s *Server) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if s.verifyToken == "" || q.Get("hub.verify_token") != s.verifyToken {
		s.logger.Warn("webhook verification failed", "mode", q.Get("hub.mode"))
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, q.Get("hub.challenge"))
}

// Receive dispatches every message of a notification. It always answers 200 so the
// channel does not redeliver; failures are reported to the customer by the dispatcher.
func (s *Server) Receive(w http.ResponseWriter, r *http.Request) {
	defer func() {
		writeJSON(w, map[string]bool{"success": true})
	}()

	var n whatsapp.Notification
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&n); err != nil {
		s.logger.Warn("invalid webhook payload", "err", err, "request_id", middleware.GetReqID(r.Context()))
		return
	}

	// Keep handling if the channel hangs up before we reply.
	ctx := context.WithoutCancel(r.Context())
	events := n.Inbound()
	if len(events) == 0 {
		s.logger.Debug("notification without messages")
		return
	}
	for _, in := range events {
		if in.ID == "" {
			in.ID = uuid.NewString()
		}
		s.dispatcher.Dispatch(ctx, in)
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"app":     "mercato",
		"version": s.version,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
