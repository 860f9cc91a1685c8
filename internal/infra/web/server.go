package web

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/TabbyLane/genai-usecase-chatbot/internal/application"
)

//go:embed index.html
var indexHTML embed.FS

// Recorder is the optional host-microphone capture used in kiosk
// deployments. Start begins recording; Stop returns the captured WAV blob.
type Recorder interface {
	Start() error
	Stop() ([]byte, error)
}

// Config carries the HTTP surface settings.
type Config struct {
	Addr           string
	AuthToken      string
	MaxUploadBytes int64
	RatePerMinute  int
}

// Server exposes the questionnaire over HTTP: the embedded single-page UI,
// JSON endpoints for answers and submission, and a websocket for live
// recording frames.
type Server struct {
	cfg         Config
	interviewer *application.Interviewer
	sessions    *application.Registry
	recorder    Recorder
	logger      *slog.Logger

	mux     *http.ServeMux
	limiter *RateLimiter

	mu      sync.Mutex
	server  *http.Server
	running bool
}

func New(cfg Config, interviewer *application.Interviewer, sessions *application.Registry, recorder Recorder, logger *slog.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		interviewer: interviewer,
		sessions:    sessions,
		recorder:    recorder,
		logger:      logger,
		mux:         http.NewServeMux(),
		limiter:     NewRateLimiter(cfg.RatePerMinute, time.Minute),
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /api/session", s.limiter.Middleware(s.authorized(s.handleCreateSession)))
	s.mux.HandleFunc("GET /api/question", s.authorized(s.handleQuestion))
	s.mux.HandleFunc("GET /api/narration", s.authorized(s.handleNarration))
	s.mux.HandleFunc("POST /api/answer", s.limiter.Middleware(s.authorized(s.handleTextAnswer)))
	s.mux.HandleFunc("POST /api/answer/audio", s.limiter.Middleware(s.authorized(s.handleAudioAnswer)))
	s.mux.HandleFunc("GET /api/record", s.authorized(s.handleRecord))
	s.mux.HandleFunc("POST /api/record/mic/start", s.limiter.Middleware(s.authorized(s.handleMicStart)))
	s.mux.HandleFunc("POST /api/record/mic/stop", s.limiter.Middleware(s.authorized(s.handleMicStop)))
	s.mux.HandleFunc("POST /api/submit", s.limiter.Middleware(s.authorized(s.handleSubmit)))

	return s
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start brings the listener up in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.server = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		s.logger.Info("HTTP server starting", "addr", s.cfg.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

// Stop shuts the listener down, forcing the close when a graceful shutdown
// stalls.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}

	s.running = false
	return nil
}

// authorized enforces the shared token when one is configured. Kiosk and
// internal deployments usually run without it.
func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AuthToken != "" {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token != s.cfg.AuthToken {
				s.logger.Warn("unauthorized request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := indexHTML.ReadFile("index.html")
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	status := "ok"
	code := http.StatusOK
	if !running {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"status":"%s","sessions":%d}`, status, s.sessions.Len())
}
