package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TabbyLane/genai-usecase-chatbot/internal/domain"
)

// Registry owns all live sessions. Idle sessions are torn down by a periodic
// sweep so abandoned questionnaires do not accumulate.
type Registry struct {
	catalog domain.Catalog
	ttl     time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(catalog domain.Catalog, ttl time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		catalog:  catalog,
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create starts a fresh session with its own cursor, answers and capture
// buffer.
func (r *Registry) Create() *Session {
	s := newSession(uuid.NewString(), r.catalog)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Info("session created", "session_id", s.ID)
	return s
}

// Get looks up a session by ID and refreshes its idle timer.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()

	if ok {
		s.touch()
	}
	return s, ok
}

// Remove drops a session immediately.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Catalog returns the questionnaire every session walks through.
func (r *Registry) Catalog() domain.Catalog {
	return r.catalog
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// StartSweeper launches a background loop that evicts sessions idle for
// longer than the TTL. It stops when ctx is cancelled.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sweep()
			}
		}
	}()
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	var expired []string
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if len(expired) > 0 {
		r.logger.Info("expired idle sessions", "count", len(expired))
	}
}
