package application

import (
	"strings"
	"sync"
	"time"

	"github.com/TabbyLane/genai-usecase-chatbot/internal/domain"
)

// Session holds all state for one visitor walking through the questionnaire:
// the cursor, the collected answers, the in-progress recording buffer and the
// cached narration clip. Nothing is shared between sessions.
type Session struct {
	ID      string
	Capture *CaptureBuffer

	catalog domain.Catalog

	mu         sync.Mutex
	cursor     int
	answers    map[int]string
	narration  []byte
	exported   bool
	createdAt  time.Time
	lastActive time.Time
}

func newSession(id string, catalog domain.Catalog) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Capture:    NewCaptureBuffer(),
		catalog:    catalog,
		answers:    make(map[int]string, catalog.Len()),
		createdAt:  now,
		lastActive: now,
	}
}

// CurrentQuestion returns the next unanswered question, or false once every
// question has an answer.
func (s *Session) CurrentQuestion() (domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.At(s.cursor)
}

// SubmitAnswer records text for the current question and advances the cursor
// by one. Empty or whitespace-only text fails with ErrEmptyAnswer and leaves
// the cursor in place. After the last question it fails with
// ErrSessionComplete.
func (s *Session) SubmitAnswer(text string) (domain.Question, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.Question{}, domain.ErrEmptyAnswer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.catalog.At(s.cursor)
	if !ok {
		return domain.Question{}, domain.ErrSessionComplete
	}

	s.answers[q.ID] = trimmed
	s.cursor++

	next, _ := s.catalog.At(s.cursor)
	return next, nil
}

// Complete reports whether every question has been answered.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor >= s.catalog.Len()
}

// Cursor returns the index of the next unanswered question.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Answers returns a copy of the collected answers keyed by question ID.
func (s *Session) Answers() map[int]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[int]string, len(s.answers))
	for id, text := range s.answers {
		copied[id] = text
	}
	return copied
}

// Finalize builds the exportable record, stamping the submission time now.
// It fails with ErrSessionIncomplete while questions remain and with
// ErrAlreadySubmitted once MarkExported has been called.
func (s *Session) Finalize(caption string) (*domain.UseCaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exported {
		return nil, domain.ErrAlreadySubmitted
	}
	if s.cursor < s.catalog.Len() {
		return nil, domain.ErrSessionIncomplete
	}

	return domain.NewUseCaseRecord(s.ID, s.catalog, s.answers, strings.TrimSpace(caption), time.Now()), nil
}

// MarkExported locks the session against duplicate submissions. Called only
// after the spreadsheet append succeeded.
func (s *Session) MarkExported() {
	s.mu.Lock()
	s.exported = true
	s.mu.Unlock()
}

// SetNarration caches the synthesized clip for the current question.
func (s *Session) SetNarration(clip []byte) {
	s.mu.Lock()
	s.narration = clip
	s.mu.Unlock()
}

// Narration returns the cached clip for the current question, or nil when
// synthesis has not finished (or failed).
func (s *Session) Narration() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.narration
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

