package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/TabbyLane/genai-usecase-chatbot/internal/application"
	"github.com/TabbyLane/genai-usecase-chatbot/internal/domain"
)

const sessionHeader = "X-Session-ID"

type questionPayload struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Step  int    `json:"step"`
	Total int    `json:"total"`
}

type answerPayload struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type statePayload struct {
	SessionID  string           `json:"session_id"`
	Complete   bool             `json:"complete"`
	Question   *questionPayload `json:"question,omitempty"`
	Transcript string           `json:"transcript,omitempty"`
	Answers    []answerPayload  `json:"answers,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.Create()
	s.interviewer.Begin(r.Context(), session)
	writeJSON(w, http.StatusCreated, s.state(session, ""))
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.state(session, ""))
}

func (s *Server) handleNarration(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	clip := session.Narration()
	if len(clip) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Write(clip)
}

func (s *Server) handleTextAnswer(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if _, err := s.interviewer.SubmitText(r.Context(), session, req.Text); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.state(session, ""))
}

func (s *Server) handleAudioAnswer(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		http.Error(w, "upload too large or malformed", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "reading upload", http.StatusBadRequest)
		return
	}

	transcript, _, err := s.interviewer.SubmitAudio(r.Context(), session, audio, header.Filename)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.state(session, transcript))
}

func (s *Server) handleMicStart(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.session(w, r); !ok {
		return
	}
	if s.recorder == nil {
		http.Error(w, "kiosk microphone not enabled", http.StatusNotFound)
		return
	}

	if err := s.recorder.Start(); err != nil {
		s.logger.Warn("starting microphone", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "recording"})
}

func (s *Server) handleMicStop(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	if s.recorder == nil {
		http.Error(w, "kiosk microphone not enabled", http.StatusNotFound)
		return
	}

	blob, err := s.recorder.Stop()
	if err != nil {
		s.logger.Warn("stopping microphone", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	session.Capture.Append(blob)

	transcript, _, err := s.interviewer.FinishRecording(r.Context(), session, "recording.wav")
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.state(session, transcript))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Caption string `json:"caption"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	record, err := s.interviewer.Submit(r.Context(), session, req.Caption)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "submitted",
		"submitted_at": record.SubmittedAt.UTC().Format(time.RFC3339),
	})
}

// session resolves the caller's session from the request header. A missing
// or unknown ID is the caller's bug, not a server fault.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*application.Session, bool) {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		id = r.URL.Query().Get("session")
	}
	if id == "" {
		http.Error(w, "missing session ID", http.StatusBadRequest)
		return nil, false
	}

	session, ok := s.sessions.Get(id)
	if !ok {
		http.Error(w, "unknown or expired session", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func (s *Server) state(session *application.Session, transcript string) statePayload {
	payload := statePayload{
		SessionID:  session.ID,
		Transcript: transcript,
	}

	if q, ok := session.CurrentQuestion(); ok {
		payload.Question = &questionPayload{
			ID:    q.ID,
			Text:  q.Text,
			Step:  session.Cursor() + 1,
			Total: s.sessions.Catalog().Len(),
		}
		return payload
	}

	payload.Complete = true
	answers := session.Answers()
	for _, q := range s.sessions.Catalog() {
		payload.Answers = append(payload.Answers, answerPayload{
			Question: q.Text,
			Answer:   answers[q.ID],
		})
	}
	return payload
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Warn("request rejected", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusForError maps the error taxonomy onto HTTP statuses. Collaborator
// failures come back as 502 so the page can render them as retryable
// warnings.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyAnswer),
		errors.Is(err, domain.ErrNoSpeech),
		errors.Is(err, domain.ErrNoAudio):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrSessionComplete),
		errors.Is(err, domain.ErrSessionIncomplete),
		errors.Is(err, domain.ErrAlreadySubmitted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
