package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TabbyLane/genai-usecase-chatbot/internal/domain"
)

const narrationTimeout = 30 * time.Second

// Interviewer drives a session through the questionnaire: it accepts answers
// from any input path, advances the cursor, triggers narration once per
// transition and hands the finished session to the exporter.
type Interviewer struct {
	stt      Transcriber
	tts      Narrator
	exporter Exporter
	logger   *slog.Logger
}

func NewInterviewer(stt Transcriber, tts Narrator, exporter Exporter, logger *slog.Logger) *Interviewer {
	return &Interviewer{
		stt:      stt,
		tts:      tts,
		exporter: exporter,
		logger:   logger,
	}
}

// Begin narrates the first question of a fresh session.
func (iv *Interviewer) Begin(ctx context.Context, s *Session) {
	if q, ok := s.CurrentQuestion(); ok {
		iv.narrate(ctx, s, q)
	}
}

// SubmitText records a typed answer and advances to the next question. On
// success the new question's narration is synthesized in the background.
func (iv *Interviewer) SubmitText(ctx context.Context, s *Session, text string) (domain.Question, error) {
	next, err := s.SubmitAnswer(text)
	if err != nil {
		return domain.Question{}, err
	}

	iv.logger.Info("answer recorded", "session_id", s.ID, "cursor", s.Cursor())

	if next.Text != "" {
		iv.narrate(ctx, s, next)
	}
	return next, nil
}

// SubmitAudio transcribes an audio answer and, when speech was recognized,
// records it like a typed answer. An empty transcript leaves the cursor in
// place and reports ErrNoSpeech so the visitor can retry.
func (iv *Interviewer) SubmitAudio(ctx context.Context, s *Session, audio []byte, filename string) (string, domain.Question, error) {
	if len(audio) == 0 {
		return "", domain.Question{}, domain.ErrNoAudio
	}

	text, err := iv.stt.Transcribe(ctx, audio, filename)
	if err != nil {
		return "", domain.Question{}, fmt.Errorf("transcribing answer: %w", err)
	}

	iv.logger.Info("audio transcribed", "session_id", s.ID, "bytes", len(audio), "chars", len(text))

	next, err := iv.SubmitText(ctx, s, text)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyAnswer) {
			return "", domain.Question{}, domain.ErrNoSpeech
		}
		return "", domain.Question{}, err
	}
	return text, next, nil
}

// FinishRecording drains the session's capture buffer and submits the blob as
// an audio answer. The buffer is cleared whether or not transcription
// succeeds, so stale frames never leak into the next attempt.
func (iv *Interviewer) FinishRecording(ctx context.Context, s *Session, filename string) (string, domain.Question, error) {
	blob := s.Capture.Flush()
	if len(blob) == 0 {
		return "", domain.Question{}, domain.ErrNoAudio
	}
	return iv.SubmitAudio(ctx, s, blob, filename)
}

// Submit finalizes a completed session and appends it to the spreadsheet.
// The session is marked exported only after the append succeeds; a repeat
// call then fails with ErrAlreadySubmitted.
func (iv *Interviewer) Submit(ctx context.Context, s *Session, caption string) (*domain.UseCaseRecord, error) {
	record, err := s.Finalize(caption)
	if err != nil {
		return nil, err
	}

	if err := iv.exporter.Export(ctx, record); err != nil {
		return nil, fmt.Errorf("exporting use case: %w", err)
	}

	s.MarkExported()
	iv.logger.Info("use case exported", "session_id", s.ID, "submitted_at", record.SubmittedAt)
	return record, nil
}

// narrate synthesizes the question clip in the background and caches it on
// the session. Narration failure is a warning only; the questionnaire keeps
// working without audio.
func (iv *Interviewer) narrate(ctx context.Context, s *Session, q domain.Question) {
	s.SetNarration(nil)

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), narrationTimeout)
		defer cancel()

		clip, err := iv.tts.Synthesize(ctx, q.Text)
		if err != nil {
			iv.logger.Warn("narration failed", "session_id", s.ID, "question_id", q.ID, "error", err)
			return
		}

		s.SetNarration(clip)
		iv.logger.Info("narration ready", "session_id", s.ID, "question_id", q.ID, "bytes", len(clip))
	}()
}
