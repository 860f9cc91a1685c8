package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TabbyLane/genai-usecase-chatbot/internal/application"
	"github.com/TabbyLane/genai-usecase-chatbot/internal/domain"
)

type mockTranscriber struct {
	text string
	err  error
}

func (m *mockTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	return m.text, m.err
}

type mockNarrator struct {
	clip   []byte
	err    error
	called chan string
}

func (m *mockNarrator) Synthesize(_ context.Context, text string) ([]byte, error) {
	if m.called != nil {
		m.called <- text
	}
	return m.clip, m.err
}

type mockExporter struct {
	records []*domain.UseCaseRecord
	err     error
}

func (m *mockExporter) Export(_ context.Context, record *domain.UseCaseRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, record)
	return nil
}

func waitForNarration(t *testing.T, s *application.Session) []byte {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if clip := s.Narration(); clip != nil {
			return clip
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timeout waiting for narration clip")
	return nil
}

func TestInterviewer_SubmitTextAdvancesAndNarrates(t *testing.T) {
	narrator := &mockNarrator{clip: []byte("mp3"), called: make(chan string, 8)}
	iv := application.NewInterviewer(&mockTranscriber{}, narrator, &mockExporter{}, testLogger())
	session := newTestSession(t, domain.DefaultCatalog())

	next, err := iv.SubmitText(context.Background(), session, "ChatGPT and Claude")
	if err != nil {
		t.Fatalf("submitting: %v", err)
	}
	if next.ID != 2 {
		t.Errorf("next question: got ID %d, want 2", next.ID)
	}

	select {
	case text := <-narrator.called:
		if text != next.Text {
			t.Errorf("narrated text: got %q, want %q", text, next.Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("narration was not triggered on cursor transition")
	}

	if clip := waitForNarration(t, session); string(clip) != "mp3" {
		t.Errorf("cached clip: got %q", clip)
	}
}

func TestInterviewer_NarrationFailureIsNonFatal(t *testing.T) {
	narrator := &mockNarrator{err: errors.New("voice service down"), called: make(chan string, 8)}
	iv := application.NewInterviewer(&mockTranscriber{}, narrator, &mockExporter{}, testLogger())
	session := newTestSession(t, domain.DefaultCatalog())

	if _, err := iv.SubmitText(context.Background(), session, "an answer"); err != nil {
		t.Fatalf("narration failure blocked the answer: %v", err)
	}
	<-narrator.called

	if session.Cursor() != 1 {
		t.Errorf("cursor: got %d, want 1", session.Cursor())
	}
}

func TestInterviewer_EmptyTranscriptDoesNotAdvance(t *testing.T) {
	iv := application.NewInterviewer(&mockTranscriber{text: ""}, &mockNarrator{}, &mockExporter{}, testLogger())
	session := newTestSession(t, domain.DefaultCatalog())

	_, _, err := iv.SubmitAudio(context.Background(), session, []byte("audio"), "answer.wav")
	if !errors.Is(err, domain.ErrNoSpeech) {
		t.Errorf("empty transcript: got %v, want ErrNoSpeech", err)
	}
	if session.Cursor() != 0 {
		t.Errorf("cursor moved on empty transcript: got %d", session.Cursor())
	}
}

func TestInterviewer_TranscriptionErrorLeavesStateUnchanged(t *testing.T) {
	stt := &mockTranscriber{err: errors.New("whisper API error 500: upstream broke")}
	iv := application.NewInterviewer(stt, &mockNarrator{}, &mockExporter{}, testLogger())
	session := newTestSession(t, domain.DefaultCatalog())

	_, _, err := iv.SubmitAudio(context.Background(), session, []byte("audio"), "answer.wav")
	if err == nil {
		t.Fatal("expected transcription error")
	}
	if session.Cursor() != 0 || len(session.Answers()) != 0 {
		t.Errorf("state changed on transcription failure: cursor=%d answers=%d",
			session.Cursor(), len(session.Answers()))
	}
}

func TestInterviewer_FinishRecordingEmptyBuffer(t *testing.T) {
	iv := application.NewInterviewer(&mockTranscriber{text: "hi"}, &mockNarrator{}, &mockExporter{}, testLogger())
	session := newTestSession(t, domain.DefaultCatalog())

	_, _, err := iv.FinishRecording(context.Background(), session, "recording.wav")
	if !errors.Is(err, domain.ErrNoAudio) {
		t.Errorf("empty buffer: got %v, want ErrNoAudio", err)
	}
}

func TestInterviewer_FinishRecordingClearsBufferOnFailure(t *testing.T) {
	stt := &mockTranscriber{err: errors.New("unreachable")}
	iv := application.NewInterviewer(stt, &mockNarrator{}, &mockExporter{}, testLogger())
	session := newTestSession(t, domain.DefaultCatalog())

	session.Capture.Append([]byte("frame1"))
	session.Capture.Append([]byte("frame2"))

	if _, _, err := iv.FinishRecording(context.Background(), session, "recording.wav"); err == nil {
		t.Fatal("expected transcription error")
	}

	if session.Capture.Len() != 0 {
		t.Errorf("stale frames left in buffer: %d bytes", session.Capture.Len())
	}
}

func TestInterviewer_EndToEndTwoQuestions(t *testing.T) {
	catalog := domain.Catalog{{ID: 1, Text: "Q1"}, {ID: 2, Text: "Q2"}}
	exporter := &mockExporter{}
	iv := application.NewInterviewer(&mockTranscriber{}, &mockNarrator{}, exporter, testLogger())
	session := newTestSession(t, catalog)

	if _, err := iv.SubmitText(context.Background(), session, "a"); err != nil {
		t.Fatalf("first answer: %v", err)
	}
	if session.Cursor() != 1 {
		t.Fatalf("cursor after first answer: got %d", session.Cursor())
	}

	if _, err := iv.SubmitText(context.Background(), session, "b"); err != nil {
		t.Fatalf("second answer: %v", err)
	}
	if session.Cursor() != 2 || !session.Complete() {
		t.Fatalf("session not complete: cursor=%d", session.Cursor())
	}

	record, err := iv.Submit(context.Background(), session, "a caption")
	if err != nil {
		t.Fatalf("submitting: %v", err)
	}

	row := record.Row()
	want := []string{record.SubmittedAt.UTC().Format(time.RFC3339), "a", "b", "a caption"}
	if len(row) != len(want) {
		t.Fatalf("row length: got %d, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row[%d]: got %q, want %q", i, row[i], want[i])
		}
	}

	if len(exporter.records) != 1 {
		t.Fatalf("exported records: got %d, want 1", len(exporter.records))
	}
}

func TestInterviewer_ResubmitAfterExportRejected(t *testing.T) {
	catalog := domain.Catalog{{ID: 1, Text: "Q1"}}
	exporter := &mockExporter{}
	iv := application.NewInterviewer(&mockTranscriber{}, &mockNarrator{}, exporter, testLogger())
	session := newTestSession(t, catalog)

	iv.SubmitText(context.Background(), session, "a")
	if _, err := iv.Submit(context.Background(), session, ""); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err := iv.Submit(context.Background(), session, "")
	if !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Errorf("second submit: got %v, want ErrAlreadySubmitted", err)
	}
	if len(exporter.records) != 1 {
		t.Errorf("duplicate row exported: got %d records", len(exporter.records))
	}
}

func TestInterviewer_ExportFailureAllowsRetry(t *testing.T) {
	catalog := domain.Catalog{{ID: 1, Text: "Q1"}}
	exporter := &mockExporter{err: domain.ErrMissingCredentials}
	iv := application.NewInterviewer(&mockTranscriber{}, &mockNarrator{}, exporter, testLogger())
	session := newTestSession(t, catalog)

	iv.SubmitText(context.Background(), session, "a")

	_, err := iv.Submit(context.Background(), session, "")
	if !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("submit without credentials: got %v", err)
	}

	// Once the collaborator recovers the same session can be submitted.
	exporter.err = nil
	if _, err := iv.Submit(context.Background(), session, ""); err != nil {
		t.Fatalf("retry after export failure: %v", err)
	}
}
