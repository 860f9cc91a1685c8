package application

import (
	"context"
	"fmt"
)

// Transcriber converts an audio blob into recognized text. The filename is a
// hint for the container format; implementations may sniff the bytes instead.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Narrator synthesizes a prompt into a playable audio clip.
type Narrator interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// NoopTranscriber rejects audio answers when no speech-to-text key is
// configured. Typed answers keep working.
type NoopTranscriber struct{}

func (n *NoopTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	return "", fmt.Errorf("transcription not configured: set openai.api_key to enable audio answers")
}

// NoopNarrator disables narration; the questionnaire stays usable without it.
type NoopNarrator struct{}

func (n *NoopNarrator) Synthesize(_ context.Context, _ string) ([]byte, error) {
	return nil, fmt.Errorf("narration not configured: set elevenlabs.api_key to enable spoken questions")
}
