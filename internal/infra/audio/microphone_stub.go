//go:build !portaudio
// +build !portaudio

package audio

import (
	"fmt"
	"log/slog"
)

// MicrophoneRecorder stub when portaudio is not available.
type MicrophoneRecorder struct {
	logger *slog.Logger
}

func NewMicrophoneRecorder(sampleRate int, logger *slog.Logger) *MicrophoneRecorder {
	return &MicrophoneRecorder{logger: logger}
}

func (m *MicrophoneRecorder) Start() error {
	return fmt.Errorf("microphone recording not available: rebuild with -tags portaudio")
}

func (m *MicrophoneRecorder) Stop() ([]byte, error) {
	return nil, fmt.Errorf("microphone recording not available")
}
