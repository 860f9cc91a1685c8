//go:build portaudio
// +build portaudio

package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// MicrophoneRecorder captures spoken answers from the host microphone in
// kiosk deployments, where the collector runs on a machine next to the
// visitor instead of in their browser. One recording at a time.
type MicrophoneRecorder struct {
	sampleRate int
	logger     *slog.Logger

	mu        sync.Mutex
	stream    *portaudio.Stream
	frame     []int16
	samples   []int16
	recording bool
	done      chan struct{}
}

func NewMicrophoneRecorder(sampleRate int, logger *slog.Logger) *MicrophoneRecorder {
	return &MicrophoneRecorder{
		sampleRate: sampleRate,
		logger:     logger,
	}
}

// Start opens the default input device and begins accumulating samples.
func (m *MicrophoneRecorder) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.recording {
		return fmt.Errorf("recording already in progress")
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	m.frame = make([]int16, 1024)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(m.frame), m.frame)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting stream: %w", err)
	}

	m.stream = stream
	m.samples = m.samples[:0]
	m.recording = true
	m.done = make(chan struct{})

	go m.capture(m.done)

	m.logger.Info("microphone recording started", "sample_rate", m.sampleRate)
	return nil
}

func (m *MicrophoneRecorder) capture(done chan struct{}) {
	defer close(done)
	for {
		m.mu.Lock()
		if !m.recording {
			m.mu.Unlock()
			return
		}
		stream := m.stream
		m.mu.Unlock()

		if err := stream.Read(); err != nil {
			m.logger.Warn("reading microphone frame", "error", err)
			return
		}

		m.mu.Lock()
		m.samples = append(m.samples, m.frame...)
		m.mu.Unlock()
	}
}

// Stop ends the capture and returns the recording as a WAV blob.
func (m *MicrophoneRecorder) Stop() ([]byte, error) {
	m.mu.Lock()
	if !m.recording {
		m.mu.Unlock()
		return nil, fmt.Errorf("no recording in progress")
	}
	m.recording = false
	stream := m.stream
	done := m.done
	m.stream = nil
	m.mu.Unlock()

	stream.Stop()
	<-done
	stream.Close()
	portaudio.Terminate()

	m.mu.Lock()
	samples := m.samples
	m.samples = nil
	m.mu.Unlock()

	if len(samples) == 0 {
		return nil, nil
	}

	m.logger.Info("microphone recording stopped", "samples", len(samples))
	return wavFromSamples(samples, m.sampleRate), nil
}

// wavFromSamples wraps 16-bit mono PCM in a RIFF/WAVE container.
func wavFromSamples(samples []int16, sampleRate int) []byte {
	var buf bytes.Buffer

	dataSize := len(samples) * 2
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, int32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, int32(16))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, int16(2))
	binary.Write(&buf, binary.LittleEndian, int16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	for _, sample := range samples {
		binary.Write(&buf, binary.LittleEndian, sample)
	}

	return buf.Bytes()
}
