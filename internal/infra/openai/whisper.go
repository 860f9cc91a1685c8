package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/TabbyLane/genai-usecase-chatbot/internal/domain"
)

// WhisperClient transcribes audio answers via the OpenAI transcription
// endpoint. A failed call is surfaced to the visitor immediately; there is no
// retry, the visitor re-records or re-uploads instead.
type WhisperClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	language   string
}

func NewWhisperClient(apiKey, language string) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, language, "https://api.openai.com/v1")
}

func NewWhisperClientWithURL(apiKey, language, baseURL string) *WhisperClient {
	return &WhisperClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		language:   language,
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio blob and returns the recognized text. The
// returned text may be empty when no speech was detected; the caller treats
// that as "no answer provided".
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", domain.ErrNoAudio
	}

	uploadName, err := detectFormat(audio, filename)
	if err != nil {
		return "", err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", uploadName)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}

	if _, err = part.Write(audio); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}

	if err = writer.WriteField("model", "whisper-1"); err != nil {
		return "", fmt.Errorf("writing model field: %w", err)
	}

	if c.language != "" {
		if err = writer.WriteField("language", c.language); err != nil {
			return "", fmt.Errorf("writing language field: %w", err)
		}
	}

	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("closing writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("whisper API error %d: %s", resp.StatusCode, string(respBody))
	}

	var result transcriptionResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return result.Text, nil
}

// detectFormat picks the upload filename from the caller's hint or, failing
// that, from the container magic. Only mp3 and wav are accepted.
func detectFormat(audio []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3":
		return "answer.mp3", nil
	case ".wav":
		return "answer.wav", nil
	}

	if len(audio) >= 12 && string(audio[:4]) == "RIFF" && string(audio[8:12]) == "WAVE" {
		return "answer.wav", nil
	}
	if len(audio) >= 3 && string(audio[:3]) == "ID3" {
		return "answer.mp3", nil
	}
	// Raw MPEG frame sync, an mp3 without an ID3 tag.
	if len(audio) >= 2 && audio[0] == 0xFF && audio[1]&0xE0 == 0xE0 {
		return "answer.mp3", nil
	}

	return "", fmt.Errorf("%w: expected mp3 or wav", domain.ErrUnsupportedFormat)
}
