package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TabbyLane/genai-usecase-chatbot/internal/domain"
	"github.com/TabbyLane/genai-usecase-chatbot/internal/infra/openai"
)

func wavBytes() []byte {
	header := []byte("RIFF....WAVE")
	return append(header, make([]byte, 32)...)
}

func TestWhisperClient_Transcribe(t *testing.T) {
	var gotModel, gotLanguage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			http.Error(w, "bad auth", http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": "I used ChatGPT for rubric design"})
	}))
	defer server.Close()

	client := openai.NewWhisperClientWithURL("test-key", "en", server.URL)

	text, err := client.Transcribe(context.Background(), wavBytes(), "answer.wav")
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}

	if text != "I used ChatGPT for rubric design" {
		t.Errorf("transcript: got %q", text)
	}
	if gotModel != "whisper-1" {
		t.Errorf("model field: got %q", gotModel)
	}
	if gotLanguage != "en" {
		t.Errorf("language field: got %q", gotLanguage)
	}
}

func TestWhisperClient_EmptyTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": ""})
	}))
	defer server.Close()

	client := openai.NewWhisperClientWithURL("test-key", "", server.URL)

	text, err := client.Transcribe(context.Background(), wavBytes(), "answer.wav")
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if text != "" {
		t.Errorf("transcript: got %q, want empty", text)
	}
}

func TestWhisperClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := openai.NewWhisperClientWithURL("test-key", "", server.URL)

	_, err := client.Transcribe(context.Background(), wavBytes(), "answer.wav")
	if err == nil {
		t.Fatal("expected error on HTTP 500")
	}
}

func TestWhisperClient_UnsupportedFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("collaborator should not be called for undecodable audio")
	}))
	defer server.Close()

	client := openai.NewWhisperClientWithURL("test-key", "", server.URL)

	_, err := client.Transcribe(context.Background(), []byte("not audio at all"), "mystery.bin")
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestWhisperClient_FormatSniffing(t *testing.T) {
	tests := []struct {
		name     string
		audio    []byte
		filename string
		wantErr  bool
	}{
		{name: "wav magic", audio: wavBytes(), filename: ""},
		{name: "id3 tagged mp3", audio: append([]byte("ID3"), make([]byte, 16)...), filename: ""},
		{name: "raw mpeg frame", audio: []byte{0xFF, 0xFB, 0x90, 0x00}, filename: ""},
		{name: "extension hint wins", audio: []byte("opaque"), filename: "upload.MP3"},
		{name: "unknown blob", audio: []byte("opaque"), filename: "upload.ogg", wantErr: true},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": "ok"})
	}))
	defer server.Close()

	client := openai.NewWhisperClientWithURL("test-key", "", server.URL)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Transcribe(context.Background(), tt.audio, tt.filename)
			if tt.wantErr && !errors.Is(err, domain.ErrUnsupportedFormat) {
				t.Errorf("got %v, want ErrUnsupportedFormat", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestWhisperClient_NoAudio(t *testing.T) {
	client := openai.NewWhisperClient("test-key", "")

	_, err := client.Transcribe(context.Background(), nil, "answer.wav")
	if !errors.Is(err, domain.ErrNoAudio) {
		t.Errorf("got %v, want ErrNoAudio", err)
	}
}
