package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/TabbyLane/genai-usecase-chatbot/config"
	"github.com/TabbyLane/genai-usecase-chatbot/internal/application"
	"github.com/TabbyLane/genai-usecase-chatbot/internal/domain"
	"github.com/TabbyLane/genai-usecase-chatbot/internal/infra/audio"
	"github.com/TabbyLane/genai-usecase-chatbot/internal/infra/elevenlabs"
	"github.com/TabbyLane/genai-usecase-chatbot/internal/infra/gsheets"
	"github.com/TabbyLane/genai-usecase-chatbot/internal/infra/openai"
	"github.com/TabbyLane/genai-usecase-chatbot/internal/infra/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment as-is")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	catalog := domain.DefaultCatalog()

	ttl, err := time.ParseDuration(cfg.Session.TTL)
	if err != nil {
		logger.Warn("invalid session TTL, using default", "error", err, "value", cfg.Session.TTL)
		ttl = 30 * time.Minute
	}

	sessions := application.NewRegistry(catalog, ttl, logger)
	sessions.StartSweeper(ctx, ttl/2)

	interviewer := application.NewInterviewer(
		createTranscriber(cfg.OpenAI, logger),
		createNarrator(cfg.ElevenLabs, logger),
		createExporter(cfg.Sheets, logger),
		logger,
	)

	var recorder web.Recorder
	if cfg.Audio.KioskMicrophone {
		recorder = audio.NewMicrophoneRecorder(cfg.Audio.SampleRate, logger)
	}

	server := web.New(web.Config{
		Addr:           cfg.HTTP.Addr,
		AuthToken:      cfg.HTTP.AuthToken,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		RatePerMinute:  cfg.HTTP.RatePerMinute,
	}, interviewer, sessions, recorder, logger)

	logger.Info("starting use case collector",
		"addr", cfg.HTTP.Addr,
		"questions", catalog.Len(),
		"kiosk_microphone", cfg.Audio.KioskMicrophone,
	)

	if err := server.Start(ctx); err != nil {
		logger.Error("starting server", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()

	if err := server.Stop(); err != nil {
		logger.Error("stopping server", "error", err)
		os.Exit(1)
	}
}

func createTranscriber(cfg config.OpenAIConfig, logger *slog.Logger) application.Transcriber {
	if cfg.APIKey == "" {
		logger.Warn("openai.api_key not set, audio answers disabled")
		return &application.NoopTranscriber{}
	}
	return openai.NewWhisperClient(cfg.APIKey, cfg.Language)
}

func createNarrator(cfg config.ElevenLabsConfig, logger *slog.Logger) application.Narrator {
	if cfg.APIKey == "" || cfg.VoiceID == "" {
		logger.Warn("elevenlabs.api_key or voice_id not set, narration disabled")
		return &application.NoopNarrator{}
	}
	return elevenlabs.NewClient(cfg.APIKey, cfg.VoiceID, cfg.ModelID, cfg.Stability, cfg.Similarity)
}

func createExporter(cfg config.SheetsConfig, logger *slog.Logger) application.Exporter {
	creds, err := cfg.CredentialsJSON()
	if err != nil {
		logger.Warn("reading sheets credentials, export disabled", "error", err)
		return &application.NoopExporter{}
	}
	if len(creds) == 0 || cfg.SpreadsheetID == "" {
		logger.Warn("sheets credentials or spreadsheet_id not set, export disabled")
		return &application.NoopExporter{}
	}
	return gsheets.NewClient(creds, cfg.SpreadsheetID, cfg.Worksheet)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
