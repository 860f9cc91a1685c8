package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Audio      AudioConfig      `yaml:"audio"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Sheets     SheetsConfig     `yaml:"sheets"`
	Session    SessionConfig    `yaml:"session"`
	Log        LogConfig        `yaml:"log"`
}

type HTTPConfig struct {
	Addr           string `yaml:"addr"`
	AuthToken      string `yaml:"auth_token"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	RatePerMinute  int    `yaml:"rate_per_minute"`
}

type AudioConfig struct {
	KioskMicrophone bool `yaml:"kiosk_microphone"`
	SampleRate      int  `yaml:"sample_rate"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	Language string `yaml:"language"`
}

type ElevenLabsConfig struct {
	APIKey     string  `yaml:"api_key"`
	VoiceID    string  `yaml:"voice_id"`
	ModelID    string  `yaml:"model_id"`
	Stability  float64 `yaml:"stability"`
	Similarity float64 `yaml:"similarity_boost"`
}

type SheetsConfig struct {
	// Credentials is the service-account JSON blob, usually injected via
	// ${GOOGLE_SERVICE_ACCOUNT}. CredentialsFile wins when both are set.
	Credentials     string `yaml:"credentials"`
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	Worksheet       string `yaml:"worksheet"`
}

type SessionConfig struct {
	TTL string `yaml:"ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

// CredentialsJSON resolves the service-account blob, preferring the file.
func (c *SheetsConfig) CredentialsJSON() ([]byte, error) {
	if c.CredentialsFile != "" {
		data, err := os.ReadFile(c.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		return data, nil
	}
	return []byte(c.Credentials), nil
}

func (c *Config) setDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.MaxUploadBytes == 0 {
		c.HTTP.MaxUploadBytes = 10 * 1024 * 1024
	}
	if c.HTTP.RatePerMinute == 0 {
		c.HTTP.RatePerMinute = 60
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.ElevenLabs.ModelID == "" {
		c.ElevenLabs.ModelID = "eleven_monolingual_v1"
	}
	if c.ElevenLabs.Stability == 0 {
		c.ElevenLabs.Stability = 0.5
	}
	if c.ElevenLabs.Similarity == 0 {
		c.ElevenLabs.Similarity = 0.75
	}
	if c.Sheets.Worksheet == "" {
		c.Sheets.Worksheet = "UseCases"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "30m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
