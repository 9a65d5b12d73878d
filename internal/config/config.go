package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Gemini    GeminiConfig
	Interview InterviewConfig
	Storage   StorageConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host     string
	Port     int
	MaxConns int
}

type GeminiConfig struct {
	APIKey         string
	Model          string
	TimeoutSeconds int
	// MaxRetries is read and reported but not yet acted on; calls are made
	// exactly once and failures fall through to canned payloads.
	MaxRetries int
}

type InterviewConfig struct {
	QuestionCount         int
	MaxQuestionCount      int
	MinAnswerLength       int
	MaxAnswerLength       int
	SessionTimeoutMinutes int
	SweepIntervalMinutes  int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     8000,
			MaxConns: 256,
		},
		Gemini: GeminiConfig{
			Model:          "gemini-1.5-flash",
			TimeoutSeconds: 30,
			MaxRetries:     3,
		},
		Interview: InterviewConfig{
			QuestionCount:         10,
			MaxQuestionCount:      20,
			MinAnswerLength:       10,
			MaxAnswerLength:       5000,
			SessionTimeoutMinutes: 120,
			SweepIntervalMinutes:  15,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "parley-data"
		}
	}
	return filepath.Join(dir, "parley")
}

// Load reads configuration from a .env file in the working directory (if
// present), the JSON file at $XDG_CONFIG_HOME/parley/config.json, and
// PARLEY_* environment variables, in increasing precedence.
//
// The Gemini API key is required and accepted only from the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	if cfg.Gemini.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: Gemini API key. Set it via environment variable PARLEY_GEMINI_API_KEY")
	}
	if cfg.Interview.QuestionCount > cfg.Interview.MaxQuestionCount {
		return Config{}, fmt.Errorf("interview.question_count %d exceeds interview.max_question_count %d",
			cfg.Interview.QuestionCount, cfg.Interview.MaxQuestionCount)
	}

	return cfg, nil
}
