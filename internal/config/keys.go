package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.host", typ: kString, env: "PARLEY_SERVER_HOST",
		apply:   func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Host },
	},
	{
		key: "server.port", typ: kInt, env: "PARLEY_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.max_conns", typ: kInt, env: "PARLEY_SERVER_MAX_CONNS",
		apply:   func(cfg *Config, v any) { cfg.Server.MaxConns = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.MaxConns },
	},
	{
		key: "gemini.api_key", typ: kString, env: "PARLEY_GEMINI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Gemini.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.APIKey },
	},
	{
		key: "gemini.model", typ: kString, env: "PARLEY_GEMINI_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Gemini.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.Model },
	},
	{
		key: "gemini.timeout_seconds", typ: kInt, env: "PARLEY_GEMINI_TIMEOUT_SECONDS",
		apply:   func(cfg *Config, v any) { cfg.Gemini.TimeoutSeconds = v.(int) },
		extract: func(cfg Config) any { return cfg.Gemini.TimeoutSeconds },
	},
	{
		key: "gemini.max_retries", typ: kInt, env: "PARLEY_GEMINI_MAX_RETRIES",
		apply:   func(cfg *Config, v any) { cfg.Gemini.MaxRetries = v.(int) },
		extract: func(cfg Config) any { return cfg.Gemini.MaxRetries },
	},
	{
		key: "interview.question_count", typ: kInt, env: "PARLEY_INTERVIEW_QUESTION_COUNT",
		apply:   func(cfg *Config, v any) { cfg.Interview.QuestionCount = v.(int) },
		extract: func(cfg Config) any { return cfg.Interview.QuestionCount },
	},
	{
		key: "interview.max_question_count", typ: kInt, env: "PARLEY_INTERVIEW_MAX_QUESTION_COUNT",
		apply:   func(cfg *Config, v any) { cfg.Interview.MaxQuestionCount = v.(int) },
		extract: func(cfg Config) any { return cfg.Interview.MaxQuestionCount },
	},
	{
		key: "interview.min_answer_length", typ: kInt, env: "PARLEY_INTERVIEW_MIN_ANSWER_LENGTH",
		apply:   func(cfg *Config, v any) { cfg.Interview.MinAnswerLength = v.(int) },
		extract: func(cfg Config) any { return cfg.Interview.MinAnswerLength },
	},
	{
		key: "interview.max_answer_length", typ: kInt, env: "PARLEY_INTERVIEW_MAX_ANSWER_LENGTH",
		apply:   func(cfg *Config, v any) { cfg.Interview.MaxAnswerLength = v.(int) },
		extract: func(cfg Config) any { return cfg.Interview.MaxAnswerLength },
	},
	{
		key: "interview.session_timeout_minutes", typ: kInt, env: "PARLEY_INTERVIEW_SESSION_TIMEOUT_MINUTES",
		apply:   func(cfg *Config, v any) { cfg.Interview.SessionTimeoutMinutes = v.(int) },
		extract: func(cfg Config) any { return cfg.Interview.SessionTimeoutMinutes },
	},
	{
		key: "interview.sweep_interval_minutes", typ: kInt, env: "PARLEY_INTERVIEW_SWEEP_INTERVAL_MINUTES",
		apply:   func(cfg *Config, v any) { cfg.Interview.SweepIntervalMinutes = v.(int) },
		extract: func(cfg Config) any { return cfg.Interview.SweepIntervalMinutes },
	},
	{
		key: "storage.data_dir", typ: kString, env: "PARLEY_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "PARLEY_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b Backend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
