// Package config loads the service configuration from a YAML file with
// environment variable overrides. Every field has a workable default so the
// daemon starts with no file at all (mock model, in-memory stores).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP front.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	APIKey        string `yaml:"api_key"`
	MaxConcurrent int64  `yaml:"max_concurrent"`
}

// ModelConfig selects and configures the generation provider.
type ModelConfig struct {
	// Provider is one of "anthropic", "openai", "gemini" or "mock".
	Provider string `yaml:"provider"`
	// Name overrides the provider's default model.
	Name string `yaml:"name"`
	// APIKey overrides the provider SDK's ambient credential lookup.
	APIKey string `yaml:"api_key"`
	// MaxTokens is the completion budget per strategy call.
	MaxTokens int64 `yaml:"max_tokens"`
	// Temperature overrides the adapter's default sampling temperature.
	// Strategy-level biases still take precedence per call.
	Temperature float64 `yaml:"temperature"`
	// Project and Location switch the gemini provider to Vertex AI.
	Project  string `yaml:"project"`
	Location string `yaml:"location"`
}

// EngineConfig tunes turn processing.
type EngineConfig struct {
	Deadline            time.Duration `yaml:"deadline"`
	ReportMinTurns      int           `yaml:"report_min_turns"`
	ReportMinConfidence float64       `yaml:"report_min_confidence"`
	Scorer              ScorerConfig  `yaml:"scorer"`
}

// ScorerConfig overrides individual scoring weights. Zero values keep the
// production defaults.
type ScorerConfig struct {
	// CategoryWeights maps wire category names (phishingLinks, upiIds, ...)
	// to per-value scores.
	CategoryWeights map[string]float64 `yaml:"category_weights"`
	MissingBonus    float64            `yaml:"missing_bonus"`
	DangerPenalty   float64            `yaml:"danger_penalty"`
	// DangerWords replaces the cover-breaking vocabulary entirely when set.
	DangerWords []string `yaml:"danger_words"`
}

// SessionConfig selects the session store backend.
type SessionConfig struct {
	// Backend is one of "memory", "sqlite" or "firestore".
	Backend string `yaml:"backend"`
	// Path is the sqlite database file.
	Path string `yaml:"path"`
	// Project and Collection configure the firestore backend.
	Project    string `yaml:"project"`
	Collection string `yaml:"collection"`
}

// ReportConfig configures final report delivery.
type ReportConfig struct {
	// WebhookURL receives the report; empty keeps reports in memory.
	WebhookURL string        `yaml:"webhook_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
}

// TranscriptConfig configures engagement transcripts.
type TranscriptConfig struct {
	// Backend is one of "none", "memory" or "file".
	Backend string `yaml:"backend"`
	// Dir is the base directory for the file backend.
	Dir string `yaml:"dir"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`
	// Format is "json" or "text".
	Format string `yaml:"format"`
}

// Config is the root configuration document.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Model      ModelConfig      `yaml:"model"`
	Engine     EngineConfig     `yaml:"engine"`
	Session    SessionConfig    `yaml:"session"`
	Report     ReportConfig     `yaml:"report"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:          ":8080",
			MaxConcurrent: 64,
		},
		Model: ModelConfig{
			Provider:  "mock",
			MaxTokens: 1024,
		},
		Engine: EngineConfig{
			Deadline:            25 * time.Second,
			ReportMinTurns:      18,
			ReportMinConfidence: 0.7,
		},
		Session: SessionConfig{
			Backend:    "memory",
			Path:       "honeymesh.db",
			Collection: "honeypot_sessions",
		},
		Report: ReportConfig{
			Timeout: 15 * time.Second,
		},
		Transcript: TranscriptConfig{
			Backend: "none",
			Dir:     "transcripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path (when non-empty), applies environment overrides and
// validates the result. A missing file with an empty path is not an error;
// an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv layers HONEYMESH_* environment variables over the file values.
func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.Server.Addr, "HONEYMESH_ADDR")
	setString(&c.Server.APIKey, "HONEYMESH_API_KEY")
	setString(&c.Model.Provider, "HONEYMESH_MODEL_PROVIDER")
	setString(&c.Model.Name, "HONEYMESH_MODEL_NAME")
	setString(&c.Model.APIKey, "HONEYMESH_MODEL_API_KEY")
	setString(&c.Session.Backend, "HONEYMESH_SESSION_BACKEND")
	setString(&c.Session.Path, "HONEYMESH_SESSION_PATH")
	setString(&c.Session.Project, "HONEYMESH_SESSION_PROJECT")
	setString(&c.Report.WebhookURL, "HONEYMESH_REPORT_WEBHOOK_URL")
	setString(&c.Report.APIKey, "HONEYMESH_REPORT_API_KEY")
	setString(&c.Logging.Level, "HONEYMESH_LOG_LEVEL")

	if v := os.Getenv("HONEYMESH_DEADLINE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Engine.Deadline = d
		}
	}
	if v := os.Getenv("HONEYMESH_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Server.MaxConcurrent = n
		}
	}
}

// Validate rejects configurations the daemon cannot start with.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "anthropic", "openai", "gemini", "mock":
	default:
		return fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}

	switch c.Session.Backend {
	case "memory":
	case "sqlite":
		if c.Session.Path == "" {
			return fmt.Errorf("sqlite session backend requires a path")
		}
	case "firestore":
		if c.Session.Project == "" {
			return fmt.Errorf("firestore session backend requires a project")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}

	switch c.Transcript.Backend {
	case "none", "memory":
	case "file":
		if c.Transcript.Dir == "" {
			return fmt.Errorf("file transcript backend requires a dir")
		}
	default:
		return fmt.Errorf("unknown transcript backend %q", c.Transcript.Backend)
	}

	if c.Engine.ReportMinConfidence < 0 || c.Engine.ReportMinConfidence > 1 {
		return fmt.Errorf("report_min_confidence must be within [0,1]")
	}
	if c.Server.MaxConcurrent <= 0 {
		return fmt.Errorf("max_concurrent must be positive")
	}
	return nil
}
