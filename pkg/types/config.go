// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests outside the LLM SDKs (metadata lookup).
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// AIProvider identifies the hosted chat-completion API.
type AIProvider string

const (
	ProviderOpenAI    AIProvider = "openai"
	ProviderAnthropic AIProvider = "anthropic"
)

// AIConfig holds settings for the chat-completion client.
type AIConfig struct {
	// Provider selects the API: openai (default) or anthropic.
	Provider AIProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (default "gpt-4").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxRetries is passed to the SDK. Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Timeout bounds a single completion call. Zero keeps the SDK default.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ExtractionBackend identifies the PDF text extraction tool.
type ExtractionBackend string

const (
	BackendNative     ExtractionBackend = "native"
	BackendMarkitdown ExtractionBackend = "markitdown"
)

// ExtractionConfig holds settings for PDF text extraction.
type ExtractionConfig struct {
	// Backend selects the extractor: native (pure Go) or markitdown (container).
	Backend ExtractionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// MaxUploadBytes rejects larger PDFs before extraction (default 50 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// SectionsConfig holds settings for heading detection.
type SectionsConfig struct {
	// Mode is keywords, capitalization, or auto (default).
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`

	// MaxSectionChars truncates a section body before it is sent to the model.
	MaxSectionChars int `json:"max_section_chars" yaml:"max_section_chars" mapstructure:"max_section_chars"`
}

// ReviewConfig holds settings for multi-document literature reviews.
type ReviewConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxDocumentChars truncates a document before it is summarized.
	MaxDocumentChars int `json:"max_document_chars" yaml:"max_document_chars" mapstructure:"max_document_chars"`

	// OpenAlexLookup enables title lookups to refine inferred citations.
	OpenAlexLookup bool `json:"openalex_lookup" yaml:"openalex_lookup" mapstructure:"openalex_lookup"`

	// OpenAlexEmail is sent as mailto for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`
}

// SessionBackend identifies where interactive session state lives.
type SessionBackend string

const (
	SessionMemory SessionBackend = "memory"
	SessionRedis  SessionBackend = "redis"
)

// SessionConfig holds settings for ephemeral session state.
type SessionConfig struct {
	Backend         SessionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`
	TTL             time.Duration  `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration  `json:"cleanup_interval" yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
	RedisURL        string         `json:"redis_url,omitempty" yaml:"redis_url,omitempty" mapstructure:"redis_url"`
	CookieName      string         `json:"cookie_name" yaml:"cookie_name" mapstructure:"cookie_name"`
}

// ServerConfig holds settings for the web UI.
type ServerConfig struct {
	// Addr is the listen address (default ":8501").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowedOrigins restricts CORS. Empty allows any origin.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// Env is development or production.
	Env string `json:"env" yaml:"env" mapstructure:"env"`
}

// IsDev reports whether the server runs in development mode.
func (s ServerConfig) IsDev() bool {
	return s.Env == "" || s.Env == "development"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// File enables rotated JSON log output in addition to the console.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`

	Development bool `json:"development" yaml:"development" mapstructure:"development"`
}

// Config groups all component configurations.
type Config struct {
	AI         AIConfig         `json:"ai" yaml:"ai" mapstructure:"ai"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Sections   SectionsConfig   `json:"sections" yaml:"sections" mapstructure:"sections"`
	Review     ReviewConfig     `json:"review" yaml:"review" mapstructure:"review"`
	Session    SessionConfig    `json:"session" yaml:"session" mapstructure:"session"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// Defaults returns the configuration used when no file, flag, or
// environment variable overrides a value.
func Defaults() Config {
	return Config{
		AI: AIConfig{
			Provider: ProviderOpenAI,
			Model:    "gpt-4",
		},
		Extraction: ExtractionConfig{
			Backend:        BackendNative,
			MaxUploadBytes: 50 << 20,
		},
		Sections: SectionsConfig{
			Mode:            "auto",
			MaxSectionChars: 12000,
		},
		Review: ReviewConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   15 * time.Second,
				UserAgent: "research-assistant/0.1",
			},
			MaxDocumentChars: 16000,
		},
		Session: SessionConfig{
			Backend:         SessionMemory,
			TTL:             time.Hour,
			CleanupInterval: 10 * time.Minute,
			CookieName:      "ra_session",
		},
		Server: ServerConfig{
			Addr: ":8501",
			Env:  "development",
		},
		Log: LogConfig{
			Level:       "info",
			Development: true,
		},
	}
}
