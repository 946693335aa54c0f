package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Default prompts, overridable per deployment.
const (
	DefaultSystemPrompt = "Summarize the following video transcript, description, and account name. " +
		"Additionally, create a detailed video description for visually impaired people " +
		"(up to 1400 characters) that describes what happens in the video based on the " +
		"transcript and any available visual information. Respond with valid JSON in this " +
		`exact format: {"summary": "your summary here", "video_description": ` +
		`"detailed description for visually impaired up to 1400 characters"}`

	DefaultImageAnalysisPrompt = "Analyze these photos from a tiktok clip, make a connection between the photos"

	DefaultContextPrompt = "Analyze the following video history and create a concise context summary that " +
		"captures the user's content themes, interests, and patterns. Focus on recurring " +
		"topics, style, and audience. If a previous context summary is provided, build " +
		"upon it and update it with new insights from the recent videos, maintaining " +
		"continuity while incorporating new patterns or changes."
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Storage    StorageConfig    `yaml:"storage"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	Mastodon   MastodonConfig   `yaml:"mastodon"`
	Transcode  TranscodeConfig  `yaml:"transcode"`
	Prompts    PromptsConfig    `yaml:"prompts"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `yaml:"port" envconfig:"WEB_PORT" default:"5000"`
	User            string        `yaml:"user" envconfig:"WEB_USER"`
	Password        string        `yaml:"password" envconfig:"WEB_PASSWORD"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// LoggingConfig holds log output configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT" default:"json"`
}

// StorageConfig holds the per-account history root.
type StorageConfig struct {
	DataPath string `yaml:"data_path" envconfig:"DATA_PATH" default:"/app/data"`
}

// OpenRouterConfig holds LLM gateway configuration.
type OpenRouterConfig struct {
	APIKey       string        `yaml:"api_key" envconfig:"OPENROUTER_API_KEY"`
	BaseURL      string        `yaml:"base_url" envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	Model        string        `yaml:"model" envconfig:"OPENROUTER_MODEL" default:"tngtech/deepseek-r1t2-chimera:free"`
	EnhanceModel string        `yaml:"enhance_model" envconfig:"ENHANCE_MODEL" default:"google/gemini-2.5-flash-lite"`
	ContextModel string        `yaml:"context_model" envconfig:"CONTEXT_MODEL" default:"tngtech/deepseek-r1t2-chimera:free"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"OPENROUTER_TIMEOUT" default:"2m"`
}

// WhisperConfig holds speech-transcription configuration. An empty API key
// disables the speech fallback; the resolver then reports no transcript.
type WhisperConfig struct {
	APIKey  string        `yaml:"api_key" envconfig:"WHISPER_API_KEY"`
	BaseURL string        `yaml:"base_url" envconfig:"WHISPER_BASE_URL" default:"https://api.openai.com/v1"`
	Model   string        `yaml:"model" envconfig:"WHISPER_MODEL" default:"whisper-1"`
	Timeout time.Duration `yaml:"timeout" envconfig:"WHISPER_TIMEOUT" default:"5m"`
}

// MastodonConfig holds the publish target. Timeout values are plain seconds
// to stay compatible with existing deployments.
type MastodonConfig struct {
	BaseURL          string `yaml:"base_url" envconfig:"MASTODON_BASE_URL"`
	AccessToken      string `yaml:"access_token" envconfig:"MASTODON_ACCESS_TOKEN"`
	MediaTimeoutSecs int    `yaml:"media_timeout_seconds" envconfig:"MASTODON_MEDIA_TIMEOUT" default:"600"`
}

// MediaTimeout returns the media-processing deadline as a duration.
func (c *MastodonConfig) MediaTimeout() time.Duration {
	return time.Duration(c.MediaTimeoutSecs) * time.Second
}

// Configured reports whether publishing credentials are present.
func (c *MastodonConfig) Configured() bool {
	return c.BaseURL != "" && c.AccessToken != ""
}

// TranscodeConfig holds the size-triggered re-encode settings.
type TranscodeConfig struct {
	Enabled     bool `yaml:"enabled" envconfig:"ENABLE_TRANSCODING" default:"true"`
	TimeoutSecs int  `yaml:"timeout_seconds" envconfig:"TRANSCODE_TIMEOUT" default:"600"`
}

// Timeout returns the re-encode deadline as a duration.
func (c *TranscodeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// PromptsConfig holds the model instructions.
type PromptsConfig struct {
	System        string `yaml:"system" envconfig:"SYSTEM_PROMPT"`
	User          string `yaml:"user" envconfig:"USER_PROMPT"`
	ImageAnalysis string `yaml:"image_analysis" envconfig:"IMAGE_ANALYSIS_PROMPT"`
	Context       string `yaml:"context" envconfig:"CONTEXT_PROMPT"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	cfg.applyFallbacks()

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// applyFallbacks resolves legacy environment variable names and fills
// prompt defaults.
func (c *Config) applyFallbacks() {
	if c.Mastodon.BaseURL == "" {
		c.Mastodon.BaseURL = os.Getenv("MASTODON_URL")
	}
	if c.Mastodon.AccessToken == "" {
		c.Mastodon.AccessToken = os.Getenv("AUTH_TOKEN")
	}
	if c.Prompts.System == "" {
		c.Prompts.System = DefaultSystemPrompt
	}
	if c.Prompts.ImageAnalysis == "" {
		c.Prompts.ImageAnalysis = DefaultImageAnalysisPrompt
	}
	if c.Prompts.Context == "" {
		c.Prompts.Context = DefaultContextPrompt
	}
}

// Validate checks that required configuration values are set. Mastodon
// credentials are deliberately not required here: dry-run deployments run
// without them and the publisher rejects posting at first use.
func (c *Config) Validate() error {
	if c.OpenRouter.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if c.Storage.DataPath == "" {
		return fmt.Errorf("DATA_PATH is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("WEB_PORT must be in 1..65535, got %d", c.Server.Port)
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BasicAuthEnabled reports whether the web surface requires credentials.
func (c *ServerConfig) BasicAuthEnabled() bool {
	return c.User != "" && c.Password != ""
}
