package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate_Success(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Port: 5000,
		},
		OpenRouter: OpenRouterConfig{
			APIKey: "test-or-key",
		},
		Storage: StorageConfig{
			DataPath: "/app/data",
		},
	}

	err := cfg.Validate()
	if err != nil {
		t.Errorf("Validate() should pass, got %v", err)
	}
}

func TestConfig_Validate_MissingOpenRouterKey(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Port: 5000,
		},
		Storage: StorageConfig{
			DataPath: "/app/data",
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Error("Validate() should fail for missing OPENROUTER_API_KEY")
	}
}

func TestConfig_Validate_MissingDataPath(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Port: 5000,
		},
		OpenRouter: OpenRouterConfig{
			APIKey: "test-or-key",
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Error("Validate() should fail for missing DATA_PATH")
	}
}

func TestConfig_Validate_BadPort(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Port: 70000,
		},
		OpenRouter: OpenRouterConfig{
			APIKey: "test-or-key",
		},
		Storage: StorageConfig{
			DataPath: "/app/data",
		},
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for out-of-range port")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "test-or-key")
	t.Setenv("MASTODON_BASE_URL", "")
	t.Setenv("AUTH_TOKEN", "")
	t.Setenv("MASTODON_URL", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Storage.DataPath != "/app/data" {
		t.Errorf("DataPath = %q, want /app/data", cfg.Storage.DataPath)
	}
	if cfg.OpenRouter.Model != "tngtech/deepseek-r1t2-chimera:free" {
		t.Errorf("Model = %q", cfg.OpenRouter.Model)
	}
	if cfg.OpenRouter.EnhanceModel != "google/gemini-2.5-flash-lite" {
		t.Errorf("EnhanceModel = %q", cfg.OpenRouter.EnhanceModel)
	}
	if cfg.Mastodon.MediaTimeout() != 600*time.Second {
		t.Errorf("MediaTimeout = %v, want 600s", cfg.Mastodon.MediaTimeout())
	}
	if !cfg.Transcode.Enabled {
		t.Error("transcoding should default to enabled")
	}
	if cfg.Transcode.Timeout() != 600*time.Second {
		t.Errorf("Transcode timeout = %v, want 600s", cfg.Transcode.Timeout())
	}
	if cfg.Prompts.System != DefaultSystemPrompt {
		t.Error("system prompt should default")
	}
	if !strings.Contains(cfg.Prompts.System, `"video_description"`) {
		t.Error("default system prompt should request the JSON shape")
	}
	if cfg.Server.BasicAuthEnabled() {
		t.Error("basic auth should be off without credentials")
	}
	if cfg.Mastodon.Configured() {
		t.Error("mastodon should be unconfigured by default")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	yamlContent := `
server:
  port: 8080
storage:
  data_path: /from/file
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("OPENROUTER_API_KEY", "test-or-key")
	t.Setenv("DATA_PATH", "/from/env")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Storage.DataPath != "/from/env" {
		t.Errorf("DataPath = %q, env should win", cfg.Storage.DataPath)
	}
}

func TestLoad_LegacyEnvFallbacks(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "test-or-key")
	t.Setenv("MASTODON_BASE_URL", "")
	t.Setenv("MASTODON_ACCESS_TOKEN", "")
	t.Setenv("MASTODON_URL", "https://legacy.example")
	t.Setenv("AUTH_TOKEN", "legacy-token")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Mastodon.BaseURL != "https://legacy.example" {
		t.Errorf("BaseURL = %q, want legacy fallback", cfg.Mastodon.BaseURL)
	}
	if cfg.Mastodon.AccessToken != "legacy-token" {
		t.Errorf("AccessToken = %q, want legacy fallback", cfg.Mastodon.AccessToken)
	}
	if !cfg.Mastodon.Configured() {
		t.Error("legacy credentials should count as configured")
	}
}

func TestLoad_SecondsValuedTimeouts(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "test-or-key")
	t.Setenv("MASTODON_MEDIA_TIMEOUT", "120")
	t.Setenv("TRANSCODE_TIMEOUT", "90")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Mastodon.MediaTimeout() != 2*time.Minute {
		t.Errorf("MediaTimeout = %v, want 2m", cfg.Mastodon.MediaTimeout())
	}
	if cfg.Transcode.Timeout() != 90*time.Second {
		t.Errorf("Transcode timeout = %v, want 90s", cfg.Transcode.Timeout())
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server: [not a map"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load() should fail on invalid YAML")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() should fail for a missing config file")
	}
}

func TestLoad_MissingRequiredKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	if _, err := Load(""); err == nil {
		t.Error("Load() should fail without OPENROUTER_API_KEY")
	}
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 5000}
	if got := cfg.Address(); got != "127.0.0.1:5000" {
		t.Errorf("Address() = %q", got)
	}
}
