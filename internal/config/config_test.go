// Package config tests
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.WakePhrase != "hey pia" {
		t.Errorf("expected WakePhrase='hey pia', got %q", cfg.WakePhrase)
	}
	if cfg.Language != "en" {
		t.Errorf("expected Language='en', got %q", cfg.Language)
	}
	if cfg.LLMServerPort != 8081 {
		t.Errorf("expected LLMServerPort=8081, got %d", cfg.LLMServerPort)
	}
	if cfg.PollInterval != 60 {
		t.Errorf("expected PollInterval=60, got %d", cfg.PollInterval)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel='info', got %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("expected LogFormat='text', got %q", cfg.LogFormat)
	}

	// Channels are disabled by default
	if cfg.DiscordEnabled {
		t.Error("expected Discord to be disabled by default")
	}
	if cfg.TelegramEnabled {
		t.Error("expected Telegram to be disabled by default")
	}
	if cfg.SlackEnabled {
		t.Error("expected Slack to be disabled by default")
	}
	if cfg.FallbackToAI {
		t.Error("expected FallbackToAI to be disabled by default")
	}
}

func TestLoadSave(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.json")

	cfg := Default()
	cfg.DiscordEnabled = true
	cfg.DiscordBotToken = "test-discord-token"
	cfg.DiscordChannelID = "12345"
	cfg.OpenWeatherAPIKey = "test-weather-key"
	cfg.WakePhrase = "hey assistant"
	cfg.LogLevel = "debug"

	if err := cfg.Save(cfgPath); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if !loaded.DiscordEnabled {
		t.Error("expected DiscordEnabled=true")
	}
	if loaded.DiscordBotToken != "test-discord-token" {
		t.Errorf("expected DiscordBotToken='test-discord-token', got %q", loaded.DiscordBotToken)
	}
	if loaded.DiscordChannelID != "12345" {
		t.Errorf("expected DiscordChannelID='12345', got %q", loaded.DiscordChannelID)
	}
	if loaded.OpenWeatherAPIKey != "test-weather-key" {
		t.Errorf("expected OpenWeatherAPIKey='test-weather-key', got %q", loaded.OpenWeatherAPIKey)
	}
	if loaded.WakePhrase != "hey assistant" {
		t.Errorf("expected WakePhrase='hey assistant', got %q", loaded.WakePhrase)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("expected LogLevel='debug', got %q", loaded.LogLevel)
	}
}

func TestLoadSaveYAML(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")

	cfg := Default()
	cfg.TelegramEnabled = true
	cfg.TelegramToken = "tg-token"
	cfg.TelegramChatID = 99

	if err := cfg.Save(cfgPath); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if !loaded.TelegramEnabled || loaded.TelegramToken != "tg-token" || loaded.TelegramChatID != 99 {
		t.Errorf("telegram settings did not round-trip: %+v", loaded)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.json")
	if err == nil {
		t.Error("expected error when loading non-existent file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "bad-config.json")
	if err := os.WriteFile(cfgPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write bad config: %v", err)
	}

	_, err := Load(cfgPath)
	if err == nil {
		t.Error("expected error when loading invalid JSON")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("PIA_TEST_DISCORD_TOKEN", "expanded-token")

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.json")
	cfg := Default()
	cfg.DiscordBotToken = "${PIA_TEST_DISCORD_TOKEN}"
	if err := cfg.Save(cfgPath); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.DiscordBotToken != "expanded-token" {
		t.Errorf("expected token expanded from env, got %q", loaded.DiscordBotToken)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LLMServerPort = 700000
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for out-of-range port")
	}

	cfg = Default()
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown log level")
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "nested", "subdir", "config.json")

	cfg := Default()
	if err := cfg.Save(cfgPath); err != nil {
		t.Fatalf("Save() failed to create nested directories: %v", err)
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		t.Fatal("config file was not created in nested directory")
	}
}
