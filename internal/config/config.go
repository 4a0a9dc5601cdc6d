// Package config holds the assistant's process-wide configuration.
//
// Configuration is loaded exactly once at startup and treated as an
// immutable value after that: every component receives the loaded Config in
// its constructor and never mutates it. The canonical on-disk form is a flat
// JSON document; files with a .yaml/.yml extension are accepted as well.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// DefaultPollInterval is the reminder scheduler period in seconds.
const DefaultPollInterval = 60

// Config is the full assistant configuration.
type Config struct {
	// Data directory for the notes and reminders documents.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Wake phrase and locale.
	WakePhrase string `json:"wake_phrase" yaml:"wake_phrase"`
	Language   string `json:"language" yaml:"language"`

	// Chat channels.
	DiscordEnabled   bool   `json:"discord_enabled" yaml:"discord_enabled"`
	DiscordBotToken  string `json:"discord_bot_token" yaml:"discord_bot_token"`
	DiscordChannelID string `json:"discord_channel_id" yaml:"discord_channel_id"`

	TelegramEnabled bool   `json:"telegram_enabled" yaml:"telegram_enabled"`
	TelegramToken   string `json:"telegram_token" yaml:"telegram_token"`
	TelegramChatID  int64  `json:"telegram_chat_id" yaml:"telegram_chat_id"`

	SlackEnabled   bool   `json:"slack_enabled" yaml:"slack_enabled"`
	SlackToken     string `json:"slack_token" yaml:"slack_token"`
	SlackAppToken  string `json:"slack_app_token" yaml:"slack_app_token"`
	SlackChannelID string `json:"slack_channel_id" yaml:"slack_channel_id"`

	// Seconds after which chat messages sent by the assistant are deleted
	// again. Zero disables auto-deletion.
	AutoDeleteAfter int `json:"auto_delete_after" yaml:"auto_delete_after"`

	// Speech. SttCommand is the external speech-to-text command the voice
	// loop shells out to; empty disables voice mode.
	SpeechEnabled bool   `json:"speech_enabled" yaml:"speech_enabled"`
	SttCommand    string `json:"stt_command" yaml:"stt_command"`

	// Weather.
	OpenWeatherAPIKey string `json:"openweather_api_key" yaml:"openweather_api_key"`

	// Local AI backend.
	LLMEnabled    bool `json:"llm_enabled" yaml:"llm_enabled"`
	LLMServerPort int  `json:"llm_server_port" yaml:"llm_server_port"`

	// FallbackToAI forwards unrecognized commands to the AI backend instead
	// of answering with the unknown-command message.
	FallbackToAI bool `json:"fallback_to_ai" yaml:"fallback_to_ai"`

	// Scheduler period in seconds.
	PollInterval int `json:"poll_interval" yaml:"poll_interval"`

	// Logging.
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`
	LogFile   string `json:"log_file" yaml:"log_file"`
}

// Default returns the default configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		DataDir:       filepath.Join(home, ".pia"),
		WakePhrase:    "hey pia",
		Language:      "en",
		LLMServerPort: 8081,
		PollInterval:  DefaultPollInterval,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load reads configuration from path. An empty path loads the default
// location (<data dir>/config.json). Unset fields keep their defaults, and
// string values of the form ${VAR} are expanded from the environment so
// tokens and API keys can live outside the file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(Default().DataDir, "config.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.expandEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed. An empty path saves to the default location.
func (c *Config) Save(path string) error {
	if path == "" {
		path = filepath.Join(c.DataDir, "config.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks field ranges. Tokens and keys are deliberately not
// required here: a missing credential only disables the feature that needs
// it, reported when the command runs.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.LLMServerPort, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.PollInterval, validation.Min(1)),
		validation.Field(&c.AutoDeleteAfter, validation.Min(0)),
		validation.Field(&c.LogLevel, validation.In("", "debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("", "text", "json")),
	)
}

// NotesPath returns the notes document location.
func (c *Config) NotesPath() string {
	return filepath.Join(c.DataDir, "notes.json")
}

// RemindersPath returns the reminders document location.
func (c *Config) RemindersPath() string {
	return filepath.Join(c.DataDir, "reminders.json")
}

// LLMBaseURL returns the local AI backend base URL.
func (c *Config) LLMBaseURL() string {
	return fmt.Sprintf("http://localhost:%d", c.LLMServerPort)
}

// expandEnv resolves ${VAR} references in credential fields.
func (c *Config) expandEnv() {
	for _, f := range []*string{
		&c.DiscordBotToken,
		&c.TelegramToken,
		&c.SlackToken,
		&c.SlackAppToken,
		&c.OpenWeatherAPIKey,
	} {
		*f = expand(*f)
	}
}

func expand(v string) string {
	if strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}") {
		return os.Getenv(v[2 : len(v)-1])
	}
	return v
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
