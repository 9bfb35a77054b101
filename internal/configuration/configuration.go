package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// DefaultPath is where the configuration lives unless --config says otherwise.
const DefaultPath = "~/.config/carscout/config.json"

// Environment overrides.
const (
	envServiceURL     = "CARSCOUT_SERVICE_URL"
	envRequestTimeout = "CARSCOUT_REQUEST_TIMEOUT"
	envPort           = "CARSCOUT_PORT"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ServiceURL:     "http://localhost:8080",
		RequestTimeout: 60,

		Chat: &ChatConfig{
			FollowUpDelayMs: 1000,
			TimeFormat:      "03:04 PM",
			HistoryFile:     "~/.config/carscout/chat_history",
			QuickActions: []string{
				"Find me a Honda Civic under $20,000",
				"Looking for a BMW X3 with low mileage",
				"Toyota Camry 2020 or newer",
				"Electric car under $30,000",
			},
		},

		Web: &WebConfig{
			Port:        3030,
			MaxSessions: 256,
		},
	}
}

// Config holds configuration for carscout.
type Config struct {
	// Base url of the car search service.
	ServiceURL string `json:"service_url"`
	// Request timeout in seconds. A negative value waits forever.
	RequestTimeout int `json:"request_timeout"`

	Chat *ChatConfig `json:"chat"`
	Web  *WebConfig  `json:"web"`
}

// ChatConfig holds configuration for the chat surfaces.
type ChatConfig struct {
	// Delay before a follow-up message or the quick actions show up.
	FollowUpDelayMs int `json:"follow_up_delay_ms"`
	// Go time layout for turn timestamps.
	TimeFormat string `json:"time_format"`
	// Where input history is kept.
	HistoryFile string `json:"history_file"`
	// Preset messages offered as shortcuts.
	QuickActions []string `json:"quick_actions"`
}

// WebConfig holds configuration for carscout serve.
type WebConfig struct {
	Port int `json:"port"`
	// Chat sessions kept in memory before the oldest is dropped.
	MaxSessions int `json:"max_sessions"`
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout < 0 {
		return 0
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// FollowUpDelay returns the chat follow-up delay as a duration.
func (c *ChatConfig) FollowUpDelay() time.Duration {
	return time.Duration(c.FollowUpDelayMs) * time.Millisecond
}

// Parse a configuration file.
func Parse(path string) (*Config, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}
	if err := mergo.Merge(config, Default()); err != nil {
		return nil, errors.Wrap(err, "merging defaults")
	}

	// A missing .env file is fine.
	_ = godotenv.Load()
	if err := config.applyEnv(); err != nil {
		return nil, errors.Wrap(err, "applying environment")
	}

	expandedHistoryPath, err := ExpandPath(config.Chat.HistoryFile)
	if err != nil {
		return nil, errors.Wrap(err, "expanding history file path")
	}
	config.Chat.HistoryFile = expandedHistoryPath
	return config, nil
}

// applyEnv overrides fields from the environment.
func (c *Config) applyEnv() error {
	if value := strings.TrimSpace(os.Getenv(envServiceURL)); value != "" {
		c.ServiceURL = value
	}
	if value := strings.TrimSpace(os.Getenv(envRequestTimeout)); value != "" {
		timeout, err := strconv.Atoi(value)
		if err != nil {
			return errors.Errorf("invalid %s value: %q", envRequestTimeout, value)
		}
		c.RequestTimeout = timeout
	}
	if value := strings.TrimSpace(os.Getenv(envPort)); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 {
			return errors.Errorf("invalid %s value: %q", envPort, value)
		}
		c.Web.Port = port
	}
	return nil
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	// Create the directories.
	dir, _ := filepath.Split(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating folders")
	}

	if err := Default().save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "getting user home dir")
	}
	return filepath.Join(home, path[2:]), nil
}
