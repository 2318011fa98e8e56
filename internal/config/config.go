package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied when a field is absent from config.toml.
const (
	DefaultServerURL         = "http://localhost:8000"
	DefaultMessagePollMs     = 3000
	DefaultRecentChatsPollMs = 10000
	DefaultPostSendPollMs    = 500
	DefaultPageLimit         = 50
)

// Config represents the global ~/.trik/config.toml.
type Config struct {
	DefaultSession    string `toml:"default_session"`
	ServerURL         string `toml:"server_url"`
	MessagePollMs     int    `toml:"message_poll_ms"`
	RecentChatsPollMs int    `toml:"recent_chats_poll_ms"`
	PostSendPollMs    int    `toml:"post_send_poll_ms"`
	PageLimit         int    `toml:"page_limit"`
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault reads config from path, falling back to a default config
// when the file does not exist.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		cfg = &Config{}
		cfg.applyDefaults()
	}
	return cfg
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

func (c *Config) applyDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.MessagePollMs <= 0 {
		c.MessagePollMs = DefaultMessagePollMs
	}
	if c.RecentChatsPollMs <= 0 {
		c.RecentChatsPollMs = DefaultRecentChatsPollMs
	}
	if c.PostSendPollMs <= 0 {
		c.PostSendPollMs = DefaultPostSendPollMs
	}
	if c.PageLimit <= 0 {
		c.PageLimit = DefaultPageLimit
	}
}

// MessagePollInterval returns the active-conversation poll interval.
func (c *Config) MessagePollInterval() time.Duration {
	return time.Duration(c.MessagePollMs) * time.Millisecond
}

// RecentChatsPollInterval returns the recent-chats refresh interval.
func (c *Config) RecentChatsPollInterval() time.Duration {
	return time.Duration(c.RecentChatsPollMs) * time.Millisecond
}

// PostSendPollDelay returns the delay before the extra poll after a send.
func (c *Config) PostSendPollDelay() time.Duration {
	return time.Duration(c.PostSendPollMs) * time.Millisecond
}
