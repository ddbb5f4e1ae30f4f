package config

import "time"

// Config is the immutable process configuration, loaded once at startup.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds local tool-server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// BackendConfig holds settings for the remote memory backend.
type BackendConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	UserID string `yaml:"user_id"`

	TimeoutMS  int `yaml:"timeout_ms"`
	MaxRetries int `yaml:"max_retries"`

	// AllowInsecure permits a non-loopback plain-http backend URL.
	AllowInsecure bool `yaml:"allow_insecure"`
}

// Timeout returns the per-request timeout budget.
func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}
