package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v2"
)

const (
	defaultPort       = 8950
	defaultTimeoutMS  = 10000
	defaultMaxRetries = 2
	maxTimeoutMS      = 5 * 60 * 1000
	maxRetryCount     = 10
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// Load reads configuration from an optional YAML file, applies environment
// overrides, fills defaults, and validates the result. A missing file is
// not an error; environment variables alone may configure the process.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		// Expand environment variables in the YAML content
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(&cfg)

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Backend.TimeoutMS == 0 {
		cfg.Backend.TimeoutMS = defaultTimeoutMS
	}
	if cfg.Backend.MaxRetries == 0 {
		cfg.Backend.MaxRetries = defaultMaxRetries
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MEMGATE_BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv("MEMGATE_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}
	if v := os.Getenv("MEMGATE_USER_ID"); v != "" {
		cfg.Backend.UserID = v
	}
	if v := os.Getenv("MEMGATE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMS = n
		}
	}
	if v := os.Getenv("MEMGATE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.MaxRetries = n
		}
	}
	if v := os.Getenv("MEMGATE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("MEMGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MEMGATE_ALLOW_INSECURE"); v == "true" || v == "1" {
		cfg.Backend.AllowInsecure = true
	}
}

// Validate rejects misconfigurations at startup so they never surface as
// request-time failures.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend url is not set")
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("invalid backend url: %w", err)
	}
	switch u.Scheme {
	case "https":
	case "http":
		if !isLoopback(u.Hostname()) && !c.Backend.AllowInsecure {
			return fmt.Errorf("backend url %q is plain http to a non-loopback host; set allow_insecure to override", c.Backend.URL)
		}
	default:
		return fmt.Errorf("backend url must be http or https, got %q", u.Scheme)
	}

	if c.Backend.APIKey == "" {
		return fmt.Errorf("backend api key is not set")
	}
	if c.Backend.UserID == "" {
		return fmt.Errorf("backend user id is not set")
	}
	if !userIDPattern.MatchString(c.Backend.UserID) {
		return fmt.Errorf("backend user id %q is not a valid identifier", c.Backend.UserID)
	}

	if c.Backend.TimeoutMS < 1 || c.Backend.TimeoutMS > maxTimeoutMS {
		return fmt.Errorf("timeout_ms must be in [1, %d], got %d", maxTimeoutMS, c.Backend.TimeoutMS)
	}
	if c.Backend.MaxRetries < 0 || c.Backend.MaxRetries > maxRetryCount {
		return fmt.Errorf("max_retries must be in [0, %d], got %d", maxRetryCount, c.Backend.MaxRetries)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in [1, 65535], got %d", c.Server.Port)
	}
	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Redact shortens a secret for log output.
func Redact(s string) string {
	if len(s) <= 4 {
		return "…"
	}
	return s[:4] + "…"
}
