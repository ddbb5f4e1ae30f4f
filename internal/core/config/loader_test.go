package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MEMGATE_BACKEND_URL", "MEMGATE_API_KEY", "MEMGATE_USER_ID",
		"MEMGATE_TIMEOUT_MS", "MEMGATE_MAX_RETRIES", "MEMGATE_PORT",
		"MEMGATE_LOG_LEVEL", "MEMGATE_ALLOW_INSECURE",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEMGATE_BACKEND_URL", "https://memory.example.com")
	t.Setenv("MEMGATE_API_KEY", "sk-abc")
	t.Setenv("MEMGATE_USER_ID", "user_1")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.URL != "https://memory.example.com" {
		t.Errorf("url = %q", cfg.Backend.URL)
	}
	if cfg.Backend.TimeoutMS != defaultTimeoutMS {
		t.Errorf("timeout default not applied: %d", cfg.Backend.TimeoutMS)
	}
	if cfg.Backend.MaxRetries != defaultMaxRetries {
		t.Errorf("retries default not applied: %d", cfg.Backend.MaxRetries)
	}
	if cfg.Server.Port != defaultPort {
		t.Errorf("port default not applied: %d", cfg.Server.Port)
	}
}

func TestLoad_FileWithEnvExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_MEMGATE_KEY", "sk-from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9100
backend:
  url: http://localhost:7040
  api_key: ${TEST_MEMGATE_KEY}
  user_id: user_1
  timeout_ms: 2500
  max_retries: 4
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.APIKey != "sk-from-env" {
		t.Errorf("env expansion failed: %q", cfg.Backend.APIKey)
	}
	if cfg.Backend.TimeoutMS != 2500 || cfg.Backend.MaxRetries != 4 {
		t.Errorf("file values not applied: %+v", cfg.Backend)
	}
	if cfg.Server.Port != 9100 || cfg.Logging.Level != "debug" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestValidate_InsecureURLRejected(t *testing.T) {
	clearEnv(t)
	base := Config{
		Server:  ServerConfig{Port: 8950},
		Backend: BackendConfig{APIKey: "k", UserID: "u", TimeoutMS: 1000, MaxRetries: 1},
	}

	// Plain http to a non-loopback host fails at startup.
	cfg := base
	cfg.Backend.URL = "http://memory.example.com"
	if err := cfg.Validate(); err == nil {
		t.Error("non-loopback http should be rejected")
	}

	// ...unless explicitly overridden.
	cfg.Backend.AllowInsecure = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("allow_insecure override failed: %v", err)
	}

	// Loopback http is fine.
	for _, u := range []string{"http://localhost:7040", "http://127.0.0.1:7040", "http://[::1]:7040"} {
		cfg := base
		cfg.Backend.URL = u
		if err := cfg.Validate(); err != nil {
			t.Errorf("loopback url %q rejected: %v", u, err)
		}
	}

	// TLS is always fine.
	cfg = base
	cfg.Backend.URL = "https://memory.example.com"
	if err := cfg.Validate(); err != nil {
		t.Errorf("https rejected: %v", err)
	}
}

func TestValidate_Bounds(t *testing.T) {
	base := Config{
		Server:  ServerConfig{Port: 8950},
		Backend: BackendConfig{URL: "https://m.example.com", APIKey: "k", UserID: "u", TimeoutMS: 1000, MaxRetries: 1},
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing url", func(c *Config) { c.Backend.URL = "" }},
		{"bad scheme", func(c *Config) { c.Backend.URL = "ftp://m.example.com" }},
		{"missing key", func(c *Config) { c.Backend.APIKey = "" }},
		{"missing user", func(c *Config) { c.Backend.UserID = "" }},
		{"bad user id", func(c *Config) { c.Backend.UserID = "a b/c" }},
		{"timeout too small", func(c *Config) { c.Backend.TimeoutMS = -1 }},
		{"timeout too large", func(c *Config) { c.Backend.TimeoutMS = 10 * 60 * 1000 }},
		{"retries negative", func(c *Config) { c.Backend.MaxRetries = -1 }},
		{"retries too large", func(c *Config) { c.Backend.MaxRetries = 11 }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
	}

	for _, tc := range cases {
		cfg := base
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}

	ok := base
	if err := ok.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("sk-secret-value"); got != "sk-s…" {
		t.Errorf("Redact = %q", got)
	}
	if got := Redact("abc"); strings.Contains(got, "abc") {
		t.Errorf("short secrets must not leak: %q", got)
	}
}
