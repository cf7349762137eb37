package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Subreddits) != 7 {
		t.Errorf("Expected 7 default subreddits, got %d", len(cfg.Subreddits))
	}
	if len(cfg.Keywords) != 15 {
		t.Errorf("Expected 15 default keywords, got %d", len(cfg.Keywords))
	}
	if cfg.SearchLimit != 50 || cfg.PostWords != 50 || cfg.DiscussionWords != 80 {
		t.Errorf("Unexpected default limits: %+v", cfg)
	}
	if cfg.RequestDelay != 2*time.Second || cfg.ErrorDelay != 5*time.Second {
		t.Errorf("Unexpected default delays: %v %v", cfg.RequestDelay, cfg.ErrorDelay)
	}
	if cfg.OutputFile != "reddit_scrapped.csv" {
		t.Errorf("Unexpected default output file %q", cfg.OutputFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}

	// Defaults are copied, not shared
	cfg.Subreddits[0] = "changed"
	if DefaultSubreddits[0] == "changed" {
		t.Error("DefaultConfig should not share the default slices")
	}
}

func TestLoadConfigFromFile_Overlay(t *testing.T) {
	path := writeTempConfig(t, `
subreddits:
  - robotics
  - " ROV "
search_limit: 10
request_delay: 500ms
strip_markup: true
credentials:
  user_agent: "custom-agent/2.0"
`)

	cfg, err := loadConfigFromFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !reflect.DeepEqual(cfg.Subreddits, []string{"robotics", " ROV "}) {
		t.Errorf("Unexpected subreddits %v", cfg.Subreddits)
	}
	if cfg.SearchLimit != 10 {
		t.Errorf("Expected search limit 10, got %d", cfg.SearchLimit)
	}
	if cfg.RequestDelay != 500*time.Millisecond {
		t.Errorf("Expected request delay 500ms, got %v", cfg.RequestDelay)
	}
	if !cfg.StripMarkup {
		t.Error("Expected strip_markup to be enabled")
	}
	if cfg.Credentials.UserAgent != "custom-agent/2.0" {
		t.Errorf("Unexpected user agent %q", cfg.Credentials.UserAgent)
	}

	// Unset fields keep their defaults
	if len(cfg.Keywords) != len(DefaultKeywords) {
		t.Errorf("Expected default keywords, got %v", cfg.Keywords)
	}
	if cfg.ErrorDelay != DefaultErrorDelay || cfg.DiscussionWords != DefaultDiscussionWords {
		t.Errorf("Expected defaults for unset fields, got %+v", cfg)
	}
}

func TestLoadConfigFromFile_Errors(t *testing.T) {
	if _, err := loadConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := writeTempConfig(t, "search_limit: [not, a, number]\n")
	if _, err := loadConfigFromFile(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(envClientID, "id-123")
	t.Setenv(envClientSecret, "secret-456")
	t.Setenv(envUserAgent, "env-agent/1.0")

	path := writeTempConfig(t, "credentials:\n  user_agent: file-agent/1.0\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Credentials.ClientID != "id-123" || cfg.Credentials.ClientSecret != "secret-456" {
		t.Errorf("Credentials not taken from environment: %+v", cfg.Credentials)
	}
	if cfg.Credentials.UserAgent != "env-agent/1.0" {
		t.Errorf("Environment user agent should win, got %q", cfg.Credentials.UserAgent)
	}
	if err := cfg.Credentials.ValidateCredentials(); err != nil {
		t.Errorf("Credentials should be valid: %v", err)
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(envClientID, "")
	t.Setenv(envClientSecret, "from-process")
	_ = os.Unsetenv(envClientID)

	dotenv := envClientID + "=from-dotenv\n" + envClientSecret + "=ignored\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Credentials.ClientID != "from-dotenv" {
		t.Errorf("Expected client id from .env, got %q", cfg.Credentials.ClientID)
	}
	if cfg.Credentials.ClientSecret != "from-process" {
		t.Errorf("Process environment should win over .env, got %q", cfg.Credentials.ClientSecret)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for a missing config file")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SearchLimit = 0
	cfg.PostWords = -1
	cfg.RequestDelay = -time.Second
	cfg.OutputFile = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, field := range []string{"search_limit", "post_words", "request_delay", "output_file"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("Validation error should mention %s: %v", field, err)
		}
	}
}

func TestValidateCredentials(t *testing.T) {
	creds := Credentials{UserAgent: ""}
	err := creds.ValidateCredentials()
	if err == nil {
		t.Fatal("Expected error for empty credentials")
	}
	for _, part := range []string{envClientID, envClientSecret, "user agent"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("Credential error should mention %s: %v", part, err)
		}
	}
}
