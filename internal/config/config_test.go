package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(openAIKeyEnv, "")

	cfg := Load()

	if cfg.Scheduler.CronExpression != "0 * * * *" {
		t.Fatalf("unexpected default cron: %s", cfg.Scheduler.CronExpression)
	}
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("unexpected default timezone: %s", cfg.Scheduler.Location())
	}
	if cfg.Providers.OpenAI.DefaultModel == "" {
		t.Fatalf("expected a default OpenAI model")
	}
	if cfg.Site.SystemAuthorID != "system" {
		t.Fatalf("unexpected system author: %s", cfg.Site.SystemAuthorID)
	}
}

func TestLoadMergesYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
scheduler:
  cronExpression: "*/15 * * * *"
  timezone: "Europe/Berlin"
providers:
  openai:
    defaultModel: gpt-4o-mini
site:
  systemAuthorId: bot-7
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv(openAIKeyEnv, "")

	cfg := Load()

	if cfg.Scheduler.CronExpression != "*/15 * * * *" {
		t.Fatalf("cron override lost: %s", cfg.Scheduler.CronExpression)
	}
	if cfg.Scheduler.Location().String() != "Europe/Berlin" {
		t.Fatalf("timezone not bound: %s", cfg.Scheduler.Location())
	}
	if cfg.Providers.OpenAI.DefaultModel != "gpt-4o-mini" {
		t.Fatalf("model override lost: %s", cfg.Providers.OpenAI.DefaultModel)
	}
	// Unset file fields keep their defaults.
	if cfg.Providers.OpenAI.Endpoint == "" {
		t.Fatalf("default endpoint must survive a partial file")
	}
	if cfg.Site.SystemAuthorID != "bot-7" {
		t.Fatalf("author override lost: %s", cfg.Site.SystemAuthorID)
	}
}

func TestLoadEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
database:
  dsn: postgres://file/db
providers:
  openai:
    apiKey: file-key
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "postgres://env/db")
	t.Setenv(openAIKeyEnv, "env-key")
	t.Setenv(telegramChatEnv, "12345")

	cfg := Load()

	if cfg.Database.DSN != "postgres://env/db" {
		t.Fatalf("env DSN must win: %s", cfg.Database.DSN)
	}
	if cfg.Providers.OpenAI.APIKey != "env-key" {
		t.Fatalf("env API key must win: %s", cfg.Providers.OpenAI.APIKey)
	}
	if cfg.Notifications.Telegram.ChatID != 12345 {
		t.Fatalf("chat id override lost: %d", cfg.Notifications.Telegram.ChatID)
	}
}

func TestLoadUnknownTimezoneFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "scheduler:\n  timezone: Mars/Olympus\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("unknown timezone must fall back to UTC, got %s", cfg.Scheduler.Location())
	}
}

func TestLoadUnreadableFileKeepsDefaults(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	if cfg.Scheduler.CronExpression != "0 * * * *" {
		t.Fatalf("defaults must survive a missing file: %s", cfg.Scheduler.CronExpression)
	}
}
