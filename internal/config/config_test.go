package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Bot.InstallDir != "/opt/Hiddify-Telegram-Bot" {
		t.Errorf("InstallDir = %q", cfg.Bot.InstallDir)
	}
	if cfg.Bot.Interpreter != "python3" {
		t.Errorf("Interpreter = %q", cfg.Bot.Interpreter)
	}
	if cfg.Bot.PIDFile != "/opt/Hiddify-Telegram-Bot/hidybot.pid" {
		t.Errorf("PIDFile = %q", cfg.Bot.PIDFile)
	}
	if cfg.Bot.Database != "/opt/Hiddify-Telegram-Bot/Database/hidyBot.db" {
		t.Errorf("Database = %q", cfg.Bot.Database)
	}
	if cfg.Backup.Dir != "/opt/Hiddify-Telegram-Bot/Backup" {
		t.Errorf("Backup.Dir = %q", cfg.Backup.Dir)
	}
	if cfg.Lifecycle.GracePolls != 10 {
		t.Errorf("GracePolls = %d", cfg.Lifecycle.GracePolls)
	}
	if !cfg.Notify.Enabled {
		t.Error("Notify.Enabled = false, want true by default")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Bot.InstallDir != Default().Bot.InstallDir {
		t.Errorf("InstallDir = %q, want default", cfg.Bot.InstallDir)
	}
}

func TestLoadOverridesAndDerives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
bot:
  install_dir: /srv/hidybot
repo:
  branch: dev
lifecycle:
  grace_polls: 3
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bot.InstallDir != "/srv/hidybot" {
		t.Errorf("InstallDir = %q", cfg.Bot.InstallDir)
	}
	// Derived paths follow the overridden install dir
	if cfg.Bot.PIDFile != "/srv/hidybot/hidybot.pid" {
		t.Errorf("PIDFile = %q", cfg.Bot.PIDFile)
	}
	if cfg.Bot.LogFile != "/srv/hidybot/Logs/bot.log" {
		t.Errorf("LogFile = %q", cfg.Bot.LogFile)
	}
	if cfg.Bot.UpdateLog != "/srv/hidybot/Logs/update.log" {
		t.Errorf("UpdateLog = %q", cfg.Bot.UpdateLog)
	}
	if cfg.Bot.Database != "/srv/hidybot/Database/hidyBot.db" {
		t.Errorf("Database = %q", cfg.Bot.Database)
	}
	if cfg.Backup.Dir != "/srv/hidybot/Backup" {
		t.Errorf("Backup.Dir = %q", cfg.Backup.Dir)
	}
	if cfg.Repo.Branch != "dev" {
		t.Errorf("Branch = %q", cfg.Repo.Branch)
	}
	if cfg.Lifecycle.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want default kept", cfg.Lifecycle.PollInterval)
	}
	if cfg.Lifecycle.GracePolls != 3 {
		t.Errorf("GracePolls = %d", cfg.Lifecycle.GracePolls)
	}
	// Untouched sections keep defaults
	if cfg.Repo.URL != Default().Repo.URL {
		t.Errorf("URL = %q, want default", cfg.Repo.URL)
	}
}

func TestLoadExplicitPathsNotOverwritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
bot:
  install_dir: /srv/hidybot
  pid_file: /run/hidybot.pid
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Bot.PIDFile != "/run/hidybot.pid" {
		t.Errorf("PIDFile = %q, want explicit value kept", cfg.Bot.PIDFile)
	}
}

func TestLoadRejectsEmptyRepoURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
repo:
  url: ""
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() error = nil, want validation error")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("bot: [not a map"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestLaunchArgs(t *testing.T) {
	cfg := Default()
	args := cfg.LaunchArgs()
	want := []string{"python3", "hiddifyTelegramBot.py"}
	if len(args) != len(want) || args[0] != want[0] || args[1] != want[1] {
		t.Errorf("LaunchArgs() = %v, want %v", args, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/bots/hidy", filepath.Join(home, "bots", "hidy")},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
