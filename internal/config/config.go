// Package config provides unified configuration management
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure
type Config struct {
	// Managed bot process
	Bot BotConfig `yaml:"bot"`

	// Source repository
	Repo RepoConfig `yaml:"repo"`

	// Database backup settings
	Backup BackupConfig `yaml:"backup"`

	// Lifecycle timings
	Lifecycle LifecycleConfig `yaml:"lifecycle"`

	// Admin notification settings
	Notify NotifyConfig `yaml:"notify"`
}

// BotConfig describes the managed bot installation
type BotConfig struct {
	InstallDir  string `yaml:"install_dir"`
	Interpreter string `yaml:"interpreter"`
	EntryScript string `yaml:"entry_script"`
	PIDFile     string `yaml:"pid_file"`
	LogFile     string `yaml:"log_file"`
	UpdateLog   string `yaml:"update_log"`
	Database    string `yaml:"database"`
}

// RepoConfig describes the bot source repository
type RepoConfig struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch"`
}

// BackupConfig controls database backups
type BackupConfig struct {
	Dir       string `yaml:"dir"`
	KeepCount int    `yaml:"keep_count"`
}

// LifecycleConfig holds process lifecycle timings
type LifecycleConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	GracePolls   int           `yaml:"grace_polls"`
	KillSettle   time.Duration `yaml:"kill_settle"`
	StartConfirm time.Duration `yaml:"start_confirm"`
}

// NotifyConfig controls admin notifications after updates
type NotifyConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a config with all defaults applied
func Default() *Config {
	cfg := defaults()
	cfg.fillDerived()
	return cfg
}

// defaults returns the base config without derived paths, so Load can
// compute them after the file layer may have changed the install dir
func defaults() *Config {
	return &Config{
		Bot: BotConfig{
			InstallDir:  "/opt/Hiddify-Telegram-Bot",
			Interpreter: "python3",
			EntryScript: "hiddifyTelegramBot.py",
		},
		Repo: RepoConfig{
			URL:    "https://github.com/hiddify/Hiddify-Telegram-Bot",
			Branch: "main",
		},
		Backup: BackupConfig{
			KeepCount: 10,
		},
		Lifecycle: LifecycleConfig{
			PollInterval: 1 * time.Second,
			GracePolls:   10,
			KillSettle:   2 * time.Second,
			StartConfirm: 3 * time.Second,
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
	}
}

// Load reads config from path, layering it over defaults. Derived
// paths are filled in only after the file layer, so an overridden
// install dir carries through to them. A missing file is not an
// error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.fillDerived()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Bot.InstallDir = expandPath(cfg.Bot.InstallDir)
	cfg.fillDerived()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDerived computes paths left empty from the install dir
func (c *Config) fillDerived() {
	dir := c.Bot.InstallDir
	if c.Bot.PIDFile == "" {
		c.Bot.PIDFile = filepath.Join(dir, "hidybot.pid")
	}
	if c.Bot.LogFile == "" {
		c.Bot.LogFile = filepath.Join(dir, "Logs", "bot.log")
	}
	if c.Bot.UpdateLog == "" {
		c.Bot.UpdateLog = filepath.Join(dir, "Logs", "update.log")
	}
	if c.Bot.Database == "" {
		c.Bot.Database = filepath.Join(dir, "Database", "hidyBot.db")
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = filepath.Join(dir, "Backup")
	}
	if c.Backup.KeepCount <= 0 {
		c.Backup.KeepCount = 10
	}
	if c.Lifecycle.PollInterval <= 0 {
		c.Lifecycle.PollInterval = 1 * time.Second
	}
	if c.Lifecycle.GracePolls <= 0 {
		c.Lifecycle.GracePolls = 10
	}
	if c.Lifecycle.KillSettle <= 0 {
		c.Lifecycle.KillSettle = 2 * time.Second
	}
	if c.Lifecycle.StartConfirm <= 0 {
		c.Lifecycle.StartConfirm = 3 * time.Second
	}
}

func (c *Config) validate() error {
	if c.Bot.InstallDir == "" {
		return fmt.Errorf("bot.install_dir must not be empty")
	}
	if c.Bot.EntryScript == "" {
		return fmt.Errorf("bot.entry_script must not be empty")
	}
	if c.Repo.URL == "" {
		return fmt.Errorf("repo.url must not be empty")
	}
	return nil
}

// LaunchArgs returns the argv used to start the bot process
func (c *Config) LaunchArgs() []string {
	return []string{c.Bot.Interpreter, c.Bot.EntryScript}
}

// EnsureDirectories creates all configured directories with proper permissions
func (c *Config) EnsureDirectories() error {
	dirs := []struct {
		path string
		perm os.FileMode
	}{
		{c.Bot.InstallDir, 0755},
		{filepath.Join(c.Bot.InstallDir, "Logs"), 0755},
		{filepath.Join(c.Bot.InstallDir, "Database"), 0700},
		{c.Backup.Dir, 0700},
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d.path, d.perm); err != nil {
			return fmt.Errorf("create %s: %w", d.path, err)
		}
	}

	return nil
}

// expandPath expands a leading ~ to the user's home directory
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
