package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hiddify/hidyctl/internal/config"
	"github.com/hiddify/hidyctl/internal/lifecycle"
)

// loadConfig loads the tool config, exiting on a malformed file
func loadConfig() *config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Config error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newManager builds the lifecycle manager for the configured bot
func newManager(cfg *config.Config) *lifecycle.Manager {
	return lifecycle.New(lifecycle.Options{
		PIDFile:      cfg.Bot.PIDFile,
		WorkDir:      cfg.Bot.InstallDir,
		LogFile:      cfg.Bot.LogFile,
		Argv:         cfg.LaunchArgs(),
		PollInterval: cfg.Lifecycle.PollInterval,
		GracePolls:   cfg.Lifecycle.GracePolls,
		KillSettle:   cfg.Lifecycle.KillSettle,
		StartConfirm: cfg.Lifecycle.StartConfirm,
	})
}

// requireInstalled exits unless the bot entry script is present
func requireInstalled(cfg *config.Config) {
	entry := filepath.Join(cfg.Bot.InstallDir, cfg.Bot.EntryScript)
	if _, err := os.Stat(entry); os.IsNotExist(err) {
		fmt.Println("❌ Bot not installed. Run 'hidyctl install' first.")
		os.Exit(1)
	}
}

// cmdStart starts the bot
func cmdStart() {
	cfg := loadConfig()
	requireInstalled(cfg)

	mgr := newManager(cfg)

	if st, err := mgr.Status(); err == nil && st.State == lifecycle.StateRunning {
		fmt.Printf("⚠️  Bot is already running (PID: %d)\n", st.PID)
		return
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to prepare directories: %v\n", err)
		os.Exit(1)
	}

	pid, err := mgr.Start(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to start: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Bot started (PID: %d)\n", pid)
	fmt.Printf("   Logs: %s\n", cfg.Bot.LogFile)
	fmt.Println()
	fmt.Println("   Run 'hidyctl status' to check status")
	fmt.Println("   Run 'hidyctl log' to view logs")
}

// cmdStop stops the bot and sweeps orphaned instances
func cmdStop() {
	cfg := loadConfig()
	mgr := newManager(cfg)

	res, err := mgr.Stop(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to stop: %v\n", err)
		os.Exit(1)
	}

	reportStop(res)
}

// reportStop prints the outcome of a stop operation
func reportStop(res *lifecycle.StopResult) {
	if res.StaleRecord {
		fmt.Println("⚠️  Stale PID record cleaned up")
	}

	if res.StoppedPID > 0 {
		switch res.StoppedOutcome {
		case lifecycle.OutcomeConfirmedDead:
			fmt.Printf("✅ Bot stopped (PID: %d)\n", res.StoppedPID)
		case lifecycle.OutcomeTimedOut:
			fmt.Printf("⚠️  Bot did not exit gracefully, killed (PID: %d)\n", res.StoppedPID)
		default:
			fmt.Printf("⚠️  Stop interrupted (PID: %d)\n", res.StoppedPID)
		}
	}

	for _, pid := range res.SweptPIDs {
		fmt.Printf("✅ Stopped orphaned bot process (PID: %d)\n", pid)
	}

	if res.StoppedPID == 0 && len(res.SweptPIDs) == 0 && !res.StaleRecord {
		fmt.Println("⚠️  Bot is not running")
	}
}

// cmdRestart restarts the bot
func cmdRestart() {
	cmdStop()
	cmdStart()
}

// cmdStatus shows the bot status
func cmdStatus() {
	cfg := loadConfig()
	mgr := newManager(cfg)

	st, err := mgr.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Status error: %v\n", err)
		os.Exit(1)
	}

	if st.CleanedStale {
		fmt.Println("⚠️  Stale PID record cleaned up")
	}

	if st.State != lifecycle.StateRunning {
		fmt.Println("🔴 Bot is NOT running")

		if content, err := readLastLines(cfg.Bot.LogFile, 5); err == nil && content != "" {
			fmt.Println("\n📋 Recent log entries:")
			fmt.Println(content)
		}
		return
	}

	if st.Tracked {
		fmt.Printf("🟢 Bot is running (PID: %d)\n", st.PID)
	} else {
		fmt.Printf("🟡 Bot is running untracked (PID: %d)\n", st.PID)
		fmt.Println("   Run 'hidyctl restart' to restore lifecycle tracking")
	}

	fmt.Printf("   Install: %s\n", cfg.Bot.InstallDir)
	fmt.Printf("   Config:  %s\n", configFile)
	fmt.Printf("   Logs:    %s\n", cfg.Bot.LogFile)

	if info, err := os.Stat(cfg.Bot.Database); err == nil {
		fmt.Printf("   DB:      %.2f KB\n", float64(info.Size())/1024)
	}
}

// cmdLog tails the bot log
func cmdLog() {
	cfg := loadConfig()

	if _, err := os.Stat(cfg.Bot.LogFile); os.IsNotExist(err) {
		fmt.Println("❌ No log file found")
		return
	}

	tailLogFile(cfg.Bot.LogFile)
}
