package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/hiddify/hidyctl/internal/cli"
	"github.com/hiddify/hidyctl/internal/crontab"
	"github.com/hiddify/hidyctl/internal/gitops"
	"github.com/hiddify/hidyctl/internal/hostenv"
	"github.com/hiddify/hidyctl/internal/pip"
)

// cmdInstall installs the bot from scratch: clone, dependencies,
// interactive configuration, first start, cron registration.
func cmdInstall() {
	branch := parseBranchFlag(os.Args[2:])

	cfg := loadConfig()
	if branch != "" {
		cfg.Repo.Branch = branch
	}

	ctx := context.Background()

	fmt.Println("🚀 Installing Hiddify Telegram Bot")
	fmt.Printf("   Target: %s (branch %s)\n\n", cfg.Bot.InstallDir, cfg.Repo.Branch)

	// 1. Prerequisites
	host := hostenv.Detect()
	if err := hostenv.Check(host); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Prerequisites found (git, python3, pip3, crontab)")

	// 2. Directory tree
	if err := os.MkdirAll(configDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create %s: %v\n", configDir, err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create directories: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Directories created")

	// 3. Source checkout
	git := gitops.New(cfg.Bot.InstallDir)
	cloned, err := git.CloneOrPull(ctx, cfg.Repo.URL, cfg.Repo.Branch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Checkout failed: %v\n", err)
		os.Exit(1)
	}
	if cloned {
		fmt.Println("✅ Repository cloned")
	} else {
		fmt.Println("✅ Existing checkout updated")
	}

	// 4. Python dependencies
	fmt.Println("🔄 Installing Python dependencies...")
	if err := pip.New(cfg.Bot.InstallDir).Install(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Dependency install failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Python dependencies installed")

	// 5. Entry script permissions
	entry := filepath.Join(cfg.Bot.InstallDir, cfg.Bot.EntryScript)
	if err := os.Chmod(entry, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "❌ chmod %s: %v\n", entry, err)
		os.Exit(1)
	}

	// 6. One-time bot configuration, attached to the terminal
	if err := runBotConfig(ctx, cfg.Bot.InstallDir, cfg.Bot.Interpreter); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Bot configuration failed: %v\n", err)
		os.Exit(1)
	}

	// 7. First start
	mgr := newManager(cfg)
	pid, err := mgr.Start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to start: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Bot started (PID: %d)\n", pid)

	// 8. Cron entries
	registerCronEntries(ctx)

	// 9. Summary
	fmt.Println()
	fmt.Println("🎉 Installation complete!")
	fmt.Printf("   Install: %s\n", cfg.Bot.InstallDir)
	fmt.Printf("   Logs:    %s\n", cfg.Bot.LogFile)
	fmt.Printf("   Config:  %s\n", configFile)
	fmt.Println()
	fmt.Println("   Run 'hidyctl status' to check status")
	fmt.Println("   Run 'hidyctl log' to view logs")
}

// parseBranchFlag extracts --branch from args, empty if absent
func parseBranchFlag(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--branch" || arg == "-b":
			if i+1 < len(args) {
				return args[i+1]
			}
			fmt.Fprintln(os.Stderr, "❌ --branch requires a value")
			os.Exit(1)
		case len(arg) > len("--branch=") && arg[:len("--branch=")] == "--branch=":
			return arg[len("--branch="):]
		}
	}
	return ""
}

// runBotConfig runs the bot's interactive config script when present
func runBotConfig(ctx context.Context, dir, interpreter string) error {
	script := filepath.Join(dir, "config.py")
	if _, err := os.Stat(script); os.IsNotExist(err) {
		return nil
	}

	fmt.Println("📝 Bot configuration (answers go to the bot's own config):")
	cmd := exec.CommandContext(ctx, interpreter, "config.py")
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// registerCronEntries upserts the managed crontab lines, advisory on failure
func registerCronEntries(ctx context.Context) {
	exe, err := os.Executable()
	if err != nil {
		exe = "hidyctl"
	}

	mgr := crontab.New()
	for _, entry := range cli.ManagedEntries(exe) {
		added, err := mgr.Register(ctx, entry.Line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Cron %s: %v\n", entry.Name, err)
			continue
		}
		if added {
			fmt.Printf("✅ Cron registered: %s\n", entry.Name)
		}
	}
}
