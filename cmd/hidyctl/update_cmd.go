package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hiddify/hidyctl/internal/backup"
	"github.com/hiddify/hidyctl/internal/botversion"
	"github.com/hiddify/hidyctl/internal/gitops"
	"github.com/hiddify/hidyctl/internal/hostenv"
	"github.com/hiddify/hidyctl/internal/migrate"
	"github.com/hiddify/hidyctl/internal/notify"
	"github.com/hiddify/hidyctl/internal/pip"
)

// cmdUpdate updates the installed bot: stop, backup, pull, migrate, restart
func cmdUpdate() {
	cfg := loadConfig()
	ctx := context.Background()

	logger, closeLog := openUpdateLog(cfg.Bot.UpdateLog)
	defer closeLog()

	fmt.Println("🔄 Updating Hiddify Telegram Bot")
	fmt.Printf("   Install: %s\n\n", cfg.Bot.InstallDir)
	logger.Info("update started", "install_dir", cfg.Bot.InstallDir)

	// 1. Prerequisites
	host := hostenv.Detect()
	if err := hostenv.Check(host); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	if _, err := os.Stat(cfg.Bot.InstallDir); os.IsNotExist(err) {
		fmt.Println("❌ Bot not installed. Run 'hidyctl install' first.")
		os.Exit(1)
	}

	// 2. Critical files: a broken tree gets a reinstall offer, not a patch
	git := gitops.New(cfg.Bot.InstallDir)
	entry := filepath.Join(cfg.Bot.InstallDir, cfg.Bot.EntryScript)
	if _, err := os.Stat(entry); os.IsNotExist(err) || !git.IsRepo() {
		fmt.Println("⚠️  Critical bot files are missing or the checkout is damaged.")
		if !confirm("Reinstall from scratch? [y/N]: ") {
			fmt.Println("Update cancelled.")
			logger.Warn("update cancelled, damaged tree and reinstall declined")
			os.Exit(1)
		}
		logger.Info("damaged tree, falling back to full install")
		cmdInstall()
		return
	}

	// 3. Current version, read before the pull replaces version.py
	det := botversion.NewDetector(cfg.Bot.InstallDir, cfg.Bot.Interpreter)
	current, method := det.Detect(ctx)
	fmt.Printf("✅ Current version: v%s\n", current)
	logger.Info("detected current version", "version", current, "method", method.String())

	// 4. Stop
	stopRes, err := newManager(cfg).Stop(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to stop: %v\n", err)
		logger.Error("stop failed", "error", err)
		os.Exit(1)
	}
	reportStop(stopRes)

	// 5. Backup, advisory
	if info, err := backup.New(cfg.Backup.Dir, cfg.Backup.KeepCount).Create(cfg.Bot.Database); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("⚠️  No database yet, backup skipped")
		} else {
			fmt.Fprintf(os.Stderr, "⚠️  Backup failed: %v\n", err)
			logger.Warn("backup failed", "error", err)
		}
	} else {
		fmt.Printf("✅ Database backed up: %s\n", info.Filename)
		logger.Info("database backed up", "file", info.Filename, "size", info.Size)
	}

	// 6. Pull
	if err := git.Pull(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Pull failed: %v\n", err)
		logger.Error("pull failed", "error", err)
		os.Exit(1)
	}
	fmt.Println("✅ Source updated")

	// 7. Python dependencies
	fmt.Println("🔄 Reinstalling Python dependencies...")
	if err := pip.New(cfg.Bot.InstallDir).Install(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Dependency install failed: %v\n", err)
		logger.Error("pip install failed", "error", err)
		os.Exit(1)
	}
	fmt.Println("✅ Python dependencies installed")

	// 8. Migrations, from the version that was installed to the one pulled
	target, _ := det.Detect(ctx)
	runMigrations(ctx, cfg.Bot.Database, cfg.Bot.InstallDir, current, target, logger)

	// 9. Start
	pid, err := newManager(cfg).Start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to start: %v\n", err)
		logger.Error("start failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Bot started (PID: %d)\n", pid)

	// 10. Cron entries
	registerCronEntries(ctx)

	// 11. Admin notification, advisory
	if cfg.Notify.Enabled {
		notifyAdmins(cfg.Bot.Database, target, logger)
	}

	// 12. Summary
	fmt.Println()
	fmt.Printf("🎉 Update complete: v%s → v%s\n", current, target)
	fmt.Printf("   Update log: %s\n", cfg.Bot.UpdateLog)
	logger.Info("update complete", "from", current, "to", target, "pid", pid)
}

// runMigrations applies database migrations; a missing database is a
// fresh install with nothing to migrate.
func runMigrations(ctx context.Context, dbPath, installDir, current, target string, logger *slog.Logger) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("⚠️  No database yet, migrations skipped")
		return
	}

	mig, err := migrate.Open(dbPath, installDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Open database: %v\n", err)
		logger.Error("open database failed", "error", err)
		os.Exit(1)
	}
	defer mig.Close()

	applied, err := mig.Run(ctx, current, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Migration failed: %v\n", err)
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	if len(applied) == 0 {
		fmt.Println(migrationNotice(current, target))
		if isDowngrade(current, target) {
			logger.Warn("installed version newer than target, migrations skipped",
				"from", current, "to", target)
		}
		return
	}
	fmt.Printf("✅ Database migrated (%s)\n", strings.Join(applied, ", "))
	logger.Info("database migrated", "applied", strings.Join(applied, ", "))
}

// isDowngrade reports whether the installed version is ahead of the
// one just pulled
func isDowngrade(current, target string) bool {
	return botversion.Compare(botversion.Clean(current), botversion.Clean(target)) > 0
}

// migrationNotice is the operator message for a migration run that
// applied nothing: a downgrade gets a warning, up to date a checkmark.
func migrationNotice(current, target string) string {
	if isDowngrade(current, target) {
		return fmt.Sprintf("⚠️  Installed version v%s is newer than v%s, migrations skipped",
			current, target)
	}
	return "✅ Database schema already up to date"
}

// notifyAdmins tells the bot admins about the update via the bot's own
// Telegram credentials. Failure never fails the update.
func notifyAdmins(dbPath, version string, logger *slog.Logger) {
	n, err := notify.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Admin notification skipped: %v\n", err)
		logger.Warn("notification skipped", "error", err)
		return
	}

	msg := fmt.Sprintf("✅ Hiddify bot updated to v%s and restarted", version)
	if err := n.Send(msg); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Admin notification failed: %v\n", err)
		logger.Warn("notification failed", "error", err)
		return
	}
	fmt.Println("✅ Admins notified")
}

// openUpdateLog opens a structured logger appending to path. Failure to
// open falls back to a discard logger so the update itself proceeds.
func openUpdateLog(path string) (*slog.Logger, func()) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	return slog.New(slog.NewTextHandler(f, nil)), func() { f.Close() }
}

// confirm asks a yes/no question on the terminal
func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
