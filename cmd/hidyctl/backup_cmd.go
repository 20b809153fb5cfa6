package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/hiddify/hidyctl/internal/backup"
)

func cmdBackup() {
	if len(os.Args) < 3 {
		cmdBackupList()
		return
	}

	subCmd := os.Args[2]

	switch subCmd {
	case "create":
		cmdBackupCreate()
	case "list", "ls":
		cmdBackupList()
	case "help":
		cmdBackupHelp()
	default:
		fmt.Fprintf(os.Stderr, "Unknown backup command: %s\n", subCmd)
		cmdBackupHelp()
		os.Exit(1)
	}
}

func cmdBackupCreate() {
	cfg := loadConfig()

	mgr := backup.New(cfg.Backup.Dir, cfg.Backup.KeepCount)
	info, err := mgr.Create(cfg.Bot.Database)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("❌ No database to back up")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "❌ Backup failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Backup created: %s (%.2f KB)\n", info.Filename, float64(info.Size)/1024)
	fmt.Printf("   Directory: %s\n", cfg.Backup.Dir)
}

func cmdBackupList() {
	cfg := loadConfig()

	mgr := backup.New(cfg.Backup.Dir, cfg.Backup.KeepCount)
	backups, err := mgr.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found.")
		fmt.Println("\nUse 'hidyctl backup create' to create one.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tCREATED\tSIZE")
	for _, b := range backups {
		fmt.Fprintf(w, "%s\t%s\t%.2f KB\n",
			b.Filename,
			b.Timestamp.Format("2006-01-02 15:04:05"),
			float64(b.Size)/1024,
		)
	}
	w.Flush()

	fmt.Printf("\nKeeping the newest %d backups in %s\n", cfg.Backup.KeepCount, cfg.Backup.Dir)
}

func cmdBackupHelp() {
	fmt.Println(`Database Backup Management

Usage: hidyctl backup <command>

Commands:
  create      Create a timestamped backup of the bot database
  list, ls    List available backups (default)
  help        Show this help`)
}
