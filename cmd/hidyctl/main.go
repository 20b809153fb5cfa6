// Hidyctl - Deployment and lifecycle controller for the Hiddify Telegram Bot
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hiddify/hidyctl/internal/version"
)

// Default paths
var (
	configDir  string
	configFile string
)

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}

	configDir = filepath.Join(home, ".hidyctl")
	configFile = filepath.Join(configDir, "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "install":
		cmdInstall()
	case "update":
		cmdUpdate()
	case "start":
		cmdStart()
	case "stop":
		cmdStop()
	case "restart":
		cmdRestart()
	case "status":
		cmdStatus()
	case "log", "logs":
		cmdLog()
	case "backup":
		cmdBackup()
	case "cron":
		cmdCron()
	case "version", "-v", "--version":
		fmt.Println(version.Info())
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`Hidyctl - Deployment controller for the Hiddify Telegram Bot

Usage: hidyctl <command>

Commands:
  install     Install the bot (clone, dependencies, first start)
  update      Update the bot (backup, pull, migrate, restart)
  start       Start the bot
  stop        Stop the bot
  restart     Restart the bot
  status      Show bot status
  log         View bot logs (tail -f)
  backup      Manage database backups
  cron        Manage crontab entries
  version     Show version
  help        Show this help

Install Options:
  install --branch <name>   Install from a specific branch

Backup Commands:
  backup create         Create a database backup now
  backup list           List available backups

Cron Commands:
  cron list             List crontab entries
  cron install          Register the managed entries (reboot start, nightly backup)
  cron add <entry>      Add a crontab entry
  cron remove <match>   Remove entries containing <match>

Config: %s

`, configFile)
}
