package main

import (
	"fmt"
	"os"

	"github.com/hiddify/hidyctl/internal/cli"
)

func cmdCron() {
	exe, err := os.Executable()
	if err != nil {
		exe = "hidyctl"
	}

	root := cli.CronCommands(exe)
	root.SetArgs(os.Args[2:])
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
