//go:build !windows

package main

import (
	"fmt"
	"os"
	"os/exec"
)

func tailLogFile(logFile string) {
	cmd := exec.Command("tail", "-f", "--", logFile)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	_ = cmd.Run()
}

func readLastLines(filename string, n int) (string, error) {
	if n <= 0 {
		n = 10
	}
	cmd := exec.Command("tail", fmt.Sprintf("-%d", n), "--", filename)
	output, err := cmd.Output()
	return string(output), err
}
