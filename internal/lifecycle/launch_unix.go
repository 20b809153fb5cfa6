//go:build !windows

package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// launchProcess starts the bot detached from the controlling terminal
// with stdout and stderr appended to the bot log file.
func (m *Manager) launchProcess(ctx context.Context) (int, error) {
	logf, err := os.OpenFile(m.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer logf.Close()

	if len(m.argv) == 0 {
		return 0, fmt.Errorf("empty launch command")
	}

	cmd := exec.Command(m.argv[0], m.argv[1:]...)
	cmd.Dir = m.workDir
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	// The child is detached; reap it in the background so a quick exit
	// does not leave a zombie before the confirmation check.
	go cmd.Wait()

	return cmd.Process.Pid, nil
}
