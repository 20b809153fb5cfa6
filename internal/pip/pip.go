// Package pip installs the bot's Python dependencies from its manifest
package pip

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner executes an external command in dir and returns its combined output
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

func systemRun(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Installer installs dependencies for the bot checkout at dir
type Installer struct {
	dir string
	run Runner
}

// New creates an installer for the checkout at dir
func New(dir string) *Installer {
	return &Installer{dir: dir, run: systemRun}
}

// Install runs pip against the requirements manifest. A failed
// install is fatal to the calling pipeline.
func (i *Installer) Install(ctx context.Context) error {
	manifest := filepath.Join(i.dir, "requirements.txt")
	if _, err := os.Stat(manifest); err != nil {
		return fmt.Errorf("dependency manifest: %w", err)
	}

	out, err := i.run(ctx, i.dir, "pip3", "install", "-r", "requirements.txt")
	if err != nil {
		return fmt.Errorf("pip install: %s: %w", lastLine(out), err)
	}
	return nil
}

// lastLine extracts the final non-empty output line, where pip puts
// its error summary
func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no output"
}
