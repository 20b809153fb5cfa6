// Package hostenv inspects the host for the tools the bot deployment needs
package hostenv

import (
	"fmt"
	"os/exec"
	"runtime"
)

// lookPath is a test seam over exec.LookPath
var lookPath = exec.LookPath

// Host describes the detected host environment
type Host struct {
	OS             string
	PackageManager string
}

// Detect identifies the OS and the first available package manager
func Detect() Host {
	h := Host{OS: runtime.GOOS}
	for _, pm := range []string{"apt-get", "dnf", "yum", "pacman", "brew"} {
		if _, err := lookPath(pm); err == nil {
			h.PackageManager = pm
			break
		}
	}
	return h
}

// Tool is an external prerequisite with an operator hint for
// installing it; installation itself is the operator's job.
type Tool struct {
	Name string
	Hint string
}

// Required returns the tools the deployment pipelines shell out to
func Required(h Host) []Tool {
	return []Tool{
		{Name: "git", Hint: installHint(h, "git")},
		{Name: "python3", Hint: installHint(h, "python3")},
		{Name: "pip3", Hint: installHint(h, "python3-pip")},
		{Name: "crontab", Hint: "install the cron package for your distribution"},
	}
}

// Missing filters tools down to the ones not found on PATH
func Missing(tools []Tool) []Tool {
	var missing []Tool
	for _, tool := range tools {
		if _, err := lookPath(tool.Name); err != nil {
			missing = append(missing, tool)
		}
	}
	return missing
}

// Check verifies all required tools are present and returns an error
// naming the missing ones with install hints.
func Check(h Host) error {
	missing := Missing(Required(h))
	if len(missing) == 0 {
		return nil
	}

	msg := "missing prerequisites:"
	for _, tool := range missing {
		msg += fmt.Sprintf("\n  %s (%s)", tool.Name, tool.Hint)
	}
	return fmt.Errorf("%s", msg)
}

func installHint(h Host, pkg string) string {
	switch h.PackageManager {
	case "apt-get":
		return "sudo apt-get install -y " + pkg
	case "dnf", "yum":
		return "sudo " + h.PackageManager + " install -y " + pkg
	case "pacman":
		return "sudo pacman -S " + pkg
	case "brew":
		return "brew install " + pkg
	default:
		return "install " + pkg + " with your package manager"
	}
}
