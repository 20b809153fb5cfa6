// Package proc provides typed queries against the host process table
package proc

import (
	"strconv"
	"strings"
)

// Process is a handle to an entry in the process table
type Process struct {
	PID  int
	Argv []string
}

// Table abstracts process-table access so callers can be tested
// against a fake table.
type Table interface {
	// Alive reports whether a process with the given PID exists
	Alive(pid int) bool

	// FindByArgv returns all processes whose argument vector equals argv
	FindByArgv(argv []string) ([]Process, error)

	// Terminate sends a graceful termination signal (SIGTERM)
	Terminate(pid int) error

	// Kill sends a forceful termination signal (SIGKILL)
	Kill(pid int) error
}

// ArgvEqual reports whether two argument vectors are identical.
// Matching is by full-vector equality, never substring containment.
func ArgvEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// parseCmdline splits a /proc/<pid>/cmdline buffer into an argv.
// Arguments are NUL-separated with a trailing NUL.
func parseCmdline(data []byte) []string {
	parts := strings.Split(string(data), "\x00")
	argv := parts[:0]
	for _, p := range parts {
		if p != "" {
			argv = append(argv, p)
		}
	}
	if len(argv) == 0 {
		return nil
	}
	return argv
}

// parsePS parses `ps -axo pid=,args=` output into process handles.
// Argument vectors are recovered by whitespace splitting, which is an
// approximation: arguments containing spaces cannot be reconstructed.
func parsePS(output []byte) []Process {
	var procs []Process
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		procs = append(procs, Process{PID: pid, Argv: fields[1:]})
	}
	return procs
}
