//go:build linux

package proc

import (
	"os"
	"path/filepath"
	"strconv"
)

// FindByArgv scans /proc for processes whose full argument vector
// equals argv. Entries that disappear mid-scan are skipped.
func (System) FindByArgv(argv []string) ([]Process, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}

	self := os.Getpid()

	var procs []Process
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid == self {
			continue
		}

		data, err := os.ReadFile(filepath.Join("/proc", entry.Name(), "cmdline"))
		if err != nil {
			continue
		}

		cand := parseCmdline(data)
		if ArgvEqual(cand, argv) {
			procs = append(procs, Process{PID: pid, Argv: cand})
		}
	}

	return procs, nil
}
