//go:build darwin

package proc

import (
	"os"
	"os/exec"
)

// FindByArgv lists the process table via ps and returns processes
// whose recovered argument vector equals argv.
func (System) FindByArgv(argv []string) ([]Process, error) {
	output, err := exec.Command("ps", "-axo", "pid=,args=").Output()
	if err != nil {
		return nil, err
	}

	self := os.Getpid()

	var procs []Process
	for _, p := range parsePS(output) {
		if p.PID == self {
			continue
		}
		if ArgvEqual(p.Argv, argv) {
			procs = append(procs, p)
		}
	}

	return procs, nil
}
