// Package lifecycle manages the single long-running bot process on a host.
//
// The manager owns the PID record: all reads and writes of the record go
// through it. Stopping is two-tier: the recorded PID first, then a sweep of
// the process table by the bot's launch argv to catch orphaned instances
// whose record was lost. A stale record is a cleanup signal, not an error.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hiddify/hidyctl/internal/proc"
)

// State of the managed process slot
type State string

const (
	StateUnknown  State = "unknown"
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// Outcome of a bounded termination poll
type Outcome int

const (
	OutcomeStillAlive Outcome = iota
	OutcomeConfirmedDead
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmedDead:
		return "confirmed-dead"
	case OutcomeTimedOut:
		return "timed-out"
	default:
		return "still-alive"
	}
}

// Options configures a Manager
type Options struct {
	PIDFile string
	WorkDir string
	LogFile string

	// Argv is both the launch command and the signature used for
	// the process-table sweep.
	Argv []string

	PollInterval time.Duration
	GracePolls   int
	KillSettle   time.Duration
	StartConfirm time.Duration

	Table proc.Table
}

// Manager controls exactly one logical bot process slot
type Manager struct {
	pidFile string
	workDir string
	logFile string
	argv    []string

	pollInterval time.Duration
	gracePolls   int
	killSettle   time.Duration
	startConfirm time.Duration

	table proc.Table

	// sleep and launch are points for tests to intercept
	sleep  func(context.Context, time.Duration) error
	launch func(context.Context) (int, error)
}

// New creates a lifecycle manager
func New(opts Options) *Manager {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 1 * time.Second
	}
	if opts.GracePolls <= 0 {
		opts.GracePolls = 10
	}
	if opts.KillSettle <= 0 {
		opts.KillSettle = 2 * time.Second
	}
	if opts.StartConfirm <= 0 {
		opts.StartConfirm = 3 * time.Second
	}
	if opts.Table == nil {
		opts.Table = proc.System{}
	}

	m := &Manager{
		pidFile:      opts.PIDFile,
		workDir:      opts.WorkDir,
		logFile:      opts.LogFile,
		argv:         opts.Argv,
		pollInterval: opts.PollInterval,
		gracePolls:   opts.GracePolls,
		killSettle:   opts.KillSettle,
		startConfirm: opts.StartConfirm,
		table:        opts.Table,
		sleep:        sleepCtx,
	}
	m.launch = m.launchProcess
	return m
}

// StopResult summarizes what a Stop call did
type StopResult struct {
	// StoppedPID is the recorded PID that was signaled, 0 if none
	StoppedPID int
	// StoppedOutcome is the termination outcome for the recorded PID
	StoppedOutcome Outcome
	// StaleRecord is true when the record named a dead process
	StaleRecord bool
	// SweptPIDs are orphan processes found by the signature sweep
	SweptPIDs []int
}

// Stop brings the process slot to the stopped state. Nothing running is
// a success case. The PID record is removed unconditionally.
func (m *Manager) Stop(ctx context.Context) (*StopResult, error) {
	res := &StopResult{StoppedOutcome: OutcomeConfirmedDead}

	if pid := m.readPID(); pid > 0 {
		if m.table.Alive(pid) {
			res.StoppedPID = pid
			res.StoppedOutcome = m.terminate(ctx, pid)
		} else {
			res.StaleRecord = true
		}
	}

	// Self-heal: the record goes away whether or not it named a live process
	os.Remove(m.pidFile)

	matches, err := m.table.FindByArgv(m.argv)
	if err != nil {
		return res, fmt.Errorf("process table sweep: %w", err)
	}
	for _, p := range matches {
		if p.PID == res.StoppedPID {
			continue
		}
		m.terminate(ctx, p.PID)
		res.SweptPIDs = append(res.SweptPIDs, p.PID)
	}

	return res, nil
}

// Start launches the bot detached, records its PID, and confirms it
// survived the confirmation window. A process that exits inside the
// window is the one hard failure of the lifecycle.
func (m *Manager) Start(ctx context.Context) (int, error) {
	pid, err := m.launch(ctx)
	if err != nil {
		return 0, fmt.Errorf("launch bot: %w", err)
	}

	if err := m.writePID(pid); err != nil {
		return 0, fmt.Errorf("write pid record: %w", err)
	}

	if err := m.sleep(ctx, m.startConfirm); err != nil {
		return 0, err
	}

	if !m.table.Alive(pid) {
		os.Remove(m.pidFile)
		return 0, fmt.Errorf("bot exited during startup, check %s", m.logFile)
	}

	return pid, nil
}

// Status reports the current state of the process slot without
// changing it, except that a stale PID record is cleaned up.
type Status struct {
	State State
	PID   int
	// Tracked is false when the process was found only by the
	// signature sweep, meaning lifecycle tracking was lost.
	Tracked bool
	// CleanedStale is true when a dead record was removed
	CleanedStale bool
}

// Status inspects the process slot
func (m *Manager) Status() (Status, error) {
	if pid := m.readPID(); pid > 0 {
		if m.table.Alive(pid) {
			return Status{State: StateRunning, PID: pid, Tracked: true}, nil
		}
		os.Remove(m.pidFile)
		return Status{State: StateStopped, CleanedStale: true}, nil
	}

	matches, err := m.table.FindByArgv(m.argv)
	if err != nil {
		return Status{State: StateUnknown}, fmt.Errorf("process table sweep: %w", err)
	}
	if len(matches) > 0 {
		return Status{State: StateRunning, PID: matches[0].PID}, nil
	}

	return Status{State: StateStopped}, nil
}

// PIDFile returns the path of the PID record owned by this manager
func (m *Manager) PIDFile() string {
	return m.pidFile
}

// terminate applies graceful-then-forceful termination to one PID
func (m *Manager) terminate(ctx context.Context, pid int) Outcome {
	if err := m.table.Terminate(pid); err != nil {
		// Process already gone between the scan and the signal
		if !m.table.Alive(pid) {
			return OutcomeConfirmedDead
		}
	}

	outcome := m.waitGone(ctx, pid)
	if outcome == OutcomeTimedOut {
		m.table.Kill(pid)
		m.sleep(ctx, m.killSettle)
	}
	return outcome
}

// waitGone polls liveness at a fixed interval for a bounded number of
// polls and reports the typed outcome.
func (m *Manager) waitGone(ctx context.Context, pid int) Outcome {
	for i := 0; i < m.gracePolls; i++ {
		if !m.table.Alive(pid) {
			return OutcomeConfirmedDead
		}
		if err := m.sleep(ctx, m.pollInterval); err != nil {
			return OutcomeStillAlive
		}
	}
	if !m.table.Alive(pid) {
		return OutcomeConfirmedDead
	}
	return OutcomeTimedOut
}

func (m *Manager) readPID() int {
	data, err := os.ReadFile(m.pidFile)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

func (m *Manager) writePID(pid int) error {
	return os.WriteFile(m.pidFile, []byte(strconv.Itoa(pid)+"\n"), 0600)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
