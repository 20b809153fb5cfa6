// Package crontab manages entries in the invoking user's host crontab
package crontab

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/robfig/cron/v3"
)

// Table abstracts reading and writing the whole crontab so tests can
// run against an in-memory table.
type Table interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, content string) error
}

// systemTable talks to the real crontab program
type systemTable struct{}

func (systemTable) Read(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "crontab", "-l").Output()
	if err != nil {
		// "no crontab for <user>" exits non-zero; that is an empty table
		if _, ok := err.(*exec.ExitError); ok {
			return "", nil
		}
		return "", fmt.Errorf("crontab -l: %w", err)
	}
	return string(out), nil
}

func (systemTable) Write(ctx context.Context, content string) error {
	cmd := exec.CommandContext(ctx, "crontab", "-")
	cmd.Stdin = strings.NewReader(content)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("crontab -: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Manager performs idempotent upserts and removals of crontab lines
type Manager struct {
	table Table
}

// New creates a manager backed by the system crontab
func New() *Manager {
	return &Manager{table: systemTable{}}
}

// NewWithTable creates a manager over a custom table
func NewWithTable(table Table) *Manager {
	return &Manager{table: table}
}

// Register upserts entry into the crontab. An entry already present
// (exact string containment) is left alone; the call is idempotent.
// The returned flag reports whether a line was added.
func (m *Manager) Register(ctx context.Context, entry string) (bool, error) {
	entry = strings.TrimSpace(entry)
	if err := ValidateEntry(entry); err != nil {
		return false, err
	}

	current, err := m.table.Read(ctx)
	if err != nil {
		return false, err
	}

	if strings.Contains(current, entry) {
		return false, nil
	}

	if current != "" && !strings.HasSuffix(current, "\n") {
		current += "\n"
	}
	current += entry + "\n"

	if err := m.table.Write(ctx, current); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes every line containing match and reports how many
// lines were removed.
func (m *Manager) Remove(ctx context.Context, match string) (int, error) {
	if strings.TrimSpace(match) == "" {
		return 0, fmt.Errorf("empty match")
	}

	current, err := m.table.Read(ctx)
	if err != nil {
		return 0, err
	}

	var kept []string
	removed := 0
	for _, line := range strings.Split(current, "\n") {
		if line != "" && strings.Contains(line, match) {
			removed++
			continue
		}
		kept = append(kept, line)
	}

	if removed == 0 {
		return 0, nil
	}

	content := strings.Join(kept, "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := m.table.Write(ctx, content); err != nil {
		return 0, err
	}
	return removed, nil
}

// List returns the non-empty, non-comment lines of the crontab
func (m *Manager) List(ctx context.Context) ([]string, error) {
	current, err := m.table.Read(ctx)
	if err != nil {
		return nil, err
	}

	var entries []string
	for _, line := range strings.Split(current, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	return entries, nil
}

// scheduleParser accepts standard five-field cron expressions plus
// the @-descriptors
var scheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateEntry checks that entry has a parseable schedule followed
// by a command. @reboot is accepted even though the in-process parser
// does not know it; the host cron does.
func ValidateEntry(entry string) error {
	schedule, command, err := SplitEntry(entry)
	if err != nil {
		return err
	}
	if command == "" {
		return fmt.Errorf("crontab entry has no command: %q", entry)
	}
	if schedule == "@reboot" {
		return nil
	}
	if _, err := scheduleParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// SplitEntry separates the schedule fields from the command
func SplitEntry(entry string) (schedule, command string, err error) {
	fields := strings.Fields(entry)
	if len(fields) == 0 {
		return "", "", fmt.Errorf("empty crontab entry")
	}

	if strings.HasPrefix(fields[0], "@") {
		return fields[0], strings.Join(fields[1:], " "), nil
	}

	if len(fields) < 6 {
		return "", "", fmt.Errorf("crontab entry too short: %q", entry)
	}
	return strings.Join(fields[:5], " "), strings.Join(fields[5:], " "), nil
}
