// Package backup handles database backup operations
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Manager handles backup operations
type Manager struct {
	backupDir string
	keepCount int
}

// Info contains metadata about a backup
type Info struct {
	Filename  string
	Timestamp time.Time
	Size      int64
}

// New creates a new backup manager
func New(backupDir string, keepCount int) *Manager {
	return &Manager{
		backupDir: backupDir,
		keepCount: keepCount,
	}
}

// Create copies srcPath into the backup directory under a timestamped
// name. A missing source surfaces as an os.IsNotExist error so callers
// can treat it as a skip rather than a failure.
func (m *Manager) Create(srcPath string) (*Info, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	timestamp := time.Now()
	filename := timestampedName(filepath.Base(srcPath), timestamp)
	backupFile := filepath.Join(m.backupDir, filename)

	dst, err := os.OpenFile(backupFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(backupFile)
		return nil, fmt.Errorf("copy %s: %w", srcPath, err)
	}
	if err := dst.Close(); err != nil {
		return nil, err
	}

	stat, err := os.Stat(backupFile)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Filename:  filename,
		Timestamp: timestamp,
		Size:      stat.Size(),
	}

	// Keep growth bounded
	m.cleanup()

	return info, nil
}

// List lists available backups, newest first
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".bak") {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			continue
		}

		timestamp := fi.ModTime()
		if t, ok := parseTimestamp(entry.Name()); ok {
			timestamp = t
		}

		backups = append(backups, Info{
			Filename:  entry.Name(),
			Timestamp: timestamp,
			Size:      fi.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// Delete deletes a specific backup
func (m *Manager) Delete(filename string) error {
	// Prevent path traversal
	if strings.Contains(filename, "/") || strings.Contains(filename, "..") {
		return fmt.Errorf("invalid filename")
	}
	return os.Remove(filepath.Join(m.backupDir, filename))
}

// cleanup removes old backups keeping only keepCount
func (m *Manager) cleanup() {
	if m.keepCount <= 0 {
		return
	}
	backups, err := m.List()
	if err != nil || len(backups) <= m.keepCount {
		return
	}

	for _, b := range backups[m.keepCount:] {
		os.Remove(filepath.Join(m.backupDir, b.Filename))
	}
}

// timestampedName builds a backup filename: name_YYYYMMDD_HHMMSS.ext.bak
func timestampedName(base string, t time.Time) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_%s%s.bak", stem, t.Format("20060102_150405"), ext)
}

var timestampRe = regexp.MustCompile(`_(\d{8}_\d{6})\.`)

// parseTimestamp recovers the embedded timestamp from a backup filename
func parseTimestamp(filename string) (time.Time, bool) {
	match := timestampRe.FindStringSubmatch(filename)
	if match == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("20060102_150405", match[1], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
