package backup

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

func TestTimestampedName(t *testing.T) {
	ts := time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC)

	tests := []struct {
		base string
		want string
	}{
		{"hidyBot.db", "hidyBot_20260829_143005.db.bak"},
		{"config.json", "config_20260829_143005.json.bak"},
		{"noext", "noext_20260829_143005.bak"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			if got := timestampedName(tt.base, ts); got != tt.want {
				t.Errorf("timestampedName(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	got, ok := parseTimestamp("hidyBot_20260829_143005.db.bak")
	if !ok {
		t.Fatal("parseTimestamp() ok = false")
	}
	want := time.Date(2026, 8, 29, 14, 30, 5, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("parseTimestamp() = %v, want %v", got, want)
	}

	if _, ok := parseTimestamp("hidyBot.db.bak"); ok {
		t.Error("parseTimestamp() ok = true for name without timestamp")
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "hidyBot.db")
	if err := os.WriteFile(dbPath, []byte("database contents"), 0600); err != nil {
		t.Fatal(err)
	}

	m := New(filepath.Join(dir, "Backup"), 5)
	info, err := m.Create(dbPath)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	pattern := regexp.MustCompile(`^hidyBot_\d{8}_\d{6}\.db\.bak$`)
	if !pattern.MatchString(info.Filename) {
		t.Errorf("Create() filename = %q, want name_YYYYMMDD_HHMMSS.ext.bak", info.Filename)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Backup", info.Filename))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(data) != "database contents" {
		t.Errorf("backup contents = %q, want original contents", data)
	}
	if info.Size != int64(len("database contents")) {
		t.Errorf("Size = %d, want %d", info.Size, len("database contents"))
	}
}

func TestCreateMissingSource(t *testing.T) {
	dir := t.TempDir()
	m := New(filepath.Join(dir, "Backup"), 5)

	_, err := m.Create(filepath.Join(dir, "absent.db"))
	if !os.IsNotExist(err) {
		t.Errorf("Create() error = %v, want IsNotExist", err)
	}
}

func TestRetention(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "Backup")
	if err := os.MkdirAll(backupDir, 0700); err != nil {
		t.Fatal(err)
	}

	// Seed old backups with embedded timestamps
	old := []string{
		"hidyBot_20250101_000000.db.bak",
		"hidyBot_20250102_000000.db.bak",
		"hidyBot_20250103_000000.db.bak",
	}
	for _, name := range old {
		if err := os.WriteFile(filepath.Join(backupDir, name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	dbPath := filepath.Join(dir, "hidyBot.db")
	if err := os.WriteFile(dbPath, []byte("db"), 0600); err != nil {
		t.Fatal(err)
	}

	m := New(backupDir, 2)
	if _, err := m.Create(dbPath); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	backups, err := m.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("List() returned %d backups after cleanup, want 2", len(backups))
	}

	// The oldest seeds must be gone, the fresh backup kept
	for _, b := range backups {
		if b.Filename == "hidyBot_20250101_000000.db.bak" || b.Filename == "hidyBot_20250102_000000.db.bak" {
			t.Errorf("old backup %s survived retention", b.Filename)
		}
	}
}

func TestListEmptyDir(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "does-not-exist"), 3)
	backups, err := m.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if backups != nil {
		t.Errorf("List() = %v, want nil for missing dir", backups)
	}
}

func TestDeleteRejectsTraversal(t *testing.T) {
	m := New(t.TempDir(), 3)
	if err := m.Delete("../escape.bak"); err == nil {
		t.Error("Delete() accepted a path traversal filename")
	}
}
