package pip

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInstall(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "requirements.txt"),
		[]byte("pyTelegramBotAPI==4.14.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls []string
	inst := New(dir)
	inst.run = func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
		calls = append(calls, name+" "+strings.Join(args, " "))
		return []byte("Successfully installed"), nil
	}

	if err := inst.Install(context.Background()); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if len(calls) != 1 || calls[0] != "pip3 install -r requirements.txt" {
		t.Errorf("calls = %v", calls)
	}
}

func TestInstallMissingManifest(t *testing.T) {
	inst := New(t.TempDir())
	inst.run = func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
		t.Fatal("pip invoked without a manifest")
		return nil, nil
	}

	if err := inst.Install(context.Background()); err == nil {
		t.Error("Install() error = nil, want missing manifest failure")
	}
}

func TestInstallFailureCarriesOutput(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	inst := New(dir)
	inst.run = func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
		return []byte("Collecting x\nERROR: No matching distribution found for x\n"),
			fmt.Errorf("exit status 1")
	}

	err := inst.Install(context.Background())
	if err == nil {
		t.Fatal("Install() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "No matching distribution") {
		t.Errorf("Install() error %q should carry pip's error line", err)
	}
}
