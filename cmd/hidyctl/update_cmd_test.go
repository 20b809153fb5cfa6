package main

import (
	"strings"
	"testing"
)

func TestMigrationNotice(t *testing.T) {
	tests := []struct {
		name    string
		current string
		target  string
		warn    bool
	}{
		{"up to date", "6.2.0", "6.2.0", false},
		{"downgrade", "6.3.0", "6.2.0", true},
		{"downgrade with pre-release", "6.3.0-rc1", "6.2.0", true},
		{"unknown current", "0.0.0", "0.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notice := migrationNotice(tt.current, tt.target)
			if tt.warn {
				if !strings.HasPrefix(notice, "⚠️") {
					t.Errorf("migrationNotice(%q, %q) = %q, want a warning",
						tt.current, tt.target, notice)
				}
			} else {
				if !strings.HasPrefix(notice, "✅") {
					t.Errorf("migrationNotice(%q, %q) = %q, want up-to-date notice",
						tt.current, tt.target, notice)
				}
			}
			if isDowngrade(tt.current, tt.target) != tt.warn {
				t.Errorf("isDowngrade(%q, %q) = %v, want %v",
					tt.current, tt.target, !tt.warn, tt.warn)
			}
		})
	}
}
