package cli

import (
	"strings"
	"testing"

	"github.com/hiddify/hidyctl/internal/crontab"
)

func TestManagedEntriesAreValid(t *testing.T) {
	for _, entry := range ManagedEntries("/usr/local/bin/hidyctl") {
		t.Run(entry.Name, func(t *testing.T) {
			if err := crontab.ValidateEntry(entry.Line); err != nil {
				t.Errorf("ValidateEntry(%q) = %v", entry.Line, err)
			}
			if !strings.Contains(entry.Line, "/usr/local/bin/hidyctl") {
				t.Errorf("entry %q does not carry the executable path", entry.Line)
			}
		})
	}
}
