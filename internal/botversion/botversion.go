// Package botversion detects and compares versions of the managed bot
package botversion

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Unknown is the sentinel used when no detection method works
const Unknown = "0.0.0"

// Method records how a version was obtained
type Method int

const (
	// MethodExec ran the bot's version-reporting script
	MethodExec Method = iota
	// MethodFile parsed the version constant out of the source text
	MethodFile
	// MethodDefault fell back to the Unknown sentinel
	MethodDefault
)

func (m Method) String() string {
	switch m {
	case MethodExec:
		return "version script"
	case MethodFile:
		return "source parse"
	default:
		return "default"
	}
}

// Runner executes an external command in dir and returns its combined output
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

func systemRun(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Detector reads the bot version out of an install directory
type Detector struct {
	dir         string
	interpreter string
	run         Runner
}

// NewDetector creates a detector for the bot installed at dir
func NewDetector(dir, interpreter string) *Detector {
	return &Detector{dir: dir, interpreter: interpreter, run: systemRun}
}

// versionToken matches a semantic-version-like string, with or
// without the leading v
var versionToken = regexp.MustCompile(`v?(\d+(?:\.\d+)+)`)

// versionConstant matches the __version__ assignment in version.py
var versionConstant = regexp.MustCompile(`__version__\s*=\s*["']([^"']+)["']`)

// Detect returns the installed bot version. It runs the bot's
// version.py first, falls back to a textual parse of the file, and
// finally to the Unknown sentinel; detection never fails hard.
func (d *Detector) Detect(ctx context.Context) (string, Method) {
	if out, err := d.run(ctx, d.dir, d.interpreter, "version.py", "--version"); err == nil {
		if v, ok := parseOutput(string(out)); ok {
			return v, MethodExec
		}
	}

	if data, err := os.ReadFile(filepath.Join(d.dir, "version.py")); err == nil {
		if m := versionConstant.FindSubmatch(data); m != nil {
			return string(m[1]), MethodFile
		}
	}

	return Unknown, MethodDefault
}

// parseOutput extracts a version string from version-script output
func parseOutput(out string) (string, bool) {
	out = strings.TrimSpace(out)
	if out == "" {
		return "", false
	}
	m := versionToken.FindStringSubmatch(out)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Clean strips a pre-release suffix before comparison ("6.2.0-rc1" -> "6.2.0")
func Clean(v string) string {
	if i := strings.IndexByte(v, '-'); i >= 0 {
		return v[:i]
	}
	return v
}

// Compare compares two version strings, returning -1, 0, or 1.
// Parts are compared numerically; the shorter version is padded with
// zeros; a string that does not parse compares as 0.0.0.
func Compare(a, b string) int {
	av := parseTuple(a)
	bv := parseTuple(b)

	for len(av) < len(bv) {
		av = append(av, 0)
	}
	for len(bv) < len(av) {
		bv = append(bv, 0)
	}

	for i := range av {
		if av[i] < bv[i] {
			return -1
		}
		if av[i] > bv[i] {
			return 1
		}
	}
	return 0
}

// Less reports whether a is an older version than b
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// parseTuple converts "6.2.0" into [6, 2, 0]; invalid input yields [0, 0, 0]
func parseTuple(v string) []int {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	parts := strings.Split(v, ".")
	tuple := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return []int{0, 0, 0}
		}
		tuple = append(tuple, n)
	}
	return tuple
}
