// Package gitops wraps the git client used for source deployment
package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner executes an external command in dir and returns its combined output
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

func systemRun(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Client manages one git work tree
type Client struct {
	dir string
	run Runner
}

// New creates a git client for the work tree at dir
func New(dir string) *Client {
	return &Client{dir: dir, run: systemRun}
}

// IsRepo reports whether dir contains a git work tree
func (c *Client) IsRepo() bool {
	info, err := os.Stat(filepath.Join(c.dir, ".git"))
	return err == nil && info.IsDir()
}

// Clone clones url at branch into the client's work tree
func (c *Client) Clone(ctx context.Context, url, branch string) error {
	args := []string{"clone"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, url, c.dir)

	out, err := c.run(ctx, "", "git", args...)
	if err != nil {
		return fmt.Errorf("git clone: %s: %w", firstLine(out), err)
	}
	return nil
}

// Pull updates the work tree. A failed plain pull falls back to
// stashing local changes and pulling with rebase; only both failing
// is an error.
func (c *Client) Pull(ctx context.Context) error {
	out, err := c.run(ctx, c.dir, "git", "pull")
	if err == nil {
		return nil
	}
	pullMsg := firstLine(out)

	// Local modifications commonly block the plain pull; stash them
	// and retry with rebase.
	c.run(ctx, c.dir, "git", "stash")

	out, err = c.run(ctx, c.dir, "git", "pull", "--rebase")
	if err != nil {
		return fmt.Errorf("git pull failed (%s), rebase pull failed (%s): %w",
			pullMsg, firstLine(out), err)
	}
	return nil
}

// CloneOrPull clones when no work tree exists, otherwise pulls.
// The returned flag reports whether a fresh clone happened.
func (c *Client) CloneOrPull(ctx context.Context, url, branch string) (bool, error) {
	if c.IsRepo() {
		return false, c.Pull(ctx)
	}
	return true, c.Clone(ctx, url, branch)
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		s = "no output"
	}
	return s
}
