// Package gitops records import results in the repository's git history.
package gitops

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNothingToCommit is returned when the given paths have no changes.
var ErrNothingToCommit = errors.New("nothing to commit")

// Author identifies who commits import results.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	cmd := exec.Command("git", "init")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// CommitPaths stages paths (relative to dir, including deletions) and
// commits them as author. Returns the short commit hash.
func CommitPaths(dir string, paths []string, message string, author Author) (string, error) {
	add := git(dir, author, append([]string{"add", "-A", "--"}, paths...)...)
	if out, err := add.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	// Exit status 0 means the index matches HEAD.
	if err := git(dir, author, "diff", "--cached", "--quiet").Run(); err == nil {
		return "", ErrNothingToCommit
	}

	commit := git(dir, author, "commit", "-m", message, "--author", author.String())
	if out, err := commit.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	rev := git(dir, author, "rev-parse", "--short", "HEAD")
	out, err := rev.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// git prepares a git command in dir whose committer is author.
func git(dir string, author Author, args ...string) *exec.Cmd {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+author.Name,
		"GIT_COMMITTER_EMAIL="+author.Email,
	)
	return cmd
}
