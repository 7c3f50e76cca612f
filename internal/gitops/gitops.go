// Package gitops records book mutations as git commits.
package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Author identifies who a commit is attributed to.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Init initializes a new git repository at dir.
func Init(ctx context.Context, dir string) error {
	if _, err := git(ctx, dir, "init", "--quiet"); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// HasChanges reports whether the work tree has anything to commit.
func HasChanges(ctx context.Context, dir string) (bool, error) {
	out, err := git(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitAll stages all files and creates a commit. Returns the short commit hash.
func CommitAll(ctx context.Context, dir, message string, author Author) (string, error) {
	if _, err := git(ctx, dir, "add", "-A"); err != nil {
		return "", fmt.Errorf("git add: %w", err)
	}

	// Identity is passed explicitly so commits work without global git config.
	if _, err := git(ctx, dir,
		"-c", "user.name="+author.Name,
		"-c", "user.email="+author.Email,
		"commit", "--quiet", "-m", message, "--author", author.String(),
	); err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}

	out, err := git(ctx, dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Committer commits the book after each mutation when enabled.
type Committer struct {
	Dir     string
	Author  Author
	Enabled bool
	Log     zerolog.Logger
}

// Commit commits all pending changes with message. It returns an empty
// hash without error when auto-commit is off, the book is not a git
// repository, or nothing changed.
func (c *Committer) Commit(ctx context.Context, message string) (string, error) {
	if !c.Enabled {
		return "", nil
	}
	if !IsRepo(c.Dir) {
		c.Log.Debug().Str("dir", c.Dir).Msg("not a git repository, skipping commit")
		return "", nil
	}

	dirty, err := HasChanges(ctx, c.Dir)
	if err != nil {
		return "", err
	}
	if !dirty {
		return "", nil
	}

	hash, err := CommitAll(ctx, c.Dir, message, c.Author)
	if err != nil {
		return "", err
	}
	c.Log.Debug().Str("commit", hash).Str("message", message).Msg("committed")
	return hash, nil
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}
