package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotCloned is returned when an operation targets a directory that is not
// a git checkout.
var ErrNotCloned = errors.New("repository not cloned")

// Operations defines the git commands the dataset miner needs.
// This allows mocking git commands in tests.
type Operations interface {
	// Clone clones url into dir. A dir that already holds a checkout is left
	// untouched.
	Clone(ctx context.Context, url, dir string) error

	// Log returns every commit sha reachable from HEAD, newest first.
	Log(ctx context.Context, repoDir string) ([]string, error)

	// ChangedFiles returns the paths touched by commit sha.
	ChangedFiles(ctx context.Context, repoDir, sha string) ([]string, error)

	// ShowFile returns the content of path as of commit sha.
	ShowFile(ctx context.Context, repoDir, sha, path string) ([]byte, error)
}

// gitOps is the real implementation using exec.CommandContext.
type gitOps struct {
	binary string
}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{binary: "git"}
}

func (g *gitOps) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("git %s: %w", args[0], err)
		}
		return nil, fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return out, nil
}

func (g *gitOps) Clone(ctx context.Context, url, dir string) error {
	if IsRepository(dir) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("failed to create repos directory: %w", err)
	}
	_, err := g.run(ctx, filepath.Dir(dir), "clone", "--quiet", url, dir)
	return err
}

func (g *gitOps) Log(ctx context.Context, repoDir string) ([]string, error) {
	if !IsRepository(repoDir) {
		return nil, fmt.Errorf("%s: %w", repoDir, ErrNotCloned)
	}
	out, err := g.run(ctx, repoDir, "log", "--full-history", "--pretty=format:%H")
	if err != nil {
		return nil, err
	}
	return splitLines(string(out), 0), nil
}

func (g *gitOps) ChangedFiles(ctx context.Context, repoDir, sha string) ([]string, error) {
	out, err := g.run(ctx, repoDir, "show", "--name-only", "--oneline", sha)
	if err != nil {
		return nil, err
	}
	// The first line is the commit subject.
	return splitLines(string(out), 1), nil
}

func (g *gitOps) ShowFile(ctx context.Context, repoDir, sha, path string) ([]byte, error) {
	return g.run(ctx, repoDir, "show", sha+":"+filepath.ToSlash(path))
}

// IsRepository reports whether dir holds a git checkout.
func IsRepository(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// RepoName derives a directory name from a remote URL: the last path element
// without a .git suffix.
// Examples:
//
//	https://github.com/user/repo.git -> repo
//	git@github.com:user/repo.git     -> repo
func RepoName(url string) string {
	url = strings.TrimSpace(url)
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		url = url[i+1:]
	}
	return url
}

func splitLines(s string, skip int) []string {
	var out []string
	for i, line := range strings.Split(s, "\n") {
		if i < skip {
			continue
		}
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
