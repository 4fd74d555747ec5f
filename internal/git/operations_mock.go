package git

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MockGitOps is an in-memory implementation of Operations for testing.
// Repositories are keyed by clone directory once cloned.
type MockGitOps struct {
	mu sync.Mutex

	// Remotes maps a clone URL to the repository it serves.
	Remotes map[string]*MockRepo
	// CloneError, when set, is returned by every Clone call.
	CloneError error

	cloned map[string]*MockRepo
	clones []string
}

// MockRepo is a linear commit history, newest first.
type MockRepo struct {
	Commits []MockCommit
}

// MockCommit is one commit with the full content of the files it touched.
type MockCommit struct {
	SHA   string
	Files map[string]string
}

// NewMockGitOps creates a mock with no remotes.
func NewMockGitOps() *MockGitOps {
	return &MockGitOps{
		Remotes: make(map[string]*MockRepo),
		cloned:  make(map[string]*MockRepo),
	}
}

// Clones returns the directories cloned so far, in call order.
func (m *MockGitOps) Clones() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.clones)
}

func (m *MockGitOps) Clone(ctx context.Context, url, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CloneError != nil {
		return m.CloneError
	}
	if _, ok := m.cloned[dir]; ok {
		return nil
	}
	repo, ok := m.Remotes[url]
	if !ok {
		return fmt.Errorf("git clone: repository %s not found", url)
	}
	m.cloned[dir] = repo
	m.clones = append(m.clones, dir)
	return nil
}

func (m *MockGitOps) repo(dir string) (*MockRepo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	repo, ok := m.cloned[dir]
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotCloned)
	}
	return repo, nil
}

func (m *MockGitOps) Log(ctx context.Context, repoDir string) ([]string, error) {
	repo, err := m.repo(repoDir)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(repo.Commits))
	for i, c := range repo.Commits {
		out[i] = c.SHA
	}
	return out, nil
}

func (m *MockGitOps) ChangedFiles(ctx context.Context, repoDir, sha string) ([]string, error) {
	repo, err := m.repo(repoDir)
	if err != nil {
		return nil, err
	}
	for _, c := range repo.Commits {
		if c.SHA == sha {
			files := make([]string, 0, len(c.Files))
			for path := range c.Files {
				files = append(files, path)
			}
			slices.Sort(files)
			return files, nil
		}
	}
	return nil, fmt.Errorf("git show: unknown revision %s", sha)
}

// ShowFile returns the newest version of path at or before sha.
func (m *MockGitOps) ShowFile(ctx context.Context, repoDir, sha, path string) ([]byte, error) {
	repo, err := m.repo(repoDir)
	if err != nil {
		return nil, err
	}
	start := slices.IndexFunc(repo.Commits, func(c MockCommit) bool { return c.SHA == sha })
	if start < 0 {
		return nil, fmt.Errorf("git show: unknown revision %s", sha)
	}
	for _, c := range repo.Commits[start:] {
		if content, ok := c.Files[path]; ok {
			return []byte(content), nil
		}
	}
	return nil, fmt.Errorf("git show: path %s does not exist in %s", path, sha)
}
