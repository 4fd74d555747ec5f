package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileDiscovery:
// - Walks directories and returns files matching include patterns, sorted
// - **/ patterns match files at the root as well as nested files
// - Ignore patterns skip files and whole directories
// - The .semi directory is always ignored
// - Explicit file paths are filtered by include pattern
// - Duplicate paths are reported once
// - Invalid patterns fail construction
// - Missing paths return an error

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		path := filepath.Join(root, r)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("class A {}"), 0644))
	}
}

func TestDiscover_Directory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, root,
		"A.java",
		"src/main/B.java",
		"src/main/notes.md",
		"target/gen/C.java",
		".semi/cache/D.java",
	)

	fd, err := New([]string{"**/*.java"}, []string{"target/**"})
	require.NoError(t, err)

	files, err := fd.Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "A.java"),
		filepath.Join(root, "src/main/B.java"),
	}, files)
}

func TestDiscover_ExplicitFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, root, "A.java", "README.md")

	fd, err := New([]string{"**/*.java"}, nil)
	require.NoError(t, err)

	a := filepath.Join(root, "A.java")
	files, err := fd.Discover(a, filepath.Join(root, "README.md"), a, root)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, files)
}

func TestShouldIgnore(t *testing.T) {
	t.Parallel()

	fd, err := New([]string{"**/*.java"}, []string{"build/**", "**/*Test.java"})
	require.NoError(t, err)

	assert.True(t, fd.ShouldIgnore("build"))
	assert.True(t, fd.ShouldIgnore("build/A.java"))
	assert.True(t, fd.ShouldIgnore("src/FooTest.java"))
	assert.True(t, fd.ShouldIgnore(".semi"))
	assert.False(t, fd.ShouldIgnore("src/Foo.java"))
}

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := New([]string{"[unclosed"}, nil)
	assert.Error(t, err)
}

func TestDiscover_MissingPath(t *testing.T) {
	t.Parallel()

	fd, err := New([]string{"**/*.java"}, nil)
	require.NoError(t, err)

	_, err = fd.Discover(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
