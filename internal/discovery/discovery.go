// Package discovery finds the source files to analyze.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// rootGlob matches files at the root when pattern starts with **/.
	rootGlob glob.Glob
}

// FileDiscovery handles file discovery with glob patterns and ignore rules.
type FileDiscovery struct {
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
}

// New creates a file discovery instance.
func New(includePatterns, ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{}

	var err error
	if fd.includePatterns, err = compilePatterns(includePatterns); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compilePatterns(ignorePatterns); err != nil {
		return nil, err
	}
	return fd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if sg, err := glob.Compile(simplified, '/'); err == nil {
				cp.rootGlob = sg
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// Discover resolves paths to a sorted, duplicate-free list of files. A file
// named explicitly is kept when it matches an include pattern by name; a
// directory is walked and filtered by the include and ignore patterns
// relative to it.
func (fd *FileDiscovery) Discover(paths ...string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if fd.Matches(filepath.Base(root)) {
				add(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			// Normalize path separators for glob matching
			relPath = filepath.ToSlash(relPath)

			if d.IsDir() {
				if relPath != "." && fd.ShouldIgnore(relPath) {
					return filepath.SkipDir
				}
				return nil
			}

			if fd.ShouldIgnore(relPath) {
				return nil
			}
			if fd.Matches(relPath) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(files)
	return files, nil
}

// Matches reports whether relPath matches an include pattern.
func (fd *FileDiscovery) Matches(relPath string) bool {
	return matchesAnyPattern(relPath, fd.includePatterns)
}

// ShouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) ShouldIgnore(relPath string) bool {
	// Always ignore .semi directory
	if strings.HasPrefix(relPath, ".semi/") || relPath == ".semi" {
		return true
	}

	if matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// A directory such as "target" matches pattern "target/**".
	return matchesAnyPattern(relPath+"/**", fd.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	rootLevel := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		// "**/*.java" should match both "A.java" and "src/A.java".
		if rootLevel && cp.rootGlob != nil && cp.rootGlob.Match(path) {
			return true
		}
	}
	return false
}
