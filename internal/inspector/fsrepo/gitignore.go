package fsrepo

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// hierarchicalMatcher loads and evaluates nested ignore-pattern files (such
// as .gitignore or .contextsliceignore) rooted at a directory. Each
// directory level can add patterns that apply to files within that
// subtree; parent rules are inherited by children.
type hierarchicalMatcher struct {
	root     string
	fileName string
	matchers map[string]*gitignore.GitIgnore
	dirs     []string
	logger   *slog.Logger
}

// newHierarchicalMatcher walks rootDir to discover all fileName files and
// compiles their patterns.
func newHierarchicalMatcher(rootDir, fileName, component string) (*hierarchicalMatcher, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving root path %s: %w", rootDir, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root path %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path %s is not a directory", absRoot)
	}

	m := &hierarchicalMatcher{
		root:     absRoot,
		fileName: fileName,
		matchers: make(map[string]*gitignore.GitIgnore),
		logger:   slog.Default().With("component", component),
	}

	if err := m.discover(); err != nil {
		return nil, fmt.Errorf("discovering %s files in %s: %w", fileName, absRoot, err)
	}
	return m, nil
}

func (m *hierarchicalMatcher) discover() error {
	err := filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			m.logger.Debug("skipping unreadable path", "path", path, "error", err)
			return filepath.SkipDir
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if d.IsDir() || d.Name() != m.fileName {
			return nil
		}

		dirPath := filepath.Dir(path)
		relDir, err := filepath.Rel(m.root, dirPath)
		if err != nil {
			m.logger.Debug("skipping, cannot compute relative path", "path", path, "error", err)
			return nil
		}

		compiled, err := gitignore.CompileIgnoreFile(path)
		if err != nil {
			m.logger.Debug("skipping unreadable ignore file", "path", path, "error", err)
			return nil
		}

		if relDir == "" {
			relDir = "."
		}
		m.matchers[relDir] = compiled
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking directory tree: %w", err)
	}

	m.dirs = make([]string, 0, len(m.matchers))
	for dir := range m.matchers {
		m.dirs = append(m.dirs, dir)
	}
	sort.Strings(m.dirs)
	return nil
}

// IsIgnored reports whether path matches any loaded pattern, evaluating
// ancestor directories from root toward path's parent.
func (m *hierarchicalMatcher) IsIgnored(path string, isDir bool) bool {
	normalizedPath := filepath.ToSlash(path)
	normalizedPath = strings.TrimPrefix(normalizedPath, "./")
	if normalizedPath == "" || normalizedPath == "." {
		return false
	}

	matchPath := normalizedPath
	if isDir && !strings.HasSuffix(matchPath, "/") {
		matchPath += "/"
	}

	for _, dir := range m.dirs {
		matcher := m.matchers[dir]
		if dir != "." {
			prefix := dir + "/"
			if !strings.HasPrefix(normalizedPath, prefix) {
				continue
			}
		}

		var relPath string
		if dir == "." {
			relPath = matchPath
		} else {
			relPath = strings.TrimPrefix(matchPath, dir+"/")
		}

		if matcher.MatchesPath(relPath) {
			return true
		}
	}
	return false
}

// GitignoreMatcher evaluates .gitignore files.
type GitignoreMatcher struct{ *hierarchicalMatcher }

// NewGitignoreMatcher constructs a GitignoreMatcher rooted at rootDir.
func NewGitignoreMatcher(rootDir string) (*GitignoreMatcher, error) {
	hm, err := newHierarchicalMatcher(rootDir, ".gitignore", "gitignore")
	if err != nil {
		return nil, err
	}
	return &GitignoreMatcher{hm}, nil
}

// SliceIgnoreMatcher evaluates .contextsliceignore files: tool-specific
// ignore patterns layered on top of .gitignore, analogous to a
// dockerignore file.
type SliceIgnoreMatcher struct{ *hierarchicalMatcher }

// NewSliceIgnoreMatcher constructs a SliceIgnoreMatcher rooted at rootDir.
func NewSliceIgnoreMatcher(rootDir string) (*SliceIgnoreMatcher, error) {
	hm, err := newHierarchicalMatcher(rootDir, ".contextsliceignore", "contextsliceignore")
	if err != nil {
		return nil, err
	}
	return &SliceIgnoreMatcher{hm}, nil
}

var (
	_ Ignorer = (*GitignoreMatcher)(nil)
	_ Ignorer = (*SliceIgnoreMatcher)(nil)
)
