package fsrepo

import (
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// DefaultIgnorePatterns are the built-in ignore patterns always applied
// unless explicitly overridden: version-control and build directories,
// secrets-shaped files, lock files, compiled artifacts, and OS/editor
// metadata.
var DefaultIgnorePatterns = []string{
	".git/", "node_modules/", "dist/", "build/", "coverage/", "__pycache__/",
	".next/", "target/", "vendor/", ".contextslicer/",

	".env", ".env.*",
	"*.pem", "*.key", "*.p12", "*.pfx",
	"*secret*", "*credential*", "*password*",

	"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "Gemfile.lock",
	"Cargo.lock", "go.sum", "poetry.lock",

	"*.pyc", "*.pyo", "*.class", "*.o", "*.obj", "*.exe", "*.dll", "*.so", "*.dylib",

	".DS_Store", "Thumbs.db", ".idea/", ".vscode/", "*.swp", "*.swo",
}

// DefaultIgnoreMatcher compiles DefaultIgnorePatterns into an Ignorer.
type DefaultIgnoreMatcher struct {
	matcher *gitignore.GitIgnore
}

// NewDefaultIgnoreMatcher compiles the built-in patterns. Never fails: the
// pattern set is a compile-time constant.
func NewDefaultIgnoreMatcher() *DefaultIgnoreMatcher {
	return &DefaultIgnoreMatcher{matcher: gitignore.CompileIgnoreLines(DefaultIgnorePatterns...)}
}

// IsIgnored reports whether path matches a default ignore pattern.
func (d *DefaultIgnoreMatcher) IsIgnored(path string, isDir bool) bool {
	normalizedPath := filepath.ToSlash(path)
	normalizedPath = strings.TrimPrefix(normalizedPath, "./")
	if normalizedPath == "" || normalizedPath == "." {
		return false
	}
	matchPath := normalizedPath
	if isDir && !strings.HasSuffix(matchPath, "/") {
		matchPath += "/"
	}
	return d.matcher.MatchesPath(matchPath)
}

var _ Ignorer = (*DefaultIgnoreMatcher)(nil)
