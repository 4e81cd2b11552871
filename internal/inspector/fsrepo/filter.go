package fsrepo

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PatternFilter applies include/exclude glob filtering to a relative path.
// Exclude patterns always win over include patterns; when neither include
// nor exclude is set, every path passes.
type PatternFilter struct {
	includes []string
	excludes []string
}

// NewPatternFilter constructs a PatternFilter. Slices are copied so the
// caller's originals can be mutated freely afterwards.
func NewPatternFilter(includes, excludes []string) *PatternFilter {
	inc := make([]string, len(includes))
	copy(inc, includes)
	exc := make([]string, len(excludes))
	copy(exc, excludes)
	return &PatternFilter{includes: inc, excludes: exc}
}

// HasFilters reports whether any include/exclude pattern is configured.
func (f *PatternFilter) HasFilters() bool {
	return len(f.includes) > 0 || len(f.excludes) > 0
}

// Matches reports whether path should be kept.
func (f *PatternFilter) Matches(path string) bool {
	normalized := filepath.ToSlash(path)
	normalized = strings.TrimPrefix(normalized, "./")
	if normalized == "" {
		return false
	}

	for _, pattern := range f.excludes {
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return false
		}
	}

	if len(f.includes) == 0 {
		return true
	}

	for _, pattern := range f.includes {
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
	}
	return false
}
