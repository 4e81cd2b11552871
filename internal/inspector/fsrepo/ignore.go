// Package fsrepo implements a filesystem-backed inspector.Inspector: the
// engine's default Repository Inspector, grounded in the same walking,
// ignore-pattern, and binary-detection machinery a repository-harvesting CLI
// needs.
package fsrepo

import "log/slog"

// Ignorer reports whether a given relative path should be excluded from
// discovery. isDir indicates whether the path is a directory, which matters
// for directory-only patterns (those ending in "/").
type Ignorer interface {
	IsIgnored(path string, isDir bool) bool
}

// CompositeIgnorer chains multiple Ignorer implementations; a path is
// ignored if any chained ignorer matches it.
type CompositeIgnorer struct {
	ignorers []Ignorer
	logger   *slog.Logger
}

// NewCompositeIgnorer builds a CompositeIgnorer from the given ignorers,
// skipping any nil entries.
func NewCompositeIgnorer(ignorers ...Ignorer) *CompositeIgnorer {
	filtered := make([]Ignorer, 0, len(ignorers))
	for _, ig := range ignorers {
		if ig != nil {
			filtered = append(filtered, ig)
		}
	}
	return &CompositeIgnorer{
		ignorers: filtered,
		logger:   slog.Default().With("component", "composite-ignorer"),
	}
}

// IsIgnored reports whether path is ignored by any chained ignorer.
func (c *CompositeIgnorer) IsIgnored(path string, isDir bool) bool {
	for _, ig := range c.ignorers {
		if ig.IsIgnored(path, isDir) {
			return true
		}
	}
	return false
}

var _ Ignorer = (*CompositeIgnorer)(nil)
