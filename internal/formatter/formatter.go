// Package formatter renders a ContextResult as XML, Markdown, or JSON with
// bit-exact escaping rules.
package formatter

import "github.com/contextslicer/contextslicer/internal/engine"

// Format is a supported output format name.
type Format string

const (
	FormatXML      Format = "xml"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formatter renders a ContextResult to its string form.
type Formatter interface {
	Format(result engine.ContextResult) (string, error)
}

// New resolves a Formatter by name.
func New(format Format) Formatter {
	switch format {
	case FormatMarkdown:
		return &MarkdownFormatter{}
	case FormatJSON:
		return &JSONFormatter{}
	default:
		return &XMLFormatter{}
	}
}
