// Package codestructure extracts compact structural summaries (engine.CodeMap)
// from source files. Go, Python, JavaScript, and TypeScript are parsed with
// tree-sitter; Markdown is parsed with blackfriday.
package codestructure

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/contextslicer/contextslicer/internal/engine"
)

// Extractor builds CodeMaps for a fixed set of supported languages. It holds
// one tree-sitter parser per language so repeated Extract calls reuse the
// parser's internal buffers. Extract serializes calls with the Extractor's
// own mutex, so one Extractor may be shared across goroutines.
type Extractor struct {
	mu        sync.Mutex
	goParser  *sitter.Parser
	pyParser  *sitter.Parser
	jsParser  *sitter.Parser
	tsParser  *sitter.Parser
}

// NewExtractor constructs an Extractor with one parser per supported
// language, language bindings fixed at construction time.
func NewExtractor() *Extractor {
	goParser := sitter.NewParser()
	goParser.SetLanguage(golang.GetLanguage())

	pyParser := sitter.NewParser()
	pyParser.SetLanguage(python.GetLanguage())

	jsParser := sitter.NewParser()
	jsParser.SetLanguage(javascript.GetLanguage())

	tsParser := sitter.NewParser()
	tsParser.SetLanguage(typescript.GetLanguage())

	return &Extractor{
		goParser: goParser,
		pyParser: pyParser,
		jsParser: jsParser,
		tsParser: tsParser,
	}
}

// Extract builds a CodeMap for path given its content. ok is false when the
// file's extension has no registered extractor.
func (e *Extractor) Extract(path string, content []byte) (engine.CodeMap, bool) {
	ext := strings.ToLower(filepath.Ext(path))

	e.mu.Lock()
	defer e.mu.Unlock()

	switch ext {
	case ".go":
		return extractGo(e.goParser, path, content), true
	case ".py":
		return extractPython(e.pyParser, path, content), true
	case ".js", ".jsx", ".mjs", ".cjs":
		return extractJSOrTS(e.jsParser, "javascript", path, content), true
	case ".ts", ".tsx":
		return extractJSOrTS(e.tsParser, "typescript", path, content), true
	case ".md", ".markdown":
		return extractMarkdown(path, content), true
	default:
		return engine.CodeMap{}, false
	}
}
