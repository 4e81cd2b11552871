package codestructure

import (
	"bytes"

	blackfriday "github.com/russross/blackfriday/v2"

	"github.com/contextslicer/contextslicer/internal/engine"
)

// extractMarkdown walks a blackfriday AST to recover the heading hierarchy
// and fenced code block languages, and collects the lines of a leading
// "---" delimited frontmatter block ("+++" blocks are not recognized).
func extractMarkdown(path string, content []byte) engine.CodeMap {
	cm := engine.CodeMap{Path: path, Language: "markdown"}

	body := content
	if fm := markdownFrontmatter(content); len(fm) > 0 {
		cm.Frontmatter = fm
		// Parse only what follows the closing delimiter, so the frontmatter
		// is not read as a rule plus a setext heading.
		for skip := len(fm) + 2; skip > 0 && len(body) > 0; skip-- {
			if i := bytes.IndexByte(body, '\n'); i >= 0 {
				body = body[i+1:]
			} else {
				body = nil
			}
		}
	}

	parser := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions | blackfriday.Titleblock))
	root := parser.Parse(body)

	blocks := &engine.CodeBlocks{}
	languages := map[string]bool{}

	root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		if !entering {
			return blackfriday.GoToNext
		}
		switch node.Type {
		case blackfriday.Heading:
			cm.Sections = append(cm.Sections, engine.SectionInfo{
				Depth: node.HeadingData.Level,
				Title: headingText(node),
			})
		case blackfriday.CodeBlock:
			blocks.Count++
			if lang := string(node.CodeBlockData.Info); lang != "" {
				if !languages[lang] {
					languages[lang] = true
					blocks.Languages = append(blocks.Languages, lang)
				}
			}
		}
		return blackfriday.GoToNext
	})

	if blocks.Count > 0 {
		cm.CodeBlocks = blocks
	}
	return cm
}

func headingText(node *blackfriday.Node) string {
	var text []byte
	for child := node.FirstChild; child != nil; child = child.Next {
		if child.Type == blackfriday.Text {
			text = append(text, child.Literal...)
		}
	}
	return string(text)
}

// markdownFrontmatter returns the raw lines of a leading "---" delimited
// frontmatter block, if present.
func markdownFrontmatter(content []byte) []string {
	const delim = "---"
	lines := splitLines(content)
	if len(lines) == 0 || lines[0] != delim {
		return nil
	}
	for i := 1; i < len(lines); i++ {
		if lines[i] == delim {
			return lines[1:i]
		}
	}
	return nil
}

func splitLines(content []byte) []string {
	var lines []string
	start := 0
	for i, b := range content {
		if b == '\n' {
			end := i
			if end > start && content[end-1] == '\r' {
				end--
			}
			lines = append(lines, string(content[start:end]))
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, string(content[start:]))
	}
	return lines
}
