package codestructure

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/contextslicer/contextslicer/internal/engine"
)

// extractJSOrTS shares one walker across JavaScript and TypeScript: the two
// grammars agree on the node types this extractor cares about (classes,
// functions, imports/exports).
func extractJSOrTS(parser *sitter.Parser, language, path string, content []byte) engine.CodeMap {
	cm := engine.CodeMap{Path: path, Language: language}

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return cm
	}
	defer tree.Close()

	text := func(n *sitter.Node) string { return n.Content(content) }

	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		exported := false
		definition := node
		if node.Type() == "export_statement" {
			exported = true
			if d := jsDefinitionIn(node); d != nil {
				definition = d
			} else {
				continue
			}
		}

		switch definition.Type() {
		case "import_statement":
			if src := definition.ChildByFieldName("source"); src != nil {
				cm.Dependencies = append(cm.Dependencies, trimQuotes(text(src)))
			}

		case "class_declaration":
			nameNode := definition.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := text(nameNode)
			class := engine.ClassInfo{Name: name}
			if body := definition.ChildByFieldName("body"); body != nil {
				for j := 0; j < int(body.NamedChildCount()); j++ {
					member := body.NamedChild(j)
					if member.Type() == "method_definition" {
						if mn := member.ChildByFieldName("name"); mn != nil {
							class.Methods = append(class.Methods, text(mn))
						}
					}
				}
			}
			cm.Classes = append(cm.Classes, class)
			if exported {
				cm.Exports = append(cm.Exports, name)
			}

		case "function_declaration":
			nameNode := definition.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := text(nameNode)
			sig := "function " + name
			if params := definition.ChildByFieldName("parameters"); params != nil {
				sig += text(params)
			}
			async := false
			if fc := definition.Child(0); fc != nil && fc.Type() == "async" {
				async = true
			}
			cm.Functions = append(cm.Functions, engine.FuncInfo{Name: name, Signature: sig, Async: async})
			if exported {
				cm.Exports = append(cm.Exports, name)
			}

		case "interface_declaration":
			if nameNode := definition.ChildByFieldName("name"); nameNode != nil {
				name := text(nameNode)
				cm.Types = append(cm.Types, engine.TypeInfo{Name: name, Kind: "interface"})
				if exported {
					cm.Exports = append(cm.Exports, name)
				}
			}

		case "type_alias_declaration":
			if nameNode := definition.ChildByFieldName("name"); nameNode != nil {
				name := text(nameNode)
				cm.Types = append(cm.Types, engine.TypeInfo{Name: name, Kind: "alias"})
				if exported {
					cm.Exports = append(cm.Exports, name)
				}
			}
		}
	}

	return cm
}

func jsDefinitionIn(exportStmt *sitter.Node) *sitter.Node {
	for i := 0; i < int(exportStmt.NamedChildCount()); i++ {
		child := exportStmt.NamedChild(i)
		switch child.Type() {
		case "class_declaration", "function_declaration", "interface_declaration", "type_alias_declaration":
			return child
		}
	}
	return nil
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}
