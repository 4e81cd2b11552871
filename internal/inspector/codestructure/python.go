package codestructure

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/contextslicer/contextslicer/internal/engine"
)

func extractPython(parser *sitter.Parser, path string, content []byte) engine.CodeMap {
	cm := engine.CodeMap{Path: path, Language: "python"}

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return cm
	}
	defer tree.Close()

	text := func(n *sitter.Node) string { return n.Content(content) }
	private := func(name string) bool { return len(name) > 0 && name[0] == '_' }

	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		definition := node
		if node.Type() == "decorated_definition" {
			if d := pythonDefinitionIn(node); d != nil {
				definition = d
			}
		}

		switch definition.Type() {
		case "import_statement", "import_from_statement":
			cm.Dependencies = append(cm.Dependencies, text(definition))

		case "class_definition":
			nameNode := definition.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := text(nameNode)
			class := engine.ClassInfo{Name: name}
			if body := definition.ChildByFieldName("body"); body != nil {
				for j := 0; j < int(body.NamedChildCount()); j++ {
					member := body.NamedChild(j)
					if member.Type() == "function_definition" {
						if mn := member.ChildByFieldName("name"); mn != nil {
							class.Methods = append(class.Methods, text(mn))
						}
					}
				}
			}
			cm.Classes = append(cm.Classes, class)
			if !private(name) {
				cm.Exports = append(cm.Exports, name)
			}

		case "function_definition":
			nameNode := definition.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := text(nameNode)
			sig := "def " + name
			if params := definition.ChildByFieldName("parameters"); params != nil {
				sig += text(params)
			}
			async := false
			if fc := definition.Child(0); fc != nil && fc.Type() == "async" {
				async = true
			}
			cm.Functions = append(cm.Functions, engine.FuncInfo{Name: name, Signature: sig, Async: async})
			if !private(name) {
				cm.Exports = append(cm.Exports, name)
			}
		}
	}

	return cm
}

func pythonDefinitionIn(decorated *sitter.Node) *sitter.Node {
	for i := 0; i < int(decorated.NamedChildCount()); i++ {
		child := decorated.NamedChild(i)
		if child.Type() == "class_definition" || child.Type() == "function_definition" {
			return child
		}
	}
	return nil
}
