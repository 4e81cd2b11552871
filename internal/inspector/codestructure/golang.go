package codestructure

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/contextslicer/contextslicer/internal/engine"
)

func extractGo(parser *sitter.Parser, path string, content []byte) engine.CodeMap {
	cm := engine.CodeMap{Path: path, Language: "go"}

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return cm
	}
	defer tree.Close()

	text := func(n *sitter.Node) string { return n.Content(content) }
	exported := func(name string) bool { return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' }

	methodsByReceiver := map[string][]string{}

	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "import_declaration":
			cm.Dependencies = append(cm.Dependencies, extractGoImports(node, content)...)

		case "function_declaration":
			name := ""
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				name = text(nameNode)
			}
			if name == "" {
				continue
			}
			sig := "func " + name
			if params := node.ChildByFieldName("parameters"); params != nil {
				sig += text(params)
			}
			if result := node.ChildByFieldName("result"); result != nil {
				sig += " " + text(result)
			}
			cm.Functions = append(cm.Functions, engine.FuncInfo{Name: name, Signature: sig})
			if exported(name) {
				cm.Exports = append(cm.Exports, name)
			}

		case "method_declaration":
			nameNode := node.ChildByFieldName("name")
			receiverNode := node.ChildByFieldName("receiver")
			if nameNode == nil || receiverNode == nil {
				continue
			}
			name := text(nameNode)
			receiver := goReceiverTypeName(receiverNode, content)
			if receiver != "" {
				methodsByReceiver[receiver] = append(methodsByReceiver[receiver], name)
			}

		case "type_declaration":
			for j := 0; j < int(node.NamedChildCount()); j++ {
				spec := node.NamedChild(j)
				if spec.Type() != "type_spec" {
					continue
				}
				nameNode := spec.ChildByFieldName("name")
				typeNode := spec.ChildByFieldName("type")
				if nameNode == nil {
					continue
				}
				name := text(nameNode)
				if exported(name) {
					cm.Exports = append(cm.Exports, name)
				}
				switch {
				case typeNode != nil && typeNode.Type() == "struct_type":
					cm.Classes = append(cm.Classes, engine.ClassInfo{
						Name:       name,
						Properties: goStructFields(typeNode, content),
					})
				case typeNode != nil && typeNode.Type() == "interface_type":
					cm.Types = append(cm.Types, engine.TypeInfo{Name: name, Kind: "interface"})
				default:
					cm.Types = append(cm.Types, engine.TypeInfo{Name: name, Kind: "alias"})
				}
			}
		}
	}

	for idx := range cm.Classes {
		cm.Classes[idx].Methods = methodsByReceiver[cm.Classes[idx].Name]
	}

	return cm
}

func goReceiverTypeName(receiver *sitter.Node, content []byte) string {
	for i := 0; i < int(receiver.NamedChildCount()); i++ {
		param := receiver.NamedChild(i)
		typeNode := param.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		name := typeNode.Content(content)
		return strings.TrimPrefix(name, "*")
	}
	return ""
}

func goStructFields(structType *sitter.Node, content []byte) []string {
	var fields []string
	block := structType.ChildByFieldName("fields")
	if block == nil {
		return fields
	}
	for i := 0; i < int(block.NamedChildCount()); i++ {
		decl := block.NamedChild(i)
		if decl.Type() != "field_declaration" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		fields = append(fields, nameNode.Content(content))
	}
	return fields
}

func extractGoImports(node *sitter.Node, content []byte) []string {
	var paths []string
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "interpreted_string_literal" {
			paths = append(paths, strings.Trim(n.Content(content), `"`))
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)
	return paths
}
