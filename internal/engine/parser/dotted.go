package parser

import (
	"corocheck/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// DottedName renders an identifier or attribute chain as "a.b.c".
// Parenthesized expressions and type wrappers are transparent. Any other
// base yields a CodeUnresolvableName error.
func (t *Tree) DottedName(node *sitter.Node) (string, error) {
	node = unwrap(node)
	if node == nil {
		return "", errors.New(errors.CodeUnresolvableName, "empty expression")
	}

	switch node.Kind() {
	case KindIdentifier:
		return t.Text(node), nil
	case KindAttribute:
		object := unwrap(node.ChildByFieldName("object"))
		attr := node.ChildByFieldName("attribute")
		if object == nil || attr == nil {
			return "", unresolvable(node)
		}
		if object.Kind() != KindIdentifier && object.Kind() != KindAttribute {
			return "", unresolvable(object)
		}
		base, err := t.DottedName(object)
		if err != nil {
			return "", err
		}
		return base + "." + t.Text(attr), nil
	default:
		return "", unresolvable(node)
	}
}

func unwrap(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Kind() {
		case KindParenthesized, KindType:
			if node.NamedChildCount() != 1 {
				return node
			}
			node = node.NamedChild(0)
		default:
			return node
		}
	}
	return nil
}

func unresolvable(node *sitter.Node) error {
	err := errors.New(errors.CodeUnresolvableName, "expression has no dotted name")
	return errors.AddContext(err, errors.CtxNodeKind, node.Kind())
}
