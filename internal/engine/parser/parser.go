package parser

import (
	"fmt"
	"os"

	"corocheck/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Parser turns Python source into syntax trees.
type Parser struct {
	pool *ParserPool
}

func NewParser() *Parser {
	return &Parser{pool: NewParserPool(PythonLanguage())}
}

// Tree owns a parsed file. Nodes obtained from it are valid until Close.
type Tree struct {
	Path   string
	Source []byte
	tree   *sitter.Tree
}

func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Text returns the source text covered by node.
func (t *Tree) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(t.Source[node.StartByte():node.EndByte()])
}

func (t *Tree) Location(node *sitter.Node) Location {
	return Location{
		File:   t.Path,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

func (p *Parser) ParseFile(path string) (*Tree, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read source"), errors.CtxPath, path)
	}
	return p.Parse(path, content)
}

// Parse parses content. A tree containing syntax errors is rejected: the
// analysis only runs over files the interpreter itself would accept.
func (p *Parser) Parse(path string, content []byte) (*Tree, error) {
	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeParse, "parse failed"), errors.CtxPath, path)
	}

	t := &Tree{Path: path, Source: content, tree: tree}
	root := t.Root()
	if root.HasError() {
		loc := t.Location(firstError(root))
		t.Close()
		err := errors.New(errors.CodeParse, fmt.Sprintf("invalid syntax at %s", loc))
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return t, nil
}

func firstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.HasError() {
			return firstError(child)
		}
	}
	return node
}
