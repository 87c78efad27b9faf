package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes a node during a walk.
// Returns true if the handler has processed children and the walker should skip them.
type NodeHandler func(w *Walker, node *sitter.Node) bool

// Walker performs a depth-first walk of a tree and dispatches handlers by
// node kind. Depth is incremented on entry to every node and decremented on
// exit; OnLeave observes the depth of the node being left, after its children.
type Walker struct {
	Tree     *Tree
	handlers map[string]NodeHandler
	OnLeave  func(depth int)
	depth    int
}

func NewWalker(tree *Tree, handlers map[string]NodeHandler) *Walker {
	return &Walker{Tree: tree, handlers: handlers}
}

// Depth reports the depth of the node currently being visited.
func (w *Walker) Depth() int {
	return w.depth
}

func (w *Walker) Walk(node *sitter.Node) {
	if node == nil {
		return
	}

	w.depth++
	skip := false
	if handler, ok := w.handlers[node.Kind()]; ok {
		skip = handler(w, node)
	}
	if !skip {
		w.WalkChildren(node)
	}
	if w.OnLeave != nil {
		w.OnLeave(w.depth)
	}
	w.depth--
}

// WalkChildren walks every child of node. Handlers that need to order their
// own side effects around child traversal call it and return true.
func (w *Walker) WalkChildren(node *sitter.Node) {
	for i := uint(0); i < node.ChildCount(); i++ {
		w.Walk(node.Child(i))
	}
}
