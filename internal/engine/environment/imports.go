package environment

import (
	"corocheck/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Import is one import statement of the subject file.
type Import struct {
	Source   string
	Line     int
	Relative bool
	Future   bool
	Bindings []Binding
	// Wildcard holds the module of a "from m import *" statement.
	Wildcard string
}

// Binding maps a name bound by an import to the dotted path it refers to.
type Binding struct {
	Name   string
	Target string
}

// CollectImports returns every import statement of the tree in source order,
// wherever it appears (module level, functions, try blocks).
func CollectImports(tree *parser.Tree) []Import {
	var imports []Import
	w := parser.NewWalker(tree, map[string]parser.NodeHandler{
		parser.KindImport: func(w *parser.Walker, node *sitter.Node) bool {
			imports = append(imports, plainImport(w.Tree, node))
			return true
		},
		parser.KindImportFrom: func(w *parser.Walker, node *sitter.Node) bool {
			imports = append(imports, fromImport(w.Tree, node))
			return true
		},
		parser.KindFutureImport: func(w *parser.Walker, node *sitter.Node) bool {
			imports = append(imports, Import{
				Source: w.Tree.Text(node),
				Line:   w.Tree.Location(node).Line,
				Future: true,
			})
			return true
		},
	})
	w.Walk(tree.Root())
	return imports
}

func plainImport(tree *parser.Tree, node *sitter.Node) Import {
	imp := Import{Source: tree.Text(node), Line: tree.Location(node).Line}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "dotted_name":
			// "import a.b.c" binds only the root package name.
			module := tree.Text(child)
			root := module
			if first := child.NamedChild(0); first != nil {
				root = tree.Text(first)
			}
			imp.Bindings = append(imp.Bindings, Binding{Name: root, Target: root})
		case "aliased_import":
			module := tree.Text(child.ChildByFieldName("name"))
			alias := tree.Text(child.ChildByFieldName("alias"))
			if module != "" && alias != "" {
				imp.Bindings = append(imp.Bindings, Binding{Name: alias, Target: module})
			}
		}
	}
	return imp
}

func fromImport(tree *parser.Tree, node *sitter.Node) Import {
	imp := Import{Source: tree.Text(node), Line: tree.Location(node).Line}

	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode != nil && moduleNode.Kind() == parser.KindRelativeImport {
		imp.Relative = true
		return imp
	}
	module := tree.Text(moduleNode)

	seenImport := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "import" {
			seenImport = true
			continue
		}
		if !seenImport {
			continue
		}
		switch child.Kind() {
		case "dotted_name", "identifier":
			name := tree.Text(child)
			imp.Bindings = append(imp.Bindings, Binding{Name: name, Target: module + "." + name})
		case "aliased_import":
			name := tree.Text(child.ChildByFieldName("name"))
			alias := tree.Text(child.ChildByFieldName("alias"))
			if name != "" && alias != "" {
				imp.Bindings = append(imp.Bindings, Binding{Name: alias, Target: module + "." + name})
			}
		case "wildcard_import":
			imp.Wildcard = module
		}
	}
	return imp
}

// Executable filters imports down to the statements that can run in
// isolation. Relative imports need the enclosing package and are dropped.
func Executable(imports []Import) (kept, skipped []Import) {
	for _, imp := range imports {
		if imp.Relative {
			skipped = append(skipped, imp)
			continue
		}
		kept = append(kept, imp)
	}
	return kept, skipped
}
