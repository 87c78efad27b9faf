package parser

import "fmt"

type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Node kinds of the tree-sitter Python grammar used by the analysis walks.
const (
	KindModule             = "module"
	KindImport             = "import_statement"
	KindImportFrom         = "import_from_statement"
	KindFutureImport       = "future_import_statement"
	KindRelativeImport     = "relative_import"
	KindClassDefinition    = "class_definition"
	KindFunctionDefinition = "function_definition"
	KindDecoratedDef       = "decorated_definition"
	KindDecorator          = "decorator"
	KindAssignment         = "assignment"
	KindCall               = "call"
	KindAttribute          = "attribute"
	KindIdentifier         = "identifier"
	KindParenthesized      = "parenthesized_expression"
	KindType               = "type"
	KindYield              = "yield"
	KindAwait              = "await"
	KindTypedParameter     = "typed_parameter"
	KindTypedDefault       = "typed_default_parameter"
)
