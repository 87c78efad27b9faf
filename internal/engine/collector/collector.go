// Package collector performs the first walk over a file: it records which
// functions are coroutine definitions and which names carry a declared type.
package collector

import (
	"log/slog"
	"sort"

	"corocheck/internal/engine/event"
	"corocheck/internal/engine/parser"
	"corocheck/internal/engine/scope"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

const DefaultMarker = "asyncio.coroutine"

type Options struct {
	// Marker is the dotted decorator that designates a coroutine definition.
	Marker string
	// AsyncDefIsCoroutine also records native "async def" functions.
	AsyncDefIsCoroutine bool
}

// SignatureSet holds the qualified names of coroutine definitions.
type SignatureSet map[string]struct{}

func (s SignatureSet) Add(name string) {
	s[name] = struct{}{}
}

func (s SignatureSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

func (s SignatureSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// TypeMap maps a qualified name to the dotted type expression it was declared with.
type TypeMap map[string]string

func (m TypeMap) Lookup(name string) (string, bool) {
	t, ok := m[name]
	return t, ok && t != ""
}

type Result struct {
	Signatures SignatureSet
	Types      TypeMap
}

type Collector struct {
	opts    Options
	sink    event.Sink
	tree    *parser.Tree
	tracker *scope.Tracker
	result  *Result
}

func New(opts Options, sink event.Sink) *Collector {
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	if sink == nil {
		sink = event.Discard
	}
	return &Collector{opts: opts, sink: sink}
}

// Collect walks tree once. Coroutine definitions are emitted to the sink as
// they are found.
func (c *Collector) Collect(tree *parser.Tree) *Result {
	c.tree = tree
	c.tracker = scope.NewTracker()
	c.result = &Result{Signatures: SignatureSet{}, Types: TypeMap{}}

	w := parser.NewWalker(tree, map[string]parser.NodeHandler{
		parser.KindClassDefinition:    c.handleClass,
		parser.KindFunctionDefinition: c.handleFunction,
		parser.KindAssignment:         c.handleAssignment,
	})
	w.OnLeave = c.tracker.Leave
	w.Walk(tree.Root())

	slog.Debug("collected signatures",
		"path", tree.Path,
		"signatures", c.result.Signatures.Sorted(),
		"types", len(c.result.Types))
	return c.result
}

func (c *Collector) handleClass(w *parser.Walker, node *sitter.Node) bool {
	if name := node.ChildByFieldName("name"); name != nil {
		c.tracker.Push(c.tree.Text(name), w.Depth())
	}
	return false
}

func (c *Collector) handleFunction(w *parser.Walker, node *sitter.Node) bool {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return false
	}
	name := c.tree.Text(nameNode)

	if c.isCoroutine(node) {
		qualified := c.tracker.Qualify(name)
		c.result.Signatures.Add(qualified)
		c.sink.Emit(event.Event{
			Kind:     event.KindSignature,
			Location: c.tree.Location(nameNode),
			Name:     qualified,
		})
	}

	c.tracker.Push(name, w.Depth())
	c.recordParameters(node.ChildByFieldName("parameters"))
	return false
}

func (c *Collector) isCoroutine(fn *sitter.Node) bool {
	for _, dec := range decorators(fn) {
		if dec.NamedChildCount() == 0 {
			continue
		}
		resolved, err := c.tree.DottedName(dec.NamedChild(0))
		if err == nil && resolved == c.opts.Marker {
			return true
		}
	}
	return c.opts.AsyncDefIsCoroutine && isAsync(fn)
}

// decorators returns the decorator nodes attached to fn, if it is wrapped in
// a decorated_definition.
func decorators(fn *sitter.Node) []*sitter.Node {
	parent := fn.Parent()
	if parent == nil || parent.Kind() != parser.KindDecoratedDef {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < parent.NamedChildCount(); i++ {
		child := parent.NamedChild(i)
		if child != nil && child.Kind() == parser.KindDecorator {
			out = append(out, child)
		}
	}
	return out
}

func isAsync(fn *sitter.Node) bool {
	for i := uint(0); i < fn.ChildCount(); i++ {
		child := fn.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "async" {
			return true
		}
		if child.Kind() == "def" {
			return false
		}
	}
	return false
}

// recordParameters must run after the function qualifier is pushed.
func (c *Collector) recordParameters(params *sitter.Node) {
	if params == nil {
		return
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		param := params.NamedChild(i)
		if param == nil {
			continue
		}

		var nameNode *sitter.Node
		switch param.Kind() {
		case parser.KindTypedParameter:
			// *args: T and **kwargs: T wrap the identifier in a splat pattern.
			if first := param.NamedChild(0); first != nil && first.Kind() == parser.KindIdentifier {
				nameNode = first
			}
		case parser.KindTypedDefault:
			nameNode = param.ChildByFieldName("name")
		default:
			continue
		}
		if nameNode == nil {
			continue
		}

		typ, err := c.tree.DottedName(param.ChildByFieldName("type"))
		if err != nil {
			slog.Debug("skipping parameter annotation",
				"param", c.tree.Text(nameNode),
				"location", c.tree.Location(param).String())
			continue
		}
		c.result.Types[c.tracker.Qualify(c.tree.Text(nameNode))] = typ
	}
}

// handleAssignment records the type of the first target. In a chain such as
// "a = b = x" only "a" is typed, so the nested assignments are not walked.
func (c *Collector) handleAssignment(_ *parser.Walker, node *sitter.Node) bool {
	value := node.ChildByFieldName("right")
	chained := false
	for value != nil && value.Kind() == parser.KindAssignment {
		value = value.ChildByFieldName("right")
		chained = true
	}

	target, err := c.tree.DottedName(node.ChildByFieldName("left"))
	if err != nil {
		return chained
	}
	key := c.tracker.QualifyTarget(target)

	if annotation := node.ChildByFieldName("type"); annotation != nil {
		if typ, err := c.tree.DottedName(annotation); err == nil {
			c.result.Types[key] = typ
			return chained
		}
	}

	source, err := c.tree.DottedName(value)
	if err != nil {
		return chained
	}
	if typ, ok := c.result.Types.Lookup(c.tracker.QualifyTarget(source)); ok {
		c.result.Types[key] = typ
	}
	return chained
}
