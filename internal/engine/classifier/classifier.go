// Package classifier performs the second walk over a file: every call is
// classified as coroutine or not and checked against the delegation gate.
package classifier

import (
	"context"

	"corocheck/internal/engine/event"
	"corocheck/internal/engine/parser"
	"corocheck/internal/engine/scope"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Options struct {
	// AwaitIsDelegation lets "await" arm the gate like "yield from".
	AwaitIsDelegation bool
}

type Summary struct {
	Calls      int
	Unresolved int
	Coroutines int
	Mismatches int
	ByTier     map[event.Tier]int
}

type Checker struct {
	opts  Options
	tiers []Tier
	sink  event.Sink

	ctx     context.Context
	tree    *parser.Tree
	tracker *scope.Tracker
	gate    Gate
	summary Summary
	err     error
}

func NewChecker(opts Options, tiers []Tier, sink event.Sink) *Checker {
	if sink == nil {
		sink = event.Discard
	}
	return &Checker{opts: opts, tiers: tiers, sink: sink}
}

// Check walks tree and emits a call event per resolvable call. A fault
// stops the walk; events emitted before it are not retracted.
func (c *Checker) Check(ctx context.Context, tree *parser.Tree) (Summary, error) {
	c.ctx = ctx
	c.tree = tree
	c.tracker = scope.NewTracker()
	c.gate.Reset()
	c.summary = Summary{ByTier: map[event.Tier]int{}}
	c.err = nil

	handlers := map[string]parser.NodeHandler{
		parser.KindClassDefinition:    c.handleDefinition,
		parser.KindFunctionDefinition: c.handleDefinition,
		parser.KindYield:              c.handleYield,
		parser.KindCall:               c.handleCall,
	}
	if c.opts.AwaitIsDelegation {
		handlers[parser.KindAwait] = c.handleAwait
	}

	w := parser.NewWalker(tree, handlers)
	w.OnLeave = c.tracker.Leave
	w.Walk(tree.Root())
	return c.summary, c.err
}

func (c *Checker) handleDefinition(w *parser.Walker, node *sitter.Node) bool {
	if c.err != nil {
		return true
	}
	if name := node.ChildByFieldName("name"); name != nil {
		c.tracker.Push(c.tree.Text(name), w.Depth())
	}
	return false
}

func (c *Checker) handleYield(_ *parser.Walker, node *sitter.Node) bool {
	if c.err != nil {
		return true
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil && child.Kind() == "from" {
			c.arm(node, "yield from")
			break
		}
	}
	return false
}

func (c *Checker) handleAwait(_ *parser.Walker, node *sitter.Node) bool {
	if c.err != nil {
		return true
	}
	c.arm(node, "await")
	return false
}

func (c *Checker) arm(node *sitter.Node, keyword string) {
	c.gate.Arm()
	c.sink.Emit(event.Event{
		Kind:     event.KindDelegation,
		Location: c.tree.Location(node),
		Name:     keyword,
	})
}

func (c *Checker) handleCall(_ *parser.Walker, node *sitter.Node) bool {
	if c.err != nil {
		return true
	}
	defer c.gate.Reset()

	callee, err := c.tree.DottedName(node.ChildByFieldName("function"))
	if err != nil {
		c.summary.Unresolved++
		return false
	}

	site := Site{
		Callee:     callee,
		Target:     c.tracker.QualifyTarget(callee),
		Candidates: c.tracker.Candidates(callee),
	}
	coroutine, tier, err := Classify(c.ctx, c.tiers, site)
	if err != nil {
		c.err = err
		return true
	}

	delegated := c.gate.Armed()
	usage := event.Judge(coroutine, delegated)

	c.summary.Calls++
	c.summary.ByTier[tier]++
	if coroutine {
		c.summary.Coroutines++
	}
	if usage != event.UsageCorrect {
		c.summary.Mismatches++
	}

	c.sink.Emit(event.Event{
		Kind:      event.KindCall,
		Location:  c.tree.Location(node),
		Name:      callee,
		Target:    site.Target,
		Delegated: delegated,
		Coroutine: coroutine,
		Tier:      tier,
		Usage:     usage,
	})
	return false
}
