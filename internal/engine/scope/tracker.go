// Package scope tracks the lexical qualifiers (class and function names)
// enclosing the node a tree walk is currently visiting.
//
// Entries are pushed with the walker depth of the definition node and popped
// when the walker leaves that depth, so the stack always matches the
// recursion regardless of how many non-definition nodes lie in between.
package scope

import "strings"

const instancePrefix = "self."

type entry struct {
	qualifier  string
	enterDepth int
}

// Tracker is a stack of (qualifier, enterDepth) pairs. The module scope is
// implicit and contributes no segment.
type Tracker struct {
	stack []entry
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Push enters a class or function definition visited at depth.
func (t *Tracker) Push(qualifier string, depth int) {
	t.stack = append(t.stack, entry{qualifier: qualifier, enterDepth: depth})
}

// Leave pops every entry pushed at depth. Wire it to the walker's leave hook.
func (t *Tracker) Leave(depth int) {
	for len(t.stack) > 0 && t.stack[len(t.stack)-1].enterDepth == depth {
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// Len is the number of open definition scopes.
func (t *Tracker) Len() int {
	return len(t.stack)
}

// Segments returns a copy of the open qualifiers, outermost first.
func (t *Tracker) Segments() []string {
	out := make([]string, len(t.stack))
	for i, e := range t.stack {
		out[i] = e.qualifier
	}
	return out
}

// Qualify joins the current scope path with symbol.
func (t *Tracker) Qualify(symbol string) string {
	return Join(t.Segments(), symbol)
}

// QualifyTarget qualifies a binding or callee name. Names of the form
// "self.X" are rescoped one level up with the instance prefix stripped:
// instance attributes belong to the scope that owns the method.
func (t *Tracker) QualifyTarget(name string) string {
	if attr, ok := InstanceAttribute(name); ok {
		segments := t.Segments()
		if len(segments) > 0 {
			segments = segments[:len(segments)-1]
		}
		return Join(segments, attr)
	}
	return t.Qualify(name)
}

// Candidates lists the qualified names name may refer to, innermost scope
// first and module scope last. Instance attributes have a single candidate.
func (t *Tracker) Candidates(name string) []string {
	if _, ok := InstanceAttribute(name); ok {
		return []string{t.QualifyTarget(name)}
	}
	segments := t.Segments()
	out := make([]string, 0, len(segments)+1)
	for i := len(segments); i >= 0; i-- {
		out = append(out, Join(segments[:i], name))
	}
	return out
}

// InstanceAttribute reports whether name is "self.X" and returns X.
func InstanceAttribute(name string) (string, bool) {
	if strings.HasPrefix(name, instancePrefix) && len(name) > len(instancePrefix) {
		return name[len(instancePrefix):], true
	}
	return "", false
}

// Join builds a qualified name, skipping empty segments.
func Join(segments []string, symbol string) string {
	parts := make([]string, 0, len(segments)+1)
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if symbol != "" {
		parts = append(parts, symbol)
	}
	return strings.Join(parts, ".")
}

// Parent strips the last dotted segment. ok is false when name has none left.
func Parent(name string) (string, bool) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", false
	}
	return name[:idx], true
}
