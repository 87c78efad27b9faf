package classifier

// Gate remembers whether a delegation marker was seen since the last call.
// It is not tied to a statement: a marker arms it and the next call visited
// in walk order consumes it, wherever that call is.
type Gate struct {
	armed bool
}

func (g *Gate) Arm() {
	g.armed = true
}

func (g *Gate) Armed() bool {
	return g.armed
}

func (g *Gate) Reset() {
	g.armed = false
}
