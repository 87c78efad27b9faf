package environment

import (
	"context"
	"strings"
)

// StaticEnvironment resolves names from import bindings alone. A dotted name
// whose root was bound by an import resolves to the imported path, and is a
// coroutine iff that path is listed as a known coroutine function.
type StaticEnvironment struct {
	bindings  map[string]string
	wildcards []string
	known     map[string]bool
}

func NewStaticEnvironment(imports []Import, knownCoroutines []string) *StaticEnvironment {
	env := &StaticEnvironment{
		bindings: make(map[string]string),
		known:    make(map[string]bool, len(knownCoroutines)),
	}
	for _, name := range knownCoroutines {
		env.known[strings.TrimSpace(name)] = true
	}
	for _, imp := range imports {
		if imp.Relative || imp.Future {
			continue
		}
		for _, b := range imp.Bindings {
			env.bindings[b.Name] = b.Target
		}
		if imp.Wildcard != "" {
			env.wildcards = append(env.wildcards, imp.Wildcard)
		}
	}
	return env
}

func (e *StaticEnvironment) Evaluate(ctx context.Context, expr string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if full, ok := e.Resolve(expr); ok {
		return e.known[full], nil
	}

	// Names pulled in by "from m import *" are only known if listed.
	for _, module := range e.wildcards {
		if e.known[module+"."+expr] {
			return true, nil
		}
	}
	root, _, _ := strings.Cut(expr, ".")
	return false, nameError(expr, "name '"+root+"' is not bound by any import")
}

// Resolve returns the imported path expr refers to, if its root is bound.
func (e *StaticEnvironment) Resolve(expr string) (string, bool) {
	root, rest, _ := strings.Cut(expr, ".")
	target, ok := e.bindings[root]
	if !ok {
		return "", false
	}
	if rest != "" {
		target += "." + rest
	}
	return target, true
}

func (e *StaticEnvironment) Close() error {
	return nil
}
