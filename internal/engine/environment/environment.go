// Package environment answers "is this dotted name a coroutine?" against the
// names a Python file imports.
//
// The default environment runs the file's import statements, and nothing
// else, inside a Python interpreter subprocess and evaluates expressions
// against the resulting namespace. This executes the imported modules'
// top-level code with no sandboxing. When import execution is disabled a
// static environment answers from import bindings and a list of known
// coroutine functions instead.
package environment

import (
	"context"

	"corocheck/internal/core/errors"
)

// Environment evaluates dotted expressions against a name environment.
//
// Evaluate returns whether the resolved object is a coroutine function or a
// coroutine. An unknown name yields a CodeNameResolution error; any other
// failure is a CodeEnvironment fault.
type Environment interface {
	Evaluate(ctx context.Context, expr string) (bool, error)
	Close() error
}

// Options selects and configures the environment built for a file.
type Options struct {
	ExecuteImports  bool
	Python          string
	KnownCoroutines []string
	CacheSize       int
}

func nameError(expr, msg string) error {
	if msg == "" {
		msg = "name is not defined"
	}
	return errors.AddContext(errors.New(errors.CodeNameResolution, msg), errors.CtxSymbol, expr)
}
