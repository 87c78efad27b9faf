package environment

import (
	"context"
	"log/slog"

	"corocheck/internal/engine/parser"
)

// Build isolates the import statements of tree and produces the environment
// used by the classifier, wrapped in an evaluation cache.
func Build(ctx context.Context, tree *parser.Tree, opts Options) (*CachedEnvironment, []Import, error) {
	imports := CollectImports(tree)
	kept, skipped := Executable(imports)
	for _, imp := range skipped {
		slog.Debug("skipping relative import", "path", tree.Path, "line", imp.Line, "source", imp.Source)
	}

	var inner Environment
	if opts.ExecuteImports {
		env, err := StartProcess(ctx, opts.Python, tree.Path, kept)
		if err != nil {
			return nil, imports, err
		}
		inner = env
	} else {
		inner = NewStaticEnvironment(kept, opts.KnownCoroutines)
	}
	return NewCachedEnvironment(inner, opts.CacheSize), imports, nil
}
