package watcher

import (
	"path/filepath"

	"corocheck/internal/engine/parser"
	"corocheck/internal/shared/util"

	"github.com/gobwas/glob"
)

type pattern struct {
	glob glob.Glob
	// path patterns match the slash-normalized path, others the base name.
	path bool
}

// Filter decides which directories and files take part in an analysis.
// It is shared by directory discovery and the watcher.
type Filter struct {
	dirs  []pattern
	files []pattern
}

func NewFilter(excludeDirs, excludeFiles []string) (*Filter, error) {
	dirs, err := compile(excludeDirs)
	if err != nil {
		return nil, err
	}
	files, err := compile(excludeFiles)
	if err != nil {
		return nil, err
	}
	return &Filter{dirs: dirs, files: files}, nil
}

func compile(patterns []string) ([]pattern, error) {
	out := make([]pattern, 0, len(patterns))
	for _, raw := range patterns {
		p := util.NormalizePatternPath(raw)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		out = append(out, pattern{glob: g, path: util.ContainsPathSeparator(p)})
	}
	return out, nil
}

func match(patterns []pattern, path string) bool {
	base := filepath.Base(path)
	normalized := util.NormalizePatternPath(path)
	for _, p := range patterns {
		if p.path {
			if p.glob.Match(normalized) {
				return true
			}
			continue
		}
		if p.glob.Match(base) {
			return true
		}
	}
	return false
}

func (f *Filter) ExcludeDir(path string) bool {
	return match(f.dirs, path)
}

// ExcludeFile reports whether path is not a Python source or matches an
// exclude pattern.
func (f *Filter) ExcludeFile(path string) bool {
	if !parser.IsSupportedPath(path) {
		return true
	}
	return match(f.files, path)
}
