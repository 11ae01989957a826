package mcp

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/samber/lo"
)

// Filter returns a registry holding the tools whose names match at least
// one include pattern and no exclude pattern. An empty include list keeps
// every tool. Patterns use glob syntax, e.g. "get_block*".
func (r *Registry) Filter(include, exclude []string) (*Registry, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return r, nil
	}
	inc, err := compileGlobs(include)
	if err != nil {
		return nil, err
	}
	exc, err := compileGlobs(exclude)
	if err != nil {
		return nil, err
	}

	kept := lo.Filter(r.tools, func(t *Tool, _ int) bool {
		return (len(inc) == 0 || matchAny(inc, t.Name)) && !matchAny(exc, t.Name)
	})
	out := &Registry{byName: make(map[string]*Tool, len(kept))}
	out.register(kept...)
	if len(out.tools) == 0 {
		return nil, fmt.Errorf("tool filter excludes every tool")
	}
	return out, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid tool pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	return lo.SomeBy(globs, func(g glob.Glob) bool { return g.Match(name) })
}
