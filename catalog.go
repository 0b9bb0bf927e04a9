package completeness

import (
	"slices"
	"strings"
)

// Catalog gives access to modules by dotted path, e.g. "narwhals._arrow.series_str".
//
// A missing module is a normal answer, not an error: not every backend
// implements every namespace.
type Catalog interface {
	Module(path string) (*Module, bool)
}

// MemoryCatalog is a [Catalog] held in memory, populated from a manifest
// or through reflection with [MemoryCatalog.Register].
type MemoryCatalog struct {
	modules map[string]*Module
}

// NewCatalog returns an empty catalog.
func NewCatalog() *MemoryCatalog {
	return &MemoryCatalog{modules: map[string]*Module{}}
}

// Add stores m, merging its classes into an existing module with the same path.
// A class already present under the same name is replaced.
func (c *MemoryCatalog) Add(m *Module) {
	existing, ok := c.modules[m.Path]
	if !ok {
		existing = &Module{Path: m.Path}
		c.modules[m.Path] = existing
	}
	for _, cls := range m.Classes {
		cls.Module = m.Path
		idx := slices.IndexFunc(existing.Classes, func(o *Class) bool { return o.Name == cls.Name })
		if idx >= 0 {
			existing.Classes[idx] = cls
			continue
		}
		existing.Classes = append(existing.Classes, cls)
	}
}

// Module implements [Catalog].
func (c *MemoryCatalog) Module(path string) (*Module, bool) {
	m, ok := c.modules[path]
	return m, ok
}

// Modules returns every module sorted by path.
func (c *MemoryCatalog) Modules() []*Module {
	out := make([]*Module, 0, len(c.modules))
	for _, m := range c.modules {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *Module) int { return strings.Compare(a.Path, b.Path) })
	return out
}

// JoinPath joins module path segments with dots, skipping empty ones.
func JoinPath(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}
