package completeness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-logr/logr"
)

// Document is one rendered output file.
type Document struct {
	Title string
	// Name is the file name without extension.
	Name   string
	Path   string
	Matrix *Matrix
}

// Option configures a [Generator].
type Option func(*Generator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(g *Generator) {
		g.log = log
	}
}

// Generator walks the registry and writes one document per frame class and
// one per module.
type Generator struct {
	registry *Registry
	catalog  Catalog
	builder  *Builder
	renderer *Renderer
	log      logr.Logger
}

// NewGenerator validates reg and returns a generator reading classes from
// catalog and writing through renderer.
func NewGenerator(reg *Registry, catalog Catalog, renderer *Renderer, opts ...Option) (*Generator, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		registry: reg,
		catalog:  catalog,
		builder:  NewBuilder(catalog, reg),
		renderer: renderer,
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Run regenerates every document. It stops at the first configuration
// error; earlier documents stay written.
func (g *Generator) Run() ([]Document, error) {
	var docs []Document
	for _, module := range g.registry.Modules {
		produced, err := g.runModule(module)
		if err != nil {
			return docs, err
		}
		docs = append(docs, produced...)
	}
	g.log.Info("generated documents", "count", len(docs))
	return docs, nil
}

func (g *Generator) runModule(module string) ([]Document, error) {
	classes, err := g.classes(module)
	if err != nil {
		return nil, err
	}
	log := g.log.WithValues("module", module)

	var (
		docs    []Document
		results []RowSet
		frames  []string
	)
	for _, cls := range classes {
		sets := g.rowSets(log, cls)
		results = append(results, sets...)

		if g.registry.IsFrameClass(cls.Name) {
			doc, err := g.emit(sets, cls.Name, strings.ToLower(cls.Name))
			if err != nil {
				return docs, err
			}
			docs = append(docs, doc)
			frames = append(frames, cls.Name)
		}
	}

	if g.onlyFrames(classes, frames) {
		log.V(1).Info("skipping module document, frames rendered individually")
		return docs, nil
	}

	doc, err := g.emit(results, ModuleTitle(module), module)
	if err != nil {
		return docs, err
	}
	return append(docs, doc), nil
}

// ModuleMatrix returns the matrix covering every public class of module,
// without writing anything.
func (g *Generator) ModuleMatrix(module string) (*Matrix, error) {
	classes, err := g.classes(module)
	if err != nil {
		return nil, err
	}
	var results []RowSet
	for _, cls := range classes {
		results = append(results, g.rowSets(g.log.WithValues("module", module), cls)...)
	}
	return BuildMatrix(results, g.registry.Canonical, g.registry.Reference), nil
}

// classes returns the non-excluded canonical classes of module sorted by name.
func (g *Generator) classes(module string) ([]*Class, error) {
	path := JoinPath(g.registry.Canonical, module)
	mod, ok := g.catalog.Module(path)
	if !ok {
		return nil, &ConfigError{Subject: "module " + path, Reason: "not found in the canonical API"}
	}
	classes := make([]*Class, 0, len(mod.Classes))
	for _, cls := range mod.Classes {
		if g.registry.IsExcluded(cls.Name) {
			continue
		}
		classes = append(classes, cls)
	}
	slices.SortFunc(classes, func(a, b *Class) int { return strings.Compare(a.Name, b.Name) })
	return classes, nil
}

func (g *Generator) rowSets(log logr.Logger, cls *Class) []RowSet {
	sets, resolutions := g.builder.build(cls)
	for i, res := range resolutions {
		if res.Status == Resolved {
			continue
		}
		log.V(1).Info("backend has no implementation",
			"class", cls.Name,
			"backend", g.registry.Backends[i].Name,
			"lookup", res.Module,
			"reason", res.Status.String())
	}
	return sets
}

// onlyFrames reports whether the public classes of a module are exactly the
// registry's frame classes, all of which were rendered individually.
func (g *Generator) onlyFrames(classes []*Class, rendered []string) bool {
	if len(classes) != len(g.registry.FrameClasses) || len(rendered) != len(classes) {
		return false
	}
	for _, f := range g.registry.FrameClasses {
		if !slices.Contains(rendered, f) {
			return false
		}
	}
	return true
}

func (g *Generator) emit(sets []RowSet, title, name string) (Document, error) {
	m := BuildMatrix(sets, g.registry.Canonical, g.registry.Reference)
	table := m.Markdown(g.registry.PresentGlyph, g.registry.AbsentGlyph)
	path, err := g.renderer.Emit(title, table, name)
	if err != nil {
		return Document{}, fmt.Errorf("emit %s: %w", name, err)
	}
	g.log.Info("wrote document", "title", title, "path", path, "methods", len(m.Rows))
	return Document{Title: title, Name: name, Path: path, Matrix: m}, nil
}
