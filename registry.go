package completeness

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/multierr"
)

// Default presence glyphs, rendered by GitHub-flavoured markdown as emoji.
const (
	DefaultPresentGlyph = ":white_check_mark:"
	DefaultAbsentGlyph  = ":x:"
)

// Registry is the static configuration of a run: what to scan and how to
// interpret it. Treat it as immutable once handed to a [Generator].
type Registry struct {
	// Canonical is the root namespace of the unifying API. It doubles as the
	// participant label of the canonical row-set.
	Canonical string
	// Reference names the backend assumed to implement everything.
	Reference string
	// Modules lists the conceptual modules to scan, in output order.
	Modules  []string
	Backends []Backend

	// ExcludeClasses are canonical classes that are not public surface.
	ExcludeClasses []string
	// AlwaysImplemented are methods provided by a shared code path, counted
	// as present for every backend that implements the class at all.
	AlwaysImplemented []string
	// ModuleExtras are per-module method names counted as present in addition
	// to AlwaysImplemented (e.g. aliases).
	ModuleExtras map[string][]string
	// FrameClasses are the lazy and eager frame classes that get their own document.
	FrameClasses []string

	// ProtocolPrefix marks structural-typing scaffolding in backend modules.
	ProtocolPrefix string
	// ExcludeImplementations are class-name prefixes of backend classes that
	// are never treated as implementations.
	ExcludeImplementations []string

	PresentGlyph string
	AbsentGlyph  string
}

// DefaultRegistry returns the registry for the narwhals API and its backends.
func DefaultRegistry() *Registry {
	return &Registry{
		Canonical: "narwhals",
		Reference: "polars",
		Modules: []string{
			"dataframe",
			"series",
			"expr",
			"expr_dt",
			"expr_cat",
			"expr_str",
			"expr_list",
			"expr_name",
			"expr_struct",
			"series_dt",
			"series_cat",
			"series_str",
			"series_list",
			"series_struct",
		},
		Backends: []Backend{
			{Name: "arrow", Module: "_arrow", Mode: ModeEager},
			{Name: "dask", Module: "_dask", Mode: ModeLazy},
			{Name: "duckdb", Module: "_duckdb", Mode: ModeLazy},
			{Name: "pandas-like", Module: "_pandas_like", Mode: ModeEager},
			{Name: "spark-like", Module: "_spark_like", Mode: ModeLazy},
		},
		ExcludeClasses:    []string{"BaseFrame", "Then", "When"},
		AlwaysImplemented: []string{"pipe", "implementation", "to_native"},
		ModuleExtras: map[string][]string{
			"expr_str": {"tail", "head"},
		},
		FrameClasses:           []string{"DataFrame", "LazyFrame"},
		ProtocolPrefix:         "Compliant",
		ExcludeImplementations: []string{"DuckDBInterchange"},
		PresentGlyph:           DefaultPresentGlyph,
		AbsentGlyph:            DefaultAbsentGlyph,
	}
}

// Clone returns a deep copy of r.
func (r *Registry) Clone() *Registry {
	c := *r
	c.Modules = slices.Clone(r.Modules)
	c.Backends = slices.Clone(r.Backends)
	c.ExcludeClasses = slices.Clone(r.ExcludeClasses)
	c.AlwaysImplemented = slices.Clone(r.AlwaysImplemented)
	c.FrameClasses = slices.Clone(r.FrameClasses)
	c.ExcludeImplementations = slices.Clone(r.ExcludeImplementations)
	if r.ModuleExtras != nil {
		c.ModuleExtras = make(map[string][]string, len(r.ModuleExtras))
		for k, v := range r.ModuleExtras {
			c.ModuleExtras[k] = slices.Clone(v)
		}
	}
	return &c
}

// Validate checks the registry and reports every problem found at once.
func (r *Registry) Validate() error {
	var errs error

	if strings.TrimSpace(r.Canonical) == "" {
		errs = multierr.Append(errs, fmt.Errorf("canonical namespace is empty"))
	}
	if strings.TrimSpace(r.Reference) == "" {
		errs = multierr.Append(errs, fmt.Errorf("reference backend is empty"))
	}
	if len(r.Modules) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("no modules registered"))
	}

	seenModules := make(map[string]struct{}, len(r.Modules))
	for _, m := range r.Modules {
		if strings.TrimSpace(m) == "" {
			errs = multierr.Append(errs, fmt.Errorf("empty module name"))
			continue
		}
		if _, ok := seenModules[m]; ok {
			errs = multierr.Append(errs, fmt.Errorf("module %q registered twice", m))
		}
		seenModules[m] = struct{}{}
	}

	seenBackends := make(map[string]struct{}, len(r.Backends))
	for _, b := range r.Backends {
		switch {
		case strings.TrimSpace(b.Name) == "":
			errs = multierr.Append(errs, fmt.Errorf("backend with module %q has no name", b.Module))
			continue
		case b.Name == r.Canonical:
			errs = multierr.Append(errs, fmt.Errorf("backend %q clashes with the canonical label", b.Name))
		case b.Name == r.Reference:
			errs = multierr.Append(errs, fmt.Errorf("backend %q clashes with the reference backend", b.Name))
		}
		if _, ok := seenBackends[b.Name]; ok {
			errs = multierr.Append(errs, fmt.Errorf("backend %q registered twice", b.Name))
		}
		seenBackends[b.Name] = struct{}{}
		if strings.TrimSpace(b.Module) == "" {
			errs = multierr.Append(errs, fmt.Errorf("backend %q has no module", b.Name))
		}
		if _, ok := backendModeNames[b.Mode]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("backend %q has unknown mode %s", b.Name, b.Mode))
		}
	}

	if len(r.FrameClasses) != 2 {
		errs = multierr.Append(errs, fmt.Errorf("expected 2 frame classes (lazy and eager), got %d", len(r.FrameClasses)))
	}

	if errs != nil {
		return &ConfigError{Subject: "registry", Reason: "invalid", Err: errs}
	}
	return nil
}

// FilterModes returns a copy of r keeping only the backends that serve at
// least one of modes. With no modes the copy keeps every backend.
func (r *Registry) FilterModes(modes ...BackendMode) *Registry {
	c := r.Clone()
	if len(modes) == 0 {
		return c
	}
	kept := c.Backends[:0]
	for _, b := range c.Backends {
		for _, m := range modes {
			if b.Mode.Includes(m) {
				kept = append(kept, b)
				break
			}
		}
	}
	c.Backends = kept
	return c
}

// Extras returns the method names always counted as implemented by a
// backend class of the given module.
func (r *Registry) Extras(module string) []string {
	extras := slices.Clone(r.AlwaysImplemented)
	return append(extras, r.ModuleExtras[module]...)
}

// IsExcluded reports whether a canonical class is left out of every document.
func (r *Registry) IsExcluded(class string) bool {
	return slices.Contains(r.ExcludeClasses, class)
}

// IsFrameClass reports whether class gets its own document.
func (r *Registry) IsFrameClass(class string) bool {
	return slices.Contains(r.FrameClasses, class)
}

// isImplementation reports whether a backend class name can stand for the
// canonical class named want.
func (r *Registry) isImplementation(name, want string) bool {
	if !strings.HasSuffix(name, want) {
		return false
	}
	if r.ProtocolPrefix != "" && strings.HasPrefix(name, r.ProtocolPrefix) {
		return false
	}
	for _, prefix := range r.ExcludeImplementations {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	return true
}
