package completeness

import (
	"fmt"
	"slices"
)

// Check validates the requirements against backend and returns a
// *[GapError] for the first unsatisfied requirement, or nil if all are met.
// Method requirements are checked before coverage requirements.
func (g *Generator) Check(backend string, required ...Requirement) error {
	if backend != g.registry.Reference {
		if _, ok := g.backend(backend); !ok {
			return &GapError{Backend: backend, Requirement: "backend", Reason: "not a registered backend"}
		}
	}

	rs := normalizeRequirements(required)
	matrices := map[string]*Matrix{}
	matrix := func(module string) (*Matrix, error) {
		if m, ok := matrices[module]; ok {
			return m, nil
		}
		m, err := g.ModuleMatrix(module)
		if err != nil {
			return nil, err
		}
		matrices[module] = m
		return m, nil
	}

	for _, req := range rs.methods {
		m, err := matrix(req.Module)
		if err != nil {
			return &GapError{Backend: backend, Requirement: req.String(), Reason: "unknown module", Err: err}
		}
		supported, known := m.Supported(req.Method, backend)
		if !known {
			return &GapError{
				Backend:     backend,
				Requirement: req.String(),
				Reason:      fmt.Sprintf("%s is not a method of the %s %s API", req.Method, g.registry.Canonical, req.Module),
			}
		}
		if !supported {
			return &GapError{Backend: backend, Requirement: req.String(), Reason: g.Diagnose(req.Module, req.Method, backend)}
		}
	}

	for _, req := range rs.coverage {
		if req.Percent < 0 || req.Percent > 100 {
			return &ConfigError{Subject: "requirement " + req.String(), Reason: "percentage must be between 0 and 100"}
		}
		m, err := matrix(req.Module)
		if err != nil {
			return &GapError{Backend: backend, Requirement: req.String(), Reason: "unknown module", Err: err}
		}
		implemented, total := m.Coverage(backend)
		if implemented*100 < req.Percent*total {
			return &GapError{
				Backend:     backend,
				Requirement: req.String(),
				Reason:      fmt.Sprintf("implements %d of %d methods (%d%%)", implemented, total, implemented*100/total),
			}
		}
	}

	return nil
}

// Diagnose returns a reason explaining why backend does not implement
// method of module.
func (g *Generator) Diagnose(module, method, backend string) string {
	b, ok := g.backend(backend)
	if !ok {
		return "not a registered backend"
	}
	classes, err := g.classes(module)
	if err != nil {
		return err.Error()
	}

	for _, cls := range classes {
		if !slices.Contains(AllMethods(cls), method) {
			continue
		}
		res := g.builder.resolver.Resolve(module, b, cls.Name)
		switch res.Status {
		case ModuleMissing:
			return fmt.Sprintf("module %s does not exist", res.Module)
		case ClassMissing:
			return fmt.Sprintf("module %s has no implementation of %s", res.Module, cls.Name)
		}
		if slices.Contains(res.Methods, method) {
			continue
		}
		if g.declaresNotImplemented(res, method) {
			return fmt.Sprintf("%s.%s declares %s not implemented", res.Module, res.Class, method)
		}
		return fmt.Sprintf("%s.%s does not define %s", res.Module, res.Class, method)
	}
	return "not supported"
}

func (g *Generator) backend(name string) (Backend, bool) {
	idx := slices.IndexFunc(g.registry.Backends, func(b Backend) bool { return b.Name == name })
	if idx < 0 {
		return Backend{}, false
	}
	return g.registry.Backends[idx], true
}

func (g *Generator) declaresNotImplemented(res Resolution, method string) bool {
	mod, ok := g.catalog.Module(res.Module)
	if !ok {
		return false
	}
	cls, ok := mod.Class(res.Class)
	if !ok {
		return false
	}
	return slices.ContainsFunc(cls.Members, func(m Member) bool {
		return m.Name == method && m.Status == StatusNotImplemented
	})
}
