package completeness

import (
	"fmt"
	"slices"
	"strings"
)

// ResolutionStatus tells how far a backend lookup got.
type ResolutionStatus int

const (
	// Resolved means a backend class was found.
	Resolved ResolutionStatus = iota
	// ModuleMissing means the backend has no counterpart of the conceptual module.
	ModuleMissing
	// ClassMissing means the module exists but has no class implementing the conceptual class.
	ClassMissing
)

func (s ResolutionStatus) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case ModuleMissing:
		return "module missing"
	case ClassMissing:
		return "class missing"
	default:
		return fmt.Sprintf("ResolutionStatus(%d)", s)
	}
}

// Resolution is the outcome of looking up a backend's implementation of a
// conceptual class. Methods is empty unless Status is [Resolved].
type Resolution struct {
	Status ResolutionStatus
	// Module is the backend module path that was looked up.
	Module string
	// Class is the name of the backend class found, if any.
	Class   string
	Methods []string
}

// Resolver locates backend classes in a [Catalog].
type Resolver struct {
	catalog  Catalog
	registry *Registry
}

// NewResolver returns a resolver over catalog configured by reg.
func NewResolver(catalog Catalog, reg *Registry) *Resolver {
	return &Resolver{catalog: catalog, registry: reg}
}

// Resolve returns the methods backend implements for the conceptual class
// className of module. The generic methods of the registry and the module's
// extras are added to whatever the backend class provides itself.
func (r *Resolver) Resolve(module string, backend Backend, className string) Resolution {
	path := JoinPath(r.registry.Canonical, backend.Module, module)
	res := Resolution{Module: path}

	mod, ok := r.catalog.Module(path)
	if !ok {
		res.Status = ModuleMissing
		return res
	}

	var candidates []*Class
	for _, c := range mod.Classes {
		if r.registry.isImplementation(c.Name, className) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		res.Status = ClassMissing
		return res
	}
	cls := slices.MinFunc(candidates, func(a, b *Class) int { return strings.Compare(a.Name, b.Name) })

	methods := append(ImplementedMethods(cls), r.registry.Extras(module)...)
	res.Status = Resolved
	res.Class = cls.Name
	res.Methods = sortedUnique(methods)
	return res
}
