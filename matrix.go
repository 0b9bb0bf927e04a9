package completeness

import (
	"slices"
	"strings"
)

// Builder produces the row-sets of a conceptual class: one for the
// canonical class and one per registered backend.
type Builder struct {
	registry *Registry
	resolver *Resolver
}

// NewBuilder returns a builder resolving backends through catalog.
func NewBuilder(catalog Catalog, reg *Registry) *Builder {
	return &Builder{registry: reg, resolver: NewResolver(catalog, reg)}
}

// Build returns the canonical row-set of cls followed by one row-set per
// backend, in registry order. A backend without an implementation yields an
// empty row-set, never an error.
func (b *Builder) Build(cls *Class) []RowSet {
	sets, _ := b.build(cls)
	return sets
}

func (b *Builder) build(cls *Class) ([]RowSet, []Resolution) {
	sets := make([]RowSet, 0, len(b.registry.Backends)+1)
	sets = append(sets, RowSet{Participant: b.registry.Canonical, Methods: AllMethods(cls)})

	resolutions := make([]Resolution, 0, len(b.registry.Backends))
	for _, backend := range b.registry.Backends {
		res := b.resolver.Resolve(moduleName(b.registry.Canonical, cls.Module), backend, cls.Name)
		resolutions = append(resolutions, res)
		sets = append(sets, RowSet{Participant: backend.Name, Methods: res.Methods})
	}
	return sets, resolutions
}

// moduleName strips the canonical namespace from a class's module path.
func moduleName(canonical, path string) string {
	if rest, ok := strings.CutPrefix(path, canonical+"."); ok && rest != "" {
		return rest
	}
	return path
}

// Matrix is the method-by-backend presence grid.
//
// Rows are sorted by method name. Columns are the backends in alphabetical
// order followed by the reference backend, whose cells are always true.
type Matrix struct {
	Columns []string
	Rows    []Row
}

// Row holds the presence of one method across [Matrix.Columns].
type Row struct {
	Method string
	Cells  []bool
}

// BuildMatrix pivots row-sets into a [Matrix].
//
// Only methods of the canonical participant become rows, even if a backend
// exposes others. The canonical participant itself is not a column. A
// backend that never mentions a method is unsupported for it.
func BuildMatrix(sets []RowSet, canonical, reference string) *Matrix {
	present := map[MethodRecord]struct{}{}
	var participants, methods []string
	for _, rs := range sets {
		if rs.Participant != canonical && !slices.Contains(participants, rs.Participant) {
			participants = append(participants, rs.Participant)
		}
		for _, rec := range rs.Records() {
			present[rec] = struct{}{}
			if rec.Participant == canonical {
				methods = append(methods, rec.Method)
			}
		}
	}
	methods = sortedUnique(methods)
	slices.Sort(participants)
	participants = slices.DeleteFunc(participants, func(p string) bool { return p == reference })

	m := &Matrix{Columns: append(participants, reference)}
	for _, method := range methods {
		row := Row{Method: method, Cells: make([]bool, len(m.Columns))}
		for i, p := range participants {
			_, row.Cells[i] = present[MethodRecord{Participant: p, Method: method}]
		}
		row.Cells[len(participants)] = true
		m.Rows = append(m.Rows, row)
	}
	return m
}

// Supported reports whether backend implements method. The second value is
// false if either is not part of the matrix.
func (m *Matrix) Supported(method, backend string) (bool, bool) {
	col := slices.Index(m.Columns, backend)
	if col < 0 {
		return false, false
	}
	idx, found := slices.BinarySearchFunc(m.Rows, method, func(r Row, target string) int {
		return strings.Compare(r.Method, target)
	})
	if !found {
		return false, false
	}
	return m.Rows[idx].Cells[col], true
}

// Coverage returns how many methods backend implements out of the total.
func (m *Matrix) Coverage(backend string) (implemented, total int) {
	col := slices.Index(m.Columns, backend)
	if col < 0 {
		return 0, len(m.Rows)
	}
	for _, r := range m.Rows {
		if r.Cells[col] {
			implemented++
		}
	}
	return implemented, len(m.Rows)
}

// Methods returns the row headers in order.
func (m *Matrix) Methods() []string {
	out := make([]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		out = append(out, r.Method)
	}
	return out
}
