package completeness

import (
	"reflect"
	"testing"
)

func newClass(name string, methods ...string) *Class {
	cls := &Class{Name: name}
	for _, m := range methods {
		cls.Members = append(cls.Members, Member{Name: m})
	}
	return cls
}

func (c *Class) withNotImplemented(names ...string) *Class {
	for _, n := range names {
		c.Members = append(c.Members, Member{Name: n, Status: StatusNotImplemented})
	}
	return c
}

func testRegistry() *Registry {
	reg := DefaultRegistry()
	reg.Backends = []Backend{
		{Name: "arrow", Module: "_arrow", Mode: ModeEager},
		{Name: "dask", Module: "_dask", Mode: ModeLazy},
	}
	return reg
}

func TestResolver_Resolve(t *testing.T) {
	cat := NewCatalog()
	cat.Add(&Module{Path: "narwhals._arrow.series", Classes: []*Class{
		newClass("CompliantSeries", "abs", "sum", "mean"),
		newClass("ArrowSeries", "abs", "_private", "to_native").withNotImplemented("mean"),
	}})
	cat.Add(&Module{Path: "narwhals._arrow.series_str", Classes: []*Class{
		newClass("ArrowSeriesStringNamespace", "contains"),
	}})
	cat.Add(&Module{Path: "narwhals._arrow.expr_str", Classes: []*Class{
		newClass("ArrowExprStringNamespace", "contains"),
	}})
	cat.Add(&Module{Path: "narwhals._dask.series", Classes: []*Class{
		newClass("DaskHelper", "abs"),
	}})

	reg := testRegistry()
	r := NewResolver(cat, reg)
	arrow, dask := reg.Backends[0], reg.Backends[1]

	tests := []struct {
		name        string
		module      string
		backend     Backend
		class       string
		wantStatus  ResolutionStatus
		wantClass   string
		wantMethods []string
	}{
		{
			name: "resolved adds generic methods and drops not implemented",
			module: "series", backend: arrow, class: "Series",
			wantStatus: Resolved, wantClass: "ArrowSeries",
			wantMethods: []string{"abs", "implementation", "pipe", "to_native"},
		},
		{
			name: "string expression namespace gets aliases",
			module: "expr_str", backend: arrow, class: "ExprStringNamespace",
			wantStatus: Resolved, wantClass: "ArrowExprStringNamespace",
			wantMethods: []string{"contains", "head", "implementation", "pipe", "tail", "to_native"},
		},
		{
			name: "series string namespace gets no aliases",
			module: "series_str", backend: arrow, class: "SeriesStringNamespace",
			wantStatus: Resolved, wantClass: "ArrowSeriesStringNamespace",
			wantMethods: []string{"contains", "implementation", "pipe", "to_native"},
		},
		{
			name: "missing module",
			module: "expr", backend: dask, class: "Expr",
			wantStatus: ModuleMissing,
		},
		{
			name: "missing class",
			module: "series", backend: dask, class: "Series",
			wantStatus: ClassMissing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(tt.module, tt.backend, tt.class)
			if res.Status != tt.wantStatus {
				t.Fatalf("Status = %s, want %s", res.Status, tt.wantStatus)
			}
			if res.Class != tt.wantClass {
				t.Errorf("Class = %q, want %q", res.Class, tt.wantClass)
			}
			if !reflect.DeepEqual(res.Methods, tt.wantMethods) {
				t.Errorf("Methods = %v, want %v", res.Methods, tt.wantMethods)
			}
		})
	}
}

func TestResolver_ExcludesInterchangeAndProtocols(t *testing.T) {
	cat := NewCatalog()
	cat.Add(&Module{Path: "narwhals._duckdb.dataframe", Classes: []*Class{
		newClass("DuckDBInterchangeLazyFrame", "columns", "select"),
		newClass("CompliantLazyFrame", "columns", "select", "filter"),
	}})

	reg := DefaultRegistry()
	duckdb := Backend{Name: "duckdb", Module: "_duckdb", Mode: ModeLazy}
	res := NewResolver(cat, reg).Resolve("dataframe", duckdb, "LazyFrame")
	if res.Status != ClassMissing {
		t.Errorf("Status = %s, want class missing", res.Status)
	}
	if len(res.Methods) != 0 {
		t.Errorf("Methods = %v, want none", res.Methods)
	}
}

func TestResolver_PicksFirstCandidateByName(t *testing.T) {
	cat := NewCatalog()
	cat.Add(&Module{Path: "narwhals._arrow.series", Classes: []*Class{
		newClass("ZArrowSeries", "z"),
		newClass("ArrowSeries", "a"),
	}})
	res := NewResolver(cat, DefaultRegistry()).Resolve("series", Backend{Name: "arrow", Module: "_arrow"}, "Series")
	if res.Class != "ArrowSeries" {
		t.Errorf("Class = %q, want ArrowSeries", res.Class)
	}
}

func TestResolutionStatus_String(t *testing.T) {
	tests := []struct {
		s    ResolutionStatus
		want string
	}{
		{Resolved, "resolved"},
		{ModuleMissing, "module missing"},
		{ClassMissing, "class missing"},
		{ResolutionStatus(5), "ResolutionStatus(5)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
