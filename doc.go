// Package completeness builds API completeness matrices for a multi-backend
// abstraction layer.
//
// A unifying API declares conceptual classes (frames, series, expressions and
// their string/datetime/category/list/struct namespaces). Each backend
// implements some subset of their methods. This package compares the two
// and renders, per class or per module, a markdown table showing which
// methods every backend actually provides.
//
// Only the presence of a method name is checked, never its behaviour.
//
// # Sources
//
// Classes and their members come from a [Catalog]. [MemoryCatalog] can be
// filled from a checked-in manifest (see internal/manifest) or by
// reflection over Go types with [MemoryCatalog.Register]:
//
//	cat := completeness.NewCatalog()
//	cat.Register("narwhals.series", reflect.TypeFor[nw.Series]())
//	cat.Register("narwhals._arrow.series", reflect.TypeFor[arrow.ArrowSeries]())
//
// A backend type opts out of a method it cannot support by declaring a field
// of type [NotImplemented] with the method's name.
//
// # Pipeline
//
//   - [AllMethods] lists the canonical surface of a class
//   - [Resolver] finds the backend class and its [ImplementedMethods],
//     adding the registry's generically implemented methods
//   - [BuildMatrix] pivots the per-participant row-sets into a [Matrix],
//     keeping only canonical methods and appending the reference backend
//   - [Renderer] fills the document template with [Matrix.Markdown]
//   - [Generator] drives all of the above over a [Registry]
//
// # Quick Start
//
//	renderer, err := completeness.NewRenderer("utils/api-completeness.md.tmpl", "docs/api-completeness")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	gen, err := completeness.NewGenerator(completeness.DefaultRegistry(), cat, renderer)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	docs, err := gen.Run()
//
// # Gating
//
// [Generator.Check] turns the matrix into a pass/fail gate for one backend,
// returning a [*GapError] for the first unmet [Requirement]:
//
//	err := gen.Check("arrow",
//	    completeness.RequireMethod("expr_str", "contains"),
//	    completeness.RequireCoverage("series", 80),
//	)
//
// Missing backend modules or classes are expected and show as unsupported.
// A registered module missing from the canonical API, or an unreadable
// template, is a [*ConfigError] and aborts the run.
package completeness
