package completeness

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const testTemplate = "# {{ .title }}\n\n{{ .backend_table }}"

func fixtureCatalog() *MemoryCatalog {
	cat := NewCatalog()
	cat.Add(&Module{Path: "narwhals.dataframe", Classes: []*Class{
		newClass("LazyFrame", "collect", "filter", "select"),
		newClass("BaseFrame", "filter"),
		newClass("DataFrame", "filter", "select", "to_dict"),
	}})
	cat.Add(&Module{Path: "narwhals.series", Classes: []*Class{
		newClass("Series", "abs", "pipe", "sum"),
	}})
	cat.Add(&Module{Path: "narwhals.expr_str", Classes: []*Class{
		newClass("ExprStringNamespace", "contains", "head", "slice", "tail"),
	}})

	cat.Add(&Module{Path: "narwhals._arrow.dataframe", Classes: []*Class{
		newClass("ArrowDataFrame", "filter", "select").withNotImplemented("to_dict"),
	}})
	cat.Add(&Module{Path: "narwhals._dask.dataframe", Classes: []*Class{
		newClass("DaskLazyFrame", "filter", "collect"),
	}})
	cat.Add(&Module{Path: "narwhals._arrow.series", Classes: []*Class{
		newClass("ArrowSeries", "abs", "cum_max"),
	}})
	cat.Add(&Module{Path: "narwhals._arrow.expr_str", Classes: []*Class{
		newClass("ArrowExprStringNamespace", "contains"),
	}})
	return cat
}

func fixtureRegistry() *Registry {
	reg := testRegistry()
	reg.Modules = []string{"dataframe", "series", "expr_str"}
	return reg
}

func newTestGenerator(t *testing.T, reg *Registry, cat Catalog, dest string) *Generator {
	t.Helper()
	r, err := ParseRenderer("doc", testTemplate, dest)
	if err != nil {
		t.Fatalf("ParseRenderer() error = %v", err)
	}
	g, err := NewGenerator(reg, cat, r)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	return g
}

func readDoc(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name+".md"))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func TestGenerator_Run(t *testing.T) {
	dest := t.TempDir()
	g := newTestGenerator(t, fixtureRegistry(), fixtureCatalog(), dest)

	docs, err := g.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var names, titles []string
	for _, d := range docs {
		names = append(names, d.Name)
		titles = append(titles, d.Title)
	}
	if want := []string{"dataframe", "lazyframe", "series", "expr_str"}; !reflect.DeepEqual(names, want) {
		t.Errorf("document names = %v, want %v", names, want)
	}
	if want := []string{"DataFrame", "LazyFrame", "Series", "Expr.str"}; !reflect.DeepEqual(titles, want) {
		t.Errorf("document titles = %v, want %v", titles, want)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Errorf("wrote %d files, want 4", len(entries))
	}

	wantDataFrame := strings.Join([]string{
		"# DataFrame",
		"",
		"| Method  | arrow              | dask | polars             |",
		"| ---     | ---                | ---  | ---                |",
		"| filter  | :white_check_mark: | :x:  | :white_check_mark: |",
		"| select  | :white_check_mark: | :x:  | :white_check_mark: |",
		"| to_dict | :x:                | :x:  | :white_check_mark: |",
		"",
	}, "\n")
	if got := readDoc(t, dest, "dataframe"); got != wantDataFrame {
		t.Errorf("dataframe.md =\n%s\nwant\n%s", got, wantDataFrame)
	}
}

func TestGenerator_GenericAndAliasMethods(t *testing.T) {
	g := newTestGenerator(t, fixtureRegistry(), fixtureCatalog(), t.TempDir())

	docs, err := g.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	byName := map[string]*Matrix{}
	for _, d := range docs {
		byName[d.Name] = d.Matrix
	}

	series := byName["series"]
	if ok, _ := series.Supported("pipe", "arrow"); !ok {
		t.Error("series: pipe must be implemented by arrow")
	}
	if _, known := series.Supported("cum_max", "arrow"); known {
		t.Error("series: cum_max is not canonical and must not be a row")
	}

	exprStr := byName["expr_str"]
	for _, alias := range []string{"head", "tail"} {
		if ok, _ := exprStr.Supported(alias, "arrow"); !ok {
			t.Errorf("expr_str: %s must be implemented by arrow", alias)
		}
	}
	if ok, _ := exprStr.Supported("slice", "arrow"); ok {
		t.Error("expr_str: slice must not be implemented by arrow")
	}
	// dask has no expr_str module at all: everything unsupported, nothing fails.
	if implemented, total := exprStr.Coverage("dask"); implemented != 0 || total != 4 {
		t.Errorf("expr_str dask coverage = %d/%d, want 0/4", implemented, total)
	}
}

func TestGenerator_AggregateWhenModuleHasMoreThanFrames(t *testing.T) {
	cat := fixtureCatalog()
	cat.Add(&Module{Path: "narwhals.dataframe", Classes: []*Class{newClass("GroupBy", "agg")}})

	reg := fixtureRegistry()
	reg.Modules = []string{"dataframe"}
	dest := t.TempDir()
	docs, err := newTestGenerator(t, reg, cat, dest).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var names []string
	for _, d := range docs {
		names = append(names, d.Name)
	}
	if want := []string{"dataframe", "lazyframe", "dataframe"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("document names = %v, want %v", names, want)
	}

	got := readDoc(t, dest, "dataframe")
	if !strings.HasPrefix(got, "# Dataframe\n") {
		t.Errorf("dataframe.md should hold the module document, got:\n%s", got)
	}
	for _, method := range []string{"agg", "collect", "to_dict"} {
		if !strings.Contains(got, "| "+method+" ") {
			t.Errorf("module document missing row %q", method)
		}
	}
}

func TestGenerator_Idempotent(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	for _, dir := range []string{first, second} {
		if _, err := newTestGenerator(t, fixtureRegistry(), fixtureCatalog(), dir).Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	}
	for _, name := range []string{"dataframe", "lazyframe", "series", "expr_str"} {
		if a, b := readDoc(t, first, name), readDoc(t, second, name); a != b {
			t.Errorf("%s.md differs between runs", name)
		}
	}
}

func TestGenerator_MissingCanonicalModule(t *testing.T) {
	reg := fixtureRegistry()
	reg.Modules = append(reg.Modules, "expr_list")

	docs, err := newTestGenerator(t, reg, fixtureCatalog(), t.TempDir()).Run()
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("Run() error = %v, want *ConfigError", err)
	}
	if !strings.Contains(ce.Subject, "narwhals.expr_list") {
		t.Errorf("Subject = %q", ce.Subject)
	}
	if len(docs) != 4 {
		t.Errorf("got %d documents before the failure, want 4", len(docs))
	}
}

func TestNewGenerator_InvalidRegistry(t *testing.T) {
	reg := fixtureRegistry()
	reg.Canonical = ""
	if _, err := NewGenerator(reg, fixtureCatalog(), nil); err == nil {
		t.Error("NewGenerator() with invalid registry expected error")
	}
}

func TestGenerator_ModuleMatrix(t *testing.T) {
	g := newTestGenerator(t, fixtureRegistry(), fixtureCatalog(), t.TempDir())

	m, err := g.ModuleMatrix("dataframe")
	if err != nil {
		t.Fatalf("ModuleMatrix() error = %v", err)
	}
	if want := []string{"collect", "filter", "select", "to_dict"}; !reflect.DeepEqual(m.Methods(), want) {
		t.Errorf("Methods() = %v, want %v", m.Methods(), want)
	}
	if ok, _ := m.Supported("collect", "dask"); !ok {
		t.Error("collect must be implemented by dask")
	}

	if _, err := g.ModuleMatrix("nope"); err == nil {
		t.Error("ModuleMatrix(nope) expected error")
	}
}
