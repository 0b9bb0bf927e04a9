package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/leodido/completeness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
module "narwhals.series" {
  class "Series" {
    methods = ["abs", "sum", "_private"]
  }
}

module "narwhals._arrow.series" {
  class "CompliantSeries" {
    methods = ["abs", "sum"]
  }

  class "ArrowSeries" {
    methods         = ["abs"]
    not_implemented = ["sum"]
  }
}
`

func TestParse(t *testing.T) {
	cat, err := Parse([]byte(sample), "sample.hcl")
	require.NoError(t, err)

	mod, ok := cat.Module("narwhals.series")
	require.True(t, ok)
	series, ok := mod.Class("Series")
	require.True(t, ok)
	assert.Equal(t, "narwhals.series", series.Module)
	assert.Equal(t, []string{"abs", "sum"}, completeness.AllMethods(series))

	backend, ok := cat.Module("narwhals._arrow.series")
	require.True(t, ok)
	require.Len(t, backend.Classes, 2)
	assert.Equal(t, "CompliantSeries", backend.Classes[0].Name)

	arrow, ok := backend.Class("ArrowSeries")
	require.True(t, ok)
	assert.Equal(t, []string{"abs", "sum"}, completeness.AllMethods(arrow))
	assert.Equal(t, []string{"abs"}, completeness.ImplementedMethods(arrow))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `module "x" {`},
		{"missing label", `module { }`},
		{"unknown attribute", `module "x" { class "A" { colour = "red" } }`},
		{"wrong type", `module "x" { class "A" { methods = "abs" } }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), tt.name+".hcl")
			assert.Error(t, err)
		})
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	cat := completeness.NewCatalog()
	cat.Register("narwhals.series", reflect.TypeFor[Series]())
	cat.Register("narwhals._arrow.series", reflect.TypeFor[ArrowSeries]())
	cat.Add(&completeness.Module{Path: "narwhals.expr_cat", Classes: []*completeness.Class{{Name: "ExprCatNamespace"}}})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cat))

	back, err := Parse(buf.Bytes(), "written.hcl")
	require.NoError(t, err)

	require.Equal(t, len(cat.Modules()), len(back.Modules()))
	for _, want := range cat.Modules() {
		got, ok := back.Module(want.Path)
		require.True(t, ok, "module %s lost", want.Path)
		require.Len(t, got.Classes, len(want.Classes))
		for i, wc := range want.Classes {
			gc := got.Classes[i]
			assert.Equal(t, wc.Name, gc.Name)
			assert.Equal(t, completeness.AllMethods(wc), completeness.AllMethods(gc))
			assert.Equal(t, completeness.ImplementedMethods(wc), completeness.ImplementedMethods(gc))
		}
	}

	arrow, _ := back.Module("narwhals._arrow.series")
	cls, _ := arrow.Class("ArrowSeries")
	assert.Equal(t, []string{"Abs"}, completeness.ImplementedMethods(cls))
	assert.Equal(t, []string{"Abs", "Sum"}, completeness.AllMethods(cls))
}

func TestWrite_Deterministic(t *testing.T) {
	cat, err := Parse([]byte(sample), "sample.hcl")
	require.NoError(t, err)

	var first, second bytes.Buffer
	require.NoError(t, Write(&first, cat))
	require.NoError(t, Write(&second, cat))
	assert.Equal(t, first.String(), second.String())
	assert.Contains(t, first.String(), `module "narwhals._arrow.series"`)
	assert.Contains(t, first.String(), `not_implemented = ["sum"]`)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	_, ok := cat.Module("narwhals.series")
	assert.True(t, ok)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_ShippedManifest(t *testing.T) {
	cat, err := Load(filepath.Join("..", "..", "utils", "api-manifest.hcl"))
	require.NoError(t, err)

	reg := completeness.DefaultRegistry()
	for _, m := range reg.Modules {
		_, ok := cat.Module(completeness.JoinPath(reg.Canonical, m))
		assert.True(t, ok, "canonical module %s missing from the shipped manifest", m)
	}
}

type Series interface {
	Abs() Series
	Sum() int
}

type ArrowSeries struct {
	Sum completeness.NotImplemented
}

func (ArrowSeries) Abs() Series { return nil }
