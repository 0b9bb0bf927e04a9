// Package manifest reads and writes the HCL files describing the API
// surface (the manifest) and overriding the default registry.
package manifest

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/leodido/completeness"
	"github.com/zclconf/go-cty/cty"
)

// manifestFile is the top-level structure of a manifest.
type manifestFile struct {
	Modules []*moduleBlock `hcl:"module,block"`
}

type moduleBlock struct {
	Path    string        `hcl:"path,label"`
	Classes []*classBlock `hcl:"class,block"`
}

type classBlock struct {
	Name           string   `hcl:"name,label"`
	Methods        []string `hcl:"methods,optional"`
	NotImplemented []string `hcl:"not_implemented,optional"`
}

// Load parses the manifest at path.
func Load(path string) (*completeness.MemoryCatalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(src, path)
}

// Parse builds a catalog from manifest source. filename is used in diagnostics.
func Parse(src []byte, filename string) (*completeness.MemoryCatalog, error) {
	var parsed manifestFile
	if err := decode(src, filename, &parsed); err != nil {
		return nil, err
	}

	cat := completeness.NewCatalog()
	for _, mb := range parsed.Modules {
		mod := &completeness.Module{Path: mb.Path}
		for _, cb := range mb.Classes {
			cls := &completeness.Class{Name: cb.Name, Module: mb.Path}
			for _, name := range cb.Methods {
				cls.Members = append(cls.Members, completeness.Member{Name: name, Status: completeness.StatusImplemented})
			}
			for _, name := range cb.NotImplemented {
				cls.Members = append(cls.Members, completeness.Member{Name: name, Status: completeness.StatusNotImplemented})
			}
			mod.Classes = append(mod.Classes, cls)
		}
		cat.Add(mod)
	}
	return cat, nil
}

// Write serializes cat as a manifest, modules sorted by path and classes in
// declaration order.
func Write(w io.Writer, cat *completeness.MemoryCatalog) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	for i, mod := range cat.Modules() {
		if i > 0 {
			root.AppendNewline()
		}
		mb := root.AppendNewBlock("module", []string{mod.Path}).Body()
		for _, cls := range mod.Classes {
			var methods, missing []string
			for _, m := range cls.Members {
				if m.Status == completeness.StatusNotImplemented {
					missing = append(missing, m.Name)
				} else {
					methods = append(methods, m.Name)
				}
			}
			cb := mb.AppendNewBlock("class", []string{cls.Name}).Body()
			cb.SetAttributeValue("methods", stringList(methods))
			if len(missing) > 0 {
				cb.SetAttributeValue("not_implemented", stringList(missing))
			}
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func stringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, 0, len(items))
	for _, s := range items {
		vals = append(vals, cty.StringVal(s))
	}
	return cty.ListVal(vals)
}

func decode(src []byte, filename string, target any) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	if diags := gohcl.DecodeBody(file.Body, nil, target); diags.HasErrors() {
		return fmt.Errorf("failed to decode %s: %w", filename, diags)
	}
	return nil
}
