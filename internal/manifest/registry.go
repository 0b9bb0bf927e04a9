package manifest

import (
	"fmt"
	"os"

	"github.com/leodido/completeness"
)

// registryFile overrides fields of the default registry. Unset attributes
// keep their default; any backend (or extras) block replaces the whole
// default list (or map).
type registryFile struct {
	Canonical              *string         `hcl:"canonical,optional"`
	Reference              *string         `hcl:"reference,optional"`
	Modules                []string        `hcl:"modules,optional"`
	ExcludeClasses         []string        `hcl:"exclude_classes,optional"`
	AlwaysImplemented      []string        `hcl:"always_implemented,optional"`
	FrameClasses           []string        `hcl:"frame_classes,optional"`
	ProtocolPrefix         *string         `hcl:"protocol_prefix,optional"`
	ExcludeImplementations []string        `hcl:"exclude_implementations,optional"`
	PresentGlyph           *string         `hcl:"present_glyph,optional"`
	AbsentGlyph            *string         `hcl:"absent_glyph,optional"`
	Backends               []*backendBlock `hcl:"backend,block"`
	Extras                 []*extrasBlock  `hcl:"extras,block"`
}

type backendBlock struct {
	Name   string `hcl:"name,label"`
	Module string `hcl:"module"`
	Mode   string `hcl:"mode"`
}

type extrasBlock struct {
	Module  string   `hcl:"module,label"`
	Methods []string `hcl:"methods"`
}

// LoadRegistry reads a registry override file and applies it on top of
// [completeness.DefaultRegistry]. The result is not validated.
func LoadRegistry(path string) (*completeness.Registry, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return ParseRegistry(src, path)
}

// ParseRegistry is like [LoadRegistry] with the file content given.
func ParseRegistry(src []byte, filename string) (*completeness.Registry, error) {
	var parsed registryFile
	if err := decode(src, filename, &parsed); err != nil {
		return nil, err
	}

	reg := completeness.DefaultRegistry()
	setString(&reg.Canonical, parsed.Canonical)
	setString(&reg.Reference, parsed.Reference)
	setString(&reg.ProtocolPrefix, parsed.ProtocolPrefix)
	setString(&reg.PresentGlyph, parsed.PresentGlyph)
	setString(&reg.AbsentGlyph, parsed.AbsentGlyph)
	setStrings(&reg.Modules, parsed.Modules)
	setStrings(&reg.ExcludeClasses, parsed.ExcludeClasses)
	setStrings(&reg.AlwaysImplemented, parsed.AlwaysImplemented)
	setStrings(&reg.FrameClasses, parsed.FrameClasses)
	setStrings(&reg.ExcludeImplementations, parsed.ExcludeImplementations)

	if len(parsed.Backends) > 0 {
		reg.Backends = make([]completeness.Backend, 0, len(parsed.Backends))
		for _, b := range parsed.Backends {
			mode, err := completeness.ParseBackendMode(b.Mode)
			if err != nil {
				return nil, fmt.Errorf("%s: backend %q: %w", filename, b.Name, err)
			}
			reg.Backends = append(reg.Backends, completeness.Backend{Name: b.Name, Module: b.Module, Mode: mode})
		}
	}

	if len(parsed.Extras) > 0 {
		reg.ModuleExtras = make(map[string][]string, len(parsed.Extras))
		for _, e := range parsed.Extras {
			reg.ModuleExtras[e.Module] = append(reg.ModuleExtras[e.Module], e.Methods...)
		}
	}

	return reg, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setStrings(dst *[]string, v []string) {
	if v != nil {
		*dst = v
	}
}
