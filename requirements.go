package completeness

import (
	"fmt"
	"strings"
)

// Requirement describes a gate condition consumable by [Generator.Check].
//
// Built-in implementations include:
//   - [MethodRequirement]
//   - [CoverageRequirement]
//   - [RequirementGroup]
type Requirement interface {
	isRequirement()
}

// RequirementGroup is a reusable set of [Requirement] items.
type RequirementGroup []Requirement

// MethodRequirement requires a backend to implement one method of a module.
type MethodRequirement struct {
	Module string
	Method string
}

func (r MethodRequirement) String() string {
	return r.Module + "." + r.Method
}

// CoverageRequirement requires a backend to implement at least Percent of
// the methods of a module.
type CoverageRequirement struct {
	Module  string
	Percent int
}

func (r CoverageRequirement) String() string {
	return fmt.Sprintf("%s>=%d%%", r.Module, r.Percent)
}

// RequireMethod creates a requirement for a method of module.
func RequireMethod(module, method string) MethodRequirement {
	return MethodRequirement{Module: module, Method: method}
}

// RequireCoverage creates a coverage requirement for module.
func RequireCoverage(module string, percent int) CoverageRequirement {
	return CoverageRequirement{Module: module, Percent: percent}
}

// ParseMethodRequirement parses a "module.method" reference, e.g.
// "expr_str.contains".
func ParseMethodRequirement(s string) (MethodRequirement, error) {
	module, method, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || module == "" || method == "" || strings.Contains(method, ".") {
		return MethodRequirement{}, fmt.Errorf("invalid method reference %q (want module.method)", s)
	}
	return RequireMethod(module, method), nil
}

func (MethodRequirement) isRequirement()   {}
func (CoverageRequirement) isRequirement() {}
func (RequirementGroup) isRequirement()    {}

type requirementSet struct {
	methods  []MethodRequirement
	coverage []CoverageRequirement

	seenMethods  map[MethodRequirement]struct{}
	seenCoverage map[CoverageRequirement]struct{}
}

func normalizeRequirements(required []Requirement) requirementSet {
	rs := requirementSet{
		seenMethods:  map[MethodRequirement]struct{}{},
		seenCoverage: map[CoverageRequirement]struct{}{},
	}
	for _, req := range required {
		rs.add(req)
	}
	return rs
}

func (rs *requirementSet) add(req Requirement) {
	switch r := req.(type) {
	case MethodRequirement:
		if _, ok := rs.seenMethods[r]; ok {
			return
		}
		rs.seenMethods[r] = struct{}{}
		rs.methods = append(rs.methods, r)
	case CoverageRequirement:
		if _, ok := rs.seenCoverage[r]; ok {
			return
		}
		rs.seenCoverage[r] = struct{}{}
		rs.coverage = append(rs.coverage, r)
	case RequirementGroup:
		for _, nested := range r {
			if nested == nil {
				continue
			}
			rs.add(nested)
		}
	}
}
