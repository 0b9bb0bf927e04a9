package completeness

import (
	"reflect"
)

// NotImplemented marks a member a type declares but deliberately does not
// provide. Declare it as an exported field named after the missing method:
//
//	type ArrowSeries struct {
//		Explode completeness.NotImplemented
//	}
//
// The member then shows as unsupported instead of being silently inherited.
type NotImplemented struct{}

var notImplementedType = reflect.TypeFor[NotImplemented]()

// ClassOf describes t as a [Class] of module.
//
// Members are the exported methods of *T (of T itself for interfaces and
// pointers) plus the exported, non-embedded fields of struct types. Fields
// of type [NotImplemented] have [StatusNotImplemented]. When a method and a
// promoted field share a name, the method wins, as it does in Go.
func ClassOf(module string, t reflect.Type) *Class {
	cls := &Class{Name: t.Name(), Module: module}
	if t.Kind() == reflect.Pointer {
		cls.Name = t.Elem().Name()
	}

	seen := map[string]struct{}{}

	methods := t
	if t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer {
		methods = reflect.PointerTo(t)
	}
	for i := 0; i < methods.NumMethod(); i++ {
		m := methods.Method(i)
		if !m.IsExported() {
			continue
		}
		seen[m.Name] = struct{}{}
		cls.Members = append(cls.Members, Member{Name: m.Name, Status: StatusImplemented})
	}

	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return cls
	}
	for _, f := range reflect.VisibleFields(st) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		if _, ok := seen[f.Name]; ok {
			continue
		}
		seen[f.Name] = struct{}{}
		status := StatusImplemented
		if f.Type == notImplementedType {
			status = StatusNotImplemented
		}
		cls.Members = append(cls.Members, Member{Name: f.Name, Status: status})
	}
	return cls
}

// Register adds the given types as classes of module, in the order given.
func (c *MemoryCatalog) Register(module string, types ...reflect.Type) {
	m := &Module{Path: module}
	for _, t := range types {
		m.Classes = append(m.Classes, ClassOf(module, t))
	}
	c.Add(m)
}
