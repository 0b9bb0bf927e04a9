package completeness

import (
	"slices"
	"strings"
)

// AllMethods returns the sorted public member names of c.
// Names starting with an underscore are private and never returned.
func AllMethods(c *Class) []string {
	return methodNames(c, func(Member) bool { return true })
}

// ImplementedMethods is like [AllMethods] but leaves out members declared
// with [StatusNotImplemented].
func ImplementedMethods(c *Class) []string {
	return methodNames(c, func(m Member) bool { return m.Status != StatusNotImplemented })
}

func methodNames(c *Class, keep func(Member) bool) []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		if !isPublic(m.Name) || !keep(m) {
			continue
		}
		names = append(names, m.Name)
	}
	return sortedUnique(names)
}

func isPublic(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_")
}

func sortedUnique(names []string) []string {
	slices.Sort(names)
	return slices.Compact(names)
}
