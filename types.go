package completeness

import (
	"fmt"
	"strings"
)

// BackendMode is the evaluation mode a backend operates in.
type BackendMode int

const (
	// ModeLazy backends build a query plan and execute it on collect.
	ModeLazy BackendMode = iota
	// ModeEager backends evaluate every operation immediately.
	ModeEager
	// ModeBoth backends offer both lazy and eager evaluation.
	ModeBoth
)

var backendModeNames = map[BackendMode]string{
	ModeLazy:  "lazy",
	ModeEager: "eager",
	ModeBoth:  "both",
}

func (m BackendMode) String() string {
	if name, ok := backendModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("BackendMode(%d)", m)
}

// Includes reports whether a backend running in mode m can serve mode want.
// A backend in [ModeBoth] serves every mode.
func (m BackendMode) Includes(want BackendMode) bool {
	return m == want || m == ModeBoth
}

// BackendModeValues returns every known mode in declaration order.
func BackendModeValues() []BackendMode {
	return []BackendMode{ModeLazy, ModeEager, ModeBoth}
}

// BackendModeNames returns the names of every known mode in declaration order.
func BackendModeNames() []string {
	values := BackendModeValues()
	names := make([]string, 0, len(values))
	for _, m := range values {
		names = append(names, m.String())
	}
	return names
}

// ParseBackendMode parses a mode name case-insensitively.
func ParseBackendMode(s string) (BackendMode, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for m, name := range backendModeNames {
		if name == needle {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown backend mode %q (available: %s)", s, strings.Join(BackendModeNames(), ", "))
}

// Backend is a registered implementation of the unifying API.
type Backend struct {
	// Name is the column header used in the matrix.
	Name string
	// Module is the backend's package segment below the canonical namespace (e.g. "_arrow").
	Module string
	Mode   BackendMode
}

// MemberStatus tells whether a member is provided by its class.
type MemberStatus int

const (
	// StatusImplemented means the class provides the member.
	StatusImplemented MemberStatus = iota
	// StatusNotImplemented means the class declares the member but deliberately
	// leaves it out. Such members never count as implemented.
	StatusNotImplemented
)

func (s MemberStatus) String() string {
	switch s {
	case StatusImplemented:
		return "implemented"
	case StatusNotImplemented:
		return "not implemented"
	default:
		return fmt.Sprintf("MemberStatus(%d)", s)
	}
}

// Member is a named attribute or method of a class.
type Member struct {
	Name   string
	Status MemberStatus
}

// Class is a named type found in a module.
type Class struct {
	Name    string
	Module  string
	Members []Member
}

// Module is a named collection of classes, in declaration order.
type Module struct {
	Path    string
	Classes []*Class
}

// Class returns the class with the given name.
func (m *Module) Class(name string) (*Class, bool) {
	if m == nil {
		return nil, false
	}
	for _, c := range m.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// MethodRecord pairs a participant (the canonical label or a backend name)
// with one method name.
type MethodRecord struct {
	Participant string
	Method      string
}

// RowSet holds the method names one participant exposes for one class.
type RowSet struct {
	Participant string
	Methods     []string
}

// Records expands the set into one record per method.
func (rs RowSet) Records() []MethodRecord {
	records := make([]MethodRecord, 0, len(rs.Methods))
	for _, m := range rs.Methods {
		records = append(records, MethodRecord{Participant: rs.Participant, Method: m})
	}
	return records
}

// ConfigError reports a broken build, such as a registry that does not
// validate or a canonical module that does not exist.
type ConfigError struct {
	Subject string
	Reason  string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Subject, e.Reason, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Subject, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// GapError represents an unsatisfied [Requirement] of a backend.
type GapError struct {
	Backend     string
	Requirement string
	Reason      string
	Err         error
}

func (e *GapError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s: %s: %s: %v", e.Backend, e.Requirement, e.Reason, e.Err)
	}
	return fmt.Sprintf("backend %s: %s: %s", e.Backend, e.Requirement, e.Reason)
}

func (e *GapError) Unwrap() error {
	return e.Err
}
