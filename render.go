package completeness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Template data keys.
const (
	TitleKey = "title"
	TableKey = "backend_table"
)

// Renderer fills the document template and writes documents under a
// destination directory.
type Renderer struct {
	tmpl        *template.Template
	destination string
}

// NewRenderer parses the template at templatePath. A missing or malformed
// template is a [*ConfigError].
func NewRenderer(templatePath, destination string) (*Renderer, error) {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, &ConfigError{Subject: "template " + templatePath, Reason: "cannot read", Err: err}
	}
	return ParseRenderer(filepath.Base(templatePath), string(data), destination)
}

// ParseRenderer is like [NewRenderer] with the template given as text.
func ParseRenderer(name, text, destination string) (*Renderer, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, &ConfigError{Subject: "template " + name, Reason: "cannot parse", Err: err}
	}
	return &Renderer{tmpl: tmpl, destination: destination}, nil
}

// Render fills the template with title and table.
func (r *Renderer) Render(title, table string) (string, error) {
	var buf bytes.Buffer
	data := map[string]string{
		TitleKey: title,
		TableKey: table,
	}
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %q: %w", title, err)
	}
	return buf.String(), nil
}

// Emit renders the document and writes it to destination/name.md,
// creating the destination directory if needed. It returns the path written.
func (r *Renderer) Emit(title, table, name string) (string, error) {
	content, err := r.Render(title, table)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(r.destination, 0o755); err != nil {
		return "", fmt.Errorf("create destination %s: %w", r.destination, err)
	}
	path := filepath.Join(r.destination, name+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ModuleTitle turns a module name into a document title: the first letter
// upper-cased, the rest lower-cased, underscores turned into dots.
// "expr_str" becomes "Expr.str".
func ModuleTitle(module string) string {
	if module == "" {
		return ""
	}
	lower := strings.ToLower(module)
	title := strings.ToUpper(lower[:1]) + lower[1:]
	return strings.ReplaceAll(title, "_", ".")
}
