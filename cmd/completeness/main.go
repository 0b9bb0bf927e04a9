package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/leodido/completeness"
	"github.com/leodido/completeness/internal/manifest"
	"github.com/leodido/structcli"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"
)

// Build metadata injected via ldflags.
// When built without ldflags (e.g., plain `go build`), these remain
// at their zero values and the version command omits them gracefully.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	if err := rootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &GenerateOptions{}

	root := &cobra.Command{
		Use:   "completeness",
		Short: "Generate API completeness tables for every backend",
		Long: `completeness compares the methods of the unifying API with what each
backend implements and writes one markdown document per frame class and per
module.

Run without arguments from the repository root to regenerate every document
with the default registry, manifest, template and destination.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return runGenerate(opts, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := opts.Attach(root); err != nil {
		panic(err)
	}

	root.AddCommand(tableCmd(stdout))
	root.AddCommand(checkCmd(stdout))
	root.AddCommand(versionCmd(stdout))
	return root
}

// GenerateOptions defines flags for the default (generate) command.
type GenerateOptions struct {
	Manifest    string       `flag:"manifest" flagshort:"m" flagdescr:"API manifest listing canonical and backend classes" default:"utils/api-manifest.hcl"`
	Registry    string       `flag:"registry" flagshort:"r" flagdescr:"Registry override file (HCL)"`
	Template    string       `flag:"template" flagshort:"t" flagdescr:"Document template" default:"utils/api-completeness.md.tmpl"`
	Destination string       `flag:"destination" flagshort:"d" flagdescr:"Directory the documents are written to" default:"docs/api-completeness"`
	Modes       backendModes `flag:"mode" flagdescr:"Only include backends serving these modes" flagcustom:"true"`
	LogLevel    string       `flag:"log-level" flagdescr:"Log level (trace, debug, info, warn, error)" default:"info"`
}

func (o *GenerateOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *GenerateOptions) DefineModes(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	return defineModes(fieldValue, descr)
}

func (o *GenerateOptions) DecodeModes(input any) (any, error) {
	return decodeModes(input)
}

func (o *GenerateOptions) CompleteModes(c *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeModes(toComplete)
}

func runGenerate(opts *GenerateOptions, stderr io.Writer) error {
	log, err := newLogger(opts.LogLevel, stderr)
	if err != nil {
		return err
	}

	reg, cat, err := loadSources(opts.Manifest, opts.Registry, opts.Modes)
	if err != nil {
		return err
	}

	renderer, err := completeness.NewRenderer(opts.Template, opts.Destination)
	if err != nil {
		return err
	}

	gen, err := completeness.NewGenerator(reg, cat, renderer, completeness.WithLogger(log))
	if err != nil {
		return err
	}
	_, err = gen.Run()
	return err
}

// TableOptions defines flags for the table subcommand.
type TableOptions struct {
	Manifest string       `flag:"manifest" flagshort:"m" flagdescr:"API manifest listing canonical and backend classes" default:"utils/api-manifest.hcl"`
	Registry string       `flag:"registry" flagshort:"r" flagdescr:"Registry override file (HCL)"`
	Modes    backendModes `flag:"mode" flagdescr:"Only include backends serving these modes" flagcustom:"true"`
	JSON     bool         `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *TableOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *TableOptions) DefineModes(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	return defineModes(fieldValue, descr)
}

func (o *TableOptions) DecodeModes(input any) (any, error) {
	return decodeModes(input)
}

func (o *TableOptions) CompleteModes(c *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeModes(toComplete)
}

func tableCmd(stdout io.Writer) *cobra.Command {
	opts := &TableOptions{}

	cmd := &cobra.Command{
		Use:   "table MODULE",
		Short: "Print the completeness matrix of one module",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			reg, cat, err := loadSources(opts.Manifest, opts.Registry, opts.Modes)
			if err != nil {
				return err
			}
			gen, err := completeness.NewGenerator(reg, cat, nil)
			if err != nil {
				return err
			}
			m, err := gen.ModuleMatrix(args[0])
			if err != nil {
				return err
			}

			if opts.JSON {
				return printJSON(stdout, matrixReport(args[0], m))
			}
			fmt.Fprint(stdout, m.Markdown(reg.PresentGlyph, reg.AbsentGlyph))
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// CheckOptions defines flags for the check subcommand.
type CheckOptions struct {
	Manifest    string             `flag:"manifest" flagshort:"m" flagdescr:"API manifest listing canonical and backend classes" default:"utils/api-manifest.hcl"`
	Registry    string             `flag:"registry" flagshort:"r" flagdescr:"Registry override file (HCL)"`
	Require     methodRequirements `flag:"require" flagshort:"R" flagdescr:"Methods the backend must implement, as module.method" flagcustom:"true"`
	MinCoverage int                `flag:"min-coverage" flagdescr:"Minimum percentage of methods the backend must implement in every module"`
	JSON        bool               `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *CheckOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *CheckOptions) DefineRequire(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*methodRequirements)
	*fieldPtr = nil
	return fieldPtr, descr
}

func (o *CheckOptions) DecodeRequire(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}

	return parseMethodRequirements(s)
}

func (o *CheckOptions) CompleteRequire(c *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeRequire(toComplete)
}

func checkCmd(stdout io.Writer) *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check BACKEND",
		Short: "Check that a backend implements the required methods",
		Long:  checkLongDescription(),
		Args:  cobra.ExactArgs(1),
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			if len(opts.Require) == 0 && opts.MinCoverage == 0 {
				return fmt.Errorf("no requirements specified")
			}
			backend := args[0]

			reg, cat, err := loadSources(opts.Manifest, opts.Registry, nil)
			if err != nil {
				return err
			}
			gen, err := completeness.NewGenerator(reg, cat, nil)
			if err != nil {
				return err
			}

			requirements := make([]completeness.Requirement, 0, len(opts.Require)+len(reg.Modules))
			for _, r := range opts.Require {
				requirements = append(requirements, r)
			}
			if opts.MinCoverage > 0 {
				for _, module := range reg.Modules {
					requirements = append(requirements, completeness.RequireCoverage(module, opts.MinCoverage))
				}
			}

			err = gen.Check(backend, requirements...)
			if err != nil {
				var ge *completeness.GapError
				if errors.As(err, &ge) && opts.JSON {
					if perr := printJSON(stdout, map[string]any{
						"ok":          false,
						"backend":     ge.Backend,
						"requirement": ge.Requirement,
						"reason":      ge.Reason,
					}); perr != nil {
						return perr
					}
				}
				return err
			}

			if opts.JSON {
				return printJSON(stdout, map[string]any{
					"ok":           true,
					"backend":      backend,
					"requirements": len(requirements),
				})
			}
			fmt.Fprintf(stdout, "OK: %s meets all %d requirements\n", backend, len(requirements))
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func checkLongDescription() string {
	return fmt.Sprintf(`Check that a backend implements the required methods.
Exits with code 0 if all requirements are met, 1 if any are missing.

Modules:
%s`, formatWrappedList(completeness.DefaultRegistry().Modules, "  ", 80))
}

func formatWrappedList(items []string, indent string, maxWidth int) string {
	if len(items) == 0 {
		return indent + "(none)"
	}

	lines := make([]string, 0, len(items))
	line := indent
	for i, item := range items {
		token := item
		if i < len(items)-1 {
			token += ", "
		}

		if len(line)+len(token) > maxWidth && line != indent {
			lines = append(lines, strings.TrimRight(line, " "))
			line = indent + token
			continue
		}

		line += token
	}

	lines = append(lines, strings.TrimRight(line, " "))
	return strings.Join(lines, "\n")
}

func versionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show tool version",
		RunE: func(c *cobra.Command, args []string) error {
			if version == "" {
				fmt.Fprintln(stdout, "completeness (dev)")
				return nil
			}
			fmt.Fprintf(stdout, "completeness %s", version)
			if commit != "" {
				fmt.Fprintf(stdout, " (%s)", commit)
			}
			if date != "" {
				fmt.Fprintf(stdout, " built %s", date)
			}
			fmt.Fprintln(stdout)
			return nil
		},
	}
}

func loadSources(manifestPath, registryPath string, modes backendModes) (*completeness.Registry, *completeness.MemoryCatalog, error) {
	reg := completeness.DefaultRegistry()
	if registryPath != "" {
		var err error
		reg, err = manifest.LoadRegistry(registryPath)
		if err != nil {
			return nil, nil, err
		}
	}
	reg = reg.FilterModes(modes...)

	cat, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, nil, err
	}
	return reg, cat, nil
}

func newLogger(level string, w io.Writer) (logr.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return logr.Discard(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(lvl).
		With().Timestamp().Logger()
	return zerologr.New(&zl).WithName("completeness"), nil
}

type coverageReport struct {
	Implemented int `json:"implemented"`
	Total       int `json:"total"`
}

type rowReport struct {
	Method    string          `json:"method"`
	Supported map[string]bool `json:"supported"`
}

type report struct {
	Module   string                    `json:"module"`
	Columns  []string                  `json:"columns"`
	Rows     []rowReport               `json:"rows"`
	Coverage map[string]coverageReport `json:"coverage"`
}

func matrixReport(module string, m *completeness.Matrix) report {
	r := report{
		Module:   module,
		Columns:  m.Columns,
		Rows:     make([]rowReport, 0, len(m.Rows)),
		Coverage: make(map[string]coverageReport, len(m.Columns)),
	}
	for _, row := range m.Rows {
		rr := rowReport{Method: row.Method, Supported: make(map[string]bool, len(m.Columns))}
		for i, col := range m.Columns {
			rr.Supported[col] = row.Cells[i]
		}
		r.Rows = append(r.Rows, rr)
	}
	for _, col := range m.Columns {
		implemented, total := m.Coverage(col)
		r.Coverage[col] = coverageReport{Implemented: implemented, Total: total}
	}
	return r
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type backendModes []completeness.BackendMode

var modeIdentifierMap = func() map[completeness.BackendMode][]string {
	ids := make(map[completeness.BackendMode][]string, len(completeness.BackendModeValues()))
	for _, m := range completeness.BackendModeValues() {
		ids[m] = []string{m.String()}
	}
	return ids
}()

func (r *backendModes) String() string {
	names := make([]string, 0, len(*r))
	for _, m := range *r {
		names = append(names, m.String())
	}
	return strings.Join(names, ",")
}

func (r *backendModes) Set(input string) error {
	modes, err := parseBackendModes(input)
	if err != nil {
		return err
	}
	*r = append(*r, modes...)
	return nil
}

func (r *backendModes) Type() string {
	return "mode"
}

func defineModes(fieldValue reflect.Value, descr string) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*backendModes)
	*fieldPtr = nil
	return fieldPtr, fmt.Sprintf("%s (%s)", descr, strings.Join(completeness.BackendModeNames(), ", "))
}

func decodeModes(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}
	return parseBackendModes(s)
}

func completeModes(toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	current := toComplete
	if idx := strings.LastIndex(toComplete, ","); idx >= 0 {
		prefix = toComplete[:idx+1]
		current = toComplete[idx+1:]
	}

	var out []string
	for _, name := range completeness.BackendModeNames() {
		if strings.HasPrefix(name, strings.ToLower(current)) {
			out = append(out, prefix+name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func parseBackendModes(input string) (backendModes, error) {
	if strings.TrimSpace(input) == "" {
		return backendModes{}, nil
	}

	parts := strings.Split(input, ",")
	modes := make(backendModes, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}

		var mode completeness.BackendMode
		enumValue := enumflag.New(&mode, "completeness.BackendMode", modeIdentifierMap, enumflag.EnumCaseInsensitive)
		if err := enumValue.Set(name); err != nil {
			return nil, fmt.Errorf("unknown mode: %q (available: %s)", name, strings.Join(completeness.BackendModeNames(), ", "))
		}

		modes = append(modes, mode)
	}

	return modes, nil
}

type methodRequirements []completeness.MethodRequirement

func (r *methodRequirements) String() string {
	refs := make([]string, 0, len(*r))
	for _, m := range *r {
		refs = append(refs, m.String())
	}
	return strings.Join(refs, ",")
}

func (r *methodRequirements) Set(input string) error {
	reqs, err := parseMethodRequirements(input)
	if err != nil {
		return err
	}
	*r = append(*r, reqs...)
	return nil
}

func (r *methodRequirements) Type() string {
	return "methods"
}

func parseMethodRequirements(input string) (methodRequirements, error) {
	if strings.TrimSpace(input) == "" {
		return methodRequirements{}, nil
	}

	parts := strings.Split(input, ",")
	reqs := make(methodRequirements, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		req, err := completeness.ParseMethodRequirement(part)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}

	return reqs, nil
}

// completeRequire suggests module prefixes; method names need the manifest
// and are left to the user.
func completeRequire(toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	current := toComplete
	if idx := strings.LastIndex(toComplete, ","); idx >= 0 {
		prefix = toComplete[:idx+1]
		current = toComplete[idx+1:]
	}
	directive := cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	if strings.Contains(current, ".") {
		return nil, directive
	}

	var out []string
	for _, module := range completeness.DefaultRegistry().Modules {
		if strings.HasPrefix(module, strings.ToLower(current)) {
			out = append(out, prefix+module+".")
		}
	}
	return out, directive
}
