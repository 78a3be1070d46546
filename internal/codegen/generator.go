package codegen

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"text/template"

	"golang.org/x/tools/imports"

	"datatree-mapper/internal/build"
	"datatree-mapper/internal/common"
	"datatree-mapper/internal/record"
)

// Import paths of the runtime packages generated code depends on.
const (
	RecordImport = "datatree-mapper/internal/record"
	BuildImport  = "datatree-mapper/internal/build"
)

// Config holds configuration for code generation.
type Config struct {
	// PackageName is the name of the generated package.
	PackageName string
	// OutputDir is where generated files and debug sidecars are written.
	OutputDir string
	// GenerateComments copies schema docs into the generated code.
	GenerateComments bool
}

// DefaultConfig returns the default generator configuration.
func DefaultConfig() Config {
	return Config{
		PackageName:      "types",
		OutputDir:        "./generated",
		GenerateComments: true,
	}
}

// Generator emits typed Go views over the runtime classes of a namespace.
type Generator struct {
	config  Config
	typeMap *build.TypeMap
	logger  *slog.Logger

	// generated maps data types of the current run to their Go type names.
	generated map[string]string
}

type Option func(*Generator)

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

func NewGenerator(config Config, tm *build.TypeMap, opts ...Option) *Generator {
	g := &Generator{config: config, typeMap: tm, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "foo_bucket.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generate emits one file per data type registered in namespace, plus
// classes.go which resolves their runtime classes.
func (g *Generator) Generate(namespace string) ([]GeneratedFile, error) {
	ns, err := g.typeMap.Catalog().Namespace(namespace)
	if err != nil {
		return nil, err
	}

	dts := slices.Sorted(slices.Values(ns.RegisteredTypes()))

	classes := make([]*record.Class, 0, len(dts))
	g.generated = make(map[string]string, len(dts))

	for _, dt := range dts {
		cls, err := g.typeMap.GetDtContainerClass(dt, namespace, true)
		if err != nil {
			return nil, fmt.Errorf("class for %s: %w", dt, err)
		}

		classes = append(classes, cls)
		g.generated[dt] = common.ToCamel(dt)
	}

	var files []GeneratedFile

	for _, cls := range classes {
		data := g.buildTypeData(cls)

		file, err := g.render(typeTemplate, data.Filename, data)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", cls.DataType, err)
		}

		files = append(files, *file)
	}

	file, err := g.render(classesTemplate, "classes.go", g.buildClassesData(namespace, classes))
	if err != nil {
		return nil, fmt.Errorf("generating classes: %w", err)
	}

	files = append(files, *file)

	g.logger.Debug("generated namespace", "namespace", namespace, "types", len(classes), "package", g.config.PackageName)

	return files, nil
}

// render executes tmpl and formats the result. On a formatting failure the
// unformatted source is returned alongside the error.
func (g *Generator) render(tmpl *template.Template, filename string, data any) (*GeneratedFile, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		if g.config.OutputDir != "" {
			_ = writeDebugUnformatted(g.config.OutputDir, filename, buf.Bytes())
		}

		return &GeneratedFile{
			Filename: filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w (unformatted code returned)", err)
	}

	return &GeneratedFile{Filename: filename, Content: formatted}, nil
}
