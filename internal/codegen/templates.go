package codegen

import "text/template"

const header = `// Code generated by datatree-mapper. DO NOT EDIT.

package {{.PackageName}}

{{if .Imports}}
import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}
`

var typeTemplate = template.Must(template.New("type").Parse(header + `
{{if and .GenerateComments .Doc}}{{range .Doc}}// {{.}}
{{end}}//
{{end}}// {{.TypeName}} is a typed view of a {{.DataType}} record.
type {{.TypeName}} struct {
	*record.Record
}

// {{.TypeName}}Args holds the constructor arguments of {{.TypeName}}.
type {{.TypeName}}Args struct {
{{- if .HasName}}
	Name string
{{- end}}
{{- range .Params}}
	{{.GoName}} {{.ArgType}}{{if and $.GenerateComments .Doc}} // {{.Doc}}{{end}}
{{- end}}
}

func (args {{.TypeName}}Args) recordArgs() record.Args {
	a := record.Args{}
{{- if .HasName}}

	if args.Name != "" {
		a["name"] = args.Name
	}
{{- end}}
{{range .Params}}
{{.ArgSet}}
{{end}}
	return a
}

// New{{.TypeName}} creates a {{.TypeName}}{{if .FixedName}} named {{.FixedName}}{{end}}.
func New{{.TypeName}}(args {{.TypeName}}Args, opts ...record.Option) ({{.TypeName}}, error) {
	if {{.ClassVar}} == nil {
		return {{.TypeName}}{}, ErrClassesNotLoaded
	}

	r, err := {{.ClassVar}}.New(args.recordArgs(), opts...)
	if err != nil {
		return {{.TypeName}}{}, err
	}

	return {{.TypeName}}{Record: r}, nil
}

// Wrap{{.TypeName}} returns r as a {{.TypeName}}; r must be an instance of its class or a subclass.
func Wrap{{.TypeName}}(r *record.Record) ({{.TypeName}}, error) {
	if r == nil || {{.ClassVar}} == nil || !r.Class().IsSubclassOf({{.ClassVar}}) {
		return {{.TypeName}}{}, fmt.Errorf("%w: %v is not a {{.DataType}}", ErrWrongClass, r)
	}

	return {{.TypeName}}{Record: r}, nil
}
{{if .Base}}
// As{{.Base}} returns the {{.Base}} view of x.
func (x {{.TypeName}}) As{{.Base}}() {{.Base}} {
	return {{.Base}}{Record: x.Record}
}
{{end}}
{{- range .Accessors}}
{{- if .Records}}
{{- if .Many}}
{{- if .Wrapper}}

// {{.GoName}} returns the {{.Name}} records.
func (x {{$.TypeName}}) {{.GoName}}() {{.ValueType}} {
	rs, _ := x.Get("{{.Name}}").([]*record.Record)

	out := make({{.ValueType}}, len(rs))
	for i, r := range rs {
		out[i] = {{.Wrapper}}{Record: r}
	}

	return out
}
{{- else}}

// {{.GoName}} returns the {{.Name}} records.
func (x {{$.TypeName}}) {{.GoName}}() {{.ValueType}} {
	rs, _ := x.Get("{{.Name}}").([]*record.Record)
	return rs
}
{{- end}}
{{- else}}
{{- if .Wrapper}}

// {{.GoName}} returns the {{.Name}} record; its Record is nil when unset.
func (x {{$.TypeName}}) {{.GoName}}() {{.ValueType}} {
	r, _ := x.Get("{{.Name}}").(*record.Record)
	return {{.Wrapper}}{Record: r}
}
{{- else}}

// {{.GoName}} returns the {{.Name}} record.
func (x {{$.TypeName}}) {{.GoName}}() {{.ValueType}} {
	r, _ := x.Get("{{.Name}}").(*record.Record)
	return r
}
{{- end}}
{{- end}}
{{- else if .Optional}}

// {{.GoName}} returns {{.Name}} and whether it is set.
func (x {{$.TypeName}}) {{.GoName}}() ({{.ValueType}}, bool) {
	v, ok := x.Get("{{.Name}}").({{.ValueType}})
	return v, ok
}
{{- else}}

// {{.GoName}} returns {{.Name}}.
func (x {{$.TypeName}}) {{.GoName}}() {{.ValueType}} {
	v, _ := x.Get("{{.Name}}").({{.ValueType}})
	return v
}
{{- end}}
{{- if .Settable}}

func (x {{$.TypeName}}) Set{{.GoName}}(v {{.ValueType}}) error {
	return x.Set("{{.Name}}", v)
}
{{- end}}
{{- end}}
{{- range .Collections}}

// {{.Add}} adds an item to {{.Field}}.
func (x {{$.TypeName}}) {{.Add}}(item {{.ItemType}}) error {
	return x.Add("{{.Field}}", item{{if .Wrapper}}.Record{{end}})
}

// {{.Get}} returns the {{.Field}} item called name.
func (x {{$.TypeName}}) {{.Get}}(name string) ({{.ItemType}}, error) {
	r, err := x.Item("{{.Field}}", name)
{{- if .Wrapper}}
	return {{.Wrapper}}{Record: r}, err
{{- else}}
	return r, err
{{- end}}
}
{{- if .Wrapper}}

// {{.Create}} creates a {{.Wrapper}} and adds it to {{.Field}}.
func (x {{$.TypeName}}) {{.Create}}(args {{.Wrapper}}Args, opts ...record.Option) ({{.Wrapper}}, error) {
	r, err := x.Create("{{.Field}}", args.recordArgs(), opts...)
	return {{.Wrapper}}{Record: r}, err
}
{{- end}}
{{- end}}
`))

var classesTemplate = template.Must(template.New("classes").Parse(header + `
var (
	// ErrClassesNotLoaded is returned by constructors called before LoadClasses.
	ErrClassesNotLoaded = errors.New("classes not loaded: call LoadClasses first")
	// ErrWrongClass is returned when a record is wrapped in the view of an unrelated class.
	ErrWrongClass = errors.New("record has the wrong class")
)

// Runtime classes of the {{.Namespace}} namespace, set by LoadClasses.
var (
{{- range .Classes}}
	{{.Var}} *record.Class
{{- end}}
)

// LoadClasses resolves the runtime class of every generated type from tm.
func LoadClasses(tm *build.TypeMap) error {
	var err error
{{range .Classes}}
	if {{.Var}}, err = tm.GetDtContainerClass("{{.DataType}}", "{{$.Namespace}}", true); err != nil {
		return err
	}
{{end}}
	return nil
}
`))
