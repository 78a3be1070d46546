package codegen

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datatree-mapper/internal/build"
	"datatree-mapper/internal/dtype"
	"datatree-mapper/internal/record"
	"datatree-mapper/internal/spec/spectest"
)

func generate(t *testing.T, namespace string) map[string]string {
	t.Helper()

	tm, err := build.NewTypeMap(spectest.Load(t))
	require.NoError(t, err)

	files, err := NewGenerator(DefaultConfig(), tm).Generate(namespace)
	require.NoError(t, err)

	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Filename] = string(f.Content)
	}

	return out
}

func TestGenerator_Generate(t *testing.T) {
	files := generate(t, "core")

	names := make([]string, 0, len(files))
	for name, content := range files {
		names = append(names, name)

		_, err := parser.ParseFile(token.NewFileSet(), name, content, parser.AllErrors)
		require.NoError(t, err, content)
		assert.Contains(t, content, "// Code generated by datatree-mapper. DO NOT EDIT.")
		assert.Contains(t, content, "package types")
	}

	assert.ElementsMatch(t, []string{
		"bucket.go", "container.go", "crate.go", "foo.go", "pair.go",
		"samples.go", "settings.go", "sub_foo.go", "classes.go",
	}, names)

	tests := []struct {
		file    string
		matches []string
	}{
		{
			file: "foo.go",
			matches: []string{
				`type Foo struct \{\n\t\*record\.Record\n\}`,
				`Attr1\s+string`,
				`Attr2\s+\*int32`,
				`MyData\s+\[\]int32`,
				`func NewFoo\(args FooArgs, opts \.\.\.record\.Option\) \(Foo, error\)`,
				`func \(x Foo\) Attr1\(\) string`,
				`func \(x Foo\) Attr2\(\) \(int32, bool\)`,
				`func \(x Foo\) SetAttr2\(v int32\) error`,
				`func \(x Foo\) MyData\(\) \[\]int32`,
				`func \(x Foo\) AsContainer\(\) Container`,
				`if args\.Attr2 != nil \{\n\t\ta\["attr2"\] = \*args\.Attr2`,
				`// A foo with data and two attributes\.`,
			},
		},
		{
			file: "bucket.go",
			matches: []string{
				`Foos\s+\[\]Foo`,
				`func \(x Bucket\) Foos\(\) \[\]Foo`,
				`func \(x Bucket\) Favorite\(\) Foo`,
				`func \(x Bucket\) MetaNote\(\) \(string, bool\)`,
				`func \(x Bucket\) AddFoos\(item Foo\) error`,
				`func \(x Bucket\) GetFoos\(name string\) \(Foo, error\)`,
				`func \(x Bucket\) CreateFoo\(args FooArgs, opts \.\.\.record\.Option\) \(Foo, error\)`,
			},
		},
		{
			file: "pair.go",
			matches: []string{
				`func \(x Pair\) Ref\(\) \*record\.Record`,
				`func \(x Pair\) Foo\(\) Foo`,
			},
		},
		{
			file: "settings.go",
			matches: []string{
				`type SettingsArgs struct \{\n\tMode \*string`,
				`// NewSettings creates a Settings named settings\.`,
			},
		},
		{
			file: "samples.go",
			matches: []string{
				`func \(x Samples\) Data\(\) \[\]float64`,
				`func \(x Samples\) Unit\(\) \(string, bool\)`,
			},
		},
		{
			file: "sub_foo.go",
			matches: []string{
				`func \(x SubFoo\) AsFoo\(\) Foo`,
				`func \(x SubFoo\) Extra\(\) \(float32, bool\)`,
			},
		},
		{
			file: "classes.go",
			matches: []string{
				`FooClass\s+\*record\.Class`,
				`if FooClass, err = tm\.GetDtContainerClass\("Foo", "core", true\); err != nil`,
				`func LoadClasses\(tm \*build\.TypeMap\) error`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			content := files[tt.file]
			for _, pattern := range tt.matches {
				assert.Regexp(t, regexp.MustCompile(pattern), content)
			}
		})
	}

	assert.NotContains(t, files["settings.go"], "\tName string")
	assert.NotContains(t, files["foo.go"], "SetFavorite")
}

func TestGenerator_IncludedTypes(t *testing.T) {
	files := generate(t, "ext")

	assert.Contains(t, files, "qux.go")
	assert.Contains(t, files, "foo.go")
	assert.Regexp(t, `func \(x Qux\) Level\(\) \(uint8, bool\)`, files["qux.go"])
	assert.Contains(t, files["classes.go"], `tm.GetDtContainerClass("Foo", "ext", true)`)
}

func TestGenerator_UnknownNamespace(t *testing.T) {
	tm, err := build.NewTypeMap(spectest.Load(t))
	require.NoError(t, err)

	_, err = NewGenerator(DefaultConfig(), tm).Generate("missing")
	require.Error(t, err)
}

func TestGenerator_RenderUnformatted(t *testing.T) {
	dir := t.TempDir()

	g := NewGenerator(Config{PackageName: "broken", OutputDir: dir}, nil)
	tmpl := template.Must(template.New("broken").Parse("package {{.}}\n\nfunc ("))

	file, err := g.render(tmpl, "broken.go", "broken")
	require.Error(t, err)
	require.NotNil(t, file)
	assert.Equal(t, "package broken\n\nfunc (", string(file.Content))

	sidecar, err := os.ReadFile(filepath.Join(dir, "broken.unformatted.go"))
	require.NoError(t, err)
	assert.Equal(t, file.Content, sidecar)
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, WriteFiles([]GeneratedFile{{Filename: "a.go", Content: []byte("package a\n")}}, dir))

	got, err := os.ReadFile(filepath.Join(dir, "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(got))
}

func TestValueType(t *testing.T) {
	tests := []struct {
		name string
		typ  record.FieldType
		want string
	}{
		{name: "untyped", typ: record.FieldType{}, want: "any"},
		{name: "scalar", typ: record.FieldType{Dtype: dtype.Primitive("int")}, want: "int32"},
		{name: "text", typ: record.FieldType{Dtype: dtype.Primitive("text")}, want: "string"},
		{name: "ascii", typ: record.FieldType{Dtype: dtype.Primitive("ascii")}, want: "[]byte"},
		{name: "vector", typ: record.FieldType{Dtype: dtype.Primitive("float64"), Shape: [][]int{{-1}}}, want: "[]float64"},
		{name: "matrix", typ: record.FieldType{Dtype: dtype.Primitive("uint8"), Shape: [][]int{{-1, 3}}}, want: "[][]uint8"},
		{name: "mixed ranks", typ: record.FieldType{Dtype: dtype.Primitive("int8"), Shape: [][]int{{-1}, {-1, -1}}}, want: "any"},
		{name: "reference", typ: record.FieldType{Dtype: dtype.Reference("Foo", "object")}, want: "*record.Record"},
		{name: "compound", typ: record.FieldType{Dtype: dtype.Type{Compound: []dtype.Field{{Name: "x", Dtype: dtype.Primitive("int8")}}}}, want: "any"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valueType(tt.typ))
		})
	}
}

func TestGoName(t *testing.T) {
	used := map[string]bool{"Name": true}

	tests := []struct {
		field string
		want  string
	}{
		{"meta__note", "MetaNote"},
		{"meta_note", "MetaNote2"},
		{"name", "NameField"},
		{"name", "NameField2"},
		{"parent", "ParentField"},
		{"2d", "X2d"},
		{"data", "Data"},
		{"foo", "Foo"},
		{"Foo", "Foo2"},
		{"foo-", "Foo3"},
	}

	// Cases share used, so order matters.
	for _, tt := range tests {
		assert.Equal(t, tt.want, goName(tt.field, used), tt.field)
	}
}
