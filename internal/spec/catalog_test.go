package spec_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datatree-mapper/internal/spec"
	"datatree-mapper/internal/spec/spectest"
)

func TestCatalog(t *testing.T) {
	c := spectest.Load(t)

	core, err := c.Namespace("core")
	require.NoError(t, err)

	cat := core.Catalog()
	assert.Equal(t,
		[]string{"Container", "Foo", "SubFoo", "Bucket", "Pair", "Crate", "Settings", "Samples"},
		cat.RegisteredTypes())
	assert.Equal(t, []string{"SubFoo", "Foo", "Container"}, cat.Hierarchy("SubFoo"))
	assert.Equal(t, []string{"Samples"}, cat.Hierarchy("Samples"))
	assert.Nil(t, cat.Hierarchy("Nope"))
	assert.Equal(t, "core.base.yaml", cat.SpecSource("Bucket"))
	assert.Equal(t, []string{"core.base.yaml"}, cat.Sources())

	assert.Equal(t, []string{"Foo", "Bucket", "Pair", "Crate", "Settings"}, cat.Subtypes("Container", false))
	assert.Equal(t, []string{"Foo", "SubFoo", "Bucket", "Pair", "Crate", "Settings"}, cat.Subtypes("Container", true))

	tree := cat.FullHierarchy()
	require.Contains(t, tree, "Container")
	require.Contains(t, tree, "Samples")
	assert.Contains(t, tree["Container"]["Foo"], "SubFoo")

	assert.Equal(t, "1.0.0", core.Version)
	assert.Equal(t, spec.StringList{"Ada", "Grace"}, core.Author)
	assert.Equal(t, spec.StringList{"ada@example.com"}, core.Contact)
}

func TestCatalogRegisterSpec(t *testing.T) {
	cat := spec.NewCatalog()

	g := &spec.GroupSpec{Header: spec.Header{Doc: "a", DataTypeDef: "A"}}
	require.NoError(t, g.Init())
	require.NoError(t, cat.RegisterSpec(g, "a.yaml"))
	require.NoError(t, cat.RegisterSpec(g, "a.yaml"))

	other := &spec.GroupSpec{Header: spec.Header{Doc: "other", DataTypeDef: "A"}}
	require.ErrorIs(t, cat.RegisterSpec(other, "b.yaml"), spec.ErrSpecExists)

	untyped := &spec.GroupSpec{Header: spec.Header{Doc: "x", Name: "x"}}
	require.ErrorIs(t, cat.RegisterSpec(untyped, "b.yaml"), spec.ErrNoDataTypeDef)

	nested := &spec.GroupSpec{
		Header: spec.Header{Doc: "outer", DataTypeDef: "Outer"},
		Groups: []*spec.GroupSpec{{Header: spec.Header{Doc: "inner", DataTypeDef: "Inner"}}},
	}
	require.NoError(t, nested.Init())

	types, err := cat.AutoRegister(nested, "n.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"Outer", "Inner"}, types)
	assert.Equal(t, []string{"Outer", "Inner"}, cat.TypesOf("n.yaml"))
}

func TestNamespaceCatalogIdentity(t *testing.T) {
	c := spectest.Load(t)

	assert.Equal(t, []string{"core", "ext", "lab"}, c.Namespaces())

	fromCore, err := c.Spec("core", "Foo")
	require.NoError(t, err)

	fromExt, err := c.Spec("ext", "Foo")
	require.NoError(t, err)

	fromLab, err := c.Spec("lab", "Foo")
	require.NoError(t, err)

	assert.Same(t, fromCore, fromExt)
	assert.Same(t, fromCore, fromLab)

	assert.Equal(t, "core", c.TypeSource("ext", "Foo"))
	assert.Equal(t, "core", c.TypeSource("lab", "Foo"))
	assert.Equal(t, "ext", c.TypeSource("lab", "Qux"))
	assert.Equal(t, "ext", c.TypeSource("ext", "Qux"))
	assert.Equal(t, "core", c.TypeSource("core", "Foo"))

	assert.Equal(t, map[string][]string{"core": {"Foo", "Container"}}, c.Included("ext"))
	assert.Equal(t, map[string][]string{"ext": {"Qux", "Foo", "Container"}}, c.Included("lab"))

	assert.True(t, c.IsSubDataType("lab", "Qux", "Container"))
	assert.False(t, c.IsSubDataType("ext", "Foo", "Qux"))

	qux, err := c.Spec("ext", "Qux")
	require.NoError(t, err)
	assert.NotNil(t, qux.(*spec.GroupSpec).GetDataset("my_data"))
}

func TestNamespaceCatalogErrors(t *testing.T) {
	c := spectest.Load(t)

	_, err := c.Spec("core", "Nope")
	require.ErrorIs(t, err, spec.ErrNoSpecification)
	assert.EqualError(t, err, "No specification for 'Nope' in namespace 'core'")

	_, err = c.Spec("core", "Fooo")
	require.ErrorIs(t, err, spec.ErrNoSpecification)
	assert.EqualError(t, err, "No specification for 'Fooo' in namespace 'core' (did you mean 'Foo'?)")

	_, err = c.Namespace("nope")
	require.ErrorIs(t, err, spec.ErrNotNamespace)

	ns, err := c.Namespace("core")
	require.NoError(t, err)
	require.ErrorIs(t, c.AddNamespace("core", ns), spec.ErrNamespaceExists)

	other := spec.NewNamespaceCatalog()
	require.NoError(t, other.AddNamespace("core", spec.NewNamespace("core", "2", "different", nil, nil)))
	require.ErrorIs(t, c.Merge(other), spec.ErrNamespaceExists)
}

func TestNamespaceCatalogMerge(t *testing.T) {
	loaded := spectest.Load(t)

	c := spec.NewNamespaceCatalog()
	require.NoError(t, c.Merge(loaded))
	require.NoError(t, c.Merge(loaded))

	assert.Equal(t, loaded.Namespaces(), c.Namespaces())
	assert.Equal(t, "core", c.TypeSource("lab", "Foo"))

	a, err := loaded.Spec("lab", "Qux")
	require.NoError(t, err)

	b, err := c.Spec("lab", "Qux")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestLoadNamespaces(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
		err   error
		msg   string
	}{
		{
			name: "missing namespaces key",
			files: fstest.MapFS{
				"ns.yaml": {Data: []byte("foo: bar\n")},
			},
			err: spec.ErrNoNamespaces,
		},
		{
			name: "missing specs",
			files: fstest.MapFS{
				"ns.yaml": {Data: []byte("namespaces:\n  - name: a\n    doc: a\n    version: '1'\n    schema:\n      - source: a.yaml\n")},
				"a.yaml":  {Data: []byte("other: []\n")},
			},
			err: spec.ErrNoSpecs,
		},
		{
			name: "unknown included namespace",
			files: fstest.MapFS{
				"ns.yaml": {Data: []byte("namespaces:\n  - name: a\n    doc: a\n    version: '1'\n    schema:\n      - namespace: zzz\n")},
			},
			err: spec.ErrLoadNamespace,
			msg: "Could not load namespace 'zzz'",
		},
		{
			name: "unresolved include",
			files: fstest.MapFS{
				"ns.yaml": {Data: []byte("namespaces:\n  - name: a\n    doc: a\n    version: '1'\n    schema:\n      - source: a.yaml\n")},
				"a.yaml":  {Data: []byte("groups:\n  - data_type_def: A\n    data_type_inc: Missing\n    doc: a\n")},
			},
			err: spec.ErrUnresolvedInclude,
			msg: "Cannot resolve include spec 'Missing' for type 'A'",
		},
		{
			name: "inheritance cycle",
			files: fstest.MapFS{
				"ns.yaml": {Data: []byte("namespaces:\n  - name: a\n    doc: a\n    version: '1'\n    schema:\n      - source: a.yaml\n")},
				"a.yaml": {Data: []byte("groups:\n  - data_type_def: A\n    data_type_inc: B\n    doc: a\n" +
					"  - data_type_def: B\n    data_type_inc: A\n    doc: b\n")},
			},
			err: spec.ErrInheritanceCycle,
			msg: "cyclic data type inheritance in namespace 'a': A -> B -> A",
		},
		{
			name: "base declared after its subtype",
			files: fstest.MapFS{
				"ns.yaml": {Data: []byte("namespaces:\n  - name: a\n    doc: a\n    version: '1'\n    schema:\n      - source: a.yaml\n")},
				"a.yaml": {Data: []byte("groups:\n  - data_type_def: C\n    data_type_inc: B\n    doc: c\n" +
					"  - data_type_def: B\n    data_type_inc: A\n    doc: b\n" +
					"    attributes:\n      - name: x\n        dtype: int\n        doc: x\n" +
					"  - data_type_def: A\n    doc: a\n" +
					"    attributes:\n      - name: y\n        dtype: int\n        doc: y\n")},
			},
		},
		{
			name: "empty schema entry",
			files: fstest.MapFS{
				"ns.yaml": {Data: []byte("namespaces:\n  - name: a\n    doc: a\n    version: '1'\n    schema:\n      - title: nothing\n")},
			},
			err: spec.ErrSchemaEntry,
		},
		{
			name: "whitespace in name",
			files: fstest.MapFS{
				"ns.yaml": {Data: []byte("namespaces:\n  - name: a b\n    doc: a\n    schema: []\n")},
			},
			err: spec.ErrInvalidSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := spec.NewNamespaceCatalog()

			_, err := c.LoadNamespaces("ns.yaml", spec.NewYAMLReader(tt.files))
			if tt.err == nil {
				require.NoError(t, err)

				s, err := c.Spec("a", "C")
				require.NoError(t, err)
				assert.NotNil(t, s.(*spec.GroupSpec).GetAttribute("x"))
				assert.NotNil(t, s.(*spec.GroupSpec).GetAttribute("y"))

				return
			}

			require.ErrorIs(t, err, tt.err)

			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestLoadNamespacesUnversionedAndReload(t *testing.T) {
	files := fstest.MapFS{
		"ns.yaml": {Data: []byte("namespaces:\n  - name: a\n    doc: a\n    schema:\n      - source: a.yaml\n")},
		"a.yaml":  {Data: []byte("groups:\n  - data_type_def: A\n    doc: a\n")},
	}

	c := spec.NewNamespaceCatalog()
	r := spec.NewYAMLReader(files)

	deps, err := c.LoadNamespaces("ns.yaml", r)
	require.NoError(t, err)
	assert.Contains(t, deps, "a")

	ns, err := c.Namespace("a")
	require.NoError(t, err)
	assert.Equal(t, spec.Unversioned, ns.Version)

	deps, err = c.LoadNamespaces("ns.yaml", r)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestWriteNamespace(t *testing.T) {
	c := spectest.Load(t)

	core, err := c.Namespace("core")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, spec.WriteNamespace(dir, "core.namespace.yaml", core))

	again := spec.NewNamespaceCatalog()
	_, err = again.LoadNamespaces("core.namespace.yaml", spec.NewYAMLReader(os.DirFS(dir)))
	require.NoError(t, err)

	reloaded, err := again.Namespace("core")
	require.NoError(t, err)
	assert.Equal(t, core.RegisteredTypes(), reloaded.RegisteredTypes())

	s, err := again.Spec("core", "SubFoo")
	require.NoError(t, err)

	sub := s.(*spec.GroupSpec)
	require.Len(t, sub.Attributes, 3)
	assert.True(t, sub.IsInheritedAttribute("attr2"))

	raw, err := os.ReadFile(filepath.Join(dir, "core.base.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "target_type: Foo")
	// SubFoo, Bucket, Pair and Crate; the link writes only its target_type
	assert.Equal(t, 4, strings.Count(string(raw), "data_type_inc: Foo\n"))

	samples, err := again.Spec("core", "Samples")
	require.NoError(t, err)
	assert.Equal(t, spec.Shape{{spec.AnyExtent}}, samples.(*spec.DatasetSpec).Shape)
}
