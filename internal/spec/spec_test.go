package spec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datatree-mapper/internal/spec"
	"datatree-mapper/internal/spec/spectest"
)

func parseGroup(t *testing.T, src string) *spec.GroupSpec {
	t.Helper()

	s, err := spec.ParseSource([]byte(src), "test.yaml")
	require.NoError(t, err)
	require.Len(t, s.Groups, 1)

	return s.Groups[0]
}

func TestInitErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{
			name: "nameless untyped child",
			src: `
groups:
  - data_type_def: A
    doc: a
    groups:
      - doc: no name and no type
`,
			err: spec.ErrNamelessUntyped,
		},
		{
			name: "fixed name with many quantity",
			src: `
groups:
  - data_type_def: A
    doc: a
    groups:
      - name: x
        data_type_inc: B
        quantity: '*'
        doc: x
`,
			err: spec.ErrNamedMany,
		},
		{
			name: "two nameless children of one type",
			src: `
groups:
  - data_type_def: A
    doc: a
    groups:
      - data_type_inc: B
        doc: first
      - data_type_inc: B
        doc: second
`,
			err: spec.ErrAmbiguousDataType,
		},
		{
			name: "link without target",
			src: `
groups:
  - data_type_def: A
    doc: a
    links:
      - name: l
        doc: l
`,
			err: spec.ErrInvalidSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseGroup(t, tt.src).Init()
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestAmbiguousDataTypeMessage(t *testing.T) {
	g := parseGroup(t, `
groups:
  - data_type_def: A
    doc: a
    datasets:
      - data_type_inc: B
        doc: first
      - data_type_inc: B
        doc: second
`)

	err := g.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple groups/datasets/links with the same data type without specifying name")
}

func TestGetDataType(t *testing.T) {
	g := parseGroup(t, `
groups:
  - data_type_def: A
    doc: a
    groups:
      - name: first
        data_type_inc: B
        doc: named
      - data_type_inc: B
        doc: nameless
      - name: c1
        data_type_inc: C
        doc: named c
      - name: c2
        data_type_inc: C
        doc: named c
`)
	require.NoError(t, g.Init())

	unnamed, named := g.GetDataType("B")
	require.NotNil(t, unnamed)
	assert.Equal(t, "nameless", unnamed.Head().Doc)
	assert.Nil(t, named)

	unnamed, named = g.GetDataType("C")
	assert.Nil(t, unnamed)
	require.Len(t, named, 2)
	assert.Equal(t, "c1", named[0].Head().Name)

	unnamed, named = g.GetDataType("D")
	assert.Nil(t, unnamed)
	assert.Nil(t, named)

	assert.Equal(t, "first", g.GetGroup("first").Name)
	assert.Nil(t, g.GetDataset("first"))
	assert.Equal(t, "A/first", g.GetGroup("first").Path())
	assert.Equal(t, []string{"B", "C"}, g.DataTypes())
}

func TestResolve(t *testing.T) {
	c := spectest.Load(t)

	s, err := c.Spec("core", "SubFoo")
	require.NoError(t, err)

	sub := s.(*spec.GroupSpec)
	require.True(t, sub.IsResolved())

	names := make([]string, 0, len(sub.Attributes))
	for _, a := range sub.Attributes {
		names = append(names, a.Name)
	}

	assert.Equal(t, []string{"attr1", "extra", "attr2"}, names)
	assert.Equal(t, "An overridden text attribute.", sub.GetAttribute("attr1").Doc)

	assert.True(t, sub.IsInheritedAttribute("attr1"))
	assert.True(t, sub.IsOverriddenAttribute("attr1"))
	assert.True(t, sub.IsInheritedAttribute("attr2"))
	assert.False(t, sub.IsOverriddenAttribute("attr2"))
	assert.False(t, sub.IsInheritedAttribute("extra"))

	myData := sub.GetDataset("my_data")
	require.NotNil(t, myData)
	assert.True(t, sub.IsInheritedSpec(myData))
	assert.True(t, sub.IsInheritedSpec(myData.GetAttribute("attr2")))
	assert.False(t, sub.IsInheritedSpec(sub.GetAttribute("extra")))

	// inherited children still report the type that declared them
	assert.Equal(t, "Foo/my_data", myData.Path())

	foo, err := c.Spec("core", "Foo")
	require.NoError(t, err)
	assert.False(t, foo.(*spec.GroupSpec).IsInheritedSpec(myData))
}

func TestFlatten(t *testing.T) {
	c := spectest.Load(t)

	tests := []struct {
		dt    string
		names []string
	}{
		{"Foo", []string{"attr1", "attr2", "my_data", "my_data__attr2"}},
		{"SubFoo", []string{"attr1", "extra", "attr2", "my_data", "my_data__attr2"}},
		{"Bucket", []string{"foos", "meta", "meta__note", "favorite"}},
		{"Pair", []string{"ref", "foo"}},
		{"Samples", []string{"unit"}},
	}

	for _, tt := range tests {
		t.Run(tt.dt, func(t *testing.T) {
			s, err := c.Spec("core", tt.dt)
			require.NoError(t, err)

			var names []string
			for _, b := range spec.Flatten(s) {
				names = append(names, b.Name)
			}

			assert.Equal(t, tt.names, names)
		})
	}
}

func TestConvertDtName(t *testing.T) {
	c := spectest.Load(t)

	s, err := c.Spec("core", "Bucket")
	require.NoError(t, err)

	bucket := s.(*spec.GroupSpec)
	foos, _ := bucket.GetDataType("Foo")
	require.NotNil(t, foos)
	assert.Equal(t, "foos", spec.ConvertDtName(foos))

	link := bucket.GetLink("favorite")
	require.NotNil(t, link)
	assert.Equal(t, "Foo", link.DataType())
	assert.Equal(t, link, bucket.GetTargetType("Foo"))
	assert.False(t, link.IsRequired())
}

func TestNameConflict(t *testing.T) {
	g := parseGroup(t, `
groups:
  - data_type_def: A
    name: fixed
    default_name: other
    doc: a
`)
	require.NoError(t, g.Init())
	assert.True(t, g.NameConflict())
}
