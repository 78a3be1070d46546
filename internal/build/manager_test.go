package build_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datatree-mapper/internal/build"
	"datatree-mapper/internal/builder"
	"datatree-mapper/internal/diagnostic"
	"datatree-mapper/internal/record"
	"datatree-mapper/internal/spec/spectest"
)

func newTypeMap(t *testing.T) *build.TypeMap {
	t.Helper()

	tm, err := build.NewTypeMap(spectest.Load(t))
	require.NoError(t, err)

	return tm
}

func class(t *testing.T, tm *build.TypeMap, dt string) *record.Class {
	t.Helper()

	cls, err := tm.GetDtContainerClass(dt, "core", true)
	require.NoError(t, err)

	return cls
}

func newRecord(t *testing.T, cls *record.Class, args record.Args) *record.Record {
	t.Helper()

	r, err := cls.New(args)
	require.NoError(t, err)

	return r
}

func newFoo(t *testing.T, tm *build.TypeMap, name string) *record.Record {
	t.Helper()

	return newRecord(t, class(t, tm, "Foo"), record.Args{
		"name":    name,
		"attr1":   "hello",
		"attr2":   int32(7),
		"my_data": []int32{1, 2, 3},
	})
}

func TestManager_BuildGroup(t *testing.T) {
	tm := newTypeMap(t)
	m := build.NewManager(tm)

	foo := newFoo(t, tm, "foo1")
	bucket := newRecord(t, class(t, tm, "Bucket"), record.Args{
		"name":       "bucket",
		"foos":       []*record.Record{foo},
		"meta__note": "a note",
		"favorite":   foo,
	})

	b, diags, err := m.Build(bucket, build.AsRoot(), build.WithSource("mem"))
	require.NoError(t, err)
	assert.True(t, diags.Empty())

	gb, ok := b.(*builder.GroupBuilder)
	require.True(t, ok)
	assert.Equal(t, "mem", gb.Source())

	dt, _ := gb.Attribute(build.AttrDataType)
	ns, _ := gb.Attribute(build.AttrNamespace)
	id, _ := gb.Attribute(build.AttrObjectID)
	assert.Equal(t, "Bucket", dt)
	assert.Equal(t, "core", ns)
	assert.Equal(t, bucket.ObjectID(), id)

	fb := gb.Group("foo1")
	require.NotNil(t, fb)
	assert.Equal(t, "mem", fb.Source())

	attr1, _ := fb.Attribute("attr1")
	attr2, _ := fb.Attribute("attr2")
	assert.Equal(t, "hello", attr1)
	assert.Equal(t, int32(7), attr2)

	data := fb.Dataset("my_data")
	require.NotNil(t, data)
	assert.Equal(t, []int32{1, 2, 3}, data.Data())
	assert.Equal(t, "int32", data.Dtype().String())

	note, ok := gb.Get("meta/note")
	require.True(t, ok)
	assert.Equal(t, "a note", note)

	link := gb.Link("favorite")
	require.NotNil(t, link)
	assert.Same(t, fb, link.Target())

	assert.Same(t, bucket, m.Record(b))
	assert.Same(t, fb, m.Builder(foo))
}

func TestManager_RoundTrip(t *testing.T) {
	tm := newTypeMap(t)

	foo := newFoo(t, tm, "foo1")
	other := newFoo(t, tm, "foo2")
	bucket := newRecord(t, class(t, tm, "Bucket"), record.Args{
		"name":       "bucket",
		"foos":       []*record.Record{foo, other},
		"meta__note": "a note",
		"favorite":   other,
	})

	b, _, err := build.NewManager(tm).Build(bucket, build.AsRoot())
	require.NoError(t, err)

	m := build.NewManager(tm)
	got, err := m.Construct(b)
	require.NoError(t, err)

	assert.Same(t, bucket.Class(), got.Class())
	assert.Equal(t, "bucket", got.Name())
	assert.Equal(t, bucket.ObjectID(), got.ObjectID())
	assert.Equal(t, "a note", got.Get("meta__note"))
	assert.False(t, got.Modified())

	foos, ok := got.Get("foos").([]*record.Record)
	require.True(t, ok)
	require.Len(t, foos, 2)

	byName := map[string]*record.Record{}
	for _, f := range foos {
		byName[f.Name()] = f
		assert.Same(t, got, f.Parent())
		assert.False(t, f.Modified())
	}

	assert.Equal(t, foo.ObjectID(), byName["foo1"].ObjectID())
	assert.Equal(t, "hello", byName["foo1"].Get("attr1"))
	assert.Equal(t, int32(7), byName["foo1"].Get("attr2"))
	assert.Equal(t, []int32{1, 2, 3}, byName["foo1"].Get("my_data"))
	assert.Same(t, byName["foo2"], got.Get("favorite"))

	// building the constructed record again yields the builder it came from
	again, _, err := m.Build(got, build.AsRoot())
	require.NoError(t, err)
	assert.Same(t, b, again)
}

func TestManager_Identity(t *testing.T) {
	tm := newTypeMap(t)
	m := build.NewManager(tm)

	foo := newFoo(t, tm, "foo1")
	bucket := newRecord(t, class(t, tm, "Bucket"), record.Args{"name": "bucket", "foos": []*record.Record{foo}})

	first, _, err := m.Build(bucket, build.AsRoot())
	require.NoError(t, err)

	second, _, err := m.Build(bucket, build.AsRoot())
	require.NoError(t, err)
	assert.Same(t, first, second)

	// a modified record is rebuilt into the builder it already has
	require.NoError(t, bucket.Set("meta__note", "later"))

	third, _, err := m.Build(bucket, build.AsRoot())
	require.NoError(t, err)
	assert.Same(t, first, third)

	note, ok := third.(*builder.GroupBuilder).Get("meta/note")
	require.True(t, ok)
	assert.Equal(t, "later", note)

	m.PurgeOutdated()
	assert.Nil(t, m.Builder(bucket))
}

func TestManager_Dataset(t *testing.T) {
	tm := newTypeMap(t)
	m := build.NewManager(tm)

	samples := newRecord(t, class(t, tm, "Samples"), record.Args{"name": "volts", "data": []float64{0.5, 1.5}})

	b, diags, err := m.Build(samples, build.AsRoot())
	require.NoError(t, err)
	assert.True(t, diags.Empty())

	db, ok := b.(*builder.DatasetBuilder)
	require.True(t, ok)
	assert.Equal(t, []float64{0.5, 1.5}, db.Data())

	unit, _ := db.Attribute("unit")
	assert.Equal(t, "volt", unit)

	got, err := build.NewManager(tm).Construct(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.5}, got.Data())
	assert.Equal(t, "volt", got.Get("unit"))
}

func TestManager_FixedNameAndDefault(t *testing.T) {
	tm := newTypeMap(t)

	settings := newRecord(t, class(t, tm, "Settings"), record.Args{})

	b, _, err := build.NewManager(tm).Build(settings, build.AsRoot())
	require.NoError(t, err)
	assert.Equal(t, "settings", b.Name())

	mode, _ := b.(*builder.GroupBuilder).Attribute("mode")
	assert.Equal(t, "auto", mode)

	got, err := build.NewManager(tm).Construct(b)
	require.NoError(t, err)
	assert.Equal(t, "settings", got.Name())
}

func TestManager_Diagnostics(t *testing.T) {
	tm := newTypeMap(t)

	t.Run("missing required", func(t *testing.T) {
		crate := newRecord(t, class(t, tm, "Crate"), record.Args{"name": "crate"})

		_, diags, err := build.NewManager(tm).Build(crate, build.AsRoot())
		require.NoError(t, err)

		got := diags.WithCode(diagnostic.CodeMissingRequired)
		require.Len(t, got, 1)
		assert.Equal(t, "Crate 'crate' is missing required value for group 'foos'.", got[0].Message)
	})

	t.Run("dtype conversion", func(t *testing.T) {
		foo := newRecord(t, class(t, tm, "Foo"), record.Args{
			"name":    "foo",
			"attr1":   "x",
			"attr2":   int8(3),
			"my_data": []int32{1},
		})

		b, diags, err := build.NewManager(tm).Build(foo, build.AsRoot())
		require.NoError(t, err)

		got := diags.WithCode(diagnostic.CodeDtypeConversion)
		require.Len(t, got, 1)
		assert.Equal(t,
			"Spec 'Foo/attr2': Value with data type int8 is being converted to data type int32 as specified.",
			got[0].Message)

		attr2, _ := b.(*builder.GroupBuilder).Attribute("attr2")
		assert.Equal(t, int32(3), attr2)
	})

	t.Run("incorrect quantity", func(t *testing.T) {
		tm := newTypeMap(t)
		pair := &record.Class{
			Name: "Pair",
			Base: record.Container,
			Kind: record.GroupLike,
			Fields: []*record.Field{
				{Name: "foo", Role: record.RoleChild, Type: record.FieldType{DataType: "Foo", Many: true}},
			},
		}
		require.NoError(t, tm.RegisterContainerType("core", "Pair", pair))

		r := newRecord(t, pair, record.Args{
			"name": "pair",
			"foo":  []*record.Record{newFoo(t, tm, "a"), newFoo(t, tm, "b")},
		})

		b, diags, err := build.NewManager(tm).Build(r, build.AsRoot())
		require.NoError(t, err)

		got := diags.WithCode(diagnostic.CodeIncorrectQuantity)
		require.Len(t, got, 1)
		assert.Equal(t, "Pair 'pair' has 2 values for group 'foo' but spec allows 1.", got[0].Message)
		assert.Len(t, b.(*builder.GroupBuilder).Groups(), 2)
	})
}

func TestManager_References(t *testing.T) {
	tm := newTypeMap(t)
	pairCls := class(t, tm, "Pair")

	t.Run("resolved after the root build", func(t *testing.T) {
		foo := newFoo(t, tm, "foo")
		pair := newRecord(t, pairCls, record.Args{"name": "pair", "foo": foo, "ref": foo})

		b, _, err := build.NewManager(tm).Build(pair, build.AsRoot())
		require.NoError(t, err)

		gb := b.(*builder.GroupBuilder)
		v, ok := gb.Attribute("ref")
		require.True(t, ok)

		ref, ok := v.(*builder.ReferenceBuilder)
		require.True(t, ok)
		assert.Same(t, gb.Group("foo"), ref.Target)

		got, err := build.NewManager(tm).Construct(b)
		require.NoError(t, err)
		assert.Same(t, got.Get("foo"), got.Get("ref"))
	})

	t.Run("queued without root", func(t *testing.T) {
		foo := newFoo(t, tm, "foo")
		pair := newRecord(t, pairCls, record.Args{"name": "pair", "foo": foo, "ref": foo})

		b, _, err := build.NewManager(tm).Build(pair)
		require.NoError(t, err)

		_, ok := b.(*builder.GroupBuilder).Attribute("ref")
		assert.False(t, ok)
	})

	t.Run("unbuilt target", func(t *testing.T) {
		stray := newFoo(t, tm, "stray")
		pair := newRecord(t, pairCls, record.Args{"name": "pair", "foo": newFoo(t, tm, "foo"), "ref": stray})

		m := build.NewManager(tm)
		_, _, err := m.Build(pair, build.AsRoot())
		require.ErrorIs(t, err, build.ErrUnbuiltReference)
		assert.Equal(t, "pair (pair): Could not find already-built Builder for Foo 'stray' in BuildManager", err.Error())

		assert.Nil(t, m.Builder(pair))
	})
}

func TestManager_FatalErrors(t *testing.T) {
	tm := newTypeMap(t)
	bucketCls := class(t, tm, "Bucket")

	t.Run("orphan link", func(t *testing.T) {
		orphan := newFoo(t, tm, "orphan")
		bucket := newRecord(t, bucketCls, record.Args{"name": "bucket", "favorite": orphan})

		m := build.NewManager(tm)
		_, _, err := m.Build(bucket, build.AsRoot())
		require.ErrorIs(t, err, build.ErrOrphanLink)
		assert.Equal(t,
			"bucket (bucket): Linked Foo 'orphan' has no parent. Remove the link or ensure the linked container is added properly.",
			err.Error())

		assert.Nil(t, m.Builder(bucket))
		assert.Nil(t, m.Builder(orphan))
	})

	t.Run("link to a removed child", func(t *testing.T) {
		removed := newFoo(t, tm, "T")
		holder := newRecord(t, bucketCls, record.Args{"name": "A", "foos": []*record.Record{removed}})
		require.NoError(t, holder.RemoveChild(removed))
		require.Nil(t, removed.Parent())

		bucket := newRecord(t, bucketCls, record.Args{"name": "B", "favorite": removed})

		m := build.NewManager(tm)
		_, _, err := m.Build(bucket, build.AsRoot())
		require.ErrorIs(t, err, build.ErrOrphanLink)
		assert.Equal(t,
			"B (B): Linked Foo 'T' has no parent. Remove the link or ensure the linked container is added properly.",
			err.Error())
		assert.Nil(t, m.Builder(removed))
	})

	t.Run("name conflict", func(t *testing.T) {
		owned := newFoo(t, tm, "favorite")
		elsewhere := newFoo(t, tm, "other")
		newRecord(t, bucketCls, record.Args{"name": "holder", "foos": []*record.Record{elsewhere}})

		bucket := newRecord(t, bucketCls, record.Args{
			"name":     "bucket",
			"foos":     []*record.Record{owned},
			"favorite": elsewhere,
		})

		m := build.NewManager(tm)
		_, _, err := m.Build(bucket, build.AsRoot())
		require.ErrorIs(t, err, builder.ErrNameConflict)
		assert.Nil(t, m.Builder(owned))
	})
}

func TestManager_LinkToRecordOwnedElsewhere(t *testing.T) {
	tm := newTypeMap(t)
	bucketCls := class(t, tm, "Bucket")

	shared := newFoo(t, tm, "shared")
	newRecord(t, bucketCls, record.Args{"name": "holder", "foos": []*record.Record{shared}})

	bucket := newRecord(t, bucketCls, record.Args{"name": "bucket", "favorite": shared})

	m := build.NewManager(tm)
	b, _, err := m.Build(bucket, build.AsRoot())
	require.NoError(t, err)

	link := b.(*builder.GroupBuilder).Link("favorite")
	require.NotNil(t, link)
	assert.Same(t, m.Builder(shared), link.Target())
	assert.Equal(t, "shared", link.Target().Name())
}

func TestManager_Source(t *testing.T) {
	tm := newTypeMap(t)

	t.Run("first build sets the record source", func(t *testing.T) {
		foo := newFoo(t, tm, "foo")

		b, _, err := build.NewManager(tm).Build(foo, build.WithSource("a.json"))
		require.NoError(t, err)
		assert.Equal(t, "a.json", foo.Source())
		assert.Equal(t, "a.json", b.Source())
	})

	t.Run("record source is used without an explicit one", func(t *testing.T) {
		foo, err := class(t, tm, "Foo").New(record.Args{"name": "foo", "attr1": "x"}, record.WithSource("read.json"))
		require.NoError(t, err)

		b, _, err := build.NewManager(tm).Build(foo)
		require.NoError(t, err)
		assert.Equal(t, "read.json", b.Source())
	})

	t.Run("conflicting source", func(t *testing.T) {
		foo := newFoo(t, tm, "foo")
		m := build.NewManager(tm)

		_, _, err := m.Build(foo, build.WithSource("a.json"))
		require.NoError(t, err)

		_, _, err = build.NewManager(tm).Build(foo, build.WithSource("b.json"))
		require.ErrorIs(t, err, build.ErrSourceSet)
		assert.Equal(t, "Cannot change container_source once set: 'a.json' Foo 'foo' cannot be built for 'b.json'", err.Error())

		_, _, err = m.Build(foo, build.WithSource("a.json"))
		require.NoError(t, err)
	})
}
