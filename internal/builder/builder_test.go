package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datatree-mapper/internal/dtype"
)

func TestGroupBuilder_NameConflict(t *testing.T) {
	root := NewGroup("root")

	_, err := root.AddGroup("x")
	require.NoError(t, err)

	_, err = root.AddDataset("x", []int32{1}, dtype.Primitive("int32"))
	require.ErrorIs(t, err, ErrNameConflict)
	assert.EqualError(t, err, "'x' already exists in root.groups, cannot set in datasets.")

	require.NoError(t, root.SetAttribute("a", "v"))

	_, err = root.AddLink(NewGroup("t"), "a")
	assert.EqualError(t, err, "'a' already exists in root.attributes, cannot set in links.")

	// same kind replaces
	_, err = root.AddGroup("x")
	require.NoError(t, err)
	assert.Len(t, root.Groups(), 1)
}

func TestBuilder_SetOnce(t *testing.T) {
	p1, p2 := NewGroup("p1"), NewGroup("p2")
	require.NoError(t, p1.SetSource("a.json"))

	child := NewGroup("c")
	require.NoError(t, p1.SetGroup(child))
	assert.Equal(t, "a.json", child.Source(), "source propagates from parent")

	require.NoError(t, child.SetParent(p1))
	require.ErrorIs(t, child.SetParent(p2), ErrParentSet)
	require.ErrorIs(t, child.SetSource("b.json"), ErrSourceSet)

	d := NewDataset("d", nil, dtype.Type{})
	require.NoError(t, d.SetData([]float64{1}))
	require.ErrorIs(t, d.SetData([]float64{2}), ErrDataSet)
	require.NoError(t, d.SetDtype(dtype.Primitive("float64")))
	require.ErrorIs(t, d.SetDtype(dtype.Primitive("float32")), ErrDtypeSet)

	_, err := p1.AddGroup("bad/name")
	require.ErrorIs(t, err, ErrInvalidName)
}

func TestGroupBuilder_PathAndGet(t *testing.T) {
	root := NewGroup("root")
	a, err := root.AddGroup("a")
	require.NoError(t, err)

	b, err := a.AddGroup("b")
	require.NoError(t, err)

	d, err := b.AddDataset("d", []int64{1, 2}, dtype.Primitive("int64"))
	require.NoError(t, err)
	require.NoError(t, d.SetAttribute("unit", "m"))
	require.NoError(t, a.SetAttribute("note", "hello"))

	assert.Equal(t, "root/a/b/d", d.Path())

	got, ok := root.Get("a/b/d")
	require.True(t, ok)
	assert.Same(t, d, got)

	got, ok = root.Get("a/b/d/unit")
	require.True(t, ok)
	assert.Equal(t, "m", got)

	got, ok = root.Get("/a/note")
	require.True(t, ok)
	assert.Equal(t, "hello", got)

	_, ok = root.Get("a/missing")
	assert.False(t, ok)
}

func TestGroupBuilder_IsEmpty(t *testing.T) {
	root := NewGroup("root")
	assert.True(t, root.IsEmpty())

	sub, err := root.AddGroup("sub")
	require.NoError(t, err)
	assert.True(t, root.IsEmpty())

	require.NoError(t, sub.SetAttribute("a", int32(1)))
	assert.False(t, root.IsEmpty())
}

func TestLinkAndReferenceDefaults(t *testing.T) {
	target := NewGroup("target")
	l := NewLink(target, "")
	assert.Equal(t, "target", l.Name())
	assert.Same(t, target, l.Target())

	d := NewDataset("refs", NewReference(target), dtype.Type{})
	assert.Equal(t, "object", d.Dtype().Name)
}

func TestEqual(t *testing.T) {
	build := func(order bool) *GroupBuilder {
		root := NewGroup("root")
		x, _ := root.AddGroup("x")
		_ = x.SetAttribute("a", []int32{1, 2})

		if order {
			_, _ = root.AddDataset("d1", []float32{1}, dtype.Primitive("float32"))
			_, _ = root.AddDataset("d2", "text", dtype.Primitive("utf8"))
		} else {
			_, _ = root.AddDataset("d2", "text", dtype.Primitive("utf8"))
			_, _ = root.AddDataset("d1", []float32{1}, dtype.Primitive("float32"))
		}

		_, _ = root.AddLink(x, "lx")
		_ = root.SetAttribute("ref", NewReference(x))

		return root
	}

	a, b := build(true), build(false)
	assert.True(t, Equal(a, b))

	_ = b.Group("x").SetAttribute("extra", "v")
	assert.False(t, Equal(a, b))

	assert.False(t, Equal(a, NewGroup("root")))
	assert.False(t, Equal(NewDataset("d", []int32{1}, dtype.Primitive("int32")), NewDataset("d", []int64{1}, dtype.Primitive("int64"))))
}
