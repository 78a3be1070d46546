package dtype

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOf(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Kind
		ok    bool
	}{
		{"int32", int32(1), Int32, true},
		{"string", "x", Text, true},
		{"bytes", []byte("x"), ASCII, true},
		{"typed slice", []float32{1, 2}, Float32, true},
		{"empty typed slice", []uint16{}, Uint16, true},
		{"any slice", []any{int8(1)}, Int8, true},
		{"empty any slice", []any{}, 0, false},
		{"nested", [][]int64{{1}}, Int64, true},
		{"nil", nil, 0, false},
		{"struct", struct{}{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Of(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShape(t *testing.T) {
	assert.Nil(t, Shape(int32(3)))
	assert.Equal(t, []int{2, 3}, Shape([][]int{{1, 2, 3}, {4, 5, 6}}))
	assert.Equal(t, []int{0}, Shape([]any{}))
	assert.Nil(t, Shape([]byte("abc")))
}

func TestCast(t *testing.T) {
	got, err := Cast(int32(7), Int64)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)

	got, err = Cast([]int32{1, 2}, Float64)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got)

	got, err = Cast([]any{int8(1), int16(2)}, Int32)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, got)

	got, err = Cast([][]int8{{1}, {0}}, Bool)
	require.NoError(t, err)
	assert.Equal(t, [][]bool{{true}, {false}}, got)

	got, err = Cast([]string{}, ASCII)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{}, got)

	got, err = Cast("abc", ASCII)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got, err = Cast([]any{[]byte("a"), "b"}, Text)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	ts := time.Date(2023, 7, 9, 0, 0, 0, 0, time.UTC)
	got, err = Cast(ts, Isodatetime)
	require.NoError(t, err)
	assert.Equal(t, []byte("2023-07-09T00:00:00Z"), got)
}

func TestCast_Errors(t *testing.T) {
	_, err := Cast(5, Text)
	require.ErrorIs(t, err, ErrNotString)
	assert.Contains(t, err.Error(), "Expected unicode or ascii string, got int")

	_, err = Cast("5", Int32)
	require.ErrorIs(t, err, ErrNotNumeric)

	_, err = Cast([]any{nil}, Int32)
	require.Error(t, err)
}

func TestType_YAML(t *testing.T) {
	var doc struct {
		A Type `yaml:"a"`
		B Type `yaml:"b"`
		C Type `yaml:"c"`
	}

	src := `
a: int
b:
  target_type: Foo
  reftype: region
c:
  - name: x
    doc: first
    dtype: float
  - name: y
    doc: second
    dtype:
      target_type: Foo
`
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))

	assert.Equal(t, Primitive("int"), doc.A)
	assert.Equal(t, Reference("Foo", "region"), doc.B)
	require.True(t, doc.C.IsCompound())
	assert.Equal(t, "x", doc.C.Compound[0].Name)
	assert.Equal(t, Reference("Foo", "object"), doc.C.Compound[1].Dtype)

	k, err := doc.B.Kind()
	require.NoError(t, err)
	assert.Equal(t, Region, k)

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)

	var back struct {
		A Type `yaml:"a"`
		B Type `yaml:"b"`
		C Type `yaml:"c"`
	}
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.True(t, doc.C.Equal(back.C))
	assert.True(t, doc.B.Equal(back.B))
}
