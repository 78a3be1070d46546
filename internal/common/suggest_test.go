package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"a", "b", 1},
		{"ab", "abc", 1},
		{"abc", "ab", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Hello", "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("FooBucket", "foo_bucket"), 1e-9)
	assert.InDelta(t, 1.0, Similarity("", "__"), 1e-9)
	assert.InDelta(t, 0.8, Similarity("attr3", "attr1"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		candidates []string
		want       string
	}{
		{name: "close", in: "Fo", candidates: []string{"Bar", "Foo"}, want: "Foo"},
		{name: "tie keeps first", in: "attr3", candidates: []string{"attr1", "attr2", "my_data"}, want: "attr1"},
		{name: "separators ignored", in: "my-data", candidates: []string{"attr1", "my_data"}, want: "my_data"},
		{name: "too far", in: "xyz", candidates: []string{"Foo"}, want: ""},
		{name: "exact match skipped", in: "Foo", candidates: []string{"Foo"}, want: ""},
		{name: "no candidates", in: "Foo", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.in, tt.candidates))
		})
	}
}

func TestDidYouMean(t *testing.T) {
	assert.Equal(t, " (did you mean 'Container'?)", DidYouMean("Containr", []string{"Container", "Foo"}))
	assert.Empty(t, DidYouMean("Zzz", []string{"Container"}))
}
