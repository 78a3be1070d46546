package dtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		given   Kind
		spec    Kind
		want    Kind
		warning Warning
	}{
		{"same kind", Int64, Int64, Int64, WarnNone},
		{"widen int", Int32, Int64, Int64, WarnAsSpecified},
		{"keep higher int", Int64, Int16, Int64, WarnNone},
		{"keep higher float", Float64, Float32, Float64, WarnNone},
		{"uint8 to bool", Uint8, Bool, Bool, WarnAsSpecified},
		{"int8 to bool", Int8, Bool, Bool, WarnAsSpecified},
		{"bool to int8", Bool, Int8, Int8, WarnAsSpecified},
		{"float32 to int32", Float32, Int32, Int32, WarnAsSpecified},
		{"int64 to uint32", Int64, Uint32, Uint64, WarnMinSpecification},
		{"float32 to uint8", Float32, Uint8, Uint32, WarnMinSpecification},
		{"int64 to float32", Int64, Float32, Float64, WarnMinSpecification},
		{"int16 to float32", Int16, Float32, Float32, WarnAsSpecified},
		{"float64 to int8", Float64, Int8, Int64, WarnMinSpecification},
		{"uint32 to int8", Uint32, Int8, Int32, WarnMinSpecification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := Resolve(tt.given, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rule.Result)
			assert.Equal(t, tt.warning, rule.Warning)
		})
	}
}

func TestResolve_BoolRejectsWideKinds(t *testing.T) {
	for _, given := range []Kind{Int16, Int32, Int64, Uint16, Uint32, Uint64, Float32, Float64} {
		_, err := Resolve(given, Bool)
		require.ErrorIs(t, err, ErrIncompatible, given.String())
		assert.Contains(t, err.Error(), "expected bool, received "+given.String()+" - must supply bool")
	}
}

func TestResolve_Uncovered(t *testing.T) {
	_, err := Resolve(Text, Int32)
	require.ErrorIs(t, err, ErrUnsupportedConversion)
}

func TestRule_Message(t *testing.T) {
	rule, err := Resolve(Int32, Int64)
	require.NoError(t, err)
	assert.Equal(t, "Value with data type int32 is being converted to data type int64 as specified.",
		rule.Message(Int32, Int64))

	rule, err = Resolve(Int64, Uint32)
	require.NoError(t, err)
	assert.Equal(t, "Value with data type int64 is being converted to data type uint64 (min specification: uint32).",
		rule.Message(Int64, Uint32))

	rule, err = Resolve(Int64, Int16)
	require.NoError(t, err)
	assert.Empty(t, rule.Message(Int64, Int16))
}
