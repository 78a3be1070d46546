package build

import (
	"errors"
	"fmt"

	"datatree-mapper/internal/builder"
	"datatree-mapper/internal/dtype"
	"datatree-mapper/internal/spec"
)

// Conversion is the outcome of ConvertDtype: the stored value, its dtype and
// an optional precision warning.
type Conversion struct {
	Value   any
	Dtype   dtype.Type
	Warning string
}

// ConvertDtype converts value to the dtype declared by s (an attribute or
// dataset spec), or to override when it is set.
func ConvertDtype(s spec.Spec, value any, override dtype.Type) (Conversion, error) {
	declared, _ := spec.DtypeOf(s)
	if !override.IsZero() {
		declared = override
	}

	if value == nil {
		if declared.IsRef() {
			return Conversion{Dtype: dtype.Primitive(declared.Ref.RefType)}, nil
		}

		return Conversion{Dtype: declared}, nil
	}

	switch {
	case declared.IsCompound():
		return Conversion{Value: value, Dtype: declared}, nil
	case declared.IsRef():
		if !isReferenceValue(value) {
			return Conversion{}, fmt.Errorf("%w: expected a reference, got %T", ErrNotReference, value)
		}

		return Conversion{Value: value, Dtype: declared}, nil
	}

	if isReferenceValue(value) {
		return Conversion{Value: value, Dtype: dtype.Primitive(dtype.Object.String())}, nil
	}

	want := dtype.Kind(0)
	if !declared.IsZero() {
		k, err := declared.Kind()
		if err != nil {
			return Conversion{}, err
		}

		want = k
	}

	given, ok := dtype.Of(value)
	if !ok {
		if dtype.IsSequence(value) && dtype.Len(value) == 0 {
			if want == 0 || want == dtype.Numeric {
				return Conversion{}, ErrEmptyInference
			}

			return Conversion{Value: value, Dtype: declared}, nil
		}

		if want.IsText() {
			return Conversion{}, fmt.Errorf("%w: Expected unicode or ascii string, got %T", dtype.ErrNotString, value)
		}

		return Conversion{}, fmt.Errorf("%w: cannot infer the dtype of %T", ErrUnexpectedType, value)
	}

	switch {
	case want == 0:
		return Conversion{Value: value, Dtype: dtype.Primitive(given.String())}, nil
	case want == dtype.Numeric:
		if !given.IsNumber() {
			return Conversion{}, fmt.Errorf("%w: Cannot convert from %T to 'numeric' specification dtype.", ErrNumericSpec, value)
		}

		return Conversion{Value: value, Dtype: dtype.Primitive(given.String())}, nil
	case want.IsText():
		return convertText(value, want)
	case want.IsNumber() || want == dtype.Bool:
		return convertNumeric(s, value, given, want)
	default:
		return Conversion{Value: value, Dtype: declared}, nil
	}
}

func convertText(value any, want dtype.Kind) (Conversion, error) {
	if dtype.IsSequence(value) && dtype.Len(value) == 0 {
		return Conversion{Value: value, Dtype: dtype.Primitive(want.String())}, nil
	}

	out, err := dtype.Cast(value, want)
	if err != nil {
		return Conversion{}, err
	}

	// isodatetime values are stored as ISO 8601 ascii text
	if want == dtype.Isodatetime {
		want = dtype.ASCII
	}

	return Conversion{Value: out, Dtype: dtype.Primitive(want.String())}, nil
}

func convertNumeric(s spec.Spec, value any, given, want dtype.Kind) (Conversion, error) {
	if !given.IsNumber() && given != dtype.Bool {
		return Conversion{}, fmt.Errorf("%w: Cannot convert from %T to '%s' specification dtype.", ErrNumericSpec, value, want)
	}

	rule, err := dtype.Resolve(given, want)
	if err != nil {
		if errors.Is(err, dtype.ErrIncompatible) {
			return Conversion{}, fmt.Errorf("Spec '%s': %w", s.Path(), err)
		}

		return Conversion{}, err
	}

	out, err := dtype.Cast(value, rule.Result)
	if err != nil {
		return Conversion{}, err
	}

	c := Conversion{Value: out, Dtype: dtype.Primitive(rule.Result.String())}
	if msg := rule.Message(given, want); msg != "" {
		c.Warning = fmt.Sprintf("Spec '%s': %s", s.Path(), msg)
	}

	return c, nil
}

func isReferenceValue(v any) bool {
	switch x := v.(type) {
	case *builder.ReferenceBuilder, *builder.RegionBuilder:
		return true
	case []*builder.ReferenceBuilder, []*builder.RegionBuilder:
		return true
	case []any:
		if len(x) == 0 {
			return false
		}

		for _, e := range x {
			if !isReferenceValue(e) {
				return false
			}
		}

		return true
	default:
		return false
	}
}
