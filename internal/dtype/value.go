package dtype

import (
	"errors"
	"fmt"
	"reflect"
	"time"
)

var (
	// ErrNotString is returned when a text kind receives a non-string value.
	ErrNotString = errors.New("not a string")
	// ErrNotNumeric is returned when a numeric kind receives a non-numeric value.
	ErrNotNumeric = errors.New("not numeric")
)

// Of infers the kind of a scalar value or of the elements of a (nested) slice.
func Of(v any) (Kind, bool) {
	if v == nil {
		return 0, false
	}

	rv := reflect.ValueOf(v)
	if k := FromReflectType(rv.Type()); k != 0 {
		return k, true
	}

	if !isSequence(rv.Type()) {
		return 0, false
	}

	if rv.Len() > 0 {
		return Of(rv.Index(0).Interface())
	}

	k := elemKind(rv.Type())

	return k, k != 0
}

// IsSequence reports whether v is a slice or array other than a byte string.
func IsSequence(v any) bool {
	if v == nil {
		return false
	}

	return isSequence(reflect.TypeOf(v))
}

// Len returns the length of a sequence, or -1 for anything else.
func Len(v any) int {
	if !IsSequence(v) {
		return -1
	}

	return reflect.ValueOf(v).Len()
}

// Shape returns the extent of every dimension of a (nested) sequence; scalars have no dimensions.
func Shape(v any) []int {
	var shape []int

	for IsSequence(v) {
		rv := reflect.ValueOf(v)

		shape = append(shape, rv.Len())
		if rv.Len() == 0 {
			break
		}

		v = rv.Index(0).Interface()
	}

	return shape
}

func isSequence(t reflect.Type) bool {
	if t == bytesType {
		return false
	}

	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

func elemKind(t reflect.Type) Kind {
	for isSequence(t) {
		t = t.Elem()
	}

	if t.Kind() == reflect.Interface {
		return 0
	}

	return FromReflectType(t)
}

// Cast converts a scalar or a (nested) slice to the Go representation of kind k.
// A []any whose converted elements share one type becomes a typed slice.
func Cast(v any, k Kind) (any, error) {
	if v == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(v)

	var (
		out reflect.Value
		err error
	)

	if isSequence(rv.Type()) {
		out, err = castSequence(rv, k)
	} else {
		out, err = castScalar(rv, k)
	}

	if err != nil {
		return nil, err
	}

	return out.Interface(), nil
}

func castSequence(rv reflect.Value, k Kind) (reflect.Value, error) {
	n := rv.Len()
	elems := make([]reflect.Value, n)

	for i := range n {
		e := rv.Index(i)
		if e.Kind() == reflect.Interface {
			if e.IsNil() {
				return reflect.Value{}, fmt.Errorf("%w: nil element at index %d", ErrNotNumeric, i)
			}

			e = e.Elem()
		}

		var err error
		if isSequence(e.Type()) {
			elems[i], err = castSequence(e, k)
		} else {
			elems[i], err = castScalar(e, k)
		}

		if err != nil {
			return reflect.Value{}, err
		}
	}

	var sliceType reflect.Type

	switch {
	case n == 0:
		sliceType = reflect.SliceOf(targetType(rv.Type().Elem(), k))
	case sameType(elems):
		sliceType = reflect.SliceOf(elems[0].Type())
	default:
		sliceType = reflect.TypeOf([]any(nil))
	}

	out := reflect.MakeSlice(sliceType, n, n)
	for i, e := range elems {
		out.Index(i).Set(e)
	}

	return out, nil
}

func sameType(elems []reflect.Value) bool {
	for _, e := range elems[1:] {
		if e.Type() != elems[0].Type() {
			return false
		}
	}

	return true
}

func targetType(t reflect.Type, k Kind) reflect.Type {
	switch {
	case isSequence(t):
		return reflect.SliceOf(targetType(t.Elem(), k))
	case t.Kind() == reflect.Interface:
		return t
	default:
		return k.GoType()
	}
}

func castScalar(rv reflect.Value, k Kind) (reflect.Value, error) {
	src := FromReflectType(rv.Type())

	switch {
	case k.IsNumber():
		switch {
		case src.IsNumber():
			return rv.Convert(k.GoType()), nil
		case src == Bool:
			n := int64(0)
			if rv.Bool() {
				n = 1
			}

			return reflect.ValueOf(n).Convert(k.GoType()), nil
		}
	case k == Bool:
		switch {
		case src == Bool:
			return reflect.ValueOf(rv.Bool()), nil
		case src.IsSigned():
			return reflect.ValueOf(rv.Int() != 0), nil
		case src.IsUnsigned():
			return reflect.ValueOf(rv.Uint() != 0), nil
		case src.IsFloat():
			return reflect.ValueOf(rv.Float() != 0), nil
		}
	case k == Text:
		switch src {
		case Text:
			return reflect.ValueOf(rv.String()), nil
		case ASCII:
			return reflect.ValueOf(string(rv.Bytes())), nil
		case Isodatetime:
			return reflect.ValueOf(rv.Interface().(time.Time).Format(time.RFC3339Nano)), nil
		}

		return reflect.Value{}, fmt.Errorf("%w: Expected unicode or ascii string, got %s", ErrNotString, rv.Type())
	case k == ASCII || k == Isodatetime:
		switch src {
		case Text:
			return reflect.ValueOf([]byte(rv.String())), nil
		case ASCII:
			return reflect.ValueOf(append([]byte(nil), rv.Bytes()...)), nil
		case Isodatetime:
			return reflect.ValueOf([]byte(rv.Interface().(time.Time).Format(time.RFC3339Nano))), nil
		}

		return reflect.Value{}, fmt.Errorf("%w: Expected unicode or ascii string, got %s", ErrNotString, rv.Type())
	}

	return reflect.Value{}, fmt.Errorf("%w: cannot cast %s to %s", ErrNotNumeric, rv.Type(), k)
}
