package validate

import (
	"fmt"
	"reflect"
	"regexp"

	"datatree-mapper/internal/build"
	"datatree-mapper/internal/builder"
	"datatree-mapper/internal/diagnostic"
	"datatree-mapper/internal/dtype"
	"datatree-mapper/internal/spec"
)

// isoDatetime matches ISO 8601 dates with an optional time and zone.
var isoDatetime = regexp.MustCompile(
	`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}(:?\d{2})?)?)?$`)

func (r *run) value(s spec.Spec, want dtype.Type, shape spec.Shape, val any, loc string) {
	r.kind(s, want, val, loc)
	r.shape(s, want, shape, val, loc)
}

func (r *run) kind(s spec.Spec, want dtype.Type, val any, loc string) {
	// nothing to infer from an empty sequence; compound members are checked by the backend
	if want.IsZero() || want.IsCompound() || dtype.Len(val) == 0 {
		return
	}

	if want.IsRef() {
		r.reference(s, want.Ref, val, loc)
		return
	}

	wk, err := want.Kind()
	if err != nil {
		return
	}

	got, ok := received(val, wk)
	if !ok || !allows(wk, got) {
		r.fail(diagnostic.CodeIncorrectDtype,
			fmt.Sprintf("incorrect type - expected '%s', got '%s'", want, describe(val)), s, loc)
	}
}

func (r *run) reference(s spec.Spec, ref *dtype.Ref, val any, loc string) {
	for _, e := range elements(val) {
		target, region, ok := referenceTarget(e)
		if !ok || (ref.RefType == dtype.Region.String() && !region) {
			r.fail(diagnostic.CodeIncorrectDtype,
				fmt.Sprintf("incorrect type - expected '%s reference', got '%s'", ref.RefType, describe(e)), s, loc)

			return
		}

		if !r.v.isA(target, ref.TargetType) {
			r.fail(diagnostic.CodeIncorrectDataType,
				fmt.Sprintf("incorrect data_type - expected '%s', got '%s'", ref.TargetType, build.BuilderDt(target)), s, loc)

			return
		}
	}
}

func (r *run) shape(s spec.Spec, want dtype.Type, shape spec.Shape, val any, loc string) {
	if len(shape) == 0 {
		return
	}

	var got []int

	switch {
	case val == nil:
	case want.IsCompound():
		// rows of a compound dataset are records, so only the outer extent counts
		if n := dtype.Len(val); n >= 0 {
			got = []int{n}
		}
	default:
		got = dtype.Shape(val)
	}

	switch {
	case got == nil:
		r.fail(diagnostic.CodeExpectedArray,
			fmt.Sprintf("incorrect shape - expected an array of shape '%s', got non-array data '%v'", shape, val), s, loc)
	case !shape.Matches(got):
		r.fail(diagnostic.CodeIncorrectShape,
			fmt.Sprintf("incorrect shape - expected '%s', got '%v'", shape, got), s, loc)
	}
}

// received returns the kind of val as the schema sees it. Strings stand in
// for isodatetime and ascii values when their content qualifies.
func received(val any, want dtype.Kind) (dtype.Kind, bool) {
	got, ok := dtype.Of(val)
	if !ok {
		return 0, false
	}

	first := elements(val)[0]
	for dtype.IsSequence(first) && dtype.Len(first) > 0 {
		first = elements(first)[0]
	}

	switch {
	case want == dtype.Isodatetime && got.IsText():
		if isoDatetime.Match(textBytes(first)) {
			return dtype.Isodatetime, true
		}
	case want == dtype.ASCII && got == dtype.Text:
		if isASCII(textBytes(first)) {
			return dtype.ASCII, true
		}
	}

	return got, true
}

// allows reports whether values of kind got may be stored where want is
// declared: the same numeric family at no less precision, any number for
// numeric, and ascii for text.
func allows(want, got dtype.Kind) bool {
	switch {
	case want == got:
		return true
	case want == dtype.Numeric:
		return got.IsNumber()
	case want == dtype.Text:
		return got == dtype.ASCII
	case want.Base() != "" && want.Base() == got.Base():
		return got.Bits() >= want.Bits()
	default:
		return false
	}
}

func referenceTarget(v any) (target builder.Builder, region, ok bool) {
	switch x := v.(type) {
	case *builder.RegionBuilder:
		return x.Target, true, x.Target != nil
	case *builder.ReferenceBuilder:
		return x.Target, false, x.Target != nil
	case builder.Builder:
		return x, false, true
	default:
		return nil, false, false
	}
}

// elements returns the top-level members of a sequence, or v itself.
func elements(v any) []any {
	if !dtype.IsSequence(v) {
		return []any{v}
	}

	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())

	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out
}

func describe(v any) string {
	if k, ok := dtype.Of(v); ok {
		return k.String()
	}

	return fmt.Sprintf("%T", v)
}

func textBytes(v any) []byte {
	switch x := v.(type) {
	case string:
		return []byte(x)
	case []byte:
		return x
	default:
		return nil
	}
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}

	return true
}
