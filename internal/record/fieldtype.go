package record

import (
	"fmt"

	"datatree-mapper/internal/dtype"
)

// IsRecord reports whether the field holds records rather than values.
func (t FieldType) IsRecord() bool {
	return t.Class != nil || t.DataType != ""
}

// Check reports whether v is acceptable for a field of this type.
func (t FieldType) Check(v any) error {
	if t.IsRecord() {
		if t.Many {
			items, ok := v.([]*Record)
			if !ok {
				return fmt.Errorf("%w: expected a list of %s, got %T", ErrWrongType, t.want(), v)
			}

			for _, item := range items {
				if err := t.checkRecord(item); err != nil {
					return err
				}
			}

			return nil
		}

		r, ok := v.(*Record)
		if !ok {
			return fmt.Errorf("%w: expected %s, got %T", ErrWrongType, t.want(), v)
		}

		return t.checkRecord(r)
	}

	if err := t.checkValue(v); err != nil {
		return err
	}

	return t.checkShape(v)
}

func (t FieldType) want() string {
	if t.Class != nil {
		return t.Class.Name
	}

	return t.DataType
}

func (t FieldType) checkRecord(r *Record) error {
	if r == nil {
		return fmt.Errorf("%w: expected %s, got nil", ErrWrongType, t.want())
	}

	switch {
	case t.Class != nil && !r.class.IsSubclassOf(t.Class):
		return fmt.Errorf("%w: expected %s, got %s", ErrWrongType, t.Class.Name, r.class.Name)
	case t.Class == nil && t.DataType != "" && !r.class.HasDataType(t.DataType):
		return fmt.Errorf("%w: expected %s, got %s", ErrWrongType, t.DataType, r.class.Name)
	}

	return nil
}

func (t FieldType) checkValue(v any) error {
	if t.Dtype.IsZero() || t.Dtype.IsCompound() {
		return nil
	}

	if t.Dtype.IsRef() {
		return checkRefs(v, t.Dtype.Ref.TargetType)
	}

	want, err := t.Dtype.Kind()
	if err != nil {
		return nil
	}

	got, ok := dtype.Of(v)
	if !ok {
		if dtype.Len(v) == 0 {
			return nil
		}

		return fmt.Errorf("%w: expected %s, got %T", ErrWrongType, want, v)
	}

	switch {
	case want == dtype.Numeric || want.IsNumber() || want == dtype.Bool:
		if got.IsNumber() || got == dtype.Bool {
			return nil
		}
	case want.IsText():
		if got.IsText() {
			return nil
		}
	case want.IsReference():
		return nil
	}

	return fmt.Errorf("%w: expected %s, got %T", ErrWrongType, want, v)
}

func checkRefs(v any, target string) error {
	switch x := v.(type) {
	case *Record:
		if !x.class.HasDataType(target) {
			return fmt.Errorf("%w: expected a reference to %s, got %s", ErrWrongType, target, x.class.Name)
		}

		return nil
	case []*Record:
		for _, r := range x {
			if err := checkRefs(r, target); err != nil {
				return err
			}
		}

		return nil
	default:
		return fmt.Errorf("%w: expected a reference to %s, got %T", ErrWrongType, target, v)
	}
}

func (t FieldType) checkShape(v any) error {
	if len(t.Shape) == 0 {
		return nil
	}

	extents := dtype.Shape(v)

	for _, option := range t.Shape {
		if len(option) != len(extents) {
			continue
		}

		ok := true

		for i, want := range option {
			if want >= 0 && want != extents[i] {
				ok = false
				break
			}
		}

		if ok {
			return nil
		}
	}

	return fmt.Errorf("%w: got %v, allowed %v", ErrWrongShape, extents, t.Shape)
}
