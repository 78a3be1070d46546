package classgen

import (
	"datatree-mapper/internal/record"
	"datatree-mapper/internal/spec"
)

// DefaultGenerator turns any field into one constructor parameter.
type DefaultGenerator struct{}

func (DefaultGenerator) Name() string { return "default" }

func (DefaultGenerator) Applies(spec.Binding, *Draft) bool { return true }

func (DefaultGenerator) ProcessField(b spec.Binding, d *Draft, resolve Resolver) error {
	f, err := NewField(b, d.Spec, resolve)
	if err != nil {
		return err
	}

	d.Class.Fields = append(d.Class.Fields, f)

	return nil
}

// PostProcess narrows the data parameter of dataset classes to the declared dtype and shape.
func (DefaultGenerator) PostProcess(d *Draft) error {
	ds, ok := d.Spec.(*spec.DatasetSpec)
	if !ok || (ds.Dtype.IsZero() && len(ds.Shape) == 0) {
		return nil
	}

	data := d.Class.Base.Field("data")
	if data == nil {
		return nil
	}

	d.Class.Fields = append(d.Class.Fields, &record.Field{
		Name:     data.Name,
		Doc:      data.Doc,
		Type:     record.FieldType{Dtype: ds.Dtype, Shape: ds.Shape},
		Required: data.Required,
	})

	return nil
}

// NewField derives the constructor parameter for the spec bound to b inside the type spec owner.
func NewField(b spec.Binding, owner spec.Spec, resolve Resolver) (*record.Field, error) {
	s := b.Spec
	f := &record.Field{
		Name:     b.Name,
		Doc:      s.Head().Doc,
		Required: Required(owner, s),
	}

	switch v := s.(type) {
	case *spec.AttributeSpec:
		f.Type = record.FieldType{Dtype: v.Dtype, Shape: v.Shape}
		if v.Dtype.IsRef() {
			f.Role = record.RoleReference
		}

		fixedOrDefault(f, v.Value, v.DefaultValue)
	case *spec.DatasetSpec:
		if spec.IsTyped(v) {
			return recordField(f, v, record.RoleChild, resolve)
		}

		f.Type = record.FieldType{Dtype: v.Dtype, Shape: v.Shape}
		if v.Dtype.IsRef() {
			f.Role = record.RoleReference
		}

		fixedOrDefault(f, v.Value, v.DefaultValue)
	case *spec.GroupSpec:
		return recordField(f, v, record.RoleChild, resolve)
	case *spec.LinkSpec:
		return recordField(f, v, record.RoleLink, resolve)
	}

	return f, nil
}

func recordField(f *record.Field, s spec.Spec, role record.Role, resolve Resolver) (*record.Field, error) {
	f.Role = role
	f.Type = record.FieldType{DataType: s.DataType(), Many: s.IsMany()}

	if resolve != nil {
		cls, err := resolve(s.DataType())
		if err != nil {
			return nil, err
		}

		f.Type.Class = cls
	}

	return f, nil
}

// A fixed value is written by the mapper, so it is not a parameter; a default makes the field optional.
func fixedOrDefault(f *record.Field, value, defaultValue any) {
	switch {
	case value != nil:
		f.Internal = true
		f.Required = false
		f.Default = value
	case defaultValue != nil:
		f.Required = false
		f.Default = defaultValue
	}
}
