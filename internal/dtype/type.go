package dtype

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Type is a declared dtype: a primitive name, a reference, or a compound of named sub-fields.
type Type struct {
	Name     string
	Ref      *Ref
	Compound []Field
}

// Ref declares a reference to records of TargetType.
type Ref struct {
	TargetType string `yaml:"target_type"`
	RefType    string `yaml:"reftype,omitempty"`
}

// Field is one member of a compound dtype.
type Field struct {
	Name  string `yaml:"name"`
	Doc   string `yaml:"doc,omitempty"`
	Dtype Type   `yaml:"dtype"`
}

// Primitive returns a Type for a primitive dtype name.
func Primitive(name string) Type {
	return Type{Name: name}
}

// Reference returns a reference Type; an empty reftype means object.
func Reference(targetType, refType string) Type {
	if refType == "" {
		refType = Object.String()
	}

	return Type{Ref: &Ref{TargetType: targetType, RefType: refType}}
}

func (t Type) IsZero() bool {
	return t.Name == "" && t.Ref == nil && len(t.Compound) == 0
}

func (t Type) IsRef() bool {
	return t.Ref != nil
}

func (t Type) IsCompound() bool {
	return len(t.Compound) > 0
}

// Kind resolves the primitive or reference kind of t.
func (t Type) Kind() (Kind, error) {
	switch {
	case t.Ref != nil:
		if t.Ref.RefType == Region.String() {
			return Region, nil
		}

		return Object, nil
	case t.IsCompound():
		return 0, fmt.Errorf("%w: compound dtype has no single kind", ErrUnknown)
	default:
		return Parse(t.Name)
	}
}

// String returns the primitive name, the reference type, or "compound".
func (t Type) String() string {
	switch {
	case t.Ref != nil:
		return t.Ref.RefType
	case t.IsCompound():
		return "compound"
	default:
		return t.Name
	}
}

// Equal reports whether two dtypes declare the same type.
func (t Type) Equal(o Type) bool {
	if t.Name != o.Name || (t.Ref == nil) != (o.Ref == nil) {
		return false
	}

	if t.Ref != nil && *t.Ref != *o.Ref {
		return false
	}

	return slices.EqualFunc(t.Compound, o.Compound, func(a, b Field) bool {
		return a.Name == b.Name && a.Dtype.Equal(b.Dtype)
	})
}

// UnmarshalYAML accepts a scalar name, a reference mapping, or a sequence of compound fields.
func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}

		*t = Type{Name: name}

		return nil

	case yaml.MappingNode:
		var ref Ref
		if err := node.Decode(&ref); err != nil {
			return err
		}

		if ref.TargetType == "" {
			return fmt.Errorf("line %d: reference dtype requires target_type", node.Line)
		}

		*t = Reference(ref.TargetType, ref.RefType)

		return nil

	case yaml.SequenceNode:
		var fields []Field
		if err := node.Decode(&fields); err != nil {
			return err
		}

		*t = Type{Compound: fields}

		return nil

	default:
		return fmt.Errorf("line %d: expected dtype name, reference or compound list", node.Line)
	}
}

// MarshalYAML writes the same three shapes UnmarshalYAML reads.
func (t Type) MarshalYAML() (any, error) {
	switch {
	case t.Ref != nil:
		return t.Ref, nil
	case t.IsCompound():
		return t.Compound, nil
	default:
		return t.Name, nil
	}
}
