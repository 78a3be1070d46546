package record

import (
	"slices"

	"datatree-mapper/internal/dtype"
)

// Kind tells group-like classes from dataset-like ones.
type Kind int

const (
	GroupLike Kind = iota + 1
	DataLike
)

func (k Kind) String() string {
	switch k {
	case GroupLike:
		return "group"
	case DataLike:
		return "dataset"
	default:
		return "unknown"
	}
}

// Trait is a capability a class provides to its records.
type Trait int

const (
	TraitNamed Trait = iota + 1
	TraitIdentified
	TraitHasChildren
	TraitKeyedCollection
)

func (t Trait) String() string {
	switch t {
	case TraitNamed:
		return "named"
	case TraitIdentified:
		return "identified"
	case TraitHasChildren:
		return "has-children"
	case TraitKeyedCollection:
		return "keyed-collection"
	default:
		return "unknown"
	}
}

// Role tells how a field relates to its value.
type Role int

const (
	RoleValue     Role = iota // plain attribute or dataset value
	RoleChild                 // owned record, reparented on assignment
	RoleLink                  // non-owning record
	RoleReference             // value that points at a record
)

func (r Role) String() string {
	switch r {
	case RoleValue:
		return "value"
	case RoleChild:
		return "child"
	case RoleLink:
		return "link"
	case RoleReference:
		return "reference"
	default:
		return "unknown"
	}
}

// FieldType describes the values a field accepts.
type FieldType struct {
	Dtype    dtype.Type // primitive, compound or reference dtype; zero accepts anything
	Class    *Class     // record class for child and link fields
	DataType string     // record data type when Class is not known yet
	Many     bool       // a list of records
	Shape    [][]int    // allowed shapes, -1 for any extent
}

// Field is one constructor parameter or stored value of a class.
type Field struct {
	Name     string
	Doc      string
	Type     FieldType
	Role     Role
	Required bool
	Default  any
	Internal bool // stored on the record but not a constructor parameter
}

// Collection gives a many-valued child field keyed access by item name.
type Collection struct {
	Field    string
	DataType string
	Add      string
	Get      string
	Create   string
}

// Class describes a generated or registered record type.
type Class struct {
	Name        string
	DataType    string
	Namespace   string
	Doc         string
	Base        *Class
	Kind        Kind
	Traits      []Trait
	Fields      []*Field
	Collections []*Collection
	FixedName   string
	DefaultName string
	Meta        map[string]any
}

// Container is the default base of group-like classes.
var Container = &Class{
	Name:   "Container",
	Doc:    "A named, identified record that may own children.",
	Kind:   GroupLike,
	Traits: []Trait{TraitNamed, TraitIdentified, TraitHasChildren},
}

// Data is the default base of dataset-like classes.
var Data = &Class{
	Name:   "Data",
	Doc:    "A named, identified record wrapping a value.",
	Kind:   DataLike,
	Traits: []Trait{TraitNamed, TraitIdentified},
	Fields: []*Field{{Name: "data", Doc: "the data of this record", Required: true}},
}

// BaseFor returns the default base class of a kind.
func BaseFor(k Kind) *Class {
	if k == DataLike {
		return Data
	}

	return Container
}

// MRO returns the class followed by its bases, nearest first.
func (c *Class) MRO() []*Class {
	var out []*Class
	for cur := c; cur != nil; cur = cur.Base {
		out = append(out, cur)
	}

	return out
}

func (c *Class) IsSubclassOf(o *Class) bool {
	for cur := c; cur != nil; cur = cur.Base {
		if cur == o {
			return true
		}
	}

	return false
}

// HasDataType reports whether the class or a base is bound to dt.
func (c *Class) HasDataType(dt string) bool {
	for cur := c; cur != nil; cur = cur.Base {
		if cur.DataType == dt {
			return true
		}
	}

	return false
}

// HasTrait reports whether the class or a base provides t.
func (c *Class) HasTrait(t Trait) bool {
	for cur := c; cur != nil; cur = cur.Base {
		if slices.Contains(cur.Traits, t) {
			return true
		}
	}

	return false
}

// AllFields returns inherited fields first; a redeclared field keeps the base position.
func (c *Class) AllFields() []*Field {
	mro := c.MRO()

	var out []*Field

	pos := make(map[string]int)

	for i := len(mro) - 1; i >= 0; i-- {
		for _, f := range mro[i].Fields {
			if j, ok := pos[f.Name]; ok {
				out[j] = f
				continue
			}

			pos[f.Name] = len(out)
			out = append(out, f)
		}
	}

	return out
}

// Field looks a field up along the MRO.
func (c *Class) Field(name string) *Field {
	for cur := c; cur != nil; cur = cur.Base {
		for _, f := range cur.Fields {
			if f.Name == name {
				return f
			}
		}
	}

	return nil
}

// Params returns the constructor parameters, excluding name.
func (c *Class) Params() []*Field {
	var out []*Field

	for _, f := range c.AllFields() {
		if !f.Internal {
			out = append(out, f)
		}
	}

	return out
}

// HasNameParam reports whether the constructor takes a name.
func (c *Class) HasNameParam() bool {
	return c.fixedName() == ""
}

func (c *Class) fixedName() string {
	for cur := c; cur != nil; cur = cur.Base {
		if cur.FixedName != "" {
			return cur.FixedName
		}
	}

	return ""
}

func (c *Class) defaultName() string {
	for cur := c; cur != nil; cur = cur.Base {
		if cur.DefaultName != "" {
			return cur.DefaultName
		}
	}

	return ""
}

// Collection returns the keyed collection bound to field, searching bases.
func (c *Class) Collection(field string) *Collection {
	for cur := c; cur != nil; cur = cur.Base {
		for _, col := range cur.Collections {
			if col.Field == field {
				return col
			}
		}
	}

	return nil
}

func (c *Class) String() string {
	if c.Namespace == "" {
		return c.Name
	}

	return c.Namespace + "." + c.Name
}
