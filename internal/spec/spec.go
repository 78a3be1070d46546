package spec

import (
	"strings"

	"datatree-mapper/internal/dtype"
)

// Kind identifies the variant of a Spec.
type Kind int

const (
	KindAttribute Kind = iota + 1
	KindDataset
	KindGroup
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindAttribute:
		return "attribute"
	case KindDataset:
		return "dataset"
	case KindGroup:
		return "group"
	case KindLink:
		return "link"
	default:
		return "unknown"
	}
}

// Spec is one schema element: an attribute, dataset, group or link.
type Spec interface {
	Kind() Kind
	Head() *Header
	DataType() string
	Parent() Spec
	Path() string
	IsMany() bool
	IsRequired() bool
}

// Header holds the fields every spec variant shares.
type Header struct {
	Doc         string   `yaml:"doc"`
	Name        string   `yaml:"name,omitempty"`
	DefaultName string   `yaml:"default_name,omitempty"`
	DataTypeDef string   `yaml:"data_type_def,omitempty"`
	DataTypeInc string   `yaml:"data_type_inc,omitempty"`
	Quantity    Quantity `yaml:"quantity,omitempty"`

	parent Spec
}

func (h *Header) Head() *Header { return h }

// DataType returns data_type_def if set, data_type_inc otherwise.
func (h *Header) DataType() string {
	if h.DataTypeDef != "" {
		return h.DataTypeDef
	}

	return h.DataTypeInc
}

func (h *Header) Parent() Spec { return h.parent }

func (h *Header) IsMany() bool { return h.Quantity.IsMany() }

func (h *Header) IsRequired() bool { return h.Quantity.IsRequired() }

// Path joins the names (or data types, for nameless specs) from the root spec down.
func (h *Header) Path() string {
	parts := []string{h.label()}
	for p := h.parent; p != nil; p = p.Parent() {
		parts = append(parts, p.Head().label())
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return strings.Join(parts, "/")
}

// NameConflict reports a fixed name declared together with a default name.
func (h *Header) NameConflict() bool {
	return h.Name != "" && h.DefaultName != ""
}

func (h *Header) label() string {
	if h.Name != "" {
		return h.Name
	}

	return h.DataType()
}

// AttributeSpec describes a named scalar or array value attached to a group or dataset.
type AttributeSpec struct {
	Header `yaml:",inline"`

	Dtype        dtype.Type `yaml:"dtype,omitempty"`
	Shape        Shape      `yaml:"shape,omitempty"`
	Dims         Dims       `yaml:"dims,omitempty"`
	Required     *bool      `yaml:"required,omitempty"`
	Value        any        `yaml:"value,omitempty"`
	DefaultValue any        `yaml:"default_value,omitempty"`
}

func (a *AttributeSpec) Kind() Kind { return KindAttribute }

func (a *AttributeSpec) IsMany() bool { return false }

func (a *AttributeSpec) IsRequired() bool {
	return a.Required == nil || *a.Required
}

// DatasetSpec describes an n-dimensional value with attributes.
type DatasetSpec struct {
	Header `yaml:",inline"`

	Dtype        dtype.Type       `yaml:"dtype,omitempty"`
	Shape        Shape            `yaml:"shape,omitempty"`
	Dims         Dims             `yaml:"dims,omitempty"`
	Value        any              `yaml:"value,omitempty"`
	DefaultValue any              `yaml:"default_value,omitempty"`
	Linkable     *bool            `yaml:"linkable,omitempty"`
	Attributes   []*AttributeSpec `yaml:"attributes,omitempty"`

	idx index
}

func (d *DatasetSpec) Kind() Kind { return KindDataset }

// GroupSpec describes a container of attributes, datasets, groups and links.
type GroupSpec struct {
	Header `yaml:",inline"`

	Attributes []*AttributeSpec `yaml:"attributes,omitempty"`
	Datasets   []*DatasetSpec   `yaml:"datasets,omitempty"`
	Groups     []*GroupSpec     `yaml:"groups,omitempty"`
	Links      []*LinkSpec      `yaml:"links,omitempty"`
	Linkable   *bool            `yaml:"linkable,omitempty"`

	idx index
}

func (g *GroupSpec) Kind() Kind { return KindGroup }

// Children returns datasets, groups and links in declaration order, grouped by kind.
func (g *GroupSpec) Children() []Spec {
	out := make([]Spec, 0, len(g.Datasets)+len(g.Groups)+len(g.Links))
	for _, d := range g.Datasets {
		out = append(out, d)
	}

	for _, c := range g.Groups {
		out = append(out, c)
	}

	for _, l := range g.Links {
		out = append(out, l)
	}

	return out
}

// LinkSpec describes a non-owning pointer to a group or dataset of TargetType.
type LinkSpec struct {
	Header `yaml:",inline"`

	TargetType string `yaml:"target_type"`
}

func (l *LinkSpec) Kind() Kind { return KindLink }

// DataType of a link is its target type.
func (l *LinkSpec) DataType() string { return l.TargetType }

type linkYAML struct {
	Doc        string   `yaml:"doc"`
	Name       string   `yaml:"name,omitempty"`
	TargetType string   `yaml:"target_type"`
	Quantity   Quantity `yaml:"quantity,omitempty"`
}

// MarshalYAML writes only the keys a link accepts.
func (l *LinkSpec) MarshalYAML() (any, error) {
	return linkYAML{Doc: l.Doc, Name: l.Name, TargetType: l.TargetType, Quantity: l.Quantity}, nil
}

// Attributes returns the attribute list of a group or dataset spec, nil otherwise.
func Attributes(s Spec) []*AttributeSpec {
	switch v := s.(type) {
	case *GroupSpec:
		return v.Attributes
	case *DatasetSpec:
		return v.Attributes
	default:
		return nil
	}
}

// IsTyped reports whether s defines or includes a data type.
func IsTyped(s Spec) bool {
	return s.DataType() != ""
}

// DtypeOf returns the dtype of an attribute or dataset spec.
func DtypeOf(s Spec) (dtype.Type, bool) {
	switch v := s.(type) {
	case *AttributeSpec:
		return v.Dtype, true
	case *DatasetSpec:
		return v.Dtype, true
	default:
		return dtype.Type{}, false
	}
}

// ShapeOf returns the shape constraint of an attribute or dataset spec.
func ShapeOf(s Spec) Shape {
	switch v := s.(type) {
	case *AttributeSpec:
		return v.Shape
	case *DatasetSpec:
		return v.Shape
	default:
		return nil
	}
}

// Values returns the fixed value and default value of an attribute or dataset spec.
func Values(s Spec) (value, defaultValue any) {
	switch v := s.(type) {
	case *AttributeSpec:
		return v.Value, v.DefaultValue
	case *DatasetSpec:
		return v.Value, v.DefaultValue
	default:
		return nil, nil
	}
}
