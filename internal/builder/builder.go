package builder

import (
	"fmt"
	"strings"

	"datatree-mapper/internal/common"
	"datatree-mapper/internal/dtype"
)

// Builder is a node of the storage-neutral tree.
type Builder interface {
	Name() string
	Parent() *GroupBuilder
	SetParent(p *GroupBuilder) error
	Source() string
	SetSource(source string) error
	Path() string
}

// Attributed is a builder that carries attributes: a group or a dataset.
type Attributed interface {
	Builder
	Attribute(name string) (any, bool)
	AttributeNames() []string
	SetAttribute(name string, v any) error
}

type node struct {
	name   string
	parent *GroupBuilder
	source string
}

func (n *node) Name() string { return n.name }

func (n *node) Parent() *GroupBuilder { return n.parent }

// SetParent binds the node to p once; an unset source is taken from p.
func (n *node) SetParent(p *GroupBuilder) error {
	if n.parent != nil {
		if n.parent == p {
			return nil
		}

		return fmt.Errorf("%w: %s", ErrParentSet, n.name)
	}

	n.parent = p
	if n.source == "" && p != nil {
		n.source = p.source
	}

	return nil
}

func (n *node) Source() string { return n.source }

func (n *node) SetSource(source string) error {
	if n.source != "" && n.source != source {
		return fmt.Errorf("%w: %s", ErrSourceSet, n.name)
	}

	n.source = source

	return nil
}

// Path joins the names from the root down to this node with "/".
func (n *node) Path() string {
	parts := []string{n.name}
	for p := n.parent; p != nil; p = p.parent {
		parts = append(parts, p.name)
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return strings.Join(parts, "/")
}

func checkName(name string) error {
	if strings.Contains(name, "/") {
		return fmt.Errorf("%w: '%s'", ErrInvalidName, name)
	}

	return nil
}

// attributes is the ordered attribute map shared by groups and datasets.
type attributes struct {
	attrs *common.OrderedMap[any]
}

func newAttributes() attributes {
	return attributes{attrs: common.NewOrderedMap[any]()}
}

func (a *attributes) Attribute(name string) (any, bool) {
	return a.attrs.Get(name)
}

// AttributeNames lists attribute names in the order they were first set.
func (a *attributes) AttributeNames() []string {
	return a.attrs.Keys()
}

func (a *attributes) HasAttributes() bool {
	return a.attrs.Len() > 0
}

// DatasetBuilder holds an n-dimensional value, its dtype and attributes.
type DatasetBuilder struct {
	node
	attributes

	data     any
	dataSet  bool
	dtype    dtype.Type
	dtypeSet bool
}

// NewDataset returns a dataset builder. Data that is a reference defaults the dtype to object.
func NewDataset(name string, data any, dt dtype.Type) *DatasetBuilder {
	d := &DatasetBuilder{node: node{name: name}, attributes: newAttributes()}

	if data != nil {
		d.data, d.dataSet = data, true
	}

	if dt.IsZero() && isReference(data) {
		dt = dtype.Primitive(dtype.Object.String())
	}

	if !dt.IsZero() {
		d.dtype, d.dtypeSet = dt, true
	}

	return d
}

func isReference(v any) bool {
	switch v.(type) {
	case *ReferenceBuilder, *RegionBuilder, Builder:
		return true
	default:
		return false
	}
}

func (d *DatasetBuilder) Data() any { return d.data }

func (d *DatasetBuilder) SetData(v any) error {
	if d.dataSet {
		return fmt.Errorf("%w: %s", ErrDataSet, d.name)
	}

	d.data, d.dataSet = v, true

	return nil
}

func (d *DatasetBuilder) Dtype() dtype.Type { return d.dtype }

func (d *DatasetBuilder) SetDtype(dt dtype.Type) error {
	if d.dtypeSet {
		return fmt.Errorf("%w: %s", ErrDtypeSet, d.name)
	}

	d.dtype, d.dtypeSet = dt, true

	return nil
}

func (d *DatasetBuilder) SetAttribute(name string, v any) error {
	if err := checkName(name); err != nil {
		return err
	}

	d.attrs.Set(name, v)

	return nil
}

// LinkBuilder is a named, non-owning pointer to a group or dataset builder.
type LinkBuilder struct {
	node

	target Builder
}

// NewLink returns a link to target; an empty name takes the target's name.
func NewLink(target Builder, name string) *LinkBuilder {
	if name == "" {
		name = target.Name()
	}

	return &LinkBuilder{node: node{name: name}, target: target}
}

func (l *LinkBuilder) Target() Builder { return l.target }

// ReferenceBuilder is an attribute- or dataset-level pointer to another builder.
type ReferenceBuilder struct {
	Target Builder
}

func NewReference(target Builder) *ReferenceBuilder {
	return &ReferenceBuilder{Target: target}
}

// RegionBuilder references a selection within a dataset builder.
type RegionBuilder struct {
	ReferenceBuilder

	Region any
}

func NewRegion(target *DatasetBuilder, region any) *RegionBuilder {
	return &RegionBuilder{ReferenceBuilder: ReferenceBuilder{Target: target}, Region: region}
}
