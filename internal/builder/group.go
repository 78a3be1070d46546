package builder

import (
	"strings"

	"datatree-mapper/internal/common"
	"datatree-mapper/internal/dtype"
)

const (
	kindGroups     = "groups"
	kindDatasets   = "datasets"
	kindLinks      = "links"
	kindAttributes = "attributes"
)

// GroupBuilder holds subgroups, datasets, links and attributes. A name may be
// bound to only one of those kinds.
type GroupBuilder struct {
	node
	attributes

	groups   *common.OrderedMap[*GroupBuilder]
	datasets *common.OrderedMap[*DatasetBuilder]
	links    *common.OrderedMap[*LinkBuilder]
	kinds    map[string]string
}

func NewGroup(name string) *GroupBuilder {
	return &GroupBuilder{
		node:       node{name: name},
		attributes: newAttributes(),
		groups:     common.NewOrderedMap[*GroupBuilder](),
		datasets:   common.NewOrderedMap[*DatasetBuilder](),
		links:      common.NewOrderedMap[*LinkBuilder](),
		kinds:      make(map[string]string),
	}
}

func (g *GroupBuilder) claim(name, kind string) error {
	if err := checkName(name); err != nil {
		return err
	}

	if existing, ok := g.kinds[name]; ok && existing != kind {
		return &NameConflictError{Name: name, Parent: g.name, Existing: existing, Requested: kind}
	}

	g.kinds[name] = kind

	return nil
}

// SetAttribute stores an attribute value, replacing any previous value under name.
func (g *GroupBuilder) SetAttribute(name string, v any) error {
	if err := g.claim(name, kindAttributes); err != nil {
		return err
	}

	g.attrs.Set(name, v)

	return nil
}

// SetGroup adds sub as a subgroup and adopts it if it has no parent yet.
func (g *GroupBuilder) SetGroup(sub *GroupBuilder) error {
	if err := g.claim(sub.name, kindGroups); err != nil {
		return err
	}

	g.groups.Set(sub.name, sub)

	if sub.parent == nil {
		return sub.SetParent(g)
	}

	return nil
}

// SetDataset adds d and adopts it if it has no parent yet.
func (g *GroupBuilder) SetDataset(d *DatasetBuilder) error {
	if err := g.claim(d.name, kindDatasets); err != nil {
		return err
	}

	g.datasets.Set(d.name, d)

	if d.parent == nil {
		return d.SetParent(g)
	}

	return nil
}

// SetLink adds l and adopts it if it has no parent yet.
func (g *GroupBuilder) SetLink(l *LinkBuilder) error {
	if err := g.claim(l.name, kindLinks); err != nil {
		return err
	}

	g.links.Set(l.name, l)

	if l.parent == nil {
		return l.SetParent(g)
	}

	return nil
}

// AddGroup creates and adds an empty subgroup.
func (g *GroupBuilder) AddGroup(name string) (*GroupBuilder, error) {
	sub := NewGroup(name)
	if err := g.SetGroup(sub); err != nil {
		return nil, err
	}

	return sub, nil
}

// AddDataset creates and adds a dataset.
func (g *GroupBuilder) AddDataset(name string, data any, dt dtype.Type) (*DatasetBuilder, error) {
	d := NewDataset(name, data, dt)
	if err := g.SetDataset(d); err != nil {
		return nil, err
	}

	return d, nil
}

// AddLink creates and adds a link to target.
func (g *GroupBuilder) AddLink(target Builder, name string) (*LinkBuilder, error) {
	l := NewLink(target, name)
	if err := g.SetLink(l); err != nil {
		return nil, err
	}

	return l, nil
}

func (g *GroupBuilder) Groups() []*GroupBuilder { return g.groups.Values() }

func (g *GroupBuilder) Datasets() []*DatasetBuilder { return g.datasets.Values() }

func (g *GroupBuilder) Links() []*LinkBuilder { return g.links.Values() }

func (g *GroupBuilder) Group(name string) *GroupBuilder {
	v, _ := g.groups.Get(name)
	return v
}

func (g *GroupBuilder) Dataset(name string) *DatasetBuilder {
	v, _ := g.datasets.Get(name)
	return v
}

func (g *GroupBuilder) Link(name string) *LinkBuilder {
	v, _ := g.links.Get(name)
	return v
}

// Get resolves a "/"-separated path relative to g. The last element may name an
// attribute, in which case its value is returned.
func (g *GroupBuilder) Get(path string) (any, bool) {
	head, rest, nested := strings.Cut(strings.Trim(path, "/"), "/")

	switch g.kinds[head] {
	case kindGroups:
		sub := g.Group(head)
		if !nested {
			return sub, true
		}

		return sub.Get(rest)
	case kindDatasets:
		d := g.Dataset(head)
		if !nested {
			return d, true
		}

		return d.Attribute(rest)
	case kindLinks:
		if nested {
			return nil, false
		}

		return g.Link(head), true
	case kindAttributes:
		if nested {
			return nil, false
		}

		return g.Attribute(head)
	default:
		return nil, false
	}
}

// IsEmpty reports whether the subtree holds no attributes, datasets or links.
func (g *GroupBuilder) IsEmpty() bool {
	if g.HasAttributes() || g.datasets.Len() > 0 || g.links.Len() > 0 {
		return false
	}

	for _, sub := range g.groups.Values() {
		if !sub.IsEmpty() {
			return false
		}
	}

	return true
}
