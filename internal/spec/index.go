package spec

import "fmt"

type typeEntry struct {
	unnamed Spec
	named   []Spec
}

// index holds the lookup tables of a group or dataset spec.
type index struct {
	attrs      map[string]*AttributeSpec
	children   map[string]Spec
	types      map[string]*typeEntry
	inherited  map[string]bool
	overridden map[string]bool
	resolved   bool
}

// Init validates the group tree, sets parent back-references and builds the lookup tables.
func (g *GroupSpec) Init() error {
	return initSpec(g, nil)
}

// Init validates the dataset, sets parent back-references and builds the lookup tables.
func (d *DatasetSpec) Init() error {
	return initSpec(d, nil)
}

func initSpec(s Spec, parent Spec) error {
	h := s.Head()
	if h.parent == nil && parent != nil {
		h.parent = parent
	}

	if err := validate(s); err != nil {
		return err
	}

	switch v := s.(type) {
	case *DatasetSpec:
		v.idx.reset()

		return v.idx.addAttributes(v, v.Attributes)
	case *GroupSpec:
		v.idx.reset()

		if err := v.idx.addAttributes(v, v.Attributes); err != nil {
			return err
		}

		for _, c := range v.Children() {
			if err := v.idx.addChild(c); err != nil {
				return fmt.Errorf("%s: %w", v.Path(), err)
			}

			if err := initSpec(c, v); err != nil {
				return err
			}
		}
	}

	return nil
}

func validate(s Spec) error {
	h := s.Head()

	switch v := s.(type) {
	case *AttributeSpec:
		if h.Name == "" {
			return fmt.Errorf("%w: attribute under '%s' has no name", ErrInvalidSpec, parentPath(s))
		}

		if h.DataTypeDef != "" || h.DataTypeInc != "" {
			return fmt.Errorf("%w: attribute '%s' cannot define or include a data type", ErrInvalidSpec, h.Path())
		}
	case *LinkSpec:
		if v.TargetType == "" {
			return fmt.Errorf("%w: link '%s' has no target_type", ErrInvalidSpec, h.Path())
		}

		h.DataTypeInc = v.TargetType
	default:
		if h.Name == "" && h.DataType() == "" {
			return fmt.Errorf("%w (under '%s')", ErrNamelessUntyped, parentPath(s))
		}
	}

	if h.Name != "" && h.IsMany() {
		return fmt.Errorf("%w: '%s' has quantity %s", ErrNamedMany, h.Path(), h.Quantity)
	}

	return nil
}

func parentPath(s Spec) string {
	if p := s.Parent(); p != nil {
		return p.Path()
	}

	return "/"
}

func (x *index) reset() {
	x.attrs = make(map[string]*AttributeSpec)
	x.children = make(map[string]Spec)
	x.types = make(map[string]*typeEntry)

	if x.inherited == nil {
		x.inherited = make(map[string]bool)
		x.overridden = make(map[string]bool)
	}
}

func (x *index) addAttributes(owner Spec, attrs []*AttributeSpec) error {
	for _, a := range attrs {
		if a.parent == nil {
			a.parent = owner
		}

		if err := validate(a); err != nil {
			return err
		}

		x.attrs[a.Name] = a
	}

	return nil
}

func (x *index) addChild(c Spec) error {
	h := c.Head()
	if h.Name != "" {
		x.children[h.Name] = c
	}

	dt := c.DataType()
	if dt == "" {
		return nil
	}

	e, ok := x.types[dt]
	if !ok {
		e = &typeEntry{}
		x.types[dt] = e
	}

	if h.Name != "" {
		e.named = append(e.named, c)

		return nil
	}

	if e.unnamed != nil {
		return fmt.Errorf("%w: '%s'", ErrAmbiguousDataType, dt)
	}

	e.unnamed = c

	return nil
}

// identity key of a child within its parent: kind plus name, or data type for nameless children.
func key(s Spec) string {
	h := s.Head()
	if h.Name != "" {
		return s.Kind().String() + ":" + h.Name
	}

	return s.Kind().String() + "@" + s.DataType()
}

// GetAttribute returns the attribute with the given name.
func (g *GroupSpec) GetAttribute(name string) *AttributeSpec { return g.idx.attrs[name] }

// GetAttribute returns the attribute with the given name.
func (d *DatasetSpec) GetAttribute(name string) *AttributeSpec { return d.idx.attrs[name] }

// GetGroup returns the named subgroup spec.
func (g *GroupSpec) GetGroup(name string) *GroupSpec {
	c, _ := g.idx.children[name].(*GroupSpec)
	return c
}

// GetDataset returns the named dataset spec.
func (g *GroupSpec) GetDataset(name string) *DatasetSpec {
	c, _ := g.idx.children[name].(*DatasetSpec)
	return c
}

// GetLink returns the named link spec.
func (g *GroupSpec) GetLink(name string) *LinkSpec {
	c, _ := g.idx.children[name].(*LinkSpec)
	return c
}

// GetDataType returns the single nameless child of type dt if there is one,
// otherwise the named children of that type.
func (g *GroupSpec) GetDataType(dt string) (Spec, []Spec) {
	e, ok := g.idx.types[dt]
	if !ok {
		return nil, nil
	}

	if e.unnamed != nil {
		return e.unnamed, nil
	}

	return nil, e.named
}

// GetTargetType returns the link spec pointing at dt, nameless first.
func (g *GroupSpec) GetTargetType(dt string) *LinkSpec {
	var named *LinkSpec

	for _, l := range g.Links {
		if l.TargetType != dt {
			continue
		}

		if l.Name == "" {
			return l
		}

		if named == nil {
			named = l
		}
	}

	return named
}

// DataTypes lists the data types of direct children in declaration order.
func (g *GroupSpec) DataTypes() []string {
	var out []string

	seen := make(map[string]bool)

	for _, c := range g.Children() {
		dt := c.DataType()
		if dt == "" || seen[dt] {
			continue
		}

		seen[dt] = true
		out = append(out, dt)
	}

	return out
}
