package spec

import (
	"fmt"

	"datatree-mapper/internal/common"
)

// Catalog maps data types to their specs and records which source file defined each.
type Catalog struct {
	specs     *common.OrderedMap[Spec]
	source    map[string]string
	sources   *common.OrderedMap[[]string]
	hierarchy map[string][]string
}

func NewCatalog() *Catalog {
	return &Catalog{
		specs:     common.NewOrderedMap[Spec](),
		source:    make(map[string]string),
		sources:   common.NewOrderedMap[[]string](),
		hierarchy: make(map[string][]string),
	}
}

// RegisterSpec adds a group or dataset spec that defines a data type.
// Registering the same spec twice is a no-op; a different spec under a known type is an error.
func (c *Catalog) RegisterSpec(s Spec, source string) error {
	dt := s.Head().DataTypeDef
	if dt == "" {
		return fmt.Errorf("%w: %s", ErrNoDataTypeDef, s.Path())
	}

	if s.Kind() != KindGroup && s.Kind() != KindDataset {
		return fmt.Errorf("%w: %s '%s' cannot define a data type", ErrInvalidSpec, s.Kind(), dt)
	}

	if existing, ok := c.specs.Get(dt); ok {
		if existing != s {
			return fmt.Errorf("%w: %s", ErrSpecExists, dt)
		}

		return nil
	}

	c.specs.Set(dt, s)
	c.source[dt] = source
	types, _ := c.sources.Get(source)
	c.sources.Set(source, append(types, dt))
	clear(c.hierarchy)

	return nil
}

// AutoRegister registers s and every data type defined inside it, returning the registered types.
func (c *Catalog) AutoRegister(s Spec, source string) ([]string, error) {
	var out []string

	if s.Head().DataTypeDef != "" {
		if err := c.RegisterSpec(s, source); err != nil {
			return nil, err
		}

		out = append(out, s.Head().DataTypeDef)
	}

	if g, ok := s.(*GroupSpec); ok {
		for _, child := range g.Children() {
			if child.Kind() == KindLink {
				continue
			}

			// inherited children belong to the base type and are registered there
			if g.IsInheritedSpec(child) {
				continue
			}

			types, err := c.AutoRegister(child, source)
			if err != nil {
				return nil, err
			}

			out = append(out, types...)
		}
	}

	return out, nil
}

// Spec returns the spec of a registered data type.
func (c *Catalog) Spec(dt string) (Spec, bool) {
	return c.specs.Get(dt)
}

// RegisteredTypes lists data types in registration order.
func (c *Catalog) RegisteredTypes() []string {
	return c.specs.Keys()
}

// SpecSource returns the source file a data type was registered from.
func (c *Catalog) SpecSource(dt string) string {
	return c.source[dt]
}

// Sources lists source files in registration order.
func (c *Catalog) Sources() []string {
	return c.sources.Keys()
}

// TypesOf lists the data types registered from source.
func (c *Catalog) TypesOf(source string) []string {
	types, _ := c.sources.Get(source)
	return types
}

// Hierarchy returns dt followed by its ancestors, nearest first.
// Ancestors missing from the catalog end the chain.
func (c *Catalog) Hierarchy(dt string) []string {
	if h, ok := c.hierarchy[dt]; ok {
		return h
	}

	if !c.specs.Has(dt) {
		return nil
	}

	var out []string

	seen := make(map[string]bool)

	for cur := dt; cur != "" && !seen[cur]; {
		seen[cur] = true
		out = append(out, cur)

		s, ok := c.specs.Get(cur)
		if !ok {
			break
		}

		h := s.Head()
		if h.DataTypeInc == "" || h.DataTypeInc == h.DataTypeDef {
			break
		}

		cur = h.DataTypeInc
	}

	c.hierarchy[dt] = out

	return out
}

// Tree maps a data type to the tree of its subtypes.
type Tree map[string]Tree

// FullHierarchy returns the inheritance forest of every registered type.
func (c *Catalog) FullHierarchy() Tree {
	root := make(Tree)
	nodes := make(map[string]Tree)

	node := func(dt string) Tree {
		if n, ok := nodes[dt]; ok {
			return n
		}

		n := make(Tree)
		nodes[dt] = n

		return n
	}

	for _, dt := range c.specs.Keys() {
		s, _ := c.specs.Get(dt)

		inc := s.Head().DataTypeInc
		if inc == "" || !c.specs.Has(inc) {
			root[dt] = node(dt)
			continue
		}

		node(inc)[dt] = node(dt)
	}

	return root
}

// Subtypes lists registered types that include dt directly, or at any depth when recursive.
func (c *Catalog) Subtypes(dt string, recursive bool) []string {
	var out []string

	for _, name := range c.specs.Keys() {
		s, _ := c.specs.Get(name)
		if s.Head().DataTypeInc != dt || name == dt {
			continue
		}

		out = append(out, name)

		if recursive {
			out = append(out, c.Subtypes(name, true)...)
		}
	}

	return out
}
