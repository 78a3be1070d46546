package spec

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// LoadNamespaces reads the namespace file at nsPath and every schema it names,
// registers the namespaces and resolves inheritance. It returns, per loaded
// namespace, the types included from each other namespace.
func (c *NamespaceCatalog) LoadNamespaces(nsPath string, r Reader) (map[string]map[string][]string, error) {
	namespaces, err := r.ReadNamespaces(nsPath)
	if err != nil {
		return nil, err
	}

	deps := make(map[string]map[string][]string)
	dir := path.Dir(nsPath)

	for _, ns := range namespaces {
		if strings.ContainsAny(ns.Name, " \t\n") {
			return nil, fmt.Errorf("%w: namespace name '%s' contains whitespace", ErrInvalidSpec, ns.Name)
		}

		if c.namespaces.Has(ns.Name) {
			c.logger.Warn("ignoring namespace because it is already loaded", "namespace", ns.Name)
			continue
		}

		if ns.Version == "" {
			c.logger.Warn("loaded namespace is unversioned", "namespace", ns.Name)
			ns.Version = Unversioned
		}

		included, err := c.loadNamespace(ns, dir, r)
		if err != nil {
			return nil, fmt.Errorf("namespace '%s': %w", ns.Name, err)
		}

		deps[ns.Name] = included
	}

	return deps, nil
}

func (c *NamespaceCatalog) loadNamespace(ns *Namespace, dir string, r Reader) (map[string][]string, error) {
	cat := NewCatalog()
	origins := make(map[string]string)
	included := make(map[string][]string)

	var own []string

	for _, entry := range ns.Schema {
		switch {
		case entry.Source != "":
			types, err := registerSource(cat, r, path.Join(dir, entry.Source), entry.Source)
			if err != nil {
				return nil, err
			}

			own = append(own, types...)
		case entry.Namespace != "":
			types, err := c.includeTypes(cat, origins, entry)
			if err != nil {
				return nil, err
			}

			included[entry.Namespace] = types
		default:
			return nil, ErrSchemaEntry
		}
	}

	if err := resolveTypes(cat, own, ns.Name); err != nil {
		return nil, err
	}

	ns.catalog = cat
	c.namespaces.Set(ns.Name, ns)
	c.origins[ns.Name] = origins
	c.included[ns.Name] = included

	return included, nil
}

func registerSource(cat *Catalog, r Reader, fullPath, source string) ([]string, error) {
	src, err := r.ReadSource(fullPath)
	if err != nil {
		return nil, err
	}

	var types []string

	register := func(s Spec) error {
		dts, err := cat.AutoRegister(s, source)
		if err != nil {
			return err
		}

		types = append(types, dts...)

		return nil
	}

	for _, g := range src.Groups {
		if err := g.Init(); err != nil {
			return nil, err
		}

		if err := register(g); err != nil {
			return nil, err
		}
	}

	for _, d := range src.Datasets {
		if err := d.Init(); err != nil {
			return nil, err
		}

		if err := register(d); err != nil {
			return nil, err
		}
	}

	return types, nil
}

// includeTypes copies the requested types of another namespace, their ancestors
// and the types they reference into cat, sharing the spec objects.
func (c *NamespaceCatalog) includeTypes(cat *Catalog, origins map[string]string, entry SchemaEntry) ([]string, error) {
	other, ok := c.namespaces.Get(entry.Namespace)
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrLoadNamespace, entry.Namespace)
	}

	requested := entry.DataTypes
	if len(requested) == 0 {
		requested = other.RegisteredTypes()
	}

	types, err := dependentTypes(other, requested)
	if err != nil {
		return nil, err
	}

	for _, dt := range types {
		s, _ := other.Catalog().Spec(dt)
		if err := cat.RegisterSpec(s, other.Catalog().SpecSource(dt)); err != nil {
			return nil, err
		}

		origins[dt] = c.TypeSource(other.Name, dt)
	}

	return types, nil
}

func dependentTypes(ns *Namespace, requested []string) ([]string, error) {
	var out []string

	seen := make(map[string]bool)
	queue := append([]string(nil), requested...)

	for len(queue) > 0 {
		dt := queue[0]
		queue = queue[1:]

		if dt == "" || seen[dt] {
			continue
		}

		seen[dt] = true

		s, err := ns.Spec(dt)
		if err != nil {
			return nil, err
		}

		out = append(out, dt)
		queue = append(queue, s.Head().DataTypeInc)
		queue = append(queue, referencedTypes(s)...)
	}

	return out, nil
}

// referencedTypes collects the data types used inside s: included children,
// link targets and reference dtypes.
func referencedTypes(s Spec) []string {
	var out []string

	refOf := func(x Spec) {
		if t, ok := DtypeOf(x); ok {
			if t.IsRef() {
				out = append(out, t.Ref.TargetType)
			}

			for _, f := range t.Compound {
				if f.Dtype.IsRef() {
					out = append(out, f.Dtype.Ref.TargetType)
				}
			}
		}
	}

	var walk func(x Spec, top bool)
	walk = func(x Spec, top bool) {
		if !top {
			if dt := x.DataType(); dt != "" {
				out = append(out, dt)
			}
		}

		refOf(x)

		for _, a := range Attributes(x) {
			refOf(a)
		}

		if g, ok := x.(*GroupSpec); ok {
			for _, child := range g.Children() {
				walk(child, false)
			}
		}
	}

	walk(s, true)

	return out
}

// resolveTypes resolves every own type against its base, bases first.
// Types whose base lives in another namespace were resolved when that
// namespace was loaded.
func resolveTypes(cat *Catalog, own []string, nsName string) error {
	for _, dt := range own {
		s, _ := cat.Spec(dt)

		inc := s.Head().DataTypeInc
		if inc != "" && !cat.specs.Has(inc) {
			return fmt.Errorf("%w '%s' for type '%s' in namespace '%s'", ErrUnresolvedInclude, inc, dt, nsName)
		}
	}

	order, err := includeOrder(cat, own)
	if err != nil {
		return fmt.Errorf("%w in namespace '%s': %w", ErrInheritanceCycle, nsName, err)
	}

	for _, dt := range order {
		s, _ := cat.Spec(dt)

		inc := s.Head().DataTypeInc
		if inc == "" {
			continue
		}

		base, _ := cat.Spec(inc)
		if err := resolveAgainst(s, base); err != nil {
			return err
		}
	}

	return nil
}

// includeOrder orders own so that every type follows the own type it includes.
// Each type has at most one base, so following data_type_inc chains depth
// first is enough; declaration order is kept otherwise.
func includeOrder(cat *Catalog, own []string) ([]string, error) {
	const (
		pending = iota
		visiting
		done
	)

	state := make(map[string]int, len(own))
	for _, dt := range own {
		state[dt] = pending
	}

	order := make([]string, 0, len(own))

	var visit func(dt string, chain []string) error
	visit = func(dt string, chain []string) error {
		st, isOwn := state[dt]

		switch {
		case !isOwn || st == done:
			return nil
		case st == visiting:
			return errors.New(strings.Join(append(chain, dt), " -> "))
		}

		state[dt] = visiting

		s, _ := cat.Spec(dt)
		if inc := s.Head().DataTypeInc; inc != dt {
			if err := visit(inc, append(chain, dt)); err != nil {
				return err
			}
		}

		state[dt] = done
		order = append(order, dt)

		return nil
	}

	for _, dt := range own {
		if err := visit(dt, nil); err != nil {
			return nil, err
		}
	}

	return order, nil
}

func resolveAgainst(s, base Spec) error {
	switch v := s.(type) {
	case *GroupSpec:
		b, ok := base.(*GroupSpec)
		if !ok {
			return fmt.Errorf("%w: group '%s' cannot include %s '%s'", ErrInvalidSpec, v.DataType(), base.Kind(), base.DataType())
		}

		return v.Resolve(b)
	case *DatasetSpec:
		b, ok := base.(*DatasetSpec)
		if !ok {
			return fmt.Errorf("%w: dataset '%s' cannot include %s '%s'", ErrInvalidSpec, v.DataType(), base.Kind(), base.DataType())
		}

		return v.Resolve(b)
	default:
		return fmt.Errorf("%w: %s '%s' cannot be resolved", ErrInvalidSpec, s.Kind(), s.DataType())
	}
}
