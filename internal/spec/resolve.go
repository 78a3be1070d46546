package spec

import "fmt"

// Resolve merges base into g: own children keep their order and override base
// children with the same identity; base children that are not overridden follow.
func (g *GroupSpec) Resolve(base *GroupSpec) error {
	if g.idx.resolved {
		return nil
	}

	if g.idx.attrs == nil {
		if err := g.Init(); err != nil {
			return err
		}
	}

	g.Attributes = mergeList(&g.idx, g.Attributes, base.Attributes)
	g.Datasets = mergeList(&g.idx, g.Datasets, base.Datasets)
	g.Groups = mergeList(&g.idx, g.Groups, base.Groups)
	g.Links = mergeList(&g.idx, g.Links, base.Links)

	if err := initSpec(g, nil); err != nil {
		return fmt.Errorf("resolving '%s' against '%s': %w", g.DataType(), base.DataType(), err)
	}

	g.idx.resolved = true

	return nil
}

// Resolve merges base attributes into d and inherits dtype, shape and dims when unset.
func (d *DatasetSpec) Resolve(base *DatasetSpec) error {
	if d.idx.resolved {
		return nil
	}

	if d.idx.attrs == nil {
		if err := d.Init(); err != nil {
			return err
		}
	}

	if d.Dtype.IsZero() {
		d.Dtype = base.Dtype
	}

	if len(d.Shape) == 0 {
		d.Shape = base.Shape
	}

	if len(d.Dims) == 0 {
		d.Dims = base.Dims
	}

	d.Attributes = mergeList(&d.idx, d.Attributes, base.Attributes)

	if err := initSpec(d, nil); err != nil {
		return fmt.Errorf("resolving '%s' against '%s': %w", d.DataType(), base.DataType(), err)
	}

	d.idx.resolved = true

	return nil
}

func mergeList[S Spec](x *index, own, base []S) []S {
	if x.inherited == nil {
		x.inherited = make(map[string]bool)
		x.overridden = make(map[string]bool)
	}

	ownKeys := make(map[string]bool, len(own))
	for _, s := range own {
		ownKeys[key(s)] = true
	}

	out := append([]S(nil), own...)

	for _, s := range base {
		k := key(s)
		x.inherited[k] = true

		if ownKeys[k] {
			x.overridden[k] = true
			continue
		}

		out = append(out, s)
	}

	return out
}

// IsResolved reports whether Resolve has been applied.
func (g *GroupSpec) IsResolved() bool { return g.idx.resolved }

// IsResolved reports whether Resolve has been applied.
func (d *DatasetSpec) IsResolved() bool { return d.idx.resolved }

// IsInheritedSpec reports whether s, or the top-level child of g that contains it, came from the base type.
func (g *GroupSpec) IsInheritedSpec(s Spec) bool {
	return g.idx.inherited[key(topChild(g, s))]
}

// IsOverriddenSpec reports whether s, or its top-level container, redefines a base child.
func (g *GroupSpec) IsOverriddenSpec(s Spec) bool {
	return g.idx.overridden[key(topChild(g, s))]
}

// IsInheritedSpec reports whether the attribute s came from the base type.
func (d *DatasetSpec) IsInheritedSpec(s Spec) bool {
	return d.idx.inherited[key(topChild(d, s))]
}

// IsOverriddenSpec reports whether the attribute s redefines a base attribute.
func (d *DatasetSpec) IsOverriddenSpec(s Spec) bool {
	return d.idx.overridden[key(topChild(d, s))]
}

// IsInheritedAttribute reports whether the named attribute came from the base type.
func (g *GroupSpec) IsInheritedAttribute(name string) bool {
	return g.idx.inherited[KindAttribute.String()+":"+name]
}

// IsOverriddenAttribute reports whether the named attribute redefines a base attribute.
func (g *GroupSpec) IsOverriddenAttribute(name string) bool {
	return g.idx.overridden[KindAttribute.String()+":"+name]
}

// IsInheritedAttribute reports whether the named attribute came from the base type.
func (d *DatasetSpec) IsInheritedAttribute(name string) bool {
	return d.idx.inherited[KindAttribute.String()+":"+name]
}

// IsOverriddenAttribute reports whether the named attribute redefines a base attribute.
func (d *DatasetSpec) IsOverriddenAttribute(name string) bool {
	return d.idx.overridden[KindAttribute.String()+":"+name]
}

// IsInherited reports whether s is inherited into the type spec owner.
// Specs that are neither groups nor datasets have nothing to inherit.
func IsInherited(owner, s Spec) bool {
	switch v := owner.(type) {
	case *GroupSpec:
		return v.IsInheritedSpec(s)
	case *DatasetSpec:
		return v.IsInheritedSpec(s)
	default:
		return false
	}
}

// topChild walks up from s to the ancestor that sits directly under a type spec.
// Inherited children keep the base type as parent, so the walk stops at any
// spec that defines a data type, not only at owner.
func topChild(owner, s Spec) Spec {
	cur := s

	for {
		p := cur.Parent()
		if p == nil || p == owner || p.Head().DataTypeDef != "" {
			return cur
		}

		cur = p
	}
}
