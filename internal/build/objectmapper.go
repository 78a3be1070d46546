package build

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"datatree-mapper/internal/builder"
	"datatree-mapper/internal/diagnostic"
	"datatree-mapper/internal/dtype"
	"datatree-mapper/internal/record"
	"datatree-mapper/internal/spec"
)

// ObjectAttrFunc computes the value of a record field at build time instead of
// reading it from the record.
type ObjectAttrFunc func(r *record.Record, m *Manager) (any, error)

// ConstructorArgFunc computes a constructor argument from a builder at construct time.
type ConstructorArgFunc func(b builder.Builder, m *Manager) (any, error)

// ObjectMapper converts between records of one data type and builders. It binds
// every spec element of the type to the record field it is read from when
// building and to the constructor argument it feeds when constructing.
type ObjectMapper struct {
	spec       spec.Spec
	specToAttr map[spec.Spec]string
	attrToSpec map[string]spec.Spec
	specToCarg map[spec.Spec]string
	cargToSpec map[string]spec.Spec
	objAttrs   map[string]ObjectAttrFunc
	constArgs  map[string]ConstructorArgFunc
}

// NewObjectMapper binds every flattened spec element of s to the field of the same name.
func NewObjectMapper(s spec.Spec) *ObjectMapper {
	om := &ObjectMapper{
		spec:       s,
		specToAttr: make(map[spec.Spec]string),
		attrToSpec: make(map[string]spec.Spec),
		specToCarg: make(map[spec.Spec]string),
		cargToSpec: make(map[string]spec.Spec),
		objAttrs:   make(map[string]ObjectAttrFunc),
		constArgs:  make(map[string]ConstructorArgFunc),
	}

	for _, b := range spec.Flatten(s) {
		om.MapSpec(b.Name, b.Spec)
	}

	if _, ok := s.(*spec.DatasetSpec); ok {
		om.MapSpec("data", s)
	}

	return om
}

func (om *ObjectMapper) Spec() spec.Spec { return om.spec }

// MapSpec binds s to the field attr both for building and constructing.
func (om *ObjectMapper) MapSpec(attr string, s spec.Spec) {
	om.MapAttr(attr, s)
	om.MapConstArg(attr, s)
}

// MapAttr binds s to the record field attr read at build time.
func (om *ObjectMapper) MapAttr(attr string, s spec.Spec) {
	om.specToAttr[s] = attr
	om.attrToSpec[attr] = s
}

// MapConstArg binds s to the constructor argument carg.
func (om *ObjectMapper) MapConstArg(carg string, s spec.Spec) {
	om.specToCarg[s] = carg
	om.cargToSpec[carg] = s
}

// Unmap removes every binding of s.
func (om *ObjectMapper) Unmap(s spec.Spec) {
	if attr, ok := om.specToAttr[s]; ok {
		delete(om.specToAttr, s)

		if om.attrToSpec[attr] == s {
			delete(om.attrToSpec, attr)
		}
	}

	if carg, ok := om.specToCarg[s]; ok {
		delete(om.specToCarg, s)

		if om.cargToSpec[carg] == s {
			delete(om.cargToSpec, carg)
		}
	}
}

// Attribute returns the record field s is bound to, or "".
func (om *ObjectMapper) Attribute(s spec.Spec) string { return om.specToAttr[s] }

// ConstArg returns the constructor argument s is bound to, or "".
func (om *ObjectMapper) ConstArg(s spec.Spec) string { return om.specToCarg[s] }

// AttrSpec returns the spec last bound to the record field attr.
func (om *ObjectMapper) AttrSpec(attr string) spec.Spec { return om.attrToSpec[attr] }

// CargSpec returns the spec last bound to the constructor argument carg.
func (om *ObjectMapper) CargSpec(carg string) spec.Spec { return om.cargToSpec[carg] }

// SetObjectAttr overrides how the field attr is read at build time.
func (om *ObjectMapper) SetObjectAttr(attr string, fn ObjectAttrFunc) {
	om.objAttrs[attr] = fn
}

// SetConstructorArg overrides how the constructor argument carg is computed.
// Overriding "name" changes the name given to constructed records.
func (om *ObjectMapper) SetConstructorArg(carg string, fn ConstructorArgFunc) {
	om.constArgs[carg] = fn
}

// AttrValue returns the value of the field bound to s, keeping only records of
// the spec's data type. Unbound specs and empty selections yield nil.
func (om *ObjectMapper) AttrValue(s spec.Spec, r *record.Record, m *Manager) (any, error) {
	attr, ok := om.specToAttr[s]
	if !ok {
		return nil, nil
	}

	var value any

	if fn := om.objAttrs[attr]; fn != nil {
		v, err := fn(r, m)
		if err != nil {
			return nil, fmt.Errorf("%s '%s' field '%s': %w", r.Class().Name, r.Name(), attr, err)
		}

		value = v
	}

	if isNil(value) {
		value = r.Get(attr)
	}

	if isNil(value) {
		return nil, nil
	}

	if dt := s.DataType(); dt != "" && s != om.spec {
		value = filterByDataType(value, dt, m.typeMap)
	}

	return value, nil
}

func filterByDataType(v any, dt string, tm *TypeMap) any {
	switch x := v.(type) {
	case *record.Record:
		if tm.IsSubType(x.Class(), dt) {
			return x
		}

		return nil
	case []*record.Record:
		var out []*record.Record

		for _, r := range x {
			if tm.IsSubType(r.Class(), dt) {
				out = append(out, r)
			}
		}

		if len(out) == 0 {
			return nil
		}

		return out
	default:
		return v
	}
}

// Build renders r into a builder. A group record that was built before is
// rebuilt into its existing builder.
func (om *ObjectMapper) Build(r *record.Record, m *Manager, opts ...BuildOption) (builder.Builder, error) {
	return om.build(r, m, newBuildOptions(opts))
}

func (om *ObjectMapper) build(r *record.Record, m *Manager, o buildOptions) (builder.Builder, error) {
	switch s := om.spec.(type) {
	case *spec.GroupSpec:
		gb, _ := m.Builder(r).(*builder.GroupBuilder)
		if gb == nil {
			gb = builder.NewGroup(r.Name())
		}

		if o.source != "" && gb.Source() == "" {
			_ = gb.SetSource(o.source)
		}

		m.remember(r, gb)

		if err := om.addDatasets(gb, s.Datasets, r, m, o); err != nil {
			return nil, err
		}

		if err := om.addGroups(gb, s.Groups, r, m, o); err != nil {
			return nil, err
		}

		if err := om.addLinks(gb, s.Links, r, m, o); err != nil {
			return nil, err
		}

		if err := om.addAttributes(gb, mergeAttributes(s.Attributes, o.specExt), r, m); err != nil {
			return nil, err
		}

		return gb, nil
	case *spec.DatasetSpec:
		return om.buildDataset(s, r, m, o)
	default:
		return nil, fmt.Errorf("%w: %s cannot be built from a %s spec", ErrUnexpectedType, r.Class().Name, om.spec.Kind())
	}
}

func (om *ObjectMapper) buildDataset(s *spec.DatasetSpec, r *record.Record, m *Manager, o buildOptions) (builder.Builder, error) {
	// dataset builders are immutable once their data is set
	if existing := m.Builder(r); existing != nil {
		return existing, nil
	}

	value, err := om.AttrValue(s, r, m)
	if err != nil {
		return nil, err
	}

	db, err := om.newDataset(r.Name(), s, value, r, m)
	if err != nil {
		return nil, err
	}

	if o.source != "" {
		_ = db.SetSource(o.source)
	}

	m.remember(r, db)

	if err := om.addAttributes(db, mergeAttributes(s.Attributes, o.specExt), r, m); err != nil {
		return nil, err
	}

	return db, nil
}

// newDataset converts value for the dataset spec s. Reference data is filled in
// once the referenced records are built.
func (om *ObjectMapper) newDataset(name string, s *spec.DatasetSpec, value any, r *record.Record, m *Manager) (*builder.DatasetBuilder, error) {
	if s.Dtype.IsRef() || (s.Dtype.IsCompound() && containsRecord(value)) {
		db := builder.NewDataset(name, nil, s.Dtype)

		m.QueueRef(func() error {
			data, err := toReferences(value, db, m)
			if err != nil {
				return err
			}

			return db.SetData(data)
		})

		return db, nil
	}

	conv, err := ConvertDtype(s, value, dtype.Type{})
	if err != nil {
		return nil, fmt.Errorf("%s '%s' dataset '%s': %w", r.Class().Name, r.Name(), name, err)
	}

	if conv.Warning != "" {
		m.diags.AddWarning(diagnostic.CodeDtypeConversion, conv.Warning, r.Class().Name, s.Path())
	}

	return builder.NewDataset(name, conv.Value, conv.Dtype), nil
}

func mergeAttributes(own []*spec.AttributeSpec, ext spec.Spec) []*spec.AttributeSpec {
	if ext == nil {
		return own
	}

	out := slices.Clone(own)

	for _, a := range spec.Attributes(ext) {
		if !slices.ContainsFunc(out, func(x *spec.AttributeSpec) bool { return x.Name == a.Name }) {
			out = append(out, a)
		}
	}

	return out
}

func (om *ObjectMapper) addAttributes(b builder.Attributed, attrs []*spec.AttributeSpec, r *record.Record, m *Manager) error {
	for _, a := range attrs {
		value, def := spec.Values(a)
		if value == nil {
			v, err := om.AttrValue(a, r, m)
			if err != nil {
				return err
			}

			value = v
		}

		if value == nil {
			value = def
		}

		if value == nil {
			if a.IsRequired() {
				om.missing(r, a, a.Name, m)
			}

			continue
		}

		if a.Dtype.IsRef() {
			m.QueueRef(func() error {
				ref, err := toReferences(value, b, m)
				if err != nil {
					return err
				}

				return b.SetAttribute(a.Name, ref)
			})

			continue
		}

		conv, err := ConvertDtype(a, value, dtype.Type{})
		if err != nil {
			return fmt.Errorf("%s '%s' attribute '%s': %w", r.Class().Name, r.Name(), a.Name, err)
		}

		if conv.Warning != "" {
			m.diags.AddWarning(diagnostic.CodeDtypeConversion, conv.Warning, r.Class().Name, a.Path())
		}

		if err := b.SetAttribute(a.Name, conv.Value); err != nil {
			return err
		}
	}

	return nil
}

func (om *ObjectMapper) addDatasets(gb *builder.GroupBuilder, datasets []*spec.DatasetSpec, r *record.Record, m *Manager, o buildOptions) error {
	for _, d := range datasets {
		if spec.IsTyped(d) {
			if err := om.addTyped(gb, d, r, m, o); err != nil {
				return err
			}

			continue
		}

		value, def := spec.Values(d)
		if value == nil {
			v, err := om.AttrValue(d, r, m)
			if err != nil {
				return err
			}

			value = v
		}

		if value == nil {
			value = def
		}

		if value == nil {
			if d.IsRequired() {
				om.missing(r, d, d.Name, m)
			}

			continue
		}

		db, err := om.newDataset(d.Name, d, value, r, m)
		if err != nil {
			return err
		}

		if err := gb.SetDataset(db); err != nil {
			return err
		}

		if err := om.addAttributes(db, d.Attributes, r, m); err != nil {
			return err
		}
	}

	return nil
}

func (om *ObjectMapper) addGroups(gb *builder.GroupBuilder, groups []*spec.GroupSpec, r *record.Record, m *Manager, o buildOptions) error {
	for _, g := range groups {
		if spec.IsTyped(g) {
			if err := om.addTyped(gb, g, r, m, o); err != nil {
				return err
			}

			continue
		}

		sub := gb.Group(g.Name)
		fresh := sub == nil

		if fresh {
			sub = builder.NewGroup(g.Name)
		}

		if err := om.addAttributes(sub, g.Attributes, r, m); err != nil {
			return err
		}

		if err := om.addDatasets(sub, g.Datasets, r, m, o); err != nil {
			return err
		}

		if err := om.addLinks(sub, g.Links, r, m, o); err != nil {
			return err
		}

		if err := om.addGroups(sub, g.Groups, r, m, o); err != nil {
			return err
		}

		if fresh && (!sub.IsEmpty() || g.IsRequired()) {
			if err := gb.SetGroup(sub); err != nil {
				return err
			}
		}
	}

	return nil
}

func (om *ObjectMapper) addLinks(gb *builder.GroupBuilder, links []*spec.LinkSpec, r *record.Record, m *Manager, o buildOptions) error {
	for _, l := range links {
		if err := om.addTyped(gb, l, r, m, o); err != nil {
			return err
		}
	}

	return nil
}

// addTyped adds the records bound to a typed child or link spec: records r owns
// become sub-builders, every other record becomes a link.
func (om *ObjectMapper) addTyped(gb *builder.GroupBuilder, s spec.Spec, r *record.Record, m *Manager, o buildOptions) error {
	value, err := om.AttrValue(s, r, m)
	if err != nil {
		return err
	}

	field := om.fieldName(s)

	if value == nil {
		if s.IsRequired() {
			om.missing(r, s, field, m)
		}

		return nil
	}

	recs, ok := recordsOf(value)
	if !ok {
		return &BuildError{
			Name:    gb.Name(),
			Path:    gb.Path(),
			Message: fmt.Sprintf("%s '%s' attribute '%s' has unexpected type.", r.Class().Name, r.Name(), field),
			Err:     ErrUnexpectedType,
		}
	}

	if q := s.Head().Quantity; !q.Allows(len(recs)) {
		m.diags.AddWarning(diagnostic.CodeIncorrectQuantity,
			fmt.Sprintf("%s '%s' has %d values for %s '%s' but spec allows %s.",
				r.Class().Name, r.Name(), len(recs), s.Kind(), field, q),
			r.Class().Name, s.Path())
	}

	for _, rec := range recs {
		if err := om.addRecord(gb, s, rec, r, m, o); err != nil {
			return err
		}
	}

	return nil
}

func (om *ObjectMapper) addRecord(gb *builder.GroupBuilder, s spec.Spec, rec, owner *record.Record, m *Manager, o buildOptions) error {
	_, isLink := s.(*spec.LinkSpec)

	if !isLink && rec.Parent() == owner {
		cb, err := m.build(rec, buildOptions{source: o.source, specExt: s})
		if err != nil {
			return err
		}

		switch c := cb.(type) {
		case *builder.GroupBuilder:
			return gb.SetGroup(c)
		case *builder.DatasetBuilder:
			return gb.SetDataset(c)
		default:
			return fmt.Errorf("%w: %T", ErrUnexpectedType, cb)
		}
	}

	target := m.Builder(rec)
	if target == nil {
		if rec.Parent() == nil {
			return &BuildError{
				Name: gb.Name(),
				Path: gb.Path(),
				Message: fmt.Sprintf("Linked %s '%s' has no parent. Remove the link or ensure the linked container is added properly.",
					rec.Class().Name, rec.Name()),
				Err: ErrOrphanLink,
			}
		}

		var err error
		if target, err = m.build(rec, buildOptions{source: o.source}); err != nil {
			return err
		}
	}

	return gb.SetLink(builder.NewLink(target, s.Head().Name))
}

func (om *ObjectMapper) fieldName(s spec.Spec) string {
	if attr := om.specToAttr[s]; attr != "" {
		return attr
	}

	if name := s.Head().Name; name != "" {
		return name
	}

	return s.DataType()
}

func (om *ObjectMapper) missing(r *record.Record, s spec.Spec, field string, m *Manager) {
	m.diags.AddWarning(diagnostic.CodeMissingRequired,
		fmt.Sprintf("%s '%s' is missing required value for %s '%s'.", r.Class().Name, r.Name(), s.Kind(), field),
		r.Class().Name, s.Path())
}

func recordsOf(v any) ([]*record.Record, bool) {
	switch x := v.(type) {
	case *record.Record:
		return []*record.Record{x}, true
	case []*record.Record:
		return x, true
	case []any:
		out := make([]*record.Record, 0, len(x))

		for _, e := range x {
			r, ok := e.(*record.Record)
			if !ok {
				return nil, false
			}

			out = append(out, r)
		}

		return out, true
	default:
		return nil, false
	}
}

func containsRecord(v any) bool {
	switch x := v.(type) {
	case *record.Record, []*record.Record:
		return true
	case []any:
		return slices.ContainsFunc(x, containsRecord)
	default:
		return false
	}
}

// toReferences replaces every record in v with a reference to its builder.
func toReferences(v any, owner builder.Builder, m *Manager) (any, error) {
	switch x := v.(type) {
	case *record.Record:
		target := m.Builder(x)
		if target == nil {
			return nil, &BuildError{
				Name:    owner.Name(),
				Path:    owner.Path(),
				Message: fmt.Sprintf("Could not find already-built Builder for %s '%s' in BuildManager", x.Class().Name, x.Name()),
				Err:     ErrUnbuiltReference,
			}
		}

		return builder.NewReference(target), nil
	case []*record.Record:
		out := make([]*builder.ReferenceBuilder, len(x))

		for i, r := range x {
			ref, err := toReferences(r, owner, m)
			if err != nil {
				return nil, err
			}

			out[i] = ref.(*builder.ReferenceBuilder)
		}

		return out, nil
	case []any:
		out := make([]any, len(x))

		for i, e := range x {
			ref, err := toReferences(e, owner, m)
			if err != nil {
				return nil, err
			}

			out[i] = ref
		}

		return out, nil
	default:
		return v, nil
	}
}

// Construct creates a record of class cls from b, constructing sub-builders,
// link targets and reference targets through m.
func (om *ObjectMapper) Construct(b builder.Builder, m *Manager, cls *record.Class) (*record.Record, error) {
	var values []specValue
	if err := om.subspecValues(b, om.spec, m, &values); err != nil {
		return nil, err
	}

	cargs := make(record.Args)

	for _, sv := range values {
		carg := om.specToCarg[sv.spec]
		if carg == "" {
			continue
		}

		if sv.spec.IsMany() {
			if existing, ok := cargs[carg].([]*record.Record); ok {
				if more, ok := sv.value.([]*record.Record); ok {
					sv.value = append(existing, more...)
				}
			}
		}

		cargs[carg] = sv.value
	}

	args := make(record.Args)

	if cls.HasNameParam() {
		name := any(b.Name())

		if fn := om.constArgs["name"]; fn != nil {
			v, err := fn(b, m)
			if err != nil {
				return nil, err
			}

			if v != nil {
				name = v
			}
		}

		args["name"] = name
	}

	for _, f := range cls.Params() {
		if fn := om.constArgs[f.Name]; fn != nil {
			v, err := fn(b, m)
			if err != nil {
				return nil, err
			}

			if v != nil {
				args[f.Name] = v
				continue
			}
		}

		if v, ok := cargs[f.Name]; ok {
			args[f.Name] = v
		}
	}

	opts := []record.Option{record.WithSource(b.Source())}

	if ab, ok := b.(builder.Attributed); ok {
		if id, ok := ab.Attribute(AttrObjectID); ok {
			if s, ok := id.(string); ok {
				opts = append(opts, record.WithObjectID(s))
			}
		}
	}

	return cls.New(args, opts...)
}

type specValue struct {
	spec  spec.Spec
	value any
}

type namedBuilder struct {
	name string
	b    builder.Builder
}

func (om *ObjectMapper) subspecValues(b builder.Builder, s spec.Spec, m *Manager, out *[]specValue) error {
	if ab, ok := b.(builder.Attributed); ok {
		for _, a := range spec.Attributes(s) {
			v, ok := ab.Attribute(a.Name)
			if !ok || v == nil {
				continue
			}

			v, err := constructValue(v, m)
			if err != nil {
				return err
			}

			*out = append(*out, specValue{a, v})
		}
	}

	switch x := s.(type) {
	case *spec.GroupSpec:
		gb, ok := b.(*builder.GroupBuilder)
		if !ok {
			return fmt.Errorf("%w: expected a group builder for %s, got %T", ErrUnexpectedType, x.Path(), b)
		}

		return om.groupValues(gb, x, m, out)
	case *spec.DatasetSpec:
		db, ok := b.(*builder.DatasetBuilder)
		if !ok {
			return fmt.Errorf("%w: expected a dataset builder for %s, got %T", ErrUnexpectedType, x.Path(), b)
		}

		data := db.Data()
		if len(x.Shape) == 0 && !x.Dtype.IsCompound() && dtype.Len(data) == 1 {
			data = reflect.ValueOf(data).Index(0).Interface()
		}

		data, err := constructValue(data, m)
		if err != nil {
			return err
		}

		*out = append(*out, specValue{x, data})
	}

	return nil
}

func (om *ObjectMapper) groupValues(gb *builder.GroupBuilder, g *spec.GroupSpec, m *Manager, out *[]specValue) error {
	var groups, datasets []namedBuilder

	for _, sub := range gb.Groups() {
		groups = append(groups, namedBuilder{sub.Name(), sub})
	}

	for _, sub := range gb.Datasets() {
		datasets = append(datasets, namedBuilder{sub.Name(), sub})
	}

	linkDt := make(map[string][]builder.Builder)

	for _, l := range gb.Links() {
		target := l.Target()

		dt := BuilderDt(target)
		linkDt[dt] = append(linkDt[dt], target)

		// links claimed by a named link spec are not also offered to child specs
		if g.GetLink(l.Name()) != nil {
			continue
		}

		nb := namedBuilder{l.Name(), target}
		if _, ok := target.(*builder.DatasetBuilder); ok {
			datasets = appendUnique(datasets, nb)
		} else {
			groups = appendUnique(groups, nb)
		}
	}

	for _, ls := range g.Links {
		if ls.Name != "" {
			if l := gb.Link(ls.Name); l != nil {
				r, err := m.Construct(l.Target())
				if err != nil {
					return err
				}

				*out = append(*out, specValue{ls, r})

				continue
			}
		}

		if targets := linkDt[ls.TargetType]; targets != nil {
			v, err := flattenConstructed(targets, ls, m)
			if err != nil {
				return err
			}

			*out = append(*out, specValue{ls, v})
		}
	}

	if err := om.subBuilderValues(groups, specsOf(g.Groups), m, out); err != nil {
		return err
	}

	return om.subBuilderValues(datasets, specsOf(g.Datasets), m, out)
}

func appendUnique(subs []namedBuilder, nb namedBuilder) []namedBuilder {
	if slices.ContainsFunc(subs, func(x namedBuilder) bool { return x.b == nb.b }) {
		return subs
	}

	return append(subs, nb)
}

func specsOf[S spec.Spec](in []S) []spec.Spec {
	out := make([]spec.Spec, len(in))
	for i, s := range in {
		out[i] = s
	}

	return out
}

func (om *ObjectMapper) subBuilderValues(subs []namedBuilder, specs []spec.Spec, m *Manager, out *[]specValue) error {
	byDt := make(map[string][]builder.Builder)

	for _, nb := range subs {
		dt, ns := BuilderDt(nb.b), BuilderNs(nb.b)
		if dt == "" || ns == "" {
			continue
		}

		h, err := m.typeMap.catalog.Hierarchy(ns, dt)
		if err != nil {
			continue
		}

		for _, parent := range h {
			byDt[parent] = append(byDt[parent], nb.b)
		}
	}

	for _, s := range specs {
		dt := s.DataType()

		if s.Head().Name == "" {
			if bs := byDt[dt]; bs != nil {
				v, err := flattenConstructed(bs, s, m)
				if err != nil {
					return err
				}

				*out = append(*out, specValue{s, v})
			}

			continue
		}

		i := slices.IndexFunc(subs, func(nb namedBuilder) bool { return nb.name == s.Head().Name })
		if i < 0 {
			continue
		}

		if dt == "" {
			if err := om.subspecValues(subs[i].b, s, m, out); err != nil {
				return err
			}

			continue
		}

		r, err := m.Construct(subs[i].b)
		if err != nil {
			return err
		}

		*out = append(*out, specValue{s, r})
	}

	return nil
}

func flattenConstructed(bs []builder.Builder, s spec.Spec, m *Manager) (any, error) {
	out := make([]*record.Record, 0, len(bs))

	for _, b := range bs {
		r, err := m.Construct(b)
		if err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	if len(out) == 1 && !s.IsMany() {
		return out[0], nil
	}

	return out, nil
}

var errRegionAttribute = errors.New("RegionReferences as attributes is not yet supported")

// constructValue replaces builders and references in v with constructed records.
func constructValue(v any, m *Manager) (any, error) {
	switch x := v.(type) {
	case *builder.RegionBuilder:
		return nil, errRegionAttribute
	case *builder.ReferenceBuilder:
		return m.Construct(x.Target)
	case *builder.GroupBuilder:
		return m.Construct(x)
	case *builder.DatasetBuilder:
		return m.Construct(x)
	case []*builder.ReferenceBuilder:
		out := make([]*record.Record, len(x))

		for i, ref := range x {
			r, err := m.Construct(ref.Target)
			if err != nil {
				return nil, err
			}

			out[i] = r
		}

		return out, nil
	case []any:
		if !slices.ContainsFunc(x, isBuilderValue) {
			return v, nil
		}

		out := make([]any, len(x))

		for i, e := range x {
			c, err := constructValue(e, m)
			if err != nil {
				return nil, err
			}

			out[i] = c
		}

		return out, nil
	default:
		return v, nil
	}
}

func isBuilderValue(v any) bool {
	switch x := v.(type) {
	case *builder.ReferenceBuilder, *builder.RegionBuilder, *builder.GroupBuilder, *builder.DatasetBuilder:
		return true
	case []any:
		return slices.ContainsFunc(x, isBuilderValue)
	default:
		return false
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
