// Package validate checks builder trees, typically read back from a backend,
// against the specs of a namespace catalog.
//
// Every mismatch becomes an error in the returned diagnostic.Diagnostics:
// wrong dtypes or shapes, missing attributes and children, child counts that
// violate a quantity, links where the spec forbids them, and references to
// builders of the wrong data type. Only a builder that cannot be validated at
// all (no data type, unknown namespace) is reported as an error value.
package validate

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"datatree-mapper/internal/build"
	"datatree-mapper/internal/builder"
	"datatree-mapper/internal/diagnostic"
	"datatree-mapper/internal/spec"
)

var (
	ErrNoDataType         = errors.New("builder has no data type")
	ErrUnsupportedBuilder = errors.New("only group and dataset builders can be validated")
)

// Validator checks builders against the specs of their data types.
type Validator struct {
	catalog   *spec.NamespaceCatalog
	namespace string
	logger    *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithNamespace sets the namespace used for builders that carry none.
func WithNamespace(ns string) Option {
	return func(v *Validator) { v.namespace = ns }
}

func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

func New(catalog *spec.NamespaceCatalog, opts ...Option) *Validator {
	v := &Validator{catalog: catalog, logger: slog.Default()}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate checks b and everything below it against the spec of the data
// type stored on b.
func (v *Validator) Validate(b builder.Builder) (diagnostic.Diagnostics, error) {
	ab, ok := b.(builder.Attributed)
	if !ok {
		return diagnostic.Diagnostics{}, fmt.Errorf("%w: %s is a %T", ErrUnsupportedBuilder, b.Path(), b)
	}

	s, err := v.specOf(ab)
	if err != nil {
		return diagnostic.Diagnostics{}, err
	}

	r := &run{v: v, seen: make(map[visit]bool)}
	r.builder(ab, s)

	v.logger.Debug("validated builder", "builder", b.Path(), "errors", len(r.diags.Errors))

	return r.diags, nil
}

func (v *Validator) namespaceOf(b builder.Builder) string {
	if ns := build.BuilderNs(b); ns != "" {
		return ns
	}

	return v.namespace
}

func (v *Validator) specOf(b builder.Builder) (spec.Spec, error) {
	dt := build.BuilderDt(b)
	if dt == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoDataType, b.Path())
	}

	return v.catalog.Spec(v.namespaceOf(b), dt)
}

// hierarchy returns the data type of b followed by its ancestors, or nil for
// untyped builders and types the catalog does not know.
func (v *Validator) hierarchy(b builder.Builder) []string {
	dt := build.BuilderDt(b)
	if dt == "" {
		return nil
	}

	h, err := v.catalog.Hierarchy(v.namespaceOf(b), dt)
	if err == nil && len(h) > 0 {
		return h
	}

	if h, err = v.catalog.Hierarchy(v.namespace, dt); err == nil {
		return h
	}

	return nil
}

func (v *Validator) isA(b builder.Builder, dt string) bool {
	return slices.Contains(v.hierarchy(b), dt)
}

type visit struct {
	b builder.Builder
	s spec.Spec
}

// run is the state of one Validate call. Links can form cycles, so every
// (builder, spec) pair is checked once.
type run struct {
	v     *Validator
	diags diagnostic.Diagnostics
	seen  map[visit]bool
}

func (r *run) fail(code, message string, s spec.Spec, location string) {
	r.diags.AddError(code, message, s.Path(), location)
}

func (r *run) builder(b builder.Attributed, s spec.Spec) {
	key := visit{b, s}
	if r.seen[key] {
		return
	}

	r.seen[key] = true

	r.attributes(b, s)

	switch x := s.(type) {
	case *spec.DatasetSpec:
		d, ok := b.(*builder.DatasetBuilder)
		if !ok {
			r.fail(diagnostic.CodeIncorrectDataType, "incorrect builder - expected a dataset, got a group", s, b.Path())
			return
		}

		if d.Data() != nil {
			r.value(x, x.Dtype, x.Shape, d.Data(), d.Path())
		} else if len(x.Shape) > 0 {
			r.shape(x, x.Dtype, x.Shape, nil, d.Path())
		}
	case *spec.GroupSpec:
		g, ok := b.(*builder.GroupBuilder)
		if !ok {
			r.fail(diagnostic.CodeIncorrectDataType, "incorrect builder - expected a group, got a dataset", s, b.Path())
			return
		}

		r.group(g, x)
	}
}

func (r *run) attributes(b builder.Attributed, s spec.Spec) {
	for _, as := range spec.Attributes(s) {
		loc := b.Path() + "." + as.Name

		val, ok := b.Attribute(as.Name)
		if !ok || val == nil {
			if as.IsRequired() {
				r.fail(diagnostic.CodeMissingRequired, "argument missing", as, loc)
			}

			continue
		}

		r.value(as, as.Dtype, as.Shape, val, loc)
	}
}

func (r *run) group(g *builder.GroupBuilder, s *spec.GroupSpec) {
	datasets := make([]builder.Builder, 0, len(g.Datasets()))
	for _, d := range g.Datasets() {
		datasets = append(datasets, d)
	}

	groups := make([]builder.Builder, 0, len(g.Groups()))
	for _, sub := range g.Groups() {
		groups = append(groups, sub)
	}

	// links count as children of the kind they point to
	for _, l := range g.Links() {
		switch l.Target().(type) {
		case *builder.DatasetBuilder:
			datasets = append(datasets, l)
		case *builder.GroupBuilder:
			groups = append(groups, l)
		}
	}

	for _, ds := range s.Datasets {
		r.child(g, s, ds, ds.Linkable, datasets)
	}

	for _, gs := range s.Groups {
		r.child(g, s, gs, gs.Linkable, groups)
	}

	for _, ls := range s.Links {
		r.link(g, s, ls)
	}
}

func (r *run) child(g *builder.GroupBuilder, parent *spec.GroupSpec, s spec.Spec, linkable *bool, candidates []builder.Builder) {
	if !spec.IsTyped(s) {
		r.untyped(g, s, linkable)
		return
	}

	dt := s.DataType()
	name := s.Head().Name
	n := 0

	for _, c := range candidates {
		target := c
		if l, ok := c.(*builder.LinkBuilder); ok {
			target = l.Target()
		}

		if (name != "" && c.Name() != name) || !r.v.isA(target, dt) {
			continue
		}

		if _, ok := c.(*builder.LinkBuilder); ok && !isLinkable(linkable) {
			r.fail(diagnostic.CodeIllegalLink, "illegal use of link (linked object will not be validated)", s, c.Path())
			continue
		}

		r.typed(target)
		n++
	}

	r.count(g, parent, s, dt, n)
}

func (r *run) link(g *builder.GroupBuilder, parent *spec.GroupSpec, s *spec.LinkSpec) {
	n := 0

	for _, l := range g.Links() {
		if (s.Name != "" && l.Name() != s.Name) || !r.v.isA(l.Target(), s.TargetType) {
			continue
		}

		r.typed(l.Target())
		n++
	}

	r.count(g, parent, s, s.TargetType, n)
}

// typed validates b against the spec of its own data type, which may be a
// subtype of the one the parent asks for.
func (r *run) typed(b builder.Builder) {
	ab, ok := b.(builder.Attributed)
	if !ok {
		return
	}

	s, err := r.v.specOf(ab)
	if err != nil {
		return
	}

	r.builder(ab, s)
}

func (r *run) count(g *builder.GroupBuilder, parent *spec.GroupSpec, s spec.Spec, dt string, n int) {
	q := s.Head().Quantity

	switch {
	case n == 0 && s.IsRequired():
		msg := "missing data type " + dt
		if name := s.Head().Name; name != "" {
			msg += " (" + name + ")"
		}

		r.fail(diagnostic.CodeMissingDataType, msg, parent, g.Path())
	case !q.Allows(n):
		r.fail(diagnostic.CodeIncorrectQuantity,
			fmt.Sprintf("expected a quantity of %s for data type %s, received %d", q, dt, n), parent, g.Path())
	}
}

func (r *run) untyped(g *builder.GroupBuilder, s spec.Spec, linkable *bool) {
	name := s.Head().Name

	var c builder.Builder

	switch s.(type) {
	case *spec.GroupSpec:
		if sub := g.Group(name); sub != nil {
			c = sub
		}
	case *spec.DatasetSpec:
		if d := g.Dataset(name); d != nil {
			c = d
		}
	}

	if c == nil {
		if l := g.Link(name); l != nil {
			if !isLinkable(linkable) {
				r.fail(diagnostic.CodeIllegalLink, "illegal use of link (linked object will not be validated)", s, g.Path())
				return
			}

			c = l.Target()
		}
	}

	if c == nil {
		if s.IsRequired() {
			r.fail(diagnostic.CodeMissingRequired, "argument missing", s, g.Path())
		}

		return
	}

	if ab, ok := c.(builder.Attributed); ok {
		r.builder(ab, s)
	}
}

// isLinkable applies the schema default: groups and datasets may be linked
// unless linkable is false.
func isLinkable(linkable *bool) bool {
	return linkable == nil || *linkable
}
