// Package classgen synthesizes record classes from resolved type specs.
//
// A Generator walks the bindings of a type spec and hands every field the type
// introduces to the first registered CustomGenerator that applies to it. Each
// generator is then given one PostProcess call to adjust the class as a whole.
package classgen

import (
	"fmt"

	"datatree-mapper/internal/common"
	"datatree-mapper/internal/diagnostic"
	"datatree-mapper/internal/record"
	"datatree-mapper/internal/spec"
)

// Resolver returns the class bound to a data type. A nil class with a nil error
// means the class is still being generated; the field then refers to it by name.
type Resolver func(dataType string) (*record.Class, error)

// Draft is the class under construction together with the spec it comes from.
type Draft struct {
	Class       *record.Class
	Spec        spec.Spec
	Diagnostics *diagnostic.Diagnostics
}

// CustomGenerator contributes fields and class-level changes to generated classes.
type CustomGenerator interface {
	Name() string
	// Applies reports whether the generator owns the field bound to b.
	Applies(b spec.Binding, d *Draft) bool
	// ProcessField adds or rewrites the field bound to b.
	ProcessField(b spec.Binding, d *Draft, resolve Resolver) error
	// PostProcess runs once per class after all fields were processed.
	PostProcess(d *Draft) error
}

// Generator holds the registered custom generators, most recently registered first.
type Generator struct {
	generators []CustomGenerator
}

// New returns a generator with the collection and default generators registered.
func New() *Generator {
	g := &Generator{}
	g.Register(DefaultGenerator{})
	g.Register(CollectionGenerator{})

	return g
}

// Register adds a custom generator ahead of the ones already registered.
func (g *Generator) Register(cg CustomGenerator) {
	g.generators = append([]CustomGenerator{cg}, g.generators...)
}

// Generators lists the registered generators in the order they are tried.
func (g *Generator) Generators() []CustomGenerator {
	return append([]CustomGenerator(nil), g.generators...)
}

// Generate builds the class for dataType from its resolved spec, deriving from base.
func (g *Generator) Generate(
	dataType, namespace string,
	s spec.Spec,
	base *record.Class,
	bindings []spec.Binding,
	resolve Resolver,
) (*record.Class, diagnostic.Diagnostics, error) {
	var diags diagnostic.Diagnostics

	kind := record.GroupLike
	if s.Kind() == spec.KindDataset {
		kind = record.DataLike
	}

	if base == nil {
		base = record.BaseFor(kind)
	}

	h := s.Head()
	cls := &record.Class{
		Name:        common.ToCamel(dataType),
		DataType:    dataType,
		Namespace:   namespace,
		Doc:         h.Doc,
		Base:        base,
		Kind:        kind,
		FixedName:   h.Name,
		DefaultName: h.DefaultName,
		Meta:        make(map[string]any),
	}

	if h.NameConflict() {
		cls.DefaultName = ""
		diags.AddWarning(diagnostic.CodeNameConflict,
			fmt.Sprintf("Spec '%s': fixed name '%s' overrides default name '%s'", s.Path(), h.Name, h.DefaultName),
			dataType, "")
	}

	d := &Draft{Class: cls, Spec: s, Diagnostics: &diags}

	for _, b := range bindings {
		if !introduces(s, b.Spec) {
			continue
		}

		for _, cg := range g.generators {
			if !cg.Applies(b, d) {
				continue
			}

			if err := cg.ProcessField(b, d, resolve); err != nil {
				return nil, diags, fmt.Errorf("%s: field '%s' (%s): %w", dataType, b.Name, cg.Name(), err)
			}

			break
		}
	}

	for _, cg := range g.generators {
		if err := cg.PostProcess(d); err != nil {
			return nil, diags, fmt.Errorf("%s: post-process (%s): %w", dataType, cg.Name(), err)
		}
	}

	return cls, diags, nil
}

// introduces reports whether the binding is a new field of the type: not
// inherited from the base, and not an untyped group, whose contents are fields
// of their own.
func introduces(owner, s spec.Spec) bool {
	if spec.IsInherited(owner, s) {
		return false
	}

	return s.Kind() != spec.KindGroup || spec.IsTyped(s)
}

// Required reports whether a field must be supplied: the spec and every untyped
// container between it and the type spec are required.
func Required(owner, s spec.Spec) bool {
	for cur := s; cur != nil && cur != owner; cur = cur.Parent() {
		if cur != s && cur.Head().DataTypeDef != "" {
			break
		}

		if !cur.IsRequired() {
			return false
		}
	}

	return true
}
