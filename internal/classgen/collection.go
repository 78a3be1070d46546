package classgen

import (
	"datatree-mapper/internal/common"
	"datatree-mapper/internal/record"
	"datatree-mapper/internal/spec"
)

// CollectionGenerator gives nameless, many-valued typed children keyed access
// by item name.
type CollectionGenerator struct{}

func (CollectionGenerator) Name() string { return "collection" }

func (CollectionGenerator) Applies(b spec.Binding, d *Draft) bool {
	s := b.Spec
	if s.Kind() != spec.KindGroup && s.Kind() != spec.KindDataset {
		return false
	}

	if s.Head().Name != "" || s.Head().DataTypeInc == "" || !s.IsMany() {
		return false
	}

	return d.Class.Base.Collection(b.Name) == nil
}

func (CollectionGenerator) ProcessField(b spec.Binding, d *Draft, resolve Resolver) error {
	f, err := NewField(b, d.Spec, resolve)
	if err != nil {
		return err
	}

	// items are added one at a time, so the parameter may be omitted
	f.Required = false
	field := common.ToCamel(b.Name)

	d.Class.Fields = append(d.Class.Fields, f)
	d.Class.Collections = append(d.Class.Collections, &record.Collection{
		Field:    b.Name,
		DataType: b.Spec.DataType(),
		Add:      "Add" + field,
		Get:      "Get" + field,
		Create:   "Create" + common.ToCamel(b.Spec.DataType()),
	})

	return nil
}

func (CollectionGenerator) PostProcess(d *Draft) error {
	if len(d.Class.Collections) > 0 && !d.Class.Base.HasTrait(record.TraitKeyedCollection) {
		d.Class.Traits = append(d.Class.Traits, record.TraitKeyedCollection)
	}

	return nil
}
