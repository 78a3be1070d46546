package backend

import (
	"fmt"

	"datatree-mapper/internal/builder"
	"datatree-mapper/internal/dtype"
)

// Builder kinds a stored node can hold.
const (
	KindGroup   = "group"
	KindDataset = "dataset"
)

// KindOf returns the stored kind of b.
func KindOf(b builder.Builder) (string, error) {
	switch b.(type) {
	case *builder.GroupBuilder:
		return KindGroup, nil
	case *builder.DatasetBuilder:
		return KindDataset, nil
	default:
		return "", fmt.Errorf("%w: cannot store %T as a tree root", ErrUnsupportedValue, b)
	}
}

// Dtype is the stored form of a declared dtype.
type Dtype struct {
	Name       string  `json:"name,omitempty"`
	TargetType string  `json:"target_type,omitempty"`
	RefType    string  `json:"reftype,omitempty"`
	Compound   []Field `json:"compound,omitempty"`
}

// Field is one member of a stored compound dtype.
type Field struct {
	Name  string `json:"name"`
	Dtype Dtype  `json:"dtype"`
}

// EncodeDtype returns nil for a zero dtype.
func EncodeDtype(t dtype.Type) *Dtype {
	if t.IsZero() {
		return nil
	}

	d := &Dtype{Name: t.Name}
	if t.Ref != nil {
		d.TargetType, d.RefType = t.Ref.TargetType, t.Ref.RefType
	}

	for _, f := range t.Compound {
		sub := EncodeDtype(f.Dtype)
		if sub == nil {
			sub = &Dtype{}
		}

		d.Compound = append(d.Compound, Field{Name: f.Name, Dtype: *sub})
	}

	return d
}

// Type converts d back to a dtype; a nil d is the zero dtype.
func (d *Dtype) Type() dtype.Type {
	if d == nil {
		return dtype.Type{}
	}

	t := dtype.Type{Name: d.Name}
	if d.TargetType != "" {
		t.Ref = &dtype.Ref{TargetType: d.TargetType, RefType: d.RefType}
	}

	for _, f := range d.Compound {
		t.Compound = append(t.Compound, dtype.Field{Name: f.Name, Dtype: f.Dtype.Type()})
	}

	return t
}

// Resolver indexes the builders of a tree being read by path and runs the
// steps that need the whole tree once every node exists.
type Resolver struct {
	byPath  map[string]builder.Builder
	pending []func() error
}

func NewResolver() *Resolver {
	return &Resolver{byPath: make(map[string]builder.Builder)}
}

// Add indexes b under its current path; b must already be attached to its parent.
func (r *Resolver) Add(b builder.Builder) {
	r.byPath[b.Path()] = b
}

// Lookup returns the builder read at path.
func (r *Resolver) Lookup(path string) (builder.Builder, error) {
	b, ok := r.byPath[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedPath, path)
	}

	return b, nil
}

// Defer queues fn until Resolve.
func (r *Resolver) Defer(fn func() error) {
	r.pending = append(r.pending, fn)
}

// SetAttribute decodes v onto b, deferring values that hold references.
func (r *Resolver) SetAttribute(b builder.Attributed, name string, v Value) error {
	set := func() error {
		val, err := DecodeValue(v, r.Lookup)
		if err != nil {
			return fmt.Errorf("attribute '%s' of %s: %w", name, b.Path(), err)
		}

		return b.SetAttribute(name, val)
	}

	if v.HasRefs() {
		r.Defer(set)
		return nil
	}

	return set()
}

// NewDataset creates a dataset from a stored value. Data holding references is
// set once the tree is resolved.
func (r *Resolver) NewDataset(name string, data *Value, dt *Dtype) (*builder.DatasetBuilder, error) {
	if data == nil {
		return builder.NewDataset(name, nil, dt.Type()), nil
	}

	if data.HasRefs() {
		d := builder.NewDataset(name, nil, dt.Type())
		r.Defer(func() error {
			val, err := DecodeValue(*data, r.Lookup)
			if err != nil {
				return fmt.Errorf("data of %s: %w", d.Path(), err)
			}

			return d.SetData(val)
		})

		return d, nil
	}

	val, err := DecodeValue(*data, nil)
	if err != nil {
		return nil, fmt.Errorf("data of %s: %w", name, err)
	}

	return builder.NewDataset(name, val, dt.Type()), nil
}

// Link queues a link from g to the builder stored at target.
func (r *Resolver) Link(g *builder.GroupBuilder, name, target string) {
	r.Defer(func() error {
		b, err := r.Lookup(target)
		if err != nil {
			return fmt.Errorf("link '%s' of %s: %w", name, g.Path(), err)
		}

		return g.SetLink(builder.NewLink(b, name))
	})
}

// Resolve runs every deferred step in the order it was queued.
func (r *Resolver) Resolve() error {
	pending := r.pending
	r.pending = nil

	for _, fn := range pending {
		if err := fn(); err != nil {
			return err
		}
	}

	return nil
}
