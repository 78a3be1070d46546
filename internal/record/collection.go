package record

import (
	"fmt"

	"datatree-mapper/internal/common"
)

// Add inserts item into the keyed collection field, adopting it if unparented.
func (r *Record) Add(field string, item *Record) error {
	f := r.class.Field(field)
	if f == nil || r.class.Collection(field) == nil {
		return fmt.Errorf("%w: %s.%s", ErrNotCollection, r.class.Name, field)
	}

	if err := f.Type.checkRecord(item); err != nil {
		return fmt.Errorf("%s '%s' field '%s': %w", r.class.Name, r.name, field, err)
	}

	col, ok := r.collections[field]
	if !ok {
		col = common.NewOrderedMap[*Record]()
		r.collections[field] = col
	}

	if col.Has(item.name) {
		return fmt.Errorf("%w: '%s' already exists in %s", ErrDuplicateItem, item.name, r)
	}

	col.Set(item.name, item)

	if item.parent == nil {
		if err := item.SetParent(r); err != nil {
			return err
		}
	}

	r.SetModified(true)

	return nil
}

// Item returns the named item of a keyed collection.
func (r *Record) Item(field, name string) (*Record, error) {
	if r.class.Collection(field) == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotCollection, r.class.Name, field)
	}

	if col, ok := r.collections[field]; ok {
		if item, ok := col.Get(name); ok {
			return item, nil
		}
	}

	return nil, fmt.Errorf("%w: '%s' not found in %s.%s", ErrNoItem, name, r, field)
}

// Items lists the items of a keyed collection in insertion order.
func (r *Record) Items(field string) []*Record {
	col, ok := r.collections[field]
	if !ok {
		return nil
	}

	return col.Values()
}

// Create builds a record of the collection's item class from args and adds it.
func (r *Record) Create(field string, args Args, opts ...Option) (*Record, error) {
	f := r.class.Field(field)
	if f == nil || r.class.Collection(field) == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotCollection, r.class.Name, field)
	}

	if f.Type.Class == nil {
		return nil, fmt.Errorf("%w: item class of %s.%s is not known", ErrWrongType, r.class.Name, field)
	}

	item, err := f.Type.Class.New(args, opts...)
	if err != nil {
		return nil, err
	}

	if err := r.Add(field, item); err != nil {
		return nil, err
	}

	return item, nil
}

// RemoveItem drops the named item from a keyed collection, detaching it if r owns it.
func (r *Record) RemoveItem(field, name string) error {
	item, err := r.Item(field, name)
	if err != nil {
		return err
	}

	if item.parent == r {
		return r.RemoveChild(item)
	}

	r.collections[field].Delete(name)
	r.SetModified(true)

	return nil
}
