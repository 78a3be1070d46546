package record

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"datatree-mapper/internal/common"
)

// Args are constructor arguments keyed by field name, plus "name".
type Args map[string]any

// Record is an instance of a Class.
type Record struct {
	class       *Class
	name        string
	objectID    string
	parent      *Record
	children    []*Record
	fields      map[string]any
	collections map[string]*common.OrderedMap[*Record]
	modified    bool
	source      string
}

type options struct {
	objectID string
	source   string
}

// Option configures a new record.
type Option func(*options)

// WithObjectID keeps an existing object id instead of generating one.
func WithObjectID(id string) Option {
	return func(o *options) { o.objectID = id }
}

// WithSource records where the record was read from.
func WithSource(source string) Option {
	return func(o *options) { o.source = source }
}

// New validates args against the constructor parameters and returns a record.
func (c *Class) New(args Args, opts ...Option) (*Record, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	name, err := c.resolveName(args)
	if err != nil {
		return nil, err
	}

	if err := c.checkArgs(args); err != nil {
		return nil, err
	}

	r := &Record{
		class:       c,
		name:        name,
		objectID:    o.objectID,
		fields:      make(map[string]any),
		collections: make(map[string]*common.OrderedMap[*Record]),
		modified:    true,
		source:      o.source,
	}

	if r.objectID == "" {
		r.objectID = uuid.NewString()
	}

	for _, f := range c.Params() {
		v := args[f.Name]
		if isNil(v) {
			if f.Required {
				return nil, fmt.Errorf("%w: %s requires '%s'", ErrMissingArgument, c.Name, f.Name)
			}

			if v = f.Default; v == nil {
				continue
			}
		}

		if err := r.assign(f, v); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (c *Class) resolveName(args Args) (string, error) {
	raw, given := args["name"]

	if fixed := c.fixedName(); fixed != "" {
		if given {
			return "", fmt.Errorf("%w: %s has the fixed name '%s'", ErrUnknownArgument, c.Name, fixed)
		}

		return fixed, nil
	}

	name, ok := raw.(string)
	if given && !ok && raw != nil {
		return "", fmt.Errorf("%w: %s name must be a string, got %T", ErrWrongType, c.Name, raw)
	}

	if name == "" {
		name = c.defaultName()
	}

	if name == "" {
		return "", fmt.Errorf("%w: %s requires 'name'", ErrMissingArgument, c.Name)
	}

	if strings.Contains(name, "/") {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidName, name)
	}

	return name, nil
}

func (c *Class) suggestParam(k string) string {
	params := c.Params()

	names := make([]string, 0, len(params))
	for _, f := range params {
		names = append(names, f.Name)
	}

	return common.DidYouMean(k, names)
}

func (c *Class) checkArgs(args Args) error {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		if k == "name" {
			continue
		}

		if f := c.Field(k); f == nil || f.Internal {
			return fmt.Errorf("%w: %s has no parameter '%s'%s", ErrUnknownArgument, c.Name, k, c.suggestParam(k))
		}
	}

	return nil
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

// assign type-checks v and stores it, adopting unparented children.
func (r *Record) assign(f *Field, v any) error {
	if err := f.Type.Check(v); err != nil {
		return fmt.Errorf("%s '%s' field '%s': %w", r.class.Name, r.name, f.Name, err)
	}

	if r.class.Collection(f.Name) != nil {
		for _, item := range records(v) {
			if err := r.Add(f.Name, item); err != nil {
				return err
			}
		}

		return nil
	}

	r.fields[f.Name] = v

	if f.Role == RoleChild {
		for _, child := range records(v) {
			if child.parent == nil {
				if err := child.SetParent(r); err != nil {
					return err
				}
			}
		}
	}

	r.SetModified(true)

	return nil
}

func records(v any) []*Record {
	switch x := v.(type) {
	case *Record:
		return []*Record{x}
	case []*Record:
		return x
	default:
		return nil
	}
}

func (r *Record) Class() *Class { return r.class }

func (r *Record) Name() string { return r.name }

func (r *Record) ObjectID() string { return r.objectID }

func (r *Record) Parent() *Record { return r.parent }

// SetParent binds r to p once and registers r as a child of p.
func (r *Record) SetParent(p *Record) error {
	if r.parent != nil {
		if r.parent == p {
			return nil
		}

		return fmt.Errorf("%w to %s. Parent is already: %s.", ErrParentSet, p, r.parent)
	}

	r.parent = p
	if p != nil {
		p.children = append(p.children, r)
		p.SetModified(true)
	}

	return nil
}

func (r *Record) Children() []*Record { return slices.Clone(r.children) }

// RemoveChild detaches c from r and clears every field of r that held it.
func (r *Record) RemoveChild(c *Record) error {
	i := slices.Index(r.children, c)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotChild, c)
	}

	r.children = slices.Delete(r.children, i, i+1)
	c.parent = nil

	for name, v := range r.fields {
		switch x := v.(type) {
		case *Record:
			if x == c {
				delete(r.fields, name)
			}
		case []*Record:
			rest := slices.DeleteFunc(slices.Clone(x), func(e *Record) bool { return e == c })
			if len(rest) == 0 {
				delete(r.fields, name)
			} else {
				r.fields[name] = rest
			}
		}
	}

	for _, col := range r.collections {
		if item, ok := col.Get(c.name); ok && item == c {
			col.Delete(c.name)
		}
	}

	r.SetModified(true)

	return nil
}

// Get returns a field value; keyed collections return their items in insertion order.
func (r *Record) Get(field string) any {
	if col, ok := r.collections[field]; ok {
		if col.Len() == 0 {
			return nil
		}

		return col.Values()
	}

	return r.fields[field]
}

// Set assigns a field that has not been set yet.
func (r *Record) Set(field string, v any) error {
	f := r.class.Field(field)
	if f == nil {
		return fmt.Errorf("%w: %s has no field '%s'", ErrUnknownField, r.class.Name, field)
	}

	if r.class.Collection(field) == nil && !isNil(r.fields[field]) {
		return fmt.Errorf("%w: can't set attribute '%s' -- already set", ErrFieldSet, field)
	}

	return r.assign(f, v)
}

func (r *Record) Modified() bool { return r.modified }

// SetModified marks r; marking it modified also marks its ancestors.
func (r *Record) SetModified(modified bool) {
	r.modified = modified

	if modified && r.parent != nil {
		r.parent.SetModified(true)
	}
}

func (r *Record) Source() string { return r.source }

func (r *Record) SetSource(source string) { r.source = source }

// Data returns the data field of a dataset-like record.
func (r *Record) Data() any { return r.fields["data"] }

// Append adds one element to slice data.
func (r *Record) Append(v any) error {
	return r.Extend(reflectSliceOf(v))
}

// Extend appends every element of vs to slice data.
func (r *Record) Extend(vs any) error {
	data := reflect.ValueOf(r.Data())
	add := reflect.ValueOf(vs)

	if !data.IsValid() || data.Kind() != reflect.Slice || add.Kind() != reflect.Slice {
		return fmt.Errorf("%w: %s", ErrNotData, r)
	}

	out := data
	for i := range add.Len() {
		e := add.Index(i)
		if e.Kind() == reflect.Interface {
			e = e.Elem()
		}

		if !e.IsValid() {
			return fmt.Errorf("%w: cannot append nil to %s", ErrWrongType, data.Type())
		}

		if !e.Type().AssignableTo(data.Type().Elem()) {
			return fmt.Errorf("%w: cannot append %s to %s", ErrWrongType, e.Type(), data.Type())
		}

		out = reflect.Append(out, e)
	}

	r.fields["data"] = out.Interface()
	r.SetModified(true)

	return nil
}

func reflectSliceOf(v any) any {
	rv := reflect.ValueOf(v)
	s := reflect.MakeSlice(reflect.SliceOf(rv.Type()), 0, 1)

	return reflect.Append(s, rv).Interface()
}

func (r *Record) String() string {
	return fmt.Sprintf("%s '%s'", r.class.Name, r.name)
}
