package backend

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"datatree-mapper/internal/builder"
	"datatree-mapper/internal/dtype"
)

var (
	// ErrUnresolvedPath is returned when a stored link or reference points outside the tree.
	ErrUnresolvedPath = errors.New("unresolved builder path")
	// ErrUnsupportedValue is returned for values no storage tag can represent.
	ErrUnsupportedValue = errors.New("unsupported value")
	// ErrFormat is returned when a stored document has an unknown format or kind.
	ErrFormat = errors.New("unrecognized storage format")
)

// Storage tags that are not primitive dtype names.
const (
	TagRef  = "ref"
	TagRefs = "refs"
	TagList = "list"
	TagJSON = "json"
)

// Value is a stored attribute or dataset value tagged with the dtype it was
// written with, so integer and float widths survive a round trip.
type Value struct {
	Dtype string          `json:"dtype"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ref   string          `json:"ref,omitempty"`
	Refs  []string        `json:"refs,omitempty"`
	Items []Value         `json:"items,omitempty"`
}

// EncodeValue tags v with its dtype. References are stored as builder paths.
func EncodeValue(v any) (Value, error) {
	switch x := v.(type) {
	case *builder.RegionBuilder:
		return Value{}, fmt.Errorf("%w: region reference to %s", ErrUnsupportedValue, x.Target.Path())
	case *builder.ReferenceBuilder:
		return Value{Dtype: TagRef, Ref: x.Target.Path()}, nil
	case []*builder.ReferenceBuilder:
		paths := make([]string, len(x))
		for i, ref := range x {
			paths[i] = ref.Target.Path()
		}

		return Value{Dtype: TagRefs, Refs: paths}, nil
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			enc, err := EncodeValue(item)
			if err != nil {
				return Value{}, fmt.Errorf("item %d: %w", i, err)
			}

			items[i] = enc
		}

		return Value{Dtype: TagList, Items: items}, nil
	}

	k, ok := dtype.Of(v)
	if !ok {
		data, err := json.Marshal(v)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %T: %v", ErrUnsupportedValue, v, err)
		}

		return Value{Dtype: TagJSON, Data: data}, nil
	}

	plain := v
	if k == dtype.ASCII {
		plain = bytesToText(reflect.ValueOf(v))
	}

	data, err := json.Marshal(plain)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %T: %v", ErrUnsupportedValue, v, err)
	}

	return Value{Dtype: k.String(), Data: data}, nil
}

// HasRefs reports whether decoding v needs the builders of the tree.
func (v Value) HasRefs() bool {
	switch v.Dtype {
	case TagRef, TagRefs:
		return true
	case TagList:
		for _, item := range v.Items {
			if item.HasRefs() {
				return true
			}
		}
	}

	return false
}

// LookupFunc finds the builder stored at path.
type LookupFunc func(path string) (builder.Builder, error)

// DecodeValue restores the Go value EncodeValue tagged. lookup may be nil
// when v holds no references.
func DecodeValue(v Value, lookup LookupFunc) (any, error) {
	switch v.Dtype {
	case TagRef:
		target, err := lookupPath(lookup, v.Ref)
		if err != nil {
			return nil, err
		}

		return builder.NewReference(target), nil
	case TagRefs:
		refs := make([]*builder.ReferenceBuilder, len(v.Refs))
		for i, p := range v.Refs {
			target, err := lookupPath(lookup, p)
			if err != nil {
				return nil, err
			}

			refs[i] = builder.NewReference(target)
		}

		return refs, nil
	case TagList:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			dec, err := DecodeValue(item, lookup)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}

			items[i] = dec
		}

		return items, nil
	case TagJSON:
		var out any
		if err := json.Unmarshal(v.Data, &out); err != nil {
			return nil, err
		}

		return out, nil
	}

	k, err := dtype.Parse(v.Dtype)
	if err != nil {
		return nil, err
	}

	if k == dtype.Isodatetime {
		return decodeTime(v.Data)
	}

	dec := json.NewDecoder(bytes.NewReader(v.Data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s value: %w", v.Dtype, err)
	}

	if raw == nil {
		return nil, nil
	}

	raw, err = fromNumbers(raw, k)
	if err != nil {
		return nil, err
	}

	out, err := dtype.Cast(raw, k)
	if err != nil {
		return nil, err
	}

	return typedEmpty(out, k), nil
}

func lookupPath(lookup LookupFunc, path string) (builder.Builder, error) {
	if lookup == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedPath, path)
	}

	return lookup(path)
}

func bytesToText(rv reflect.Value) any {
	if rv.Type() == reflect.TypeOf([]byte(nil)) {
		return string(rv.Bytes())
	}

	out := make([]any, rv.Len())
	for i := range rv.Len() {
		e := rv.Index(i)
		if e.Kind() == reflect.Interface {
			e = e.Elem()
		}

		out[i] = bytesToText(e)
	}

	return out
}

func fromNumbers(v any, k dtype.Kind) (any, error) {
	switch x := v.(type) {
	case json.Number:
		switch {
		case k.IsUnsigned():
			return strconv.ParseUint(x.String(), 10, 64)
		case k.IsSigned():
			return x.Int64()
		default:
			return x.Float64()
		}
	case []any:
		for i, item := range x {
			n, err := fromNumbers(item, k)
			if err != nil {
				return nil, err
			}

			x[i] = n
		}
	}

	return v, nil
}

func decodeTime(data json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(data)) > 0 && bytes.TrimSpace(data)[0] == '[' {
		var ts []time.Time
		if err := json.Unmarshal(data, &ts); err != nil {
			return nil, err
		}

		return ts, nil
	}

	var ts time.Time
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, err
	}

	return ts, nil
}

// typedEmpty turns an empty []any into an empty slice of the kind's Go type.
func typedEmpty(v any, k dtype.Kind) any {
	if items, ok := v.([]any); ok && len(items) == 0 && k.GoType() != nil {
		return reflect.MakeSlice(reflect.SliceOf(k.GoType()), 0, 0).Interface()
	}

	return v
}
