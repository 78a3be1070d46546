package builder

import (
	"reflect"
	"slices"
)

// Equal compares two builder trees structurally. Links and references are equal
// when their targets have the same path; child order is ignored.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case *GroupBuilder:
		y, ok := b.(*GroupBuilder)
		return ok && equalGroup(x, y)
	case *DatasetBuilder:
		y, ok := b.(*DatasetBuilder)
		return ok && equalDataset(x, y)
	case *LinkBuilder:
		y, ok := b.(*LinkBuilder)
		return ok && x.name == y.name && samePath(x.target, y.target)
	case *RegionBuilder:
		y, ok := b.(*RegionBuilder)
		return ok && samePath(x.Target, y.Target) && reflect.DeepEqual(x.Region, y.Region)
	case *ReferenceBuilder:
		y, ok := b.(*ReferenceBuilder)
		return ok && samePath(x.Target, y.Target)
	default:
		return equalValue(a, b)
	}
}

func samePath(a, b Builder) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Path() == b.Path()
}

func equalAttributes(a, b *attributes) bool {
	if a.attrs.Len() != b.attrs.Len() {
		return false
	}

	for _, k := range a.attrs.Keys() {
		va, _ := a.attrs.Get(k)

		vb, ok := b.attrs.Get(k)
		if !ok || !Equal(va, vb) {
			return false
		}
	}

	return true
}

func equalGroup(a, b *GroupBuilder) bool {
	if a.name != b.name || !equalAttributes(&a.attributes, &b.attributes) {
		return false
	}

	return equalChildren(a.groups.Keys(), b.groups.Keys(), func(k string) bool {
		return equalGroup(a.Group(k), b.Group(k))
	}) && equalChildren(a.datasets.Keys(), b.datasets.Keys(), func(k string) bool {
		return equalDataset(a.Dataset(k), b.Dataset(k))
	}) && equalChildren(a.links.Keys(), b.links.Keys(), func(k string) bool {
		return Equal(a.Link(k), b.Link(k))
	})
}

func equalChildren(ka, kb []string, eq func(string) bool) bool {
	if len(ka) != len(kb) {
		return false
	}

	for _, k := range ka {
		if !slices.Contains(kb, k) || !eq(k) {
			return false
		}
	}

	return true
}

func equalDataset(a, b *DatasetBuilder) bool {
	return a.name == b.name &&
		a.dtype.Equal(b.dtype) &&
		equalAttributes(&a.attributes, &b.attributes) &&
		Equal(a.data, b.data)
}

func equalValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)

	if va.Kind() == reflect.Slice && vb.Kind() == reflect.Slice && va.Type().Elem().Kind() != reflect.Uint8 {
		if va.Len() != vb.Len() {
			return false
		}

		for i := range va.Len() {
			if !Equal(va.Index(i).Interface(), vb.Index(i).Interface()) {
				return false
			}
		}

		return true
	}

	return reflect.DeepEqual(a, b)
}
