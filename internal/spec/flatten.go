package spec

import (
	"strings"

	"datatree-mapper/internal/common"
)

// FieldSep joins the parts of a flattened field name.
const FieldSep = "__"

// Binding pairs a logical field name with the spec element it stands for.
type Binding struct {
	Name string
	Spec Spec
}

// Flatten lists the default logical field names of a type spec: its attributes,
// groups, datasets and links, with the contents of untyped children nested
// under "<child>__<element>". Typed children are not descended into.
func Flatten(s Spec) []Binding {
	f := &flattener{pos: make(map[string]int)}

	for _, a := range Attributes(s) {
		f.visit(nil, a)
	}

	if g, ok := s.(*GroupSpec); ok {
		for _, c := range g.Groups {
			f.visit(nil, c)
		}

		for _, d := range g.Datasets {
			f.visit(nil, d)
		}

		for _, l := range g.Links {
			f.visit(nil, l)
		}
	}

	return f.out
}

type flattener struct {
	out []Binding
	pos map[string]int
}

func (f *flattener) add(name string, s Spec) {
	if i, ok := f.pos[name]; ok {
		f.out[i].Spec = s
		return
	}

	f.pos[name] = len(f.out)
	f.out = append(f.out, Binding{Name: name, Spec: s})
}

func (f *flattener) visit(stack []string, s Spec) {
	name := s.Head().Name
	if name == "" {
		name = ConvertDtName(s)
	}

	stack = append(stack[:len(stack):len(stack)], name)
	f.add(strings.Join(stack, FieldSep), s)

	if IsTyped(s) {
		return
	}

	for _, a := range Attributes(s) {
		f.visit(stack, a)
	}

	g, ok := s.(*GroupSpec)
	if !ok {
		return
	}

	for _, d := range g.Datasets {
		f.visit(stack, d)
	}

	for _, c := range g.Groups {
		f.visit(stack, c)
	}

	for _, l := range g.Links {
		f.visit(stack, l)
	}
}

// ConvertDtName derives a field name from a nameless spec's data type:
// snake_case, pluralised with "s" when the spec allows many.
func ConvertDtName(s Spec) string {
	name := common.ToSnake(s.DataType())
	if s.IsMany() && !strings.HasSuffix(name, "s") {
		name += "s"
	}

	return name
}
