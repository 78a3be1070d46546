package spec

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AnyExtent marks a dimension of unconstrained length.
const AnyExtent = -1

// Shape lists the allowed shapes of a value; each option gives one extent per dimension.
type Shape [][]int

// Dims names the dimensions of each allowed shape.
type Dims [][]string

// Matches reports whether extents satisfy at least one option. An empty Shape matches anything.
func (s Shape) Matches(extents []int) bool {
	if len(s) == 0 {
		return true
	}

	for _, option := range s {
		if len(option) != len(extents) {
			continue
		}

		ok := true

		for i, want := range option {
			if want != AnyExtent && want != extents[i] {
				ok = false
				break
			}
		}

		if ok {
			return true
		}
	}

	return false
}

// String renders the options the way a schema writes them, with null for open extents.
func (s Shape) String() string {
	render := func(option []int) string {
		out := "["
		for i, e := range option {
			if i > 0 {
				out += ", "
			}

			if e == AnyExtent {
				out += "null"
			} else {
				out += strconv.Itoa(e)
			}
		}

		return out + "]"
	}

	if len(s) == 1 {
		return render(s[0])
	}

	out := "["
	for i, option := range s {
		if i > 0 {
			out += ", "
		}

		out += render(option)
	}

	return out + "]"
}

// UnmarshalYAML accepts a single shape ([null, 3]) or a list of shapes ([[null], [null, 3]]).
func (s *Shape) UnmarshalYAML(node *yaml.Node) error {
	options, err := nestedOptions(node, func(n *yaml.Node) (int, error) {
		if n.ShortTag() == "!!null" {
			return AnyExtent, nil
		}

		v, err := strconv.Atoi(n.Value)
		if err != nil {
			return 0, fmt.Errorf("line %d: shape extent must be an integer or null", n.Line)
		}

		return v, nil
	})
	if err != nil {
		return err
	}

	*s = options

	return nil
}

// MarshalYAML writes a single option unnested.
func (s Shape) MarshalYAML() (any, error) {
	toAny := func(option []int) []any {
		out := make([]any, len(option))
		for i, e := range option {
			if e != AnyExtent {
				out[i] = e
			}
		}

		return out
	}

	if len(s) == 1 {
		return toAny(s[0]), nil
	}

	out := make([][]any, len(s))
	for i, option := range s {
		out[i] = toAny(option)
	}

	return out, nil
}

// UnmarshalYAML accepts a single list of names or a list of such lists.
func (d *Dims) UnmarshalYAML(node *yaml.Node) error {
	options, err := nestedOptions(node, func(n *yaml.Node) (string, error) {
		return n.Value, nil
	})
	if err != nil {
		return err
	}

	*d = options

	return nil
}

// MarshalYAML writes a single option unnested.
func (d Dims) MarshalYAML() (any, error) {
	if len(d) == 1 {
		return d[0], nil
	}

	return [][]string(d), nil
}

func nestedOptions[T any](node *yaml.Node, scalar func(*yaml.Node) (T, error)) ([][]T, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a sequence", node.Line)
	}

	flat := true

	for _, item := range node.Content {
		if item.Kind == yaml.SequenceNode {
			flat = false
			break
		}
	}

	readOption := func(seq *yaml.Node) ([]T, error) {
		option := make([]T, 0, len(seq.Content))

		for _, item := range seq.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: expected a scalar", item.Line)
			}

			v, err := scalar(item)
			if err != nil {
				return nil, err
			}

			option = append(option, v)
		}

		return option, nil
	}

	if flat {
		option, err := readOption(node)
		if err != nil {
			return nil, err
		}

		return [][]T{option}, nil
	}

	options := make([][]T, 0, len(node.Content))

	for _, item := range node.Content {
		if item.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: cannot mix shapes and extents", item.Line)
		}

		option, err := readOption(item)
		if err != nil {
			return nil, err
		}

		options = append(options, option)
	}

	return options, nil
}
