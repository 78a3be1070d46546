package spec

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Quantity constrains how many instances of a spec may occur under its parent.
// The zero value means exactly one; positive values are exact counts.
type Quantity int

const (
	ZeroOrOne  Quantity = -1 // ?
	ZeroOrMany Quantity = -2 // *
	OneOrMany  Quantity = -3 // +
	One        Quantity = 1
)

func (q Quantity) norm() Quantity {
	if q == 0 {
		return One
	}

	return q
}

// IsMany reports whether more than one instance may occur.
func (q Quantity) IsMany() bool {
	q = q.norm()
	return q == ZeroOrMany || q == OneOrMany || q > 1
}

// IsRequired reports whether at least one instance must occur.
func (q Quantity) IsRequired() bool {
	q = q.norm()
	return q == OneOrMany || q >= 1
}

// Allows reports whether n instances satisfy the quantity.
func (q Quantity) Allows(n int) bool {
	switch q = q.norm(); q {
	case ZeroOrOne:
		return n <= 1
	case ZeroOrMany:
		return true
	case OneOrMany:
		return n >= 1
	default:
		return n == int(q)
	}
}

func (q Quantity) IsZero() bool {
	return q.norm() == One
}

// String returns the schema notation: ?, *, + or the exact count.
func (q Quantity) String() string {
	switch q = q.norm(); q {
	case ZeroOrOne:
		return "?"
	case ZeroOrMany:
		return "*"
	case OneOrMany:
		return "+"
	default:
		return strconv.Itoa(int(q))
	}
}

// ParseQuantity accepts ?, *, +, their long names, or a positive integer.
func ParseQuantity(s string) (Quantity, error) {
	switch s {
	case "?", "zero_or_one":
		return ZeroOrOne, nil
	case "*", "zero_or_many":
		return ZeroOrMany, nil
	case "+", "one_or_many":
		return OneOrMany, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: quantity must be ?, *, + or a positive integer, got %q", ErrInvalidSpec, s)
	}

	return Quantity(n), nil
}

// UnmarshalYAML implements custom YAML unmarshaling for Quantity.
func (q *Quantity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: quantity must be a scalar", node.Line)
	}

	v, err := ParseQuantity(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	*q = v

	return nil
}

// MarshalYAML writes symbols for open quantities and an integer for exact ones.
func (q Quantity) MarshalYAML() (any, error) {
	if q.norm() > 0 {
		return int(q.norm()), nil
	}

	return q.String(), nil
}
