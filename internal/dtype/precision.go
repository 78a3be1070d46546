package dtype

import (
	"errors"
	"fmt"
)

// Warning classifies the diagnostic a numeric conversion produces.
type Warning int

const (
	WarnNone             Warning = iota // the value keeps or matches its precision
	WarnAsSpecified                     // the value is widened (or reinterpreted) to the declared kind
	WarnMinSpecification                // the value is moved to the declared family at its own width
)

var (
	// ErrUnsupportedConversion is returned for kind pairs absent from the precision table.
	ErrUnsupportedConversion = errors.New("unsupported dtype conversion")
	// ErrIncompatible is returned when a value can never be stored under the declared kind.
	ErrIncompatible = errors.New("incompatible dtype")
)

// Pair is a (given value kind, declared kind) combination.
type Pair struct {
	Given, Spec Kind
}

// Rule is the outcome of converting a value of kind Given to a declared kind.
type Rule struct {
	Result  Kind
	Warning Warning
}

var (
	precisionRules map[Pair]Rule
	incompatible   map[Pair]struct{}
)

func init() {
	precisionRules = make(map[Pair]Rule)
	incompatible = make(map[Pair]struct{})

	for given := Kind(1); int(given) < KindTotal; given++ {
		if !given.IsNumber() && given != Bool {
			continue
		}

		for spec := Kind(1); int(spec) < KindTotal; spec++ {
			if !spec.IsNumber() && spec != Bool {
				continue
			}

			pair := Pair{given, spec}
			if rule, ok := resolveNumeric(given, spec); ok {
				precisionRules[pair] = rule
			} else {
				incompatible[pair] = struct{}{}
			}
		}
	}
}

// resolveNumeric fills one cell of the precision table.
func resolveNumeric(given, spec Kind) (Rule, bool) {
	switch {
	case given == spec:
		return Rule{Result: spec}, true
	case given.Bits() <= spec.Bits():
		// bool -> int8 and float32 -> int32 land here as well
		return Rule{Result: spec, Warning: WarnAsSpecified}, true
	case given.Base() == spec.Base():
		return Rule{Result: given}, true
	case spec.IsUnsigned():
		k, _ := sized("uint", given.Bits())
		return Rule{Result: k, Warning: WarnMinSpecification}, true
	case spec.IsFloat():
		k, _ := sized("float", max(given.Bits(), 32))
		return Rule{Result: k, Warning: WarnMinSpecification}, true
	case spec.IsSigned():
		k, _ := sized("int", given.Bits())
		return Rule{Result: k, Warning: WarnMinSpecification}, true
	default:
		return Rule{}, false
	}
}

// Resolve looks up the conversion of a value of kind given into a declared kind.
func Resolve(given, spec Kind) (Rule, error) {
	pair := Pair{given, spec}
	if rule, ok := precisionRules[pair]; ok {
		return rule, nil
	}

	if _, ok := incompatible[pair]; ok {
		return Rule{}, fmt.Errorf("%w: expected %s, received %s - must supply %s", ErrIncompatible, spec, given, spec)
	}

	return Rule{}, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, given, spec)
}

// Message renders the warning text of a rule, or "" when the rule is silent.
func (r Rule) Message(given, spec Kind) string {
	switch r.Warning {
	case WarnAsSpecified:
		return fmt.Sprintf("Value with data type %s is being converted to data type %s as specified.", given, r.Result)
	case WarnMinSpecification:
		return fmt.Sprintf("Value with data type %s is being converted to data type %s (min specification: %s).",
			given, r.Result, spec)
	default:
		return ""
	}
}
