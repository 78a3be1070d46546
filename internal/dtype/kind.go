package dtype

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

//go:generate go tool stringer -type=Kind -linecomment -output=kind_string.go

// Kind is a primitive data type a schema may declare for attributes and datasets.
type Kind int

const (
	_ Kind = iota // zero value is an invalid kind

	Int8        // int8
	Int16       // int16
	Int32       // int32
	Int64       // int64
	Uint8       // uint8
	Uint16      // uint16
	Uint32      // uint32
	Uint64      // uint64
	Float32     // float32
	Float64     // float64
	Bool        // bool
	Text        // utf8
	ASCII       // ascii
	Isodatetime // isodatetime
	Object      // object
	Region      // region
	Numeric     // numeric

	// KindTotal is the number of kinds defined, including the invalid zero value.
	KindTotal = int(iota)
)

// ErrUnknown is returned when a dtype name cannot be resolved to a Kind.
var ErrUnknown = errors.New("unknown dtype")

var aliases = map[string]Kind{
	"int8":        Int8,
	"short":       Int16,
	"int16":       Int16,
	"int":         Int32,
	"int32":       Int32,
	"long":        Int64,
	"int64":       Int64,
	"uint8":       Uint8,
	"uint16":      Uint16,
	"uint":        Uint32,
	"uint32":      Uint32,
	"uint64":      Uint64,
	"float":       Float32,
	"float32":     Float32,
	"double":      Float64,
	"float64":     Float64,
	"bool":        Bool,
	"text":        Text,
	"utf":         Text,
	"utf8":        Text,
	"utf-8":       Text,
	"ascii":       ASCII,
	"bytes":       ASCII,
	"isodatetime": Isodatetime,
	"datetime":    Isodatetime,
	"object":      Object,
	"region":      Region,
	"numeric":     Numeric,
}

// Parse resolves a dtype name, including its aliases, to a Kind.
func Parse(name string) (Kind, error) {
	if k, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// IsValid reports whether k is one of the declared kinds.
func (k Kind) IsValid() bool {
	return k > 0 && int(k) < KindTotal
}

func (k Kind) IsNumber() bool {
	return k.IsInteger() || k.IsFloat()
}

func (k Kind) IsInteger() bool {
	return k.IsSigned() || k.IsUnsigned()
}

func (k Kind) IsFloat() bool {
	switch k {
	default:
		return false
	case Float32, Float64:
		return true
	}
}

func (k Kind) IsSigned() bool {
	switch k {
	default:
		return false
	case Int8, Int16, Int32, Int64:
		return true
	}
}

func (k Kind) IsUnsigned() bool {
	switch k {
	default:
		return false
	case Uint8, Uint16, Uint32, Uint64:
		return true
	}
}

// IsText reports whether k is one of the string kinds.
func (k Kind) IsText() bool {
	switch k {
	default:
		return false
	case Text, ASCII, Isodatetime:
		return true
	}
}

// IsReference reports whether k is a reference kind.
func (k Kind) IsReference() bool {
	return k == Object || k == Region
}

// Bits returns the storage width of a numeric or boolean kind.
func (k Kind) Bits() int {
	switch k {
	default:
		panic("only numeric and bool kinds have a meaningful width, but requested for: " + k.String())
	case Int8, Uint8, Bool:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32, Float32:
		return 32
	case Int64, Uint64, Float64:
		return 64
	}
}

// Base returns the family of a numeric or boolean kind: int, uint, float or bool.
func (k Kind) Base() string {
	switch {
	case k.IsSigned():
		return "int"
	case k.IsUnsigned():
		return "uint"
	case k.IsFloat():
		return "float"
	case k == Bool:
		return "bool"
	default:
		return ""
	}
}

// sized returns the kind of the given family at the given width.
func sized(base string, bits int) (Kind, bool) {
	for k := Kind(1); int(k) < KindTotal; k++ {
		if k.Base() == base && k.Bits() == bits {
			return k, true
		}
	}

	return 0, false
}

var (
	bytesType = reflect.TypeOf([]byte(nil))
	timeType  = reflect.TypeOf(time.Time{})
)

// GoType returns the Go type values of kind k are stored as.
func (k Kind) GoType() reflect.Type {
	switch k {
	case Int8:
		return reflect.TypeOf(int8(0))
	case Int16:
		return reflect.TypeOf(int16(0))
	case Int32:
		return reflect.TypeOf(int32(0))
	case Int64:
		return reflect.TypeOf(int64(0))
	case Uint8:
		return reflect.TypeOf(uint8(0))
	case Uint16:
		return reflect.TypeOf(uint16(0))
	case Uint32:
		return reflect.TypeOf(uint32(0))
	case Uint64:
		return reflect.TypeOf(uint64(0))
	case Float32:
		return reflect.TypeOf(float32(0))
	case Float64:
		return reflect.TypeOf(float64(0))
	case Bool:
		return reflect.TypeOf(false)
	case Text:
		return reflect.TypeOf("")
	case ASCII, Isodatetime:
		return bytesType
	default:
		return nil
	}
}

// FromReflectType returns the kind of a scalar Go type, or 0 if the type is not a scalar kind.
func FromReflectType(rtype reflect.Type) Kind {
	if rtype == nil {
		return 0
	}

	switch rtype {
	case bytesType:
		return ASCII
	case timeType:
		return Isodatetime
	}

	switch rtype.Kind() {
	case reflect.Int8:
		return Int8
	case reflect.Int16:
		return Int16
	case reflect.Int32:
		return Int32
	case reflect.Int, reflect.Int64:
		return Int64
	case reflect.Uint8:
		return Uint8
	case reflect.Uint16:
		return Uint16
	case reflect.Uint32:
		return Uint32
	case reflect.Uint, reflect.Uint64:
		return Uint64
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	case reflect.Bool:
		return Bool
	case reflect.String:
		return Text
	default:
		return 0
	}
}
