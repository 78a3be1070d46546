package common

import (
	"path"
	"regexp"
	"strings"
	"unicode"
)

// UnknownStr is printed for enum values outside their declared range.
const UnknownStr = "unknown"

var (
	camelWord  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	camelUpper = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// ToSnake converts a CamelCase identifier to snake_case ("FooBucket" -> "foo_bucket").
func ToSnake(s string) string {
	s = camelWord.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(camelUpper.ReplaceAllString(s, "${1}_${2}"))
}

// ToCamel converts a snake_case or dashed name to an exported CamelCase identifier.
// Double underscores of flattened names collapse like single ones.
func ToCamel(s string) string {
	var b strings.Builder

	upper := true

	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			upper = true
		case upper:
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			b.WriteRune(r)
		}
	}

	out := b.String()
	if out != "" && unicode.IsDigit(rune(out[0])) {
		out = "X" + out
	}

	return out
}

// PkgAlias returns the last element of an import path, or "" for an empty path.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}
