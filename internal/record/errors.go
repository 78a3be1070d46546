package record

import "errors"

var (
	ErrUnknownArgument = errors.New("unrecognized argument")
	ErrMissingArgument = errors.New("missing argument")
	ErrWrongType       = errors.New("incorrect type")
	ErrWrongShape      = errors.New("incorrect shape")
	ErrInvalidName     = errors.New("name cannot contain '/'")
	ErrParentSet       = errors.New("Cannot reassign parent")
	ErrNotChild        = errors.New("not a child of this record")
	ErrUnknownField    = errors.New("unknown field")
	ErrFieldSet        = errors.New("field already set")
	ErrNotCollection   = errors.New("not a keyed collection")
	ErrDuplicateItem   = errors.New("item already exists")
	ErrNoItem          = errors.New("no such item")
	ErrNotData         = errors.New("record data is not appendable")
)
