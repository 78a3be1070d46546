package build

import (
	"errors"
	"fmt"
)

var (
	ErrOrphanLink       = errors.New("linked container has no parent")
	ErrUnbuiltReference = errors.New("reference target not built")
	ErrUnexpectedType   = errors.New("unexpected type")
	ErrNoClass          = errors.New("no class registered")
	ErrNoSpec           = errors.New("class has no spec")
	ErrNoDataType       = errors.New("builder has no data_type")
	ErrConstructCycle   = errors.New("cyclic construction")
	ErrEmptyInference   = errors.New("Cannot infer dtype of empty list or tuple. Please use a typed slice with the intended dtype.")
	ErrNumericSpec      = errors.New("value is not numeric")
	ErrNotReference     = errors.New("value is not a reference")
	ErrSourceSet        = errors.New("Cannot change container_source once set")
)

// BuildError is a fatal failure while building a record, located at a builder.
type BuildError struct {
	Name    string
	Path    string
	Message string
	Err     error
}

func (e *BuildError) Error() string {
	if e.Name == "" {
		return e.Message
	}

	return fmt.Sprintf("%s (%s): %s", e.Name, e.Path, e.Message)
}

func (e *BuildError) Unwrap() error { return e.Err }

// ConstructError is a fatal failure while constructing a record from a builder.
type ConstructError struct {
	Name string
	Path string
	Err  error
}

func (e *ConstructError) Error() string {
	return fmt.Sprintf("%s (%s): could not construct record: %v", e.Name, e.Path, e.Err)
}

func (e *ConstructError) Unwrap() error { return e.Err }
