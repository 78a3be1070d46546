package builder

import (
	"errors"
	"fmt"
)

var (
	ErrParentSet    = errors.New("cannot reset parent once it is specified")
	ErrSourceSet    = errors.New("cannot reset source once it is specified")
	ErrDataSet      = errors.New("cannot reset data once it is specified")
	ErrDtypeSet     = errors.New("cannot reset dtype once it is specified")
	ErrInvalidName  = errors.New("builder name cannot contain '/'")
	ErrNameConflict = errors.New("name already in use")
)

// NameConflictError reports a child name already bound to another kind in the same group.
type NameConflictError struct {
	Name      string
	Parent    string
	Existing  string
	Requested string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("'%s' already exists in %s.%s, cannot set in %s.", e.Name, e.Parent, e.Existing, e.Requested)
}

func (e *NameConflictError) Unwrap() error { return ErrNameConflict }
