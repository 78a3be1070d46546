package spec

import "errors"

// Schema-construction errors.
var (
	ErrInvalidSpec       = errors.New("invalid spec")
	ErrNamelessUntyped   = errors.New("a spec without a name must specify data_type_def and/or data_type_inc")
	ErrNamedMany         = errors.New("a spec that permits more than one instance cannot have a fixed name")
	ErrAmbiguousDataType = errors.New("multiple groups/datasets/links with the same data type without specifying name")
)

// Catalog and namespace errors.
var (
	ErrNoDataTypeDef     = errors.New("cannot register spec that has no data_type_def")
	ErrSpecExists        = errors.New("cannot overwrite existing specification")
	ErrNamespaceExists   = errors.New("namespace already exists")
	ErrNotNamespace      = errors.New("not a namespace")
	ErrNoSpecification   = errors.New("No specification")
	ErrUnresolvedInclude = errors.New("Cannot resolve include spec")
	ErrInheritanceCycle  = errors.New("cyclic data type inheritance")
	ErrLoadNamespace     = errors.New("Could not load namespace")
	ErrSchemaEntry       = errors.New("schema entry must have 'source' or 'namespace'")
	ErrNoNamespaces      = errors.New("no 'namespaces' found")
	ErrNoSpecs           = errors.New("no 'groups' or 'datasets' found")
)
