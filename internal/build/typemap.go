package build

import (
	"fmt"
	"log/slog"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"datatree-mapper/internal/builder"
	"datatree-mapper/internal/classgen"
	"datatree-mapper/internal/diagnostic"
	"datatree-mapper/internal/record"
	"datatree-mapper/internal/spec"
)

// Reserved attributes written on every typed builder.
const (
	AttrNamespace = "namespace"
	AttrDataType  = "data_type"
	AttrObjectID  = "object_id"
)

const DefaultMapperCacheSize = 256

// MapperFactory creates the object mapper for the spec of a data type.
type MapperFactory func(s spec.Spec) *ObjectMapper

// TypeMap binds data types to record classes and object mappers. Classes that
// are not registered explicitly are generated from their spec on first use.
type TypeMap struct {
	catalog     *spec.NamespaceCatalog
	gen         *classgen.Generator
	classes     map[string]map[string]*record.Class
	inProgress  map[string]bool
	mapperTypes map[*record.Class]MapperFactory
	mappers     *lru.Cache[*record.Class, *ObjectMapper]
	diags       diagnostic.Diagnostics
	logger      *slog.Logger
}

type typeMapOptions struct {
	cacheSize int
	logger    *slog.Logger
}

// TypeMapOption configures a TypeMap.
type TypeMapOption func(*typeMapOptions)

// WithMapperCacheSize bounds the number of object mappers kept in memory.
func WithMapperCacheSize(n int) TypeMapOption {
	return func(o *typeMapOptions) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

func WithTypeMapLogger(l *slog.Logger) TypeMapOption {
	return func(o *typeMapOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewTypeMap returns a type map over catalog; a nil catalog starts empty.
func NewTypeMap(catalog *spec.NamespaceCatalog, opts ...TypeMapOption) (*TypeMap, error) {
	o := typeMapOptions{cacheSize: DefaultMapperCacheSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if catalog == nil {
		catalog = spec.NewNamespaceCatalog(spec.WithLogger(o.logger))
	}

	cache, err := lru.New[*record.Class, *ObjectMapper](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("mapper cache: %w", err)
	}

	return &TypeMap{
		catalog:     catalog,
		gen:         classgen.New(),
		classes:     make(map[string]map[string]*record.Class),
		inProgress:  make(map[string]bool),
		mapperTypes: make(map[*record.Class]MapperFactory),
		mappers:     cache,
		logger:      o.logger,
	}, nil
}

func (tm *TypeMap) Catalog() *spec.NamespaceCatalog { return tm.catalog }

// Diagnostics returns the warnings collected while generating classes.
func (tm *TypeMap) Diagnostics() diagnostic.Diagnostics { return tm.diags }

// LoadNamespaces loads a namespace file into the catalog.
func (tm *TypeMap) LoadNamespaces(nsPath string, r spec.Reader) (map[string]map[string][]string, error) {
	return tm.catalog.LoadNamespaces(nsPath, r)
}

// RegisterContainerType binds cls to dt in namespace ns, replacing generation.
func (tm *TypeMap) RegisterContainerType(ns, dt string, cls *record.Class) error {
	if _, err := tm.catalog.Spec(ns, dt); err != nil {
		return err
	}

	if cls.DataType == "" {
		cls.DataType = dt
	}

	if cls.Namespace == "" {
		cls.Namespace = ns
	}

	tm.setClass(ns, dt, cls)
	tm.mappers.Remove(cls)

	return nil
}

// RegisterMap makes factory create the mappers of cls and of its subclasses.
func (tm *TypeMap) RegisterMap(cls *record.Class, factory MapperFactory) {
	tm.mapperTypes[cls] = factory
	tm.mappers.Purge()
}

// RegisterGenerator adds a custom class generator ahead of the registered ones.
func (tm *TypeMap) RegisterGenerator(cg classgen.CustomGenerator) {
	tm.gen.Register(cg)
}

func (tm *TypeMap) setClass(ns, dt string, cls *record.Class) {
	if tm.classes[ns] == nil {
		tm.classes[ns] = make(map[string]*record.Class)
	}

	tm.classes[ns][dt] = cls
}

// GetDtContainerClass returns the class of dt as seen from namespace ns. A type
// included from another namespace resolves to the class of its defining
// namespace. Missing classes are generated when autogen is set.
func (tm *TypeMap) GetDtContainerClass(dt, ns string, autogen bool) (*record.Class, error) {
	cls, err := tm.dtClass(dt, ns, autogen)
	if err != nil {
		return nil, err
	}

	if cls == nil {
		return nil, fmt.Errorf("%w: '%s' in namespace '%s' is still being generated", ErrNoClass, dt, ns)
	}

	return cls, nil
}

func (tm *TypeMap) dtClass(dt, ns string, autogen bool) (*record.Class, error) {
	origin := tm.catalog.TypeSource(ns, dt)

	if cls := tm.classes[origin][dt]; cls != nil {
		if origin != ns {
			tm.setClass(ns, dt, cls)
		}

		return cls, nil
	}

	if cls := tm.classes[ns][dt]; cls != nil {
		return cls, nil
	}

	if !autogen {
		return nil, fmt.Errorf("%w: '%s' in namespace '%s'", ErrNoClass, dt, ns)
	}

	key := origin + "/" + dt
	if tm.inProgress[key] {
		return nil, nil
	}

	s, err := tm.catalog.Spec(origin, dt)
	if err != nil {
		return nil, err
	}

	tm.inProgress[key] = true
	defer delete(tm.inProgress, key)

	var base *record.Class

	if inc := s.Head().DataTypeInc; inc != "" && inc != dt {
		if base, err = tm.GetDtContainerClass(inc, origin, true); err != nil {
			return nil, fmt.Errorf("base of '%s': %w", dt, err)
		}
	}

	resolve := func(child string) (*record.Class, error) {
		return tm.dtClass(child, origin, true)
	}

	cls, diags, err := tm.gen.Generate(dt, origin, s, base, spec.Flatten(s), resolve)
	if err != nil {
		return nil, err
	}

	tm.diags.Merge(diags)
	tm.setClass(origin, dt, cls)

	if origin != ns {
		tm.setClass(ns, dt, cls)
	}

	tm.logger.Debug("generated class", "class", cls.Name, "namespace", origin)

	return cls, nil
}

// ClassType returns the namespace and data type a class is bound to.
func ClassType(cls *record.Class) (ns, dt string) {
	for cur := cls; cur != nil; cur = cur.Base {
		if cur.DataType != "" {
			return cur.Namespace, cur.DataType
		}
	}

	return "", ""
}

// GetMap returns the object mapper for a record.
func (tm *TypeMap) GetMap(r *record.Record) (*ObjectMapper, error) {
	return tm.GetMapForClass(r.Class())
}

// GetMapForClass returns the object mapper for cls, created by the factory
// registered for the nearest class in its MRO.
func (tm *TypeMap) GetMapForClass(cls *record.Class) (*ObjectMapper, error) {
	if om, ok := tm.mappers.Get(cls); ok {
		return om, nil
	}

	ns, dt := ClassType(cls)
	if dt == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoSpec, cls.Name)
	}

	s, err := tm.catalog.Spec(ns, dt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoSpec, cls.Name, err)
	}

	factory := MapperFactory(NewObjectMapper)

	for _, c := range cls.MRO() {
		if f, ok := tm.mapperTypes[c]; ok {
			factory = f
			break
		}
	}

	om := factory(s)
	tm.mappers.Add(cls, om)

	return om, nil
}

// BuilderDt returns the data type stored on a builder, or "".
func BuilderDt(b builder.Builder) string { return stringAttr(b, AttrDataType) }

// BuilderNs returns the namespace stored on a builder, or "".
func BuilderNs(b builder.Builder) string { return stringAttr(b, AttrNamespace) }

func stringAttr(b builder.Builder, name string) string {
	ab, ok := b.(builder.Attributed)
	if !ok {
		return ""
	}

	v, _ := ab.Attribute(name)

	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return ""
	}
}

// GetClass returns the class of the data type stored on b.
func (tm *TypeMap) GetClass(b builder.Builder) (*record.Class, error) {
	dt, ns := BuilderDt(b), BuilderNs(b)
	if dt == "" || ns == "" {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoDataType, b.Name(), b.Path())
	}

	return tm.GetDtContainerClass(dt, ns, true)
}

// IsSubDataType reports whether the builder's data type is parent or inherits from it.
func (tm *TypeMap) IsSubDataType(b builder.Builder, parent string) bool {
	return tm.catalog.IsSubDataType(BuilderNs(b), BuilderDt(b), parent)
}

// IsSubType reports whether records of cls are of data type dt.
func (tm *TypeMap) IsSubType(cls *record.Class, dt string) bool {
	if cls.HasDataType(dt) {
		return true
	}

	ns, own := ClassType(cls)

	return own != "" && tm.catalog.IsSubDataType(ns, own, dt)
}

// Build renders r and stamps the reserved attributes on the result.
func (tm *TypeMap) Build(r *record.Record, m *Manager, opts ...BuildOption) (builder.Builder, error) {
	return tm.build(r, m, newBuildOptions(opts))
}

func (tm *TypeMap) build(r *record.Record, m *Manager, o buildOptions) (builder.Builder, error) {
	om, err := tm.GetMap(r)
	if err != nil {
		return nil, err
	}

	b, err := om.build(r, m, o)
	if err != nil {
		return nil, err
	}

	ab, ok := b.(builder.Attributed)
	if !ok {
		return b, nil
	}

	ns, dt := ClassType(r.Class())

	for _, kv := range [][2]string{{AttrNamespace, ns}, {AttrDataType, dt}, {AttrObjectID, r.ObjectID()}} {
		if err := ab.SetAttribute(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Construct creates the record described by b.
func (tm *TypeMap) Construct(b builder.Builder, m *Manager) (*record.Record, error) {
	cls, err := tm.GetClass(b)
	if err != nil {
		return nil, err
	}

	om, err := tm.GetMapForClass(cls)
	if err != nil {
		return nil, err
	}

	r, err := om.Construct(b, m, cls)
	if err != nil {
		return nil, &ConstructError{Name: b.Name(), Path: b.Path(), Err: err}
	}

	return r, nil
}

// Merge copies the namespaces, classes, mappers and generators of other that
// this type map does not have yet.
func (tm *TypeMap) Merge(other *TypeMap) error {
	if other.catalog != tm.catalog {
		if err := tm.catalog.Merge(other.catalog); err != nil {
			return err
		}
	}

	for ns, byDt := range other.classes {
		for dt, cls := range byDt {
			if tm.classes[ns][dt] == nil {
				tm.setClass(ns, dt, cls)
			}
		}
	}

	for cls, f := range other.mapperTypes {
		if _, ok := tm.mapperTypes[cls]; !ok {
			tm.mapperTypes[cls] = f
		}
	}

	have := tm.gen.Generators()
	theirs := other.gen.Generators()

	for i := len(theirs) - 1; i >= 0; i-- {
		cg := theirs[i]
		if !slices.ContainsFunc(have, func(g classgen.CustomGenerator) bool { return g.Name() == cg.Name() }) {
			tm.gen.Register(cg)
		}
	}

	tm.mappers.Purge()

	return nil
}
