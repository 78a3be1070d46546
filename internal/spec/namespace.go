package spec

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"gopkg.in/yaml.v3"

	"datatree-mapper/internal/common"
)

// Unversioned marks a namespace loaded without a version.
const Unversioned = "unversioned"

// SchemaEntry is one item of a namespace schema: a source file, or types included from another namespace.
type SchemaEntry struct {
	Source    string   `yaml:"source,omitempty"`
	Namespace string   `yaml:"namespace,omitempty"`
	DataTypes []string `yaml:"data_types,omitempty"`
	Title     string   `yaml:"title,omitempty"`
	Doc       string   `yaml:"doc,omitempty"`
}

// StringList accepts either a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var multi []string
		if err := node.Decode(&multi); err != nil {
			return err
		}

		*s = multi

		return nil
	default:
		return errors.New("expected string or list of strings")
	}
}

// MarshalYAML writes a single value as a plain string.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// Namespace is a named, versioned collection of schema sources backed by one Catalog.
type Namespace struct {
	Doc      string        `yaml:"doc"`
	Name     string        `yaml:"name"`
	FullName string        `yaml:"full_name,omitempty"`
	Version  string        `yaml:"version,omitempty"`
	Author   StringList    `yaml:"author,omitempty"`
	Contact  StringList    `yaml:"contact,omitempty"`
	Schema   []SchemaEntry `yaml:"schema"`

	catalog *Catalog
}

// NewNamespace returns a namespace over catalog; a nil catalog starts empty.
func NewNamespace(name, version, doc string, schema []SchemaEntry, catalog *Catalog) *Namespace {
	if catalog == nil {
		catalog = NewCatalog()
	}

	return &Namespace{Doc: doc, Name: name, Version: version, Schema: schema, catalog: catalog}
}

func (n *Namespace) Catalog() *Catalog {
	if n.catalog == nil {
		n.catalog = NewCatalog()
	}

	return n.catalog
}

// Spec returns the spec of a data type available in this namespace.
func (n *Namespace) Spec(dt string) (Spec, error) {
	s, ok := n.Catalog().Spec(dt)
	if !ok {
		return nil, fmt.Errorf("%w for '%s' in namespace '%s'%s",
			ErrNoSpecification, dt, n.Name, common.DidYouMean(dt, n.RegisteredTypes()))
	}

	return s, nil
}

func (n *Namespace) RegisteredTypes() []string { return n.Catalog().RegisteredTypes() }

func (n *Namespace) Hierarchy(dt string) []string { return n.Catalog().Hierarchy(dt) }

// NamespaceCatalog holds every loaded namespace and remembers, for each included
// type, the namespace that defines it.
type NamespaceCatalog struct {
	namespaces *common.OrderedMap[*Namespace]
	origins    map[string]map[string]string
	included   map[string]map[string][]string
	logger     *slog.Logger
}

// CatalogOption configures a NamespaceCatalog.
type CatalogOption func(*NamespaceCatalog)

// WithLogger sets the logger used for loading warnings.
func WithLogger(l *slog.Logger) CatalogOption {
	return func(c *NamespaceCatalog) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewNamespaceCatalog(opts ...CatalogOption) *NamespaceCatalog {
	c := &NamespaceCatalog{
		namespaces: common.NewOrderedMap[*Namespace](),
		origins:    make(map[string]map[string]string),
		included:   make(map[string]map[string][]string),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AddNamespace registers an already populated namespace under name.
func (c *NamespaceCatalog) AddNamespace(name string, ns *Namespace) error {
	if c.namespaces.Has(name) {
		return fmt.Errorf("%w: '%s'", ErrNamespaceExists, name)
	}

	c.namespaces.Set(name, ns)

	return nil
}

func (c *NamespaceCatalog) Namespace(name string) (*Namespace, error) {
	ns, ok := c.namespaces.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNotNamespace, name)
	}

	return ns, nil
}

// Namespaces lists namespace names in load order.
func (c *NamespaceCatalog) Namespaces() []string {
	return c.namespaces.Keys()
}

func (c *NamespaceCatalog) Spec(ns, dt string) (Spec, error) {
	n, err := c.Namespace(ns)
	if err != nil {
		return nil, err
	}

	return n.Spec(dt)
}

func (c *NamespaceCatalog) Hierarchy(ns, dt string) ([]string, error) {
	n, err := c.Namespace(ns)
	if err != nil {
		return nil, err
	}

	return n.Hierarchy(dt), nil
}

// IsSubDataType reports whether dt equals parent or inherits from it in namespace ns.
func (c *NamespaceCatalog) IsSubDataType(ns, dt, parent string) bool {
	h, err := c.Hierarchy(ns, dt)
	if err != nil {
		return false
	}

	return slices.Contains(h, parent)
}

// TypeSource returns the namespace that defines dt as seen from ns.
func (c *NamespaceCatalog) TypeSource(ns, dt string) string {
	if origin, ok := c.origins[ns][dt]; ok {
		return origin
	}

	return ns
}

// Included returns, per source namespace, the types ns includes from it.
func (c *NamespaceCatalog) Included(ns string) map[string][]string {
	return c.included[ns]
}

// Merge adds the namespaces of other. A namespace loaded in both must be the same object.
func (c *NamespaceCatalog) Merge(other *NamespaceCatalog) error {
	for _, name := range other.Namespaces() {
		ns, _ := other.namespaces.Get(name)

		if existing, ok := c.namespaces.Get(name); ok {
			if existing != ns {
				return fmt.Errorf("%w: '%s'", ErrNamespaceExists, name)
			}

			continue
		}

		c.namespaces.Set(name, ns)
		c.origins[name] = other.origins[name]
		c.included[name] = other.included[name]
	}

	return nil
}
