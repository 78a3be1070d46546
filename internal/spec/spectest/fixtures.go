// Package spectest provides a small schema shared by the tests of the mapping engine.
package spectest

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"datatree-mapper/internal/spec"
)

const coreNamespace = `
namespaces:
  - name: core
    doc: Core types.
    version: 1.0.0
    author: [Ada, Grace]
    contact: ada@example.com
    schema:
      - source: core.base.yaml
        title: Base types
`

const coreBase = `
groups:
  - data_type_def: Container
    doc: Base type of every group in the core namespace.
  - data_type_def: Foo
    data_type_inc: Container
    doc: A foo with data and two attributes.
    attributes:
      - name: attr1
        dtype: text
        doc: A text attribute.
      - name: attr2
        dtype: int32
        doc: An optional integer attribute.
        required: false
    datasets:
      - name: my_data
        dtype: int32
        shape: [null]
        doc: Integer samples.
        attributes:
          - name: attr2
            dtype: int32
            doc: A nested integer attribute.
            required: false
  - data_type_def: SubFoo
    data_type_inc: Foo
    doc: A foo with an extra attribute.
    attributes:
      - name: attr1
        dtype: text
        doc: An overridden text attribute.
      - name: extra
        dtype: float
        doc: A float attribute.
        required: false
  - data_type_def: Bucket
    data_type_inc: Container
    doc: Holds any number of foos.
    groups:
      - data_type_inc: Foo
        quantity: '*'
        doc: The foos in this bucket.
      - name: meta
        quantity: '?'
        doc: Untyped metadata.
        attributes:
          - name: note
            dtype: text
            doc: A note.
    links:
      - name: favorite
        target_type: Foo
        quantity: '?'
        doc: A foo held elsewhere.
  - data_type_def: Pair
    data_type_inc: Container
    doc: Exactly one foo plus a reference.
    attributes:
      - name: ref
        dtype:
          target_type: Foo
          reftype: object
        doc: A reference to a foo.
        required: false
    groups:
      - data_type_inc: Foo
        doc: The single foo.
  - data_type_def: Crate
    data_type_inc: Container
    doc: Needs at least one foo.
    groups:
      - data_type_inc: Foo
        quantity: '+'
        doc: The foos.
  - data_type_def: Settings
    data_type_inc: Container
    name: settings
    doc: A group with a fixed name.
    attributes:
      - name: mode
        dtype: text
        doc: Operating mode.
        required: false
        default_value: auto
datasets:
  - data_type_def: Samples
    dtype: float64
    shape: [null]
    doc: Float samples.
    attributes:
      - name: unit
        dtype: text
        doc: Unit of the samples.
        required: false
        default_value: volt
`

const extNamespace = `
namespaces:
  - name: ext
    doc: Extension types.
    version: 0.1.0
    schema:
      - namespace: core
        data_types: [Foo]
      - source: ext.types.yaml
  - name: lab
    doc: Lab types built on the extension.
    version: 0.0.1
    schema:
      - namespace: ext
        data_types: [Qux]
`

const extTypes = `
groups:
  - data_type_def: Qux
    data_type_inc: Foo
    doc: A foo from the extension.
    attributes:
      - name: level
        dtype: uint8
        doc: A level.
        required: false
`

// Namespace files in FS.
const (
	CoreNamespaceFile = "core.namespace.yaml"
	ExtNamespaceFile  = "ext.namespace.yaml"
)

// FS returns the schema files: the core namespace and the ext and lab namespaces that include from it.
func FS() fstest.MapFS {
	return fstest.MapFS{
		CoreNamespaceFile: {Data: []byte(coreNamespace)},
		"core.base.yaml":  {Data: []byte(coreBase)},
		ExtNamespaceFile:  {Data: []byte(extNamespace)},
		"ext.types.yaml":  {Data: []byte(extTypes)},
	}
}

// Load returns a catalog with core, ext and lab loaded.
func Load(t testing.TB) *spec.NamespaceCatalog {
	t.Helper()

	c := spec.NewNamespaceCatalog()
	r := spec.NewYAMLReader(FS())

	_, err := c.LoadNamespaces(CoreNamespaceFile, r)
	require.NoError(t, err)

	_, err = c.LoadNamespaces(ExtNamespaceFile, r)
	require.NoError(t, err)

	return c
}
