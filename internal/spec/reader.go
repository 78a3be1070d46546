package spec

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Source is the content of one schema source file.
type Source struct {
	Groups   []*GroupSpec   `yaml:"groups,omitempty"`
	Datasets []*DatasetSpec `yaml:"datasets,omitempty"`
}

// Reader reads namespace files and the schema sources they name.
type Reader interface {
	ReadNamespaces(path string) ([]*Namespace, error)
	ReadSource(path string) (*Source, error)
}

// YAMLReader reads YAML schema files from a file system.
type YAMLReader struct {
	fsys fs.FS
}

func NewYAMLReader(fsys fs.FS) *YAMLReader {
	return &YAMLReader{fsys: fsys}
}

type namespaceFile struct {
	Namespaces []*Namespace `yaml:"namespaces"`
}

// ReadNamespaces parses the namespaces declared in path.
func (r *YAMLReader) ReadNamespaces(path string) ([]*Namespace, error) {
	data, err := fs.ReadFile(r.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read namespace file: %w", err)
	}

	return ParseNamespaces(data, path)
}

// ReadSource parses the group and dataset specs in path.
func (r *YAMLReader) ReadSource(path string) (*Source, error) {
	data, err := fs.ReadFile(r.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema source: %w", err)
	}

	return ParseSource(data, path)
}

// ParseNamespaces parses namespace YAML; name is used in error messages.
func ParseNamespaces(data []byte, name string) ([]*Namespace, error) {
	var f namespaceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	if f.Namespaces == nil {
		return nil, fmt.Errorf("%w in %s", ErrNoNamespaces, name)
	}

	return f.Namespaces, nil
}

// ParseSource parses schema source YAML; name is used in error messages.
func ParseSource(data []byte, name string) (*Source, error) {
	var src Source
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	if src.Groups == nil && src.Datasets == nil {
		return nil, fmt.Errorf("%w in %s", ErrNoSpecs, name)
	}

	return &src, nil
}
