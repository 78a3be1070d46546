package spec

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type plainGroup GroupSpec

type plainDataset DatasetSpec

// MarshalYAML omits children inherited from the base type.
func (g *GroupSpec) MarshalYAML() (any, error) {
	out := *g
	out.Attributes = ownOnly(g, g.Attributes)
	out.Datasets = ownOnly(g, g.Datasets)
	out.Groups = ownOnly(g, g.Groups)
	out.Links = ownOnly(g, g.Links)

	return (*plainGroup)(&out), nil
}

// MarshalYAML omits attributes inherited from the base type.
func (d *DatasetSpec) MarshalYAML() (any, error) {
	out := *d
	out.Attributes = ownOnly(d, d.Attributes)

	return (*plainDataset)(&out), nil
}

func ownOnly[S Spec](owner Spec, list []S) []S {
	var out []S

	for _, s := range list {
		h := s.Head()
		if h.parent != nil && h.parent != owner {
			continue
		}

		out = append(out, s)
	}

	return out
}

// MarshalSource renders a schema source file.
func MarshalSource(src *Source) ([]byte, error) {
	return yaml.Marshal(src)
}

// MarshalNamespaces renders a namespace file.
func MarshalNamespaces(namespaces ...*Namespace) ([]byte, error) {
	return yaml.Marshal(namespaceFile{Namespaces: namespaces})
}

// SourceOf collects the top-level types of ns registered from source.
func SourceOf(ns *Namespace, source string) *Source {
	src := &Source{}

	for _, dt := range ns.Catalog().TypesOf(source) {
		s, _ := ns.Catalog().Spec(dt)
		if s.Parent() != nil {
			continue
		}

		switch v := s.(type) {
		case *GroupSpec:
			src.Groups = append(src.Groups, v)
		case *DatasetSpec:
			src.Datasets = append(src.Datasets, v)
		}
	}

	return src
}

// WriteNamespace writes ns to dir/file and each of its own sources next to it.
func WriteNamespace(dir, file string, ns *Namespace) error {
	for _, entry := range ns.Schema {
		if entry.Source == "" {
			continue
		}

		data, err := MarshalSource(SourceOf(ns, entry.Source))
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", entry.Source, err)
		}

		if err := writeFile(filepath.Join(dir, entry.Source), data); err != nil {
			return err
		}
	}

	data, err := MarshalNamespaces(ns)
	if err != nil {
		return fmt.Errorf("failed to marshal namespace: %w", err)
	}

	return writeFile(filepath.Join(dir, file), data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
