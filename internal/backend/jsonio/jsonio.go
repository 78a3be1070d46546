// Package jsonio stores builder trees as JSON documents.
package jsonio

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"datatree-mapper/internal/backend"
	"datatree-mapper/internal/build"
	"datatree-mapper/internal/builder"
	"datatree-mapper/internal/diagnostic"
	"datatree-mapper/internal/record"
)

// Format identifies documents written by this package.
const Format = "datatree-json/1"

type document struct {
	Format string `json:"format"`
	Kind   string `json:"kind"`
	Root   node   `json:"root"`
}

type node struct {
	Name       string         `json:"name"`
	Attributes []attribute    `json:"attributes,omitempty"`
	Groups     []node         `json:"groups,omitempty"`
	Datasets   []node         `json:"datasets,omitempty"`
	Links      []link         `json:"links,omitempty"`
	Dtype      *backend.Dtype `json:"dtype,omitempty"`
	Data       *backend.Value `json:"data,omitempty"`
}

type attribute struct {
	Name  string        `json:"name"`
	Value backend.Value `json:"value"`
}

type link struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// Marshal encodes the tree rooted at b.
func Marshal(b builder.Builder) ([]byte, error) {
	kind, err := backend.KindOf(b)
	if err != nil {
		return nil, err
	}

	var root node

	switch x := b.(type) {
	case *builder.GroupBuilder:
		root, err = encodeGroup(x)
	case *builder.DatasetBuilder:
		root, err = encodeDataset(x)
	}

	if err != nil {
		return nil, err
	}

	return json.MarshalIndent(document{Format: Format, Kind: kind, Root: root}, "", "  ")
}

func encodeAttributes(b builder.Attributed) ([]attribute, error) {
	var attrs []attribute

	for _, name := range b.AttributeNames() {
		v, _ := b.Attribute(name)

		enc, err := backend.EncodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("attribute '%s' of %s: %w", name, b.Path(), err)
		}

		attrs = append(attrs, attribute{Name: name, Value: enc})
	}

	return attrs, nil
}

func encodeGroup(g *builder.GroupBuilder) (node, error) {
	attrs, err := encodeAttributes(g)
	if err != nil {
		return node{}, err
	}

	n := node{Name: g.Name(), Attributes: attrs}

	for _, sub := range g.Groups() {
		child, err := encodeGroup(sub)
		if err != nil {
			return node{}, err
		}

		n.Groups = append(n.Groups, child)
	}

	for _, d := range g.Datasets() {
		child, err := encodeDataset(d)
		if err != nil {
			return node{}, err
		}

		n.Datasets = append(n.Datasets, child)
	}

	for _, l := range g.Links() {
		n.Links = append(n.Links, link{Name: l.Name(), Target: l.Target().Path()})
	}

	return n, nil
}

func encodeDataset(d *builder.DatasetBuilder) (node, error) {
	attrs, err := encodeAttributes(d)
	if err != nil {
		return node{}, err
	}

	n := node{Name: d.Name(), Attributes: attrs, Dtype: backend.EncodeDtype(d.Dtype())}

	if d.Data() != nil {
		v, err := backend.EncodeValue(d.Data())
		if err != nil {
			return node{}, fmt.Errorf("data of %s: %w", d.Path(), err)
		}

		n.Data = &v
	}

	return n, nil
}

// Unmarshal decodes a document written by Marshal. Every builder of the tree
// takes source.
func Unmarshal(data []byte, source string) (builder.Builder, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.Format != Format {
		return nil, fmt.Errorf("%w: %q", backend.ErrFormat, doc.Format)
	}

	res := backend.NewResolver()

	var (
		root builder.Builder
		err  error
	)

	switch doc.Kind {
	case backend.KindGroup:
		g := builder.NewGroup(doc.Root.Name)
		if err = g.SetSource(source); err != nil {
			return nil, err
		}

		res.Add(g)
		err = decodeGroup(g, doc.Root, res)
		root = g
	case backend.KindDataset:
		var d *builder.DatasetBuilder

		d, err = res.NewDataset(doc.Root.Name, doc.Root.Data, doc.Root.Dtype)
		if err != nil {
			return nil, err
		}

		if err = d.SetSource(source); err != nil {
			return nil, err
		}

		res.Add(d)
		err = decodeAttributes(d, doc.Root.Attributes, res)
		root = d
	default:
		return nil, fmt.Errorf("%w: kind %q", backend.ErrFormat, doc.Kind)
	}

	if err != nil {
		return nil, err
	}

	if err := res.Resolve(); err != nil {
		return nil, err
	}

	return root, nil
}

func decodeAttributes(b builder.Attributed, attrs []attribute, res *backend.Resolver) error {
	for _, a := range attrs {
		if err := res.SetAttribute(b, a.Name, a.Value); err != nil {
			return err
		}
	}

	return nil
}

func decodeGroup(g *builder.GroupBuilder, n node, res *backend.Resolver) error {
	if err := decodeAttributes(g, n.Attributes, res); err != nil {
		return err
	}

	for _, child := range n.Groups {
		sub := builder.NewGroup(child.Name)
		if err := g.SetGroup(sub); err != nil {
			return err
		}

		res.Add(sub)

		if err := decodeGroup(sub, child, res); err != nil {
			return err
		}
	}

	for _, child := range n.Datasets {
		d, err := res.NewDataset(child.Name, child.Data, child.Dtype)
		if err != nil {
			return err
		}

		if err := g.SetDataset(d); err != nil {
			return err
		}

		res.Add(d)

		if err := decodeAttributes(d, child.Attributes, res); err != nil {
			return err
		}
	}

	for _, l := range n.Links {
		res.Link(g, l.Name, l.Target)
	}

	return nil
}

// Write encodes the tree rooted at b to w.
func Write(w io.Writer, b builder.Builder) error {
	data, err := Marshal(b)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// Read decodes a tree from r.
func Read(r io.Reader, source string) (builder.Builder, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return Unmarshal(data, source)
}

// WriteRecord builds rec as a root with m and writes the resulting tree to w.
func WriteRecord(w io.Writer, m *build.Manager, rec *record.Record, source string) (diagnostic.Diagnostics, error) {
	b, diags, err := m.Build(rec, build.AsRoot(), build.WithSource(source))
	if err != nil {
		return diags, err
	}

	return diags, Write(w, b)
}

// ReadRecord reads a tree from r and constructs its root record with m.
func ReadRecord(r io.Reader, m *build.Manager, source string) (*record.Record, error) {
	b, err := Read(r, source)
	if err != nil {
		return nil, err
	}

	return m.Construct(b)
}
