// Package boltio stores builder trees in a bbolt file, one nested bucket per group.
package boltio

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"

	"datatree-mapper/internal/backend"
	"datatree-mapper/internal/build"
	"datatree-mapper/internal/builder"
	"datatree-mapper/internal/diagnostic"
	"datatree-mapper/internal/record"
)

// Format identifies trees written by this package.
const Format = "datatree-bolt/1"

// ErrNotFound is returned when no tree is stored under a key.
var ErrNotFound = errors.New("tree not found")

var (
	treesBucket    = []byte("trees")
	attrsBucket    = []byte(".attrs")
	groupsBucket   = []byte(".groups")
	datasetsBucket = []byte(".datasets")
	linksBucket    = []byte(".links")
	rootBucket     = []byte("root")

	formatKey = []byte("format")
	kindKey   = []byte("kind")
	nameKey   = []byte("name")
	dtypeKey  = []byte("dtype")
	dataKey   = []byte("data")
)

// Store is a bbolt file holding any number of trees by key.
type Store struct {
	db     *bolt.DB
	path   string
	logger *slog.Logger
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open opens or creates the store at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	s := &Store{db: db, path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(treesBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Path() string { return s.path }

// Put stores the tree rooted at b under key, replacing any tree stored there.
func (s *Store) Put(key string, b builder.Builder) error {
	kind, err := backend.KindOf(b)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		trees := tx.Bucket(treesBucket)

		if trees.Bucket([]byte(key)) != nil {
			if err := trees.DeleteBucket([]byte(key)); err != nil {
				return err
			}
		}

		tree, err := trees.CreateBucket([]byte(key))
		if err != nil {
			return err
		}

		if err := tree.Put(formatKey, []byte(Format)); err != nil {
			return err
		}

		if err := tree.Put(kindKey, []byte(kind)); err != nil {
			return err
		}

		root, err := tree.CreateBucket(rootBucket)
		if err != nil {
			return err
		}

		switch x := b.(type) {
		case *builder.GroupBuilder:
			return putGroup(root, x)
		case *builder.DatasetBuilder:
			return putDataset(root, x)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	s.logger.Debug("stored tree", "key", key, "kind", kind, "path", s.path)

	return nil
}

func putJSON(bk *bolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return bk.Put(key, data)
}

func putAttributes(bk *bolt.Bucket, b builder.Attributed) error {
	if err := bk.Put(nameKey, []byte(b.Name())); err != nil {
		return err
	}

	attrs, err := bk.CreateBucket(attrsBucket)
	if err != nil {
		return err
	}

	for _, name := range b.AttributeNames() {
		v, _ := b.Attribute(name)

		enc, err := backend.EncodeValue(v)
		if err != nil {
			return fmt.Errorf("attribute '%s' of %s: %w", name, b.Path(), err)
		}

		if err := putJSON(attrs, []byte(name), enc); err != nil {
			return err
		}
	}

	return nil
}

func putGroup(bk *bolt.Bucket, g *builder.GroupBuilder) error {
	if err := putAttributes(bk, g); err != nil {
		return err
	}

	groups, err := bk.CreateBucket(groupsBucket)
	if err != nil {
		return err
	}

	for _, sub := range g.Groups() {
		child, err := groups.CreateBucket([]byte(sub.Name()))
		if err != nil {
			return err
		}

		if err := putGroup(child, sub); err != nil {
			return err
		}
	}

	datasets, err := bk.CreateBucket(datasetsBucket)
	if err != nil {
		return err
	}

	for _, d := range g.Datasets() {
		child, err := datasets.CreateBucket([]byte(d.Name()))
		if err != nil {
			return err
		}

		if err := putDataset(child, d); err != nil {
			return err
		}
	}

	links, err := bk.CreateBucket(linksBucket)
	if err != nil {
		return err
	}

	for _, l := range g.Links() {
		if err := links.Put([]byte(l.Name()), []byte(l.Target().Path())); err != nil {
			return err
		}
	}

	return nil
}

func putDataset(bk *bolt.Bucket, d *builder.DatasetBuilder) error {
	if err := putAttributes(bk, d); err != nil {
		return err
	}

	if dt := backend.EncodeDtype(d.Dtype()); dt != nil {
		if err := putJSON(bk, dtypeKey, dt); err != nil {
			return err
		}
	}

	if d.Data() == nil {
		return nil
	}

	enc, err := backend.EncodeValue(d.Data())
	if err != nil {
		return fmt.Errorf("data of %s: %w", d.Path(), err)
	}

	return putJSON(bk, dataKey, enc)
}

// Get reads the tree stored under key. Every builder takes the store path as source.
func (s *Store) Get(key string) (builder.Builder, error) {
	var root builder.Builder

	err := s.db.View(func(tx *bolt.Tx) error {
		tree := tx.Bucket(treesBucket).Bucket([]byte(key))
		if tree == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}

		if format := string(tree.Get(formatKey)); format != Format {
			return fmt.Errorf("%w: %q", backend.ErrFormat, format)
		}

		bk := tree.Bucket(rootBucket)
		if bk == nil {
			return fmt.Errorf("%w: missing root of %s", backend.ErrFormat, key)
		}

		res := backend.NewResolver()

		var err error

		switch kind := string(tree.Get(kindKey)); kind {
		case backend.KindGroup:
			g := builder.NewGroup(string(bk.Get(nameKey)))
			if err = g.SetSource(s.path); err != nil {
				return err
			}

			res.Add(g)
			err = getGroup(bk, g, res)
			root = g
		case backend.KindDataset:
			var d *builder.DatasetBuilder

			d, err = getDataset(bk, res)
			if err != nil {
				return err
			}

			if err = d.SetSource(s.path); err != nil {
				return err
			}

			res.Add(d)
			err = getAttributes(bk, d, res)
			root = d
		default:
			return fmt.Errorf("%w: kind %q", backend.ErrFormat, kind)
		}

		if err != nil {
			return err
		}

		return res.Resolve()
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	return root, nil
}

// getJSON decodes the value stored at key; bbolt memory is only valid inside the transaction.
func getJSON(bk *bolt.Bucket, key []byte, v any) (bool, error) {
	data := bk.Get(key)
	if data == nil {
		return false, nil
	}

	return true, json.Unmarshal(append([]byte(nil), data...), v)
}

func getAttributes(bk *bolt.Bucket, b builder.Attributed, res *backend.Resolver) error {
	attrs := bk.Bucket(attrsBucket)
	if attrs == nil {
		return nil
	}

	return attrs.ForEach(func(k, v []byte) error {
		var val backend.Value
		if err := json.Unmarshal(append([]byte(nil), v...), &val); err != nil {
			return fmt.Errorf("attribute '%s' of %s: %w", k, b.Path(), err)
		}

		return res.SetAttribute(b, string(k), val)
	})
}

// forEachBucket calls fn for every nested bucket of bk; plain keys carry values.
func forEachBucket(bk *bolt.Bucket, fn func(k []byte) error) error {
	return bk.ForEach(func(k, v []byte) error {
		if v != nil {
			return nil
		}

		return fn(k)
	})
}

func getGroup(bk *bolt.Bucket, g *builder.GroupBuilder, res *backend.Resolver) error {
	if err := getAttributes(bk, g, res); err != nil {
		return err
	}

	if groups := bk.Bucket(groupsBucket); groups != nil {
		err := forEachBucket(groups, func(k []byte) error {
			sub := builder.NewGroup(string(k))
			if err := g.SetGroup(sub); err != nil {
				return err
			}

			res.Add(sub)

			return getGroup(groups.Bucket(k), sub, res)
		})
		if err != nil {
			return err
		}
	}

	if datasets := bk.Bucket(datasetsBucket); datasets != nil {
		err := forEachBucket(datasets, func(k []byte) error {
			child := datasets.Bucket(k)

			d, err := getDataset(child, res)
			if err != nil {
				return err
			}

			if err := g.SetDataset(d); err != nil {
				return err
			}

			res.Add(d)

			return getAttributes(child, d, res)
		})
		if err != nil {
			return err
		}
	}

	if links := bk.Bucket(linksBucket); links != nil {
		return links.ForEach(func(k, v []byte) error {
			res.Link(g, string(k), string(v))
			return nil
		})
	}

	return nil
}

func getDataset(bk *bolt.Bucket, res *backend.Resolver) (*builder.DatasetBuilder, error) {
	var dt *backend.Dtype
	if _, err := getJSON(bk, dtypeKey, &dt); err != nil {
		return nil, err
	}

	var data backend.Value

	ok, err := getJSON(bk, dataKey, &data)
	if err != nil {
		return nil, err
	}

	name := string(bk.Get(nameKey))
	if !ok {
		return res.NewDataset(name, nil, dt)
	}

	return res.NewDataset(name, &data, dt)
}

// Keys lists the keys of the stored trees in byte order.
func (s *Store) Keys() ([]string, error) {
	var keys []string

	err := s.db.View(func(tx *bolt.Tx) error {
		return forEachBucket(tx.Bucket(treesBucket), func(k []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})

	return keys, err
}

// Delete removes the tree stored under key.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.Bucket(treesBucket).DeleteBucket([]byte(key))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}

		return err
	})
}

// WriteRecord builds rec as a root with m and stores the tree under the record name.
func (s *Store) WriteRecord(m *build.Manager, rec *record.Record) (diagnostic.Diagnostics, error) {
	b, diags, err := m.Build(rec, build.AsRoot(), build.WithSource(s.path))
	if err != nil {
		return diags, err
	}

	return diags, s.Put(rec.Name(), b)
}

// ReadRecord reads the tree stored under key and constructs its root record with m.
func (s *Store) ReadRecord(m *build.Manager, key string) (*record.Record, error) {
	b, err := s.Get(key)
	if err != nil {
		return nil, err
	}

	return m.Construct(b)
}
