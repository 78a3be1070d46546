package build

import (
	"fmt"
	"log/slog"

	"datatree-mapper/internal/builder"
	"datatree-mapper/internal/diagnostic"
	"datatree-mapper/internal/record"
	"datatree-mapper/internal/spec"
)

type buildOptions struct {
	source  string
	specExt spec.Spec
	root    bool
}

// BuildOption configures a single build call.
type BuildOption func(*buildOptions)

// WithSource sets the source of the builders created by the call.
func WithSource(source string) BuildOption {
	return func(o *buildOptions) { o.source = source }
}

// WithSpecExt merges the attributes of the including spec into the built builder.
func WithSpecExt(s spec.Spec) BuildOption {
	return func(o *buildOptions) { o.specExt = s }
}

// AsRoot resolves every queued reference once the record is built.
func AsRoot() BuildOption {
	return func(o *buildOptions) { o.root = true }
}

func newBuildOptions(opts []BuildOption) buildOptions {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Manager keeps the one-to-one correspondence between records and builders
// across build and construct calls.
type Manager struct {
	typeMap      *TypeMap
	builders     map[*record.Record]builder.Builder
	records      map[builder.Builder]*record.Record
	active       map[builder.Builder]bool
	constructing map[builder.Builder]bool
	refQueue     []func() error
	journal      []*record.Record
	depth        int
	diags        diagnostic.Diagnostics
	logger       *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewManager(tm *TypeMap, opts ...ManagerOption) *Manager {
	m := &Manager{
		typeMap:      tm,
		builders:     make(map[*record.Record]builder.Builder),
		records:      make(map[builder.Builder]*record.Record),
		active:       make(map[builder.Builder]bool),
		constructing: make(map[builder.Builder]bool),
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Manager) TypeMap() *TypeMap { return m.typeMap }

// Build returns the builder of r, building it if needed. Building the same
// unmodified record again returns the same builder; a modified group record is
// rebuilt into its existing builder. On error every memo entry added by the
// call is dropped.
func (m *Manager) Build(r *record.Record, opts ...BuildOption) (builder.Builder, diagnostic.Diagnostics, error) {
	o := newBuildOptions(opts)

	top := m.depth == 0
	if top {
		m.diags = diagnostic.Diagnostics{}
		m.journal = nil
	}

	b, err := m.build(r, o)
	if err == nil && o.root {
		err = m.flushRefs()
	}

	diags := m.diags

	if err != nil {
		if top {
			m.rollback()
		}

		m.logger.Debug("build failed", "record", r.String(), "error", err)

		return nil, diags, err
	}

	if o.root {
		clear(m.active)
	}

	return b, diags, nil
}

func (m *Manager) build(r *record.Record, o buildOptions) (builder.Builder, error) {
	if err := claimSource(r, &o); err != nil {
		return nil, err
	}

	if existing := m.builders[r]; existing != nil && (m.active[existing] || !r.Modified()) {
		return existing, nil
	}

	m.depth++
	defer func() { m.depth-- }()

	b, err := m.typeMap.build(r, m, o)
	if err != nil {
		return nil, err
	}

	m.remember(r, b)

	return b, nil
}

// claimSource gives an unsourced record the source of the call, and a call
// without source the source of the record. A record keeps its first source.
func claimSource(r *record.Record, o *buildOptions) error {
	switch {
	case o.source == "":
		o.source = r.Source()
	case r.Source() == "":
		r.SetSource(o.source)
	case r.Source() != o.source:
		return fmt.Errorf("%w: '%s' %s '%s' cannot be built for '%s'",
			ErrSourceSet, r.Source(), r.Class().Name, r.Name(), o.source)
	}

	return nil
}

// remember memoizes b as the builder of r for the current build session.
func (m *Manager) remember(r *record.Record, b builder.Builder) {
	if m.builders[r] == nil {
		m.journal = append(m.journal, r)
	}

	m.Prebuilt(r, b)
	m.active[b] = true
}

func (m *Manager) flushRefs() error {
	queue := m.refQueue
	m.refQueue = nil

	for _, fn := range queue {
		if err := fn(); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) rollback() {
	for _, r := range m.journal {
		if b := m.builders[r]; b != nil {
			delete(m.records, b)
			delete(m.active, b)
		}

		delete(m.builders, r)
	}

	m.journal = nil
	m.refQueue = nil
	clear(m.active)
}

// Prebuilt records b as the builder of r.
func (m *Manager) Prebuilt(r *record.Record, b builder.Builder) {
	m.builders[r] = b
	m.records[b] = r
}

// Builder returns the builder memoized for r, or nil.
func (m *Manager) Builder(r *record.Record) builder.Builder {
	return m.builders[r]
}

// Record returns the record memoized for b, or nil.
func (m *Manager) Record(b builder.Builder) *record.Record {
	return m.records[b]
}

// QueueRef defers fn until the end of the current root build.
func (m *Manager) QueueRef(fn func() error) {
	m.refQueue = append(m.refQueue, fn)
}

// PurgeOutdated forgets the builders of records modified since they were built.
func (m *Manager) PurgeOutdated() {
	for r, b := range m.builders {
		if r.Modified() {
			delete(m.builders, r)
			delete(m.records, b)
		}
	}
}

// Construct returns the record of b, constructing it and everything it
// references on first use.
func (m *Manager) Construct(b builder.Builder) (*record.Record, error) {
	if r, ok := m.records[b]; ok {
		return r, nil
	}

	if m.constructing[b] {
		return nil, fmt.Errorf("%w: %s (%s)", ErrConstructCycle, b.Name(), b.Path())
	}

	m.constructing[b] = true
	defer delete(m.constructing, b)

	r, err := m.typeMap.Construct(b, m)
	if err != nil {
		return nil, err
	}

	m.Prebuilt(r, b)
	r.SetModified(false)

	return r, nil
}
