package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datatree-mapper/internal/backend/boltio"
	"datatree-mapper/internal/backend/jsonio"
	"datatree-mapper/internal/builder"
	"datatree-mapper/internal/config"
	"datatree-mapper/internal/diagnostic"
	"datatree-mapper/internal/dtype"
	"datatree-mapper/internal/spec/spectest"
)

func schemaDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for name, file := range spectest.FS() {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), file.Data, 0o600))
	}

	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfg := config.Default()
	cfg.SchemaDir = schemaDir(t)
	cfg.NamespaceFile = spectest.CoreNamespaceFile + "," + spectest.ExtNamespaceFile

	var out bytes.Buffer

	cmd := newRootCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestTypesCmd(t *testing.T) {
	out, err := run(t, "types", "ext")
	require.NoError(t, err)

	assert.Contains(t, out, "ext (0.1.0)")
	assert.Regexp(t, `Qux\s+group\s+Foo`, out)
	assert.Regexp(t, `Foo\s+group\s+Container`, out)
}

func TestTypesCmd_AllNamespaces(t *testing.T) {
	out, err := run(t, "types", "--namespace-file", spectest.CoreNamespaceFile)
	require.NoError(t, err)

	assert.Contains(t, out, "core (1.0.0)")
	assert.Regexp(t, `Samples\s+dataset`, out)
}

func TestHierarchyCmd(t *testing.T) {
	out, err := run(t, "hierarchy", "lab")
	require.NoError(t, err)

	assert.Contains(t, out, "lab\n  Container\n    Foo\n      Qux\n")
}

func TestGenCmd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gen")

	out, err := run(t, "gen", "ext", "--out", dir, "--package", "exttypes")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	content, err := os.ReadFile(filepath.Join(dir, "qux.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "package exttypes")

	_, err = run(t, "gen")
	require.Error(t, err)
}

func TestDumpCmd(t *testing.T) {
	root := builder.NewGroup("root")
	require.NoError(t, root.SetAttribute("note", "hi"))

	d, err := root.AddDataset("values", []int16{1, 2}, dtype.Primitive("int16"))
	require.NoError(t, err)

	_, err = root.AddLink(d, "alias")
	require.NoError(t, err)

	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "tree.json")
	f, err := os.Create(jsonPath)
	require.NoError(t, err)
	require.NoError(t, jsonio.Write(f, root))
	require.NoError(t, f.Close())

	out, err := run(t, "dump", jsonPath)
	require.NoError(t, err)
	assert.Contains(t, out, "root/\n")
	assert.Contains(t, out, `.note = "hi"`)
	assert.Contains(t, out, "values int16[2]")
	assert.Contains(t, out, "alias -> root/values")

	dbPath := filepath.Join(dir, "trees.db")
	s, err := boltio.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Put("first", root))
	require.NoError(t, s.Close())

	out, err = run(t, "dump", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "first\n", out)

	out, err = run(t, "dump", dbPath, "--key", "first", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"format": "`+jsonio.Format+`"`)
}

func TestValidateCmd(t *testing.T) {
	write := func(t *testing.T, b builder.Builder) string {
		t.Helper()

		path := filepath.Join(t.TempDir(), b.Name()+".json")
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, jsonio.Write(f, b))
		require.NoError(t, f.Close())

		return path
	}

	foo := func(t *testing.T, name string) *builder.GroupBuilder {
		t.Helper()

		g := builder.NewGroup(name)
		require.NoError(t, g.SetAttribute("namespace", "core"))
		require.NoError(t, g.SetAttribute("data_type", "Foo"))

		_, err := g.AddDataset("my_data", []int32{1, 2}, dtype.Primitive("int32"))
		require.NoError(t, err)

		return g
	}

	valid := foo(t, "good")
	require.NoError(t, valid.SetAttribute("attr1", "hello"))

	out, err := run(t, "validate", write(t, valid))
	require.NoError(t, err)
	assert.Equal(t, "good is valid\n", out)

	out, err = run(t, "validate", write(t, foo(t, "bad")))
	require.ErrorIs(t, err, diagnostic.ErrInvalid)
	assert.Contains(t, out, "[Foo/attr1] bad.attr1: [missing_required] argument missing")

	_, err = run(t, "validate", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	_, err := run(t, "types", "--log-level", "loud")
	require.ErrorIs(t, err, config.ErrInvalid)
}
