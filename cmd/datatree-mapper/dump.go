package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"datatree-mapper/internal/backend/boltio"
	"datatree-mapper/internal/backend/jsonio"
	"datatree-mapper/internal/build"
	"datatree-mapper/internal/builder"
	"datatree-mapper/internal/dtype"
)

func newDumpCmd(a *app) *cobra.Command {
	var (
		key    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print a builder tree stored as JSON or in a bbolt file",
		Long: "Print a builder tree. Files ending in .db are opened as bbolt stores; " +
			"without --key the keys of the stored trees are listed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			b, err := readTree(a, args[0], key, out)
			if err != nil || b == nil {
				return err
			}

			if asJSON {
				return jsonio.Write(out, b)
			}

			printBuilder(out, b, 0)

			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "key of the tree in a bbolt store")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as a JSON document")

	return cmd
}

// readTree returns nil after listing the keys of a store when key is empty.
func readTree(a *app, path, key string, out io.Writer) (builder.Builder, error) {
	if filepath.Ext(path) == ".db" {
		s, err := boltio.Open(path, boltio.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		defer s.Close()

		if key == "" {
			keys, err := s.Keys()
			if err != nil {
				return nil, err
			}

			for _, k := range keys {
				fmt.Fprintln(out, k)
			}

			return nil, nil
		}

		return s.Get(key)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return jsonio.Read(f, path)
}

func printBuilder(w io.Writer, b builder.Builder, depth int) {
	indent := strings.Repeat("  ", depth)

	switch x := b.(type) {
	case *builder.GroupBuilder:
		fmt.Fprintf(w, "%s%s/%s\n", indent, x.Name(), typeLabel(x))
		printAttributes(w, x, depth+1)

		for _, sub := range x.Groups() {
			printBuilder(w, sub, depth+1)
		}

		for _, d := range x.Datasets() {
			printBuilder(w, d, depth+1)
		}

		for _, l := range x.Links() {
			fmt.Fprintf(w, "%s  %s -> %s\n", indent, l.Name(), l.Target().Path())
		}
	case *builder.DatasetBuilder:
		fmt.Fprintf(w, "%s%s%s %s%v\n", indent, x.Name(), typeLabel(x), x.Dtype(), dtype.Shape(x.Data()))
		printAttributes(w, x, depth+1)
	}
}

func typeLabel(b builder.Attributed) string {
	dt := build.BuilderDt(b)
	if dt == "" {
		return ""
	}

	return fmt.Sprintf(" <%s:%s>", build.BuilderNs(b), dt)
}

func printAttributes(w io.Writer, b builder.Attributed, depth int) {
	indent := strings.Repeat("  ", depth)

	for _, name := range b.AttributeNames() {
		if name == build.AttrDataType || name == build.AttrNamespace {
			continue
		}

		v, _ := b.Attribute(name)
		fmt.Fprintf(w, "%s.%s = %s\n", indent, name, formatValue(v))
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case *builder.ReferenceBuilder:
		return "ref(" + x.Target.Path() + ")"
	case []byte:
		return fmt.Sprintf("%q", x)
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
