package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"datatree-mapper/internal/spec"
)

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types [namespace...]",
		Short: "List the data types of each namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			tm, err := a.typeMap()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			for _, name := range namespaces(tm, args) {
				ns, err := tm.Catalog().Namespace(name)
				if err != nil {
					return err
				}

				if err := printTypes(out, ns); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func printTypes(w io.Writer, ns *spec.Namespace) error {
	version := ns.Version
	if version == "" {
		version = "unversioned"
	}

	if _, err := fmt.Fprintf(w, "%s (%s)\n", ns.Name, version); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, dt := range slices.Sorted(slices.Values(ns.RegisteredTypes())) {
		s, err := ns.Spec(dt)
		if err != nil {
			return err
		}

		fmt.Fprintf(tw, "  %s\t%s\t%s\n", dt, s.Kind(), s.Head().DataTypeInc)
	}

	return tw.Flush()
}

func newHierarchyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hierarchy [namespace...]",
		Short: "Print the inheritance tree of each namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			tm, err := a.typeMap()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			for _, name := range namespaces(tm, args) {
				ns, err := tm.Catalog().Namespace(name)
				if err != nil {
					return err
				}

				fmt.Fprintln(out, ns.Name)
				printTree(out, ns.Catalog().FullHierarchy(), 1)
			}

			return nil
		},
	}
}

func printTree(w io.Writer, tree spec.Tree, depth int) {
	for _, dt := range slices.Sorted(maps.Keys(tree)) {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), dt)
		printTree(w, tree[dt], depth+1)
	}
}
