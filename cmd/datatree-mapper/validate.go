package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"datatree-mapper/internal/validate"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		key       string
		namespace string
	)

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a stored builder tree against the loaded schema",
		Long: "Check a builder tree stored as JSON or in a bbolt file against the specs of its data types. " +
			"Every problem found is printed and the command fails if there is any.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			tm, err := a.typeMap()
			if err != nil {
				return err
			}

			b, err := readTree(a, args[0], key, out)
			if err != nil || b == nil {
				return err
			}

			v := validate.New(tm.Catalog(), validate.WithNamespace(namespace), validate.WithLogger(a.logger))

			diags, err := v.Validate(b)
			if err != nil {
				return err
			}

			for _, d := range diags.All() {
				fmt.Fprintln(out, d.String())
			}

			if diags.HasErrors() {
				return diags.Err()
			}

			fmt.Fprintf(out, "%s is valid\n", b.Path())

			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "key of the tree in a bbolt store")
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace of builders that do not record one")

	return cmd
}
