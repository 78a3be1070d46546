package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"datatree-mapper/internal/codegen"
)

func newGenCmd(a *app) *cobra.Command {
	cfg := codegen.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "gen <namespace>",
		Short: "Generate typed Go views of the classes of a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tm, err := a.typeMap()
			if err != nil {
				return err
			}

			g := codegen.NewGenerator(cfg, tm, codegen.WithLogger(a.logger))

			files, err := g.Generate(args[0])
			if err != nil {
				return err
			}

			if err := codegen.WriteFiles(files, cfg.OutputDir); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d files to %s\n", len(files), cfg.OutputDir)

			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.PackageName, "package", a.cfg.GenPackage, "name of the generated package")
	cmd.Flags().StringVar(&cfg.OutputDir, "out", a.cfg.GenOutputDir, "output directory")
	cmd.Flags().BoolVar(&cfg.GenerateComments, "comments", true, "copy schema docs into the generated code")

	return cmd
}
