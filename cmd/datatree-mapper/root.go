package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"datatree-mapper/internal/build"
	"datatree-mapper/internal/config"
	"datatree-mapper/internal/spec"
)

// app holds the persistent flags shared by every command.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd(cfg config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:           "datatree-mapper",
		Short:         "Schema-driven mapping between records and builder trees",
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if _, err := config.ParseLevel(a.cfg.LogLevel); err != nil {
				return err
			}

			a.logger = a.cfg.Logger()

			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.SchemaDir, "schema-dir", cfg.SchemaDir, "directory holding the namespace and schema files")
	flags.StringVar(&a.cfg.NamespaceFile, "namespace-file", cfg.NamespaceFile, "comma-separated namespace files to load in order, relative to --schema-dir")
	flags.IntVar(&a.cfg.MapperCacheSize, "mapper-cache-size", cfg.MapperCacheSize, "number of object mappers kept in memory")
	flags.StringVar(&a.cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")

	root.AddCommand(
		newTypesCmd(a),
		newHierarchyCmd(a),
		newGenCmd(a),
		newDumpCmd(a),
		newValidateCmd(a),
	)

	return root
}

// typeMap loads the configured namespace files into a new type map.
func (a *app) typeMap() (*build.TypeMap, error) {
	catalog := spec.NewNamespaceCatalog(spec.WithLogger(a.logger))

	tm, err := build.NewTypeMap(catalog,
		build.WithMapperCacheSize(a.cfg.MapperCacheSize),
		build.WithTypeMapLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}

	reader := spec.NewYAMLReader(os.DirFS(a.cfg.SchemaDir))

	for _, file := range strings.Split(a.cfg.NamespaceFile, ",") {
		if file = strings.TrimSpace(file); file == "" {
			continue
		}

		if _, err := tm.LoadNamespaces(filepath.ToSlash(file), reader); err != nil {
			return nil, err
		}
	}

	return tm, nil
}

// namespaces returns args, or every loaded namespace when args is empty.
func namespaces(tm *build.TypeMap, args []string) []string {
	if len(args) > 0 {
		return args
	}

	return tm.Catalog().Namespaces()
}
