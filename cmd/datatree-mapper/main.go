// Package main provides the CLI entrypoint for datatree-mapper.
//
// datatree-mapper loads schema namespaces and:
//   - lists the data types and inheritance tree of each namespace
//   - generates typed Go views of the runtime classes
//   - dumps builder trees stored with the JSON or bbolt backend
package main

import (
	"fmt"
	"os"

	"datatree-mapper/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
