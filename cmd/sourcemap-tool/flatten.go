package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourcemapgo/tracemap/internal/render"
	"github.com/sourcemapgo/tracemap/pkg/sourcemap"
)

var flattenCmd = &cobra.Command{
	Use:   "flatten <sectioned-map>",
	Short: "Flatten a sectioned (index) map into a single traceable map",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveMapArg(args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("sourcemap-tool: reading %s: %w", path, err)
		}

		var env sourcemap.SourceMapV3
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("sourcemap-tool: parsing %s: %w", path, err)
		}

		tm, err := sourcemap.AnyMap(&env, path)
		if err != nil {
			return err
		}

		fmt.Print(render.SourcesList(tm))
		var rows []sourcemap.Mapping
		if err := tm.EachMapping(func(m sourcemap.Mapping) { rows = append(rows, m) }); err != nil {
			return err
		}
		fmt.Print(render.MappingsTable(rows))
		return nil
	},
}
