package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourcemapgo/tracemap/internal/render"
	"github.com/sourcemapgo/tracemap/pkg/sourcemap"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <map>",
	Short: "Decode a map's mappings field and print it as a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tm, err := loadMap(args[0])
		if err != nil {
			return err
		}
		var rows []sourcemap.Mapping
		if err := tm.EachMapping(func(m sourcemap.Mapping) { rows = append(rows, m) }); err != nil {
			return err
		}
		fmt.Print(render.MappingsTable(rows))
		return nil
	},
}
