package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sourcemapgo/tracemap/internal/render"
	"github.com/sourcemapgo/tracemap/internal/watch"
	"github.com/sourcemapgo/tracemap/pkg/sourcemap"
)

var watchCmd = &cobra.Command{
	Use:   "watch <map>",
	Short: "Re-decode a map and print its mapping table every time it changes on disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveMapArg(args[0])
		if err != nil {
			return err
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		decodeAndPrint := func(p string) {
			tm, err := loadMap(p)
			if err != nil {
				logger.Errorf("watch: %v", err)
				return
			}
			var rows []sourcemap.Mapping
			if err := tm.EachMapping(func(m sourcemap.Mapping) { rows = append(rows, m) }); err != nil {
				logger.Errorf("watch: %v", err)
				return
			}
			fmt.Print(render.MappingsTable(rows))
		}

		decodeAndPrint(absPath)

		w, err := watch.New(filepath.Dir(absPath), logger, func(p string) bool {
			p2, _ := filepath.Abs(p)
			return p2 == absPath
		}, decodeAndPrint)
		if err != nil {
			return err
		}
		defer w.Close()

		logger.Infof("watching %s for changes (ctrl-c to stop)", absPath)
		select {}
	},
}
