package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourcemapgo/tracemap/internal/render"
)

var (
	traceLine int
	traceCol  int
)

var traceCmd = &cobra.Command{
	Use:   "trace <map>",
	Short: "Resolve a generated position to its original source position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tm, err := loadMap(args[0])
		if err != nil {
			return err
		}
		pos, err := tm.OriginalPositionFor(traceLine, traceCol, biasFromFlag(defaultBias))
		if err != nil {
			return err
		}
		fmt.Print(render.OriginalPosition(pos))
		return nil
	},
}

func init() {
	traceCmd.Flags().IntVar(&traceLine, "line", 1, "1-based generated line")
	traceCmd.Flags().IntVar(&traceCol, "column", 0, "0-based generated column")
}
