package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourcemapgo/tracemap/internal/render"
)

var (
	generatedSource string
	generatedLine   int
	generatedCol    int
	generatedAll    bool
)

var generatedCmd = &cobra.Command{
	Use:   "generated <map>",
	Short: "Resolve an original position to its generated position(s)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tm, err := loadMap(args[0])
		if err != nil {
			return err
		}
		bias := biasFromFlag(defaultBias)

		if generatedAll {
			positions, err := tm.AllGeneratedPositionsFor(generatedSource, generatedLine, generatedCol, bias)
			if err != nil {
				return err
			}
			for _, pos := range positions {
				fmt.Print(render.GeneratedPosition(pos))
			}
			return nil
		}

		pos, err := tm.GeneratedPositionFor(generatedSource, generatedLine, generatedCol, bias)
		if err != nil {
			return err
		}
		fmt.Print(render.GeneratedPosition(pos))
		return nil
	},
}

func init() {
	generatedCmd.Flags().StringVar(&generatedSource, "source", "", "original source name")
	generatedCmd.Flags().IntVar(&generatedLine, "line", 1, "1-based original line")
	generatedCmd.Flags().IntVar(&generatedCol, "column", 0, "0-based original column")
	generatedCmd.Flags().BoolVar(&generatedAll, "all", false, "return every generated position at this original position")
	_ = generatedCmd.MarkFlagRequired("source")
}
