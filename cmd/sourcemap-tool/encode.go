package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourcemapgo/tracemap/pkg/sourcemap"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <map>",
	Short: "Round-trip a map through decode and re-encode, printing the mappings string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tm, err := loadMap(args[0])
		if err != nil {
			return err
		}
		decoded, err := tm.DecodedMap()
		if err != nil {
			return err
		}
		reencoded, err := sourcemap.PresortedDecodedMap(decoded, "")
		if err != nil {
			return err
		}
		encoded, err := reencoded.EncodedMappings()
		if err != nil {
			return err
		}
		fmt.Println(encoded)
		return nil
	},
}
