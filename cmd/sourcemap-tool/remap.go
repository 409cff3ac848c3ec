package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sourcemapgo/tracemap/pkg/sourcemap"
)

var remapRoot string

var remapCmd = &cobra.Command{
	Use:   "remap <map>",
	Short: "Compose a map with the maps of its sources, transitively, into one flattened map",
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

		result, err := sourcemap.Remap(sourcemap.Input{JSON: string(data)}, filesystemLoader(remapRoot), sourcemap.RemapOptions{})
		if err != nil {
			return err
		}

		var out []byte
		if result.Encoded != nil {
			out, err = json.MarshalIndent(result.Encoded, "", "  ")
		} else {
			out, err = json.MarshalIndent(result.Decoded, "", "  ")
		}
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	remapCmd.Flags().StringVar(&remapRoot, "root", ".", "directory sources and adjacent .map files are resolved against")
}

// filesystemLoader resolves a source against rootDir: if an adjacent
// "<source>.map" file exists, the source is itself generated and the
// Remapper recurses into it; otherwise the source is an original leaf,
// and its content is attached from disk when the file exists.
func filesystemLoader(rootDir string) sourcemap.Loader {
	return func(ctx *sourcemap.LoaderContext) (*sourcemap.Input, error) {
		sourcePath := filepath.Join(rootDir, ctx.Source)
		mapPath := sourcePath + ".map"

		data, err := os.ReadFile(mapPath)
		if err == nil {
			return &sourcemap.Input{JSON: string(data)}, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("sourcemap-tool: reading %s: %w", mapPath, err)
		}

		if content, err := os.ReadFile(sourcePath); err == nil {
			ctx.Content = string(content)
			ctx.HasContent = true
		}
		return nil, nil
	}
}
