// Command sourcemap-tool queries, decodes, flattens, and remaps source
// maps from the command line, and can also expose the same queries to
// an editor over a stdio JSON-RPC connection. Grounded on the shape of
// cmd/dingo-lsp/main.go (a thin cmd/ binary wrapping a pkg/ library),
// generalized from a single main.go into a cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourcemapgo/tracemap/internal/config"
	"github.com/sourcemapgo/tracemap/internal/log"
)

var (
	logLevel    string
	defaultBias string
	logger      log.Logger
)

var rootCmd = &cobra.Command{
	Use:           "sourcemap-tool",
	Short:         "Trace, decode, flatten, and remap JavaScript source maps",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg, err := config.Load(cwd)
		if err != nil {
			return fmt.Errorf("sourcemap-tool: loading config: %w", err)
		}
		if !cmd.Flags().Changed("log-level") {
			logLevel = cfg.LogLevel
		}
		if !cmd.Flags().Changed("bias") {
			defaultBias = cfg.DefaultBias
		}
		logger = log.New(logLevel, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&defaultBias, "bias", "glb", "search bias: glb (greatest lower bound) or lub (least upper bound)")

	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(generatedCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(remapCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
