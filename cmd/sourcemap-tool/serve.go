package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourcemapgo/tracemap/internal/mapcache"
	"github.com/sourcemapgo/tracemap/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a stdio JSON-RPC query server answering sourcemap/originalPosition and sourcemap/generatedPosition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache := mapcache.New(logger)
		srv := server.New(cache, logger)
		return srv.Serve(context.Background(), os.Stdin, os.Stdout)
	},
}
