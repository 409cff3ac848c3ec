package main

import (
	"fmt"
	"os"
	"strings"

	"go.lsp.dev/uri"

	"github.com/sourcemapgo/tracemap/pkg/sourcemap"
)

// resolveMapArg normalizes a map argument that may be a bare filesystem
// path or a file:// URI — the one place this tool uses go.lsp.dev/uri,
// mirroring how the teacher's translator.go turns a protocol.DocumentURI
// back into a filesystem path before touching the filesystem.
func resolveMapArg(arg string) (string, error) {
	if !strings.HasPrefix(arg, "file://") {
		return arg, nil
	}
	u, err := uri.Parse(arg)
	if err != nil {
		return "", fmt.Errorf("sourcemap-tool: invalid map URI %q: %w", arg, err)
	}
	return u.Filename(), nil
}

func loadMap(mapArg string) (*sourcemap.TraceMap, error) {
	path, err := resolveMapArg(mapArg)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sourcemap-tool: reading %s: %w", path, err)
	}
	return sourcemap.New(sourcemap.Input{JSON: string(data)}, path)
}

func biasFromFlag(bias string) int {
	if bias == "lub" {
		return sourcemap.LeastUpperBound
	}
	return sourcemap.GreatestLowerBound
}
