// Package server runs a stdio JSON-RPC query server so an editor
// integration can ask a loaded TraceMap for positions without
// re-parsing the map on every request. Transport plumbing is grounded
// on cmd/dingo-lsp/main.go's stdinoutCloser + jsonrpc2.NewStream +
// jsonrpc2.NewConn pattern; this package adds the two domain methods.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.lsp.dev/jsonrpc2"

	"github.com/sourcemapgo/tracemap/internal/log"
	"github.com/sourcemapgo/tracemap/internal/mapcache"
	"github.com/sourcemapgo/tracemap/pkg/sourcemap"
)

// MethodOriginalPosition resolves a generated position to its original
// source position.
const MethodOriginalPosition = "sourcemap/originalPosition"

// MethodGeneratedPosition resolves an original position back to a
// generated position.
const MethodGeneratedPosition = "sourcemap/generatedPosition"

// OriginalPositionParams is the request payload for MethodOriginalPosition.
type OriginalPositionParams struct {
	MapPath string `json:"mapPath"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Bias    string `json:"bias,omitempty"`
}

// GeneratedPositionParams is the request payload for MethodGeneratedPosition.
type GeneratedPositionParams struct {
	MapPath string `json:"mapPath"`
	Source  string `json:"source"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Bias    string `json:"bias,omitempty"`
	All     bool   `json:"all,omitempty"`
}

// Server answers sourcemap queries over a stdio JSON-RPC connection,
// backed by a shared mapcache.Cache so repeated queries against the same map
// path reuse its decoded TraceMap.
type Server struct {
	cache  *mapcache.Cache
	logger log.Logger
}

// New creates a Server. logger must not be nil.
func New(cache *mapcache.Cache, logger log.Logger) *Server {
	return &Server{cache: cache, logger: logger}
}

// stdinoutCloser wraps stdin/stdout as a single ReadWriteCloser without
// actually closing either stream on Close, matching cmd/dingo-lsp's
// transport shim.
type stdinoutCloser struct {
	r io.Reader
	w io.Writer
}

func (s *stdinoutCloser) Read(p []byte) (int, error)  { return s.r.Read(p) }
func (s *stdinoutCloser) Write(p []byte) (int, error) { return s.w.Write(p) }
func (s *stdinoutCloser) Close() error                { return nil }

// Serve runs the server over the given stdio streams until the
// connection closes or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	rwc := &stdinoutCloser{r: in, w: out}
	stream := jsonrpc2.NewStream(rwc)
	conn := jsonrpc2.NewConn(stream)

	conn.Go(ctx, s.handle)
	s.logger.Infof("query server listening on stdio")

	select {
	case <-conn.Done():
		return conn.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case MethodOriginalPosition:
		return s.handleOriginalPosition(ctx, reply, req)
	case MethodGeneratedPosition:
		return s.handleGeneratedPosition(ctx, reply, req)
	default:
		return reply(ctx, nil, fmt.Errorf("sourcemap-tool: unknown method %q", req.Method()))
	}
}

func (s *Server) handleOriginalPosition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params OriginalPositionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, fmt.Errorf("sourcemap-tool: bad params: %w", err))
	}

	tm, err := s.cache.Get(params.MapPath)
	if err != nil {
		return reply(ctx, nil, err)
	}
	pos, err := tm.OriginalPositionFor(params.Line, params.Column, biasFromString(params.Bias))
	if err != nil {
		return reply(ctx, nil, err)
	}
	s.logger.Debugf("originalPosition %s:%d:%d -> found=%v", params.MapPath, params.Line, params.Column, pos.Found)
	return reply(ctx, pos, nil)
}

func (s *Server) handleGeneratedPosition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params GeneratedPositionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, fmt.Errorf("sourcemap-tool: bad params: %w", err))
	}

	tm, err := s.cache.Get(params.MapPath)
	if err != nil {
		return reply(ctx, nil, err)
	}

	bias := biasFromString(params.Bias)
	if params.All {
		positions, err := tm.AllGeneratedPositionsFor(params.Source, params.Line, params.Column, bias)
		if err != nil {
			return reply(ctx, nil, err)
		}
		return reply(ctx, positions, nil)
	}

	pos, err := tm.GeneratedPositionFor(params.Source, params.Line, params.Column, bias)
	if err != nil {
		return reply(ctx, nil, err)
	}
	s.logger.Debugf("generatedPosition %s:%s:%d:%d -> found=%v", params.MapPath, params.Source, params.Line, params.Column, pos.Found)
	return reply(ctx, pos, nil)
}

func biasFromString(bias string) int {
	if bias == "lub" {
		return sourcemap.LeastUpperBound
	}
	return sourcemap.GreatestLowerBound
}
