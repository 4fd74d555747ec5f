// Package mcp exposes Extract Method analysis as MCP tools over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/semi/internal/analyzer"
	"github.com/mvp-joe/semi/internal/storage"
)

// Server bundles the MCP server with the services its tools call.
type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
}

// NewServer registers the analysis tools. svc should report rejected
// candidates so callers can ask for them; reader may be nil, in which case
// the stored results tool is not offered. A nil logger uses slog.Default().
func NewServer(svc *analyzer.Service, reader *storage.Reader, version string, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("analyzer service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := server.NewMCPServer(
		"semi",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	AddExtractionTool(s, svc)
	if reader != nil {
		AddStoredResultsTool(s, reader)
	}
	return &Server{mcp: s, logger: logger}, nil
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Serve serves on stdin/stdout until the client disconnects or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio")
		errCh <- server.ServeStdio(s.mcp)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("stopping MCP server")
		return nil
	}
}
