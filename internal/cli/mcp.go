package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/semi/internal/analyzer"
	"github.com/mvp-joe/semi/internal/mcp"
	"github.com/mvp-joe/semi/internal/storage"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve Extract Method analysis as MCP tools on stdio",
	Long: `Start an MCP (Model Context Protocol) server on stdin/stdout.

Tools:
  extraction_opportunities  analyze Java source sent by the client
  stored_opportunities      read runs recorded with 'semi analyze --store'

Logs go to stderr so they never mix with the protocol stream.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := loadProject()
	if err != nil {
		return err
	}

	c, err := p.newCache()
	if err != nil {
		return err
	}
	defer c.Close()

	// Rejected candidates are filtered per call by the tool.
	svc, err := p.newService(true, analyzer.WithCache(c))
	if err != nil {
		return err
	}

	var reader *storage.Reader
	db, err := p.openDB()
	if err != nil {
		slog.Warn("results database unavailable, stored_opportunities disabled", "error", err)
	} else {
		defer db.Close()
		reader = storage.NewReader(db)
	}

	server, err := mcp.NewServer(svc, reader, Version, slog.Default())
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}
