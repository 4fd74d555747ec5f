package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/semi/internal/analyzer"
	"github.com/mvp-joe/semi/internal/javaparse"
	"github.com/mvp-joe/semi/internal/storage"
)

const (
	extractionToolName = "extraction_opportunities"
	storedToolName     = "stored_opportunities"
	defaultSourcePath  = "Input.java"
)

// ExtractionRequest holds the extraction_opportunities arguments.
type ExtractionRequest struct {
	Source          string `json:"source"`
	Path            string `json:"path"`
	Method          string `json:"method"`
	IncludeRejected bool   `json:"include_rejected"`
}

// ExtractionResponse is the extraction_opportunities result.
type ExtractionResponse struct {
	Path      string                  `json:"path"`
	HasErrors bool                    `json:"has_errors,omitempty"`
	Methods   []analyzer.MethodReport `json:"methods"`
	Accepted  int                     `json:"accepted"`
}

// AddExtractionTool registers the extraction_opportunities tool.
func AddExtractionTool(s *server.MCPServer, svc *analyzer.Service) {
	tool := mcp.NewTool(
		extractionToolName,
		mcp.WithDescription("Find Extract Method refactoring opportunities in Java source. Returns, per method, the statement spans that can be moved into a new method, with line ranges."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Java compilation unit source text")),
		mcp.WithString("path",
			mcp.Description("File name used in the report (default: Input.java)")),
		mcp.WithString("method",
			mcp.Description("Only report this method, by simple or qualified name (e.g. 'total' or 'Cart.total')")),
		mcp.WithBoolean("include_rejected",
			mcp.Description("Also list rejected candidates with the reason they cannot be extracted")),
	)
	s.AddTool(tool, createExtractionHandler(svc))
}

func createExtractionHandler(svc *analyzer.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.Params.Arguments.(map[string]any); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		var req ExtractionRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if req.Source == "" {
			return mcp.NewToolResultError("source parameter is required"), nil
		}
		if req.Path == "" {
			req.Path = defaultSourcePath
		}

		report, err := svc.AnalyzeSource(ctx, req.Path, []byte(req.Source))
		if err != nil {
			if errors.Is(err, javaparse.ErrParse) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, fmt.Errorf("analysis failed: %w", err)
		}

		resp := ExtractionResponse{
			Path:      report.Path,
			HasErrors: report.HasErrors,
			Methods:   []analyzer.MethodReport{},
		}
		for _, m := range report.Methods {
			if req.Method != "" && !matchesMethod(m.Name, req.Method) {
				continue
			}
			if !req.IncludeRejected {
				m = acceptedOnly(m)
			}
			resp.Accepted += m.Accepted
			resp.Methods = append(resp.Methods, m)
		}
		if req.Method != "" && len(resp.Methods) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("method %q not found", req.Method)), nil
		}

		return jsonResult(resp)
	}
}

// matchesMethod accepts the qualified name or its trailing simple name.
func matchesMethod(qualified, name string) bool {
	if qualified == name {
		return true
	}
	n := len(qualified) - len(name)
	return n > 0 && qualified[n-1] == '.' && qualified[n:] == name
}

func acceptedOnly(m analyzer.MethodReport) analyzer.MethodReport {
	kept := make([]analyzer.OpportunityReport, 0, m.Accepted)
	for _, o := range m.Opportunities {
		if o.Accepted {
			kept = append(kept, o)
		}
	}
	m.Opportunities = kept
	return m
}

// StoredRequest holds the stored_opportunities arguments.
type StoredRequest struct {
	RunID           string `json:"run_id"`
	IncludeRejected bool   `json:"include_rejected"`
}

// StoredOpportunity is one row of the stored_opportunities result.
type StoredOpportunity struct {
	File       string `json:"file"`
	Method     string `json:"method"`
	Level      int    `json:"level"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Statements int    `json:"statements"`
	Accepted   bool   `json:"accepted"`
	Reason     string `json:"reason,omitempty"`
}

// StoredResponse is the stored_opportunities result.
type StoredResponse struct {
	RunID         string              `json:"run_id"`
	Root          string              `json:"root"`
	Files         int                 `json:"files"`
	Opportunities []StoredOpportunity `json:"opportunities"`
}

// AddStoredResultsTool registers the stored_opportunities tool.
func AddStoredResultsTool(s *server.MCPServer, reader *storage.Reader) {
	tool := mcp.NewTool(
		storedToolName,
		mcp.WithDescription("List Extract Method opportunities recorded by a previous 'semi analyze --store' run."),
		mcp.WithString("run_id",
			mcp.Description("Run to read (default: latest run)")),
		mcp.WithBoolean("include_rejected",
			mcp.Description("Also list rejected candidates")),
	)
	s.AddTool(tool, createStoredHandler(reader))
}

func createStoredHandler(reader *storage.Reader) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req StoredRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		var (
			run *storage.Run
			err error
		)
		if req.RunID == "" {
			run, err = reader.LatestRun()
		} else {
			run, err = reader.GetRun(req.RunID)
		}
		if errors.Is(err, storage.ErrNoRuns) || errors.Is(err, storage.ErrRunNotFound) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err != nil {
			return nil, err
		}

		opps, err := reader.Opportunities(run.ID, !req.IncludeRejected)
		if err != nil {
			return nil, err
		}
		resp := StoredResponse{
			RunID:         run.ID,
			Root:          run.Root,
			Files:         run.Files,
			Opportunities: make([]StoredOpportunity, 0, len(opps)),
		}
		for _, o := range opps {
			resp.Opportunities = append(resp.Opportunities, StoredOpportunity{
				File:       o.FilePath,
				Method:     o.Method,
				Level:      o.Level,
				StartLine:  o.StartLine,
				EndLine:    o.EndLine,
				Statements: o.Statements,
				Accepted:   o.Accepted,
				Reason:     o.Reason,
			})
		}
		return jsonResult(resp)
	}
}

// jsonResult returns v as JSON text (mcp-go convention).
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
