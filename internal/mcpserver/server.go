// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the update pipeline for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hunchagency/dotupdate/internal/auditlog"
	"github.com/hunchagency/dotupdate/internal/updateservice"
	"github.com/hunchagency/dotupdate/internal/vocab"
)

// Server wraps the MCP server with update pipeline tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *updateservice.Service
	audit *auditlog.Store
}

// New creates a new MCP server with all tools registered. audit may be nil;
// the recent_updates tool then reports that history is disabled.
func New(svc *updateservice.Service, audit *auditlog.Store) *Server {
	s := &Server{svc: svc, audit: audit}

	s.mcp = server.NewMCPServer(
		"Dot Update",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("post_update",
		mcp.WithDescription("Process a free-text status update for a job: classify it into "+
			"typed facts, render the log line and Teams post, and persist the results. "+
			"Read the vocabulary first via the get_update_contract tool or the "+
			"dotupdate://vocabulary resource."),
		mcp.WithString("job_number", mcp.Required(), mcp.Description("Job number the update belongs to (e.g. TOW 087)")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The raw update text, e.g. an email or chat message")),
	), s.postUpdate)

	s.mcp.AddTool(mcp.NewTool("recent_updates",
		mcp.WithDescription("List recently processed updates for a job, newest first."),
		mcp.WithString("job_number", mcp.Required(), mcp.Description("Job number to list updates for")),
	), s.recentUpdates)

	s.mcp.AddTool(mcp.NewTool("list_stages",
		mcp.WithDescription("List the pipeline stage names a project can move to."),
	), s.listStages)

	s.mcp.AddTool(mcp.NewTool("get_update_contract",
		mcp.WithDescription("Returns the update vocabulary contract: recognized fact types, "+
			"stage names, and the phrasing the classifier understands."),
	), s.getUpdateContract)

	// Resource: update vocabulary contract.
	s.mcp.AddResource(
		mcp.NewResource("dotupdate://vocabulary", "Update Vocabulary Contract",
			mcp.WithResourceDescription("Fact types and stage names recognized by the update pipeline."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readVocabularyResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) postUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobNumber, err := req.RequireString("job_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.svc.ProcessUpdate(ctx, jobNumber, message)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) recentUpdates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobNumber, err := req.RequireString("job_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.audit == nil {
		return mcp.NewToolResultError("update history is disabled"), nil
	}
	records, err := s.audit.Recent(jobNumber, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no updates recorded for %s", jobNumber)), nil
	}
	out, _ := json.MarshalIndent(records, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listStages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(vocab.Stages, "\n")), nil
}

func (s *Server) getUpdateContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(VocabularyContract), nil
}

func (s *Server) readVocabularyResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "dotupdate://vocabulary",
			MIMEType: "text/markdown",
			Text:     VocabularyContract,
		},
	}, nil
}
