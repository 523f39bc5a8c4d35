package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hunchagency/dotupdate/internal/auditlog"
	"github.com/hunchagency/dotupdate/internal/extract"
	"github.com/hunchagency/dotupdate/internal/testutil"
	"github.com/hunchagency/dotupdate/internal/updateservice"
	"github.com/hunchagency/dotupdate/internal/vocab"
)

func testServer(t *testing.T) (*Server, *auditlog.Store) {
	t.Helper()

	ext := &testutil.StaticExtractor{Cands: []extract.Candidate{
		{Type: vocab.TypeStage, RawValue: "craft"},
	}}
	store := &testutil.FakeStore{Project: testutil.TestProject()}
	audit := testutil.TestAuditLog(t)

	svc := updateservice.NewService(ext, store, audit, nil, testutil.QuietLogger())
	return New(svc, audit), audit
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "post_update":
		result, err = srv.postUpdate(ctx, req)
	case "recent_updates":
		result, err = srv.recentUpdates(ctx, req)
	case "list_stages":
		result, err = srv.listStages(ctx, req)
	case "get_update_contract":
		result, err = srv.getUpdateContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestPostUpdate(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "post_update", map[string]interface{}{
		"job_number": "TOW 087",
		"message":    "Moving to craft",
	})
	if r.IsError {
		t.Fatalf("post_update errored: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `"airtableUpdate": "Moving to Craft."`) {
		t.Errorf("result = %q", text)
	}
	if !strings.Contains(text, `"teamsPost": "UPDATE | Moving to Craft."`) {
		t.Errorf("result = %q", text)
	}
}

func TestPostUpdateMissingArgs(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "post_update", map[string]interface{}{"job_number": "TOW 087"})
	if !r.IsError {
		t.Error("expected error for missing message")
	}
}

func TestRecentUpdates(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "recent_updates", map[string]interface{}{"job_number": "TOW 087"})
	if text := resultText(r); text != "no updates recorded for TOW 087" {
		t.Errorf("empty history = %q", text)
	}

	callTool(t, srv, "post_update", map[string]interface{}{
		"job_number": "TOW 087",
		"message":    "Moving to craft",
	})

	r = callTool(t, srv, "recent_updates", map[string]interface{}{"job_number": "TOW 087"})
	if r.IsError {
		t.Fatalf("recent_updates errored: %s", resultText(r))
	}
	if text := resultText(r); !strings.Contains(text, "Moving to Craft.") {
		t.Errorf("history = %q", text)
	}
}

func TestRecentUpdatesDisabled(t *testing.T) {
	srv, _ := testServer(t)
	srv.audit = nil

	r := callTool(t, srv, "recent_updates", map[string]interface{}{"job_number": "TOW 087"})
	if !r.IsError {
		t.Error("expected error when history is disabled")
	}
}

func TestListStages(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_stages", map[string]interface{}{})
	text := resultText(r)
	for _, stage := range vocab.Stages {
		if !strings.Contains(text, stage) {
			t.Errorf("stage %q missing from %q", stage, text)
		}
	}
}

func TestGetUpdateContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_update_contract", map[string]interface{}{})
	if text := resultText(r); !strings.Contains(text, "with_client") {
		t.Errorf("contract = %q", text)
	}
}
