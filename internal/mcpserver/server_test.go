package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/ideaservice"
	"github.com/starford/ansuz/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	db := testutil.TestDB(t)
	return New(ideaservice.NewService(db, nil))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_ideas":
		result, err = srv.searchIdeas(ctx, req)
	case "get_idea":
		result, err = srv.getIdea(ctx, req)
	case "add_idea":
		result, err = srv.addIdea(ctx, req)
	case "relate_ideas":
		result, err = srv.relateIdeas(ctx, req)
	case "recent_ideas":
		result, err = srv.recentIdeas(ctx, req)
	case "list_categories":
		result, err = srv.listCategories(ctx, req)
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

func TestAddAndGetIdea(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "add_idea", map[string]interface{}{
		"title":   "Test Idea",
		"content": "some content",
		"tags":    "go, mcp",
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "created idea 1") {
		t.Errorf("add result = %q", text)
	}

	r = callTool(t, srv, "get_idea", map[string]interface{}{"id": 1})
	text = resultText(r)
	if !strings.Contains(text, `"title": "Test Idea"`) {
		t.Errorf("get result = %q", text)
	}
	if !strings.Contains(text, `"mcp"`) {
		t.Errorf("get result missing tags: %q", text)
	}
}

func TestAddIdeaMissingTitle(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "add_idea", map[string]interface{}{"content": "x"})
	if !r.IsError {
		t.Error("expected error for missing title")
	}
}

func TestGetIdeaMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_idea", map[string]interface{}{"id": 99})
	if !r.IsError {
		t.Error("expected error for missing idea")
	}
}

func TestSearchIdeas(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "add_idea", map[string]interface{}{
		"title": "Go concurrency", "content": "channels", "category": "tech",
	})
	callTool(t, srv, "add_idea", map[string]interface{}{
		"title": "Gardening", "content": "tomatoes",
	})

	r := callTool(t, srv, "search_ideas", map[string]interface{}{"query": "channels"})
	text := resultText(r)
	if !strings.Contains(text, "Go concurrency") || strings.Contains(text, "Gardening") {
		t.Errorf("search result = %q", text)
	}

	r = callTool(t, srv, "search_ideas", map[string]interface{}{"query": "nothing-here"})
	if resultText(r) != "no matching ideas" {
		t.Errorf("empty search = %q", resultText(r))
	}
}

func TestRelateIdeas(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "add_idea", map[string]interface{}{"title": "A", "content": "a"})
	callTool(t, srv, "add_idea", map[string]interface{}{"title": "B", "content": "b"})

	r := callTool(t, srv, "relate_ideas", map[string]interface{}{"id_1": 1, "id_2": 2})
	text := resultText(r)
	if !strings.Contains(text, "[A] <-> [B]") {
		t.Errorf("relate result = %q", text)
	}

	r = callTool(t, srv, "relate_ideas", map[string]interface{}{"id_1": 1, "id_2": 99})
	if !r.IsError {
		t.Error("expected error for missing endpoint")
	}
}

func TestRecentAndCategories(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "recent_ideas", map[string]interface{}{})
	if resultText(r) != "no ideas yet" {
		t.Errorf("empty recent = %q", resultText(r))
	}

	callTool(t, srv, "add_idea", map[string]interface{}{
		"title": "First", "content": "x", "category": "tech",
	})

	r = callTool(t, srv, "recent_ideas", map[string]interface{}{"limit": 5})
	if !strings.Contains(resultText(r), "[1] First (tech)") {
		t.Errorf("recent = %q", resultText(r))
	}

	r = callTool(t, srv, "list_categories", map[string]interface{}{})
	if !strings.Contains(resultText(r), "tech: 1") {
		t.Errorf("categories = %q", resultText(r))
	}
}
