// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the idea base to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/ideaservice"
	"github.com/starford/ansuz/internal/store"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp *server.MCPServer
	svc *ideaservice.Service
}

// New creates a new MCP server with all Ansuz tools registered.
func New(svc *ideaservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_ideas",
		mcp.WithDescription("Search ideas by keyword, with optional category and tag filters."),
		mcp.WithString("query", mcp.Description("Substring to match in title, content, or summary")),
		mcp.WithString("category", mcp.Description("Exact category filter")),
		mcp.WithString("tag", mcp.Description("Exact tag filter")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 20)")),
	), s.searchIdeas)

	s.mcp.AddTool(mcp.NewTool("get_idea",
		mcp.WithDescription("Read a single idea with its tags and relations."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Idea id")),
	), s.getIdea)

	s.mcp.AddTool(mcp.NewTool("add_idea",
		mcp.WithDescription("Store a new idea. An idea with the same derived slug is updated in place."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Idea title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Idea body")),
		mcp.WithString("category", mcp.Description("Optional category")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	), s.addIdea)

	s.mcp.AddTool(mcp.NewTool("relate_ideas",
		mcp.WithDescription("Link two ideas with an optional relation type and note."),
		mcp.WithNumber("id_1", mcp.Required(), mcp.Description("First idea id")),
		mcp.WithNumber("id_2", mcp.Required(), mcp.Description("Second idea id")),
		mcp.WithString("type", mcp.Description("Relation type (default: related)")),
		mcp.WithString("note", mcp.Description("Optional note on the relation")),
	), s.relateIdeas)

	s.mcp.AddTool(mcp.NewTool("recent_ideas",
		mcp.WithDescription("List the most recently created ideas."),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 10)")),
	), s.recentIdeas)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List categories with idea counts."),
	), s.listCategories)

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

func (s *Server) searchIdeas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := store.SearchFilter{
		Keyword:  req.GetString("query", ""),
		Category: req.GetString("category", ""),
		Tag:      req.GetString("tag", ""),
		Limit:    req.GetInt("limit", 20),
	}
	results, err := s.svc.Search(ctx, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no matching ideas"), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getIdea(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	idea, rels, err := s.svc.Get(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if idea == nil {
		return mcp.NewToolResultError(fmt.Sprintf("idea %d not found", id)), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"idea":      idea,
		"relations": rels,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addIdea(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := store.CreateIdea{
		Title:    title,
		Content:  content,
		Category: req.GetString("category", ""),
		Source:   "mcp",
	}
	if raw := req.GetString("tags", ""); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				in.Tags = append(in.Tags, t)
			}
		}
	}

	res, err := s.svc.Create(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	verb := "created"
	if res.Updated {
		verb = "updated"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s idea %d (%s)", verb, res.ID, res.Slug)), nil
}

func (s *Server) relateIdeas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id1, err := req.RequireInt("id_1")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id2, err := req.RequireInt("id_2")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	relID, a, b, err := s.svc.Relate(ctx, int64(id1), int64(id2),
		req.GetString("type", ""), req.GetString("note", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("relation %d: [%s] <-> [%s]", relID, a.Title, b.Title)), nil
}

func (s *Server) recentIdeas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ideas, err := s.svc.Recent(ctx, req.GetInt("limit", 10))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ideas) == 0 {
		return mcp.NewToolResultText("no ideas yet"), nil
	}
	var b strings.Builder
	for _, idea := range ideas {
		fmt.Fprintf(&b, "[%d] %s", idea.ID, idea.Title)
		if idea.Category != "" {
			fmt.Fprintf(&b, " (%s)", idea.Category)
		}
		b.WriteByte('\n')
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats, err := s.svc.Categories(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(cats) == 0 {
		return mcp.NewToolResultText("no categories yet"), nil
	}
	var b strings.Builder
	for _, c := range cats {
		fmt.Fprintf(&b, "%s: %d\n", c.Category, c.Count)
	}
	return mcp.NewToolResultText(b.String()), nil
}
