// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes read-only blog content tools for LLM integration via stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/content"
)

// Server wraps the MCP server with the content tools.
type Server struct {
	mcp    *server.MCPServer
	facade *content.Facade
}

// New creates a new MCP server with all tools registered.
func New(facade *content.Facade) *Server {
	s := &Server{facade: facade}

	s.mcp = server.NewMCPServer(
		"Dagaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Search published blog posts by substring match on title and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("get_post",
		mcp.WithDescription("Read one blog post (metadata plus rendered HTML) by numeric id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Numeric post id")),
	), s.getPost)

	s.mcp.AddTool(mcp.NewTool("recent_posts",
		mcp.WithDescription("List the most recent published posts, newest first."),
		mcp.WithString("limit", mcp.Description("Maximum number of posts (default 10)")),
	), s.recentPosts)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List the tag cloud: every tag of published posts with its count."),
	), s.listTags)

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

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.facade.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var id int64
	if _, scanErr := fmt.Sscanf(strings.TrimSpace(raw), "%d", &id); scanErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid post id: %s", raw)), nil
	}
	post, err := s.facade.PostByID(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("post %d not found", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !post.Published() {
		// Drafts and private posts are not exposed over MCP.
		return mcp.NewToolResultError(fmt.Sprintf("post %d not found", id)), nil
	}
	out, _ := json.MarshalIndent(post, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) recentPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 10
	if raw, err := req.RequireString("limit"); err == nil {
		if _, scanErr := fmt.Sscanf(strings.TrimSpace(raw), "%d", &limit); scanErr != nil || limit < 1 {
			limit = 10
		}
	}
	posts, err := s.facade.RecentPosts(limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(posts, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cloud, err := s.facade.TagCloud()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(cloud, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
