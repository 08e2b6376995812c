// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only forum tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mentorlink/forum/internal/apperr"
	"github.com/mentorlink/forum/internal/forum"
	"github.com/mentorlink/forum/internal/models"
)

// Server wraps the MCP server with forum tools.
type Server struct {
	mcp *server.MCPServer
	svc *forum.Service
}

// New creates a new MCP server with all forum tools registered.
func New(svc *forum.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Forum",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_questions",
		mcp.WithDescription("List forum questions, newest first unless sort is given."),
		mcp.WithNumber("page", mcp.Description("1-based page number (default 1)")),
		mcp.WithNumber("limit", mcp.Description("Page size, at most 100 (default 20)")),
		mcp.WithString("sort", mcp.Description("Sort field with optional leading '-' for descending"),
			mcp.Enum("-createdAt", "createdAt", "-updatedAt", "updatedAt", "-upvotes", "upvotes", "title", "-title")),
	), s.listQuestions)

	s.mcp.AddTool(mcp.NewTool("get_question",
		mcp.WithDescription("Read a question with all of its answers."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Question id")),
	), s.getQuestion)

	s.mcp.AddTool(mcp.NewTool("search_questions",
		mcp.WithDescription("Case-insensitive search over question titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to look for")),
		mcp.WithNumber("page", mcp.Description("1-based page number (default 1)")),
		mcp.WithNumber("limit", mcp.Description("Page size, at most 100 (default 20)")),
	), s.searchQuestions)

	s.mcp.AddTool(mcp.NewTool("questions_by_category",
		mcp.WithDescription("List questions in one category, newest first."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name, e.g. engineering")),
		mcp.WithNumber("page", mcp.Description("1-based page number (default 1)")),
		mcp.WithNumber("limit", mcp.Description("Page size, at most 100 (default 20)")),
	), s.questionsByCategory)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the well-known question categories."),
	), s.listCategories)

	s.mcp.AddResource(
		mcp.NewResource(GuideURI, "Forum Posting Guide",
			mcp.WithResourceDescription("What a well-formed forum question looks like."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostingGuide,
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

const defaultToolLimit = 20

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

type listOutput struct {
	Questions []models.Question `json:"questions"`
	Total     int64             `json:"total"`
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
}

func listResult(res *forum.ListResult, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(listOutput{Questions: res.Questions, Total: res.Total, Page: res.Page, Limit: res.Limit})
}

func paging(req mcp.CallToolRequest) (int, int) {
	return req.GetInt("page", 1), req.GetInt("limit", defaultToolLimit)
}

func (s *Server) listQuestions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, limit := paging(req)
	return listResult(s.svc.List(ctx, page, limit, req.GetString("sort", "")))
}

func (s *Server) getQuestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	q, err := s.svc.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found: " + id), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(q)
}

func (s *Server) searchQuestions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, limit := paging(req)
	return listResult(s.svc.Search(ctx, query, "", page, limit))
}

func (s *Server) questionsByCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, limit := paging(req)
	return listResult(s.svc.ByCategory(ctx, category, page, limit))
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(models.Categories)
}

func (s *Server) readPostingGuide(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GuideURI,
			MIMEType: "text/markdown",
			Text:     PostingGuide(),
		},
	}, nil
}
