package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mentorlink/forum/internal/forum"
	"github.com/mentorlink/forum/internal/models"
	"github.com/mentorlink/forum/internal/repository"
	"github.com/mentorlink/forum/internal/testutil"
)

func testServer(t *testing.T) (*Server, *forum.Service) {
	t.Helper()
	db := testutil.TestDB(t)
	testutil.SeedUser(t, db, "u1")
	svc := forum.NewService(repository.NewQuestionRepository(db), db)
	return New(svc), svc
}

func seedQuestion(t *testing.T, svc *forum.Service, title, category string) *models.Question {
	t.Helper()
	q, err := svc.Create(context.Background(), forum.CreateQuestionRequest{
		Title: title, Content: "body of " + title, Category: category,
	}, "u1")
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct call helper, so dispatch to the handlers.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_questions":
		result, err = srv.listQuestions(ctx, req)
	case "get_question":
		result, err = srv.getQuestion(ctx, req)
	case "search_questions":
		result, err = srv.searchQuestions(ctx, req)
	case "questions_by_category":
		result, err = srv.questionsByCategory(ctx, req)
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

func decodeList(t *testing.T, r *mcp.CallToolResult) listOutput {
	t.Helper()
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
	var out listOutput
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestListQuestions(t *testing.T) {
	srv, svc := testServer(t)
	seedQuestion(t, svc, "First", "general")
	seedQuestion(t, svc, "Second", "general")

	out := decodeList(t, callTool(t, srv, "list_questions", map[string]any{"limit": 1}))
	if out.Total != 2 || len(out.Questions) != 1 {
		t.Fatalf("total=%d len=%d", out.Total, len(out.Questions))
	}

	r := callTool(t, srv, "list_questions", map[string]any{"sort": "nope"})
	if !r.IsError {
		t.Error("expected error for unknown sort field")
	}
}

func TestGetQuestion(t *testing.T) {
	srv, svc := testServer(t)
	q := seedQuestion(t, svc, "Readable", "product")

	r := callTool(t, srv, "get_question", map[string]any{"id": q.ID})
	if r.IsError || !strings.Contains(resultText(r), `"title": "Readable"`) {
		t.Errorf("get result = %q", resultText(r))
	}

	r = callTool(t, srv, "get_question", map[string]any{"id": "missing"})
	if !r.IsError {
		t.Error("expected error for missing question")
	}

	r = callTool(t, srv, "get_question", map[string]any{})
	if !r.IsError {
		t.Error("expected error without id")
	}
}

func TestSearchQuestions(t *testing.T) {
	srv, svc := testServer(t)
	seedQuestion(t, svc, "Kubernetes in prod", "engineering")
	seedQuestion(t, svc, "Pricing", "business")

	out := decodeList(t, callTool(t, srv, "search_questions", map[string]any{"query": "KUBER"}))
	if out.Total != 1 || out.Questions[0].Title != "Kubernetes in prod" {
		t.Errorf("search = %+v", out)
	}
}

func TestQuestionsByCategory(t *testing.T) {
	srv, svc := testServer(t)
	seedQuestion(t, svc, "A", "engineering")
	seedQuestion(t, svc, "B", "business")

	out := decodeList(t, callTool(t, srv, "questions_by_category", map[string]any{"category": "Business"}))
	if out.Total != 1 || out.Questions[0].Category != "business" {
		t.Errorf("by category = %+v", out)
	}
}

func TestListCategories(t *testing.T) {
	srv, _ := testServer(t)
	var cats []string
	if err := json.Unmarshal([]byte(resultText(callTool(t, srv, "list_categories", nil))), &cats); err != nil {
		t.Fatal(err)
	}
	if len(cats) != len(models.Categories) || cats[0] != models.CategoryEngineering {
		t.Errorf("categories = %v", cats)
	}
}

func TestPostingGuide(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readPostingGuide(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected content type %T", contents[0])
	}
	if !strings.Contains(tc.Text, "200 characters") || !strings.Contains(tc.Text, "`data-science`") {
		t.Errorf("guide missing rules:\n%s", tc.Text)
	}
}
