package mcp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/logger"
)

// RecommendInput is the input schema for the recommend tool.
type RecommendInput struct {
	Title      string `json:"title" jsonschema:"the article title to find related articles for"`
	K          int    `json:"k,omitempty" jsonschema:"number of neighbours to consider (default 5)"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of recommendations (default 3)"`
}

// RecommendOutput is the output schema for the recommend tool.
type RecommendOutput struct {
	Recommendations []RecommendationOutput `json:"recommendations"`
	Count           int                    `json:"count"`
}

// RecommendationOutput is one related article.
type RecommendationOutput struct {
	Title  string `json:"title"`
	PageID string `json:"page_id"`
}

// LookupInput is the input schema for the lookup tool.
type LookupInput struct {
	Query     string `json:"query" jsonschema:"free-text query naming an article"`
	SessionID string `json:"session_id,omitempty" jsonschema:"reader session whose history records the visit"`
}

// OpenInput is the input schema for the open_article tool.
type OpenInput struct {
	PageID    string `json:"page_id" jsonschema:"encyclopedia page id of the article"`
	SessionID string `json:"session_id,omitempty" jsonschema:"reader session whose history records the visit"`
}

// ArticleOutput is the output schema for lookup and open_article.
type ArticleOutput struct {
	Title           string                 `json:"title"`
	PageID          string                 `json:"page_id"`
	URL             string                 `json:"url"`
	Summary         string                 `json:"summary"`
	Recommendations []RecommendationOutput `json:"recommendations"`
}

// SessionInput is the input schema for the history tools.
type SessionInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"reader session (default mcp)"`
}

// HistoryOutput is the output schema for the history tool.
type HistoryOutput struct {
	Entries []HistoryEntryOutput `json:"entries"`
	Count   int                  `json:"count"`
}

// HistoryEntryOutput is one visited article.
type HistoryEntryOutput struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ClearHistoryOutput is the output schema for the clear_history tool.
type ClearHistoryOutput struct {
	Cleared bool `json:"cleared"`
}

// errUnavailable is returned by tools whose service is not configured.
var errUnavailable = errors.New("this tool is not available in the current configuration")

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recommend",
		Description: "Suggest catalog articles related to an article title",
	}, s.handleRecommend)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "lookup",
		Description: "Find an encyclopedia article by query, with its summary and related articles",
	}, s.handleLookup)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "open_article",
		Description: "Open an article by page id, with its summary and related articles",
	}, s.handleOpen)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "history",
		Description: "List the articles a session visited, oldest first",
	}, s.handleHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_history",
		Description: "Forget the articles a session visited",
	}, s.handleClearHistory)
}

func (s *Server) handleRecommend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecommendInput,
) (*mcp.CallToolResult, RecommendOutput, error) {
	if s.ports.Recommend == nil {
		return nil, RecommendOutput{}, errUnavailable
	}

	opts := domain.RecommendOptions{K: input.K, MaxResults: input.MaxResults}.WithDefaults()
	recs, err := s.ports.Recommend.Recommend(ctx, input.Title, opts)
	if err != nil {
		return nil, RecommendOutput{}, toolError(err, "", input.Title)
	}

	out := RecommendOutput{
		Recommendations: recommendationsOutput(recs),
		Count:           len(recs),
	}
	return nil, out, nil
}

func (s *Server) handleLookup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, ArticleOutput, error) {
	if s.ports.Explorer == nil {
		return nil, ArticleOutput{}, errUnavailable
	}
	session := sessionOrDefault(input.SessionID)
	view, err := s.ports.Explorer.Lookup(ctx, session, input.Query)
	if err != nil {
		return nil, ArticleOutput{}, toolError(err, session, input.Query)
	}
	return nil, articleOutput(view), nil
}

func (s *Server) handleOpen(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OpenInput,
) (*mcp.CallToolResult, ArticleOutput, error) {
	if s.ports.Explorer == nil {
		return nil, ArticleOutput{}, errUnavailable
	}
	session := sessionOrDefault(input.SessionID)
	view, err := s.ports.Explorer.Open(ctx, session, input.PageID)
	if err != nil {
		return nil, ArticleOutput{}, toolError(err, session, input.PageID)
	}
	return nil, articleOutput(view), nil
}

func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	if s.ports.History == nil {
		return nil, HistoryOutput{}, errUnavailable
	}
	session := sessionOrDefault(input.SessionID)
	entries, err := s.ports.History.Get(ctx, session)
	if err != nil {
		return nil, HistoryOutput{}, toolError(err, session, "")
	}

	out := HistoryOutput{
		Entries: make([]HistoryEntryOutput, len(entries)),
		Count:   len(entries),
	}
	for i, e := range entries {
		out.Entries[i] = HistoryEntryOutput{Title: e.Title, URL: e.URL}
	}
	return nil, out, nil
}

func (s *Server) handleClearHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, ClearHistoryOutput, error) {
	if s.ports.History == nil {
		return nil, ClearHistoryOutput{}, errUnavailable
	}
	session := sessionOrDefault(input.SessionID)
	if err := s.ports.History.Clear(ctx, session); err != nil {
		return nil, ClearHistoryOutput{}, toolError(err, session, "")
	}
	return nil, ClearHistoryOutput{Cleared: true}, nil
}

// toolError logs a failed call under a fresh request id and returns the
// reader-facing notice.
func toolError(err error, session, subject string) error {
	logger.L().Error().
		Err(err).
		Str("request_id", uuid.NewString()).
		Str("session", session).
		Str("title", subject).
		Msg("mcp tool call failed")
	return errors.New(domain.Notice(err))
}

func sessionOrDefault(id string) string {
	if id == "" {
		return DefaultSessionID
	}
	return id
}

func recommendationsOutput(recs []domain.Recommendation) []RecommendationOutput {
	out := make([]RecommendationOutput, len(recs))
	for i, r := range recs {
		out[i] = RecommendationOutput{Title: r.Title, PageID: r.ID}
	}
	return out
}

func articleOutput(v *domain.ArticleView) ArticleOutput {
	return ArticleOutput{
		Title:           v.Title,
		PageID:          v.PageID,
		URL:             v.URL,
		Summary:         v.Summary,
		Recommendations: recommendationsOutput(v.Recommendations),
	}
}
