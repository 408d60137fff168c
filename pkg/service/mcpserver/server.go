// Package mcpserver exposes the memory store and the learning pipeline as an
// MCP stdio server, so agent hosts can search and extend the knowledge base
// as tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/magpielabs/magpie/pkg/model"
	"github.com/magpielabs/magpie/pkg/usecase/learning"
	"github.com/magpielabs/magpie/pkg/usecase/memory"
)

const defaultSearchLimit = 10

// Server wires the memory and learning usecases into MCP tools.
type Server struct {
	memory   *memory.UseCase
	learning *learning.UseCase
}

// New creates an MCP server service. learning may be nil, in which case the
// learn_now tool is not registered.
func New(mem *memory.UseCase, learn *learning.UseCase) *Server {
	return &Server{memory: mem, learning: learn}
}

// Run serves MCP over stdio until the context is cancelled or the transport
// closes.
func (s *Server) Run(ctx context.Context, version string) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "magpie",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "memory_search",
		Description: "Search stored facts by keyword. Results are ranked by confidence, most trusted first.",
	}, s.searchHandler)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "memory_add",
		Description: "Store a new fact in memory. Manually added facts start at higher confidence than self-learned ones.",
	}, s.addHandler)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "memory_boost",
		Description: "Mark a fact as useful, raising its confidence and use count.",
	}, s.boostHandler)

	if s.learning != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "learn_now",
			Description: "Trigger a learning run over all enabled topics. Returns how many new insights were saved.",
		}, s.learnHandler)
	}

	return server.Run(ctx, &mcp.StdioTransport{})
}

type searchInput struct {
	Query string `json:"query,omitempty" jsonschema:"Keyword filter over fact content and tags; empty returns the top-ranked facts"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max facts to return (default 10)"`
}

type addInput struct {
	Content string   `json:"content"        jsonschema:"The fact to remember, one sentence"`
	Tags    []string `json:"tags,omitempty" jsonschema:"Optional tags for grouping"`
}

type boostInput struct {
	ID string `json:"id" jsonschema:"Memory entry ID returned by memory_search or memory_add"`
}

type learnInput struct{}

func (s *Server) searchHandler(ctx context.Context, req *mcp.CallToolRequest, input searchInput) (*mcp.CallToolResult, any, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	entries, err := s.memory.EntriesForContext(ctx, 0)
	if err != nil {
		return textResult(fmt.Sprintf("error: %v", err)), nil, nil
	}

	query := strings.ToLower(strings.TrimSpace(input.Query))
	matched := make([]map[string]any, 0, limit)
	for _, e := range entries {
		if query != "" && !entryMatches(e, query) {
			continue
		}
		matched = append(matched, entryToMap(e))
		if len(matched) >= limit {
			break
		}
	}

	return textResult(jsonString(matched)), nil, nil
}

func (s *Server) addHandler(ctx context.Context, req *mcp.CallToolRequest, input addInput) (*mcp.CallToolResult, any, error) {
	entry, err := s.memory.AddEntry(ctx, input.Content, input.Tags, model.SourceManual)
	if err != nil {
		return textResult(fmt.Sprintf("error: %v", err)), nil, nil
	}
	return textResult(jsonString(map[string]any{
		"id":         entry.ID,
		"confidence": entry.Confidence,
		"status":     "stored",
	})), nil, nil
}

func (s *Server) boostHandler(ctx context.Context, req *mcp.CallToolRequest, input boostInput) (*mcp.CallToolResult, any, error) {
	if err := s.memory.Boost(ctx, model.MemoryID(input.ID), memory.DefaultBoostDelta); err != nil {
		return textResult(fmt.Sprintf("error: %v", err)), nil, nil
	}
	return textResult(`{"status": "boosted"}`), nil, nil
}

func (s *Server) learnHandler(ctx context.Context, req *mcp.CallToolRequest, input learnInput) (*mcp.CallToolResult, any, error) {
	saved, err := s.learning.Run(ctx)
	if err != nil {
		return textResult(fmt.Sprintf("error: %v", err)), nil, nil
	}
	return textResult(jsonString(map[string]any{
		"insights_saved": saved,
		"status":         "done",
	})), nil, nil
}

func entryMatches(e *model.MemoryEntry, loweredQuery string) bool {
	if strings.Contains(strings.ToLower(e.Content), loweredQuery) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), loweredQuery) {
			return true
		}
	}
	return false
}

func entryToMap(e *model.MemoryEntry) map[string]any {
	return map[string]any{
		"id":         e.ID,
		"content":    e.Content,
		"tags":       e.Tags,
		"source":     e.Source,
		"confidence": e.Confidence,
		"use_count":  e.UseCount,
		"updated_at": e.UpdatedAt.Format(time.RFC3339),
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonString(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal: %v"}`, err)
	}
	return string(data)
}
