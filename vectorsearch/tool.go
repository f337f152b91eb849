package vectorsearch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/drt-labs-ai/conversional-commerce-agent/tool"
)

// Tool wraps a Searcher as the vector_search engine tool.
func Tool(s Searcher) tool.Tool {
	return tool.NewFunctionTool(
		"vector_search",
		"Search for products using semantic vector search. Good for descriptions.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Natural language product query"},
				"k":     map[string]any{"type": "integer", "description": "Number of results"},
			},
			"required": []string{"query"},
		},
		func(ctx context.Context, args map[string]any) (string, error) {
			query, err := tool.RequireString(args, "query")
			if err != nil {
				return "", err
			}
			results, err := s.Search(ctx, query, tool.IntArg(args, "k", 5))
			if err != nil {
				return "", err
			}
			b, err := json.Marshal(results)
			if err != nil {
				return "", fmt.Errorf("encode search results: %w", err)
			}
			return string(b), nil
		},
	)
}
