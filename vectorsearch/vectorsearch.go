// Package vectorsearch implements the semantic product search collaborator:
// a query is embedded, matched against a Qdrant collection of indexed
// products, and the ranked hits are exposed to the engine as the
// vector_search tool. Rankings are non-deterministic across re-indexing;
// the engine treats this as just another registered tool.
package vectorsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Result is one ranked product hit.
type Result struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// Searcher is the similarity-search boundary. Implementations return
// results ordered best-first.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]Result, error)
}

// Embedder turns text into a query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// ClientOptions configure the Qdrant-backed searcher.
type ClientOptions struct {
	Collection string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client performs vector similarity search against a Qdrant collection via
// its REST API.
type Client struct {
	baseURL    string
	collection string
	embedder   Embedder
	http       *http.Client
}

// NewClient creates a searcher for the given Qdrant base URL
// (e.g. "http://localhost:6333").
func NewClient(baseURL string, embedder Embedder, optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{
		Collection: "products",
		Timeout:    15 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{baseURL: baseURL, collection: opts.Collection, embedder: embedder, http: httpClient}
}

type searchRequest struct {
	Vector      []float64 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		Score   float64 `json:"score"`
		Payload struct {
			PageContent string `json:"page_content"`
			Metadata    struct {
				Code  string `json:"code"`
				Name  string `json:"name"`
				Price string `json:"price"`
			} `json:"metadata"`
		} `json:"payload"`
	} `json:"result"`
}

// Search implements Searcher.
func (c *Client) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		k = 5
	}
	vector, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	body, err := json.Marshal(searchRequest{Vector: vector, Limit: k, WithPayload: true})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vector search: status %d: %s", resp.StatusCode, data)
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Result))
	for _, hit := range parsed.Result {
		results = append(results, Result{
			Code:        hit.Payload.Metadata.Code,
			Name:        hit.Payload.Metadata.Name,
			Price:       hit.Payload.Metadata.Price,
			Description: hit.Payload.PageContent,
		})
	}
	return results, nil
}
