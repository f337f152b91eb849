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

// OllamaEmbedderOptions configure the Ollama-backed embedder.
type OllamaEmbedderOptions struct {
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// OllamaEmbedder produces query vectors through a local Ollama server's
// embeddings endpoint. The model must match the one used at indexing time
// or similarity scores are meaningless.
type OllamaEmbedder struct {
	baseURL string
	model   string
	http    *http.Client
}

// NewOllamaEmbedder creates an embedder for the given Ollama base URL
// (e.g. "http://localhost:11434").
func NewOllamaEmbedder(baseURL string, optFns ...func(o *OllamaEmbedderOptions)) *OllamaEmbedder {
	opts := OllamaEmbedderOptions{
		Model:   "nomic-embed-text",
		Timeout: 30 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &OllamaEmbedder{baseURL: baseURL, model: opts.Model, http: httpClient}
}

// Embed implements Embedder.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(map[string]string{"model": e.model, "prompt": text})
	if err != nil {
		return nil, fmt.Errorf("encode embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings: status %d: %s", resp.StatusCode, data)
	}

	var parsed struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("embeddings: empty vector for model %s", e.model)
	}
	return parsed.Embedding, nil
}
