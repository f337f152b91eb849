package vectorsearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedEmbedder struct {
	vector []float64
	err    error
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return f.vector, f.err
}

func qdrantReply() map[string]any {
	return map[string]any{
		"result": []map[string]any{
			{
				"score": 0.92,
				"payload": map[string]any{
					"page_content": "A compact cordless drill.",
					"metadata":     map[string]any{"code": "P1", "name": "Drill", "price": "$99"},
				},
			},
			{
				"score": 0.81,
				"payload": map[string]any{
					"page_content": "An angle grinder.",
					"metadata":     map[string]any{"code": "P2", "name": "Grinder", "price": "$59"},
				},
			},
		},
	}
}

func TestClientSearch(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(qdrantReply())
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fixedEmbedder{vector: []float64{0.1, 0.2}})
	results, err := c.Search(context.Background(), "something to drill holes", 2)
	require.NoError(t, err)

	assert.Equal(t, "/collections/products/points/search", gotPath)
	assert.Equal(t, float64(2), gotBody["limit"])
	assert.Equal(t, true, gotBody["with_payload"])
	assert.Len(t, gotBody["vector"], 2)

	require.Len(t, results, 2)
	assert.Equal(t, "P1", results[0].Code)
	assert.Equal(t, "Drill", results[0].Name)
	assert.Equal(t, "$99", results[0].Price)
	assert.Equal(t, "A compact cordless drill.", results[0].Description)
}

func TestClientSearchDefaultsAndOptions(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fixedEmbedder{vector: []float64{1}}, func(o *ClientOptions) {
		o.Collection = "catalog"
	})
	_, err := c.Search(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Equal(t, "/collections/catalog/points/search", gotPath)
	// Non-positive k falls back to 5.
	assert.Equal(t, float64(5), gotBody["limit"])
}

func TestClientSearchEmbedderError(t *testing.T) {
	c := NewClient("http://example.invalid", &fixedEmbedder{err: errors.New("ollama down")})
	_, err := c.Search(context.Background(), "q", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed query")
}

func TestClientSearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "collection not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fixedEmbedder{vector: []float64{1}})
	_, err := c.Search(context.Background(), "q", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestOllamaEmbedder(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.5, 0.25}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL)
	vec, err := e.Embed(context.Background(), "cordless drill")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.25}, vec)
	assert.Equal(t, "nomic-embed-text", gotBody["model"])
	assert.Equal(t, "cordless drill", gotBody["prompt"])
}

func TestOllamaEmbedderEmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL)
	_, err := e.Embed(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty vector")
}

// -------------------- Tool Tests --------------------

type stubSearcher struct {
	results []Result
	lastK   int
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, query string, k int) ([]Result, error) {
	s.lastK = k
	return s.results, s.err
}

func TestVectorSearchTool(t *testing.T) {
	s := &stubSearcher{results: []Result{{Code: "P1", Name: "Drill", Price: "$99"}}}
	vt := Tool(s)

	assert.Equal(t, "vector_search", vt.Name())

	out, err := vt.Call(context.Background(), map[string]any{"query": "drill", "k": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, s.lastK)

	var results []Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Equal(t, "P1", results[0].Code)

	// k defaults to 5 when omitted.
	_, err = vt.Call(context.Background(), map[string]any{"query": "drill"})
	require.NoError(t, err)
	assert.Equal(t, 5, s.lastK)

	// query is required.
	_, err = vt.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
}
