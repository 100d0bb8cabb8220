package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body openAIEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "text-embedding-3-small", body.Model)
		assert.Equal(t, "<section id=\"hero\"></section>", body.Input)

		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL+"/", "")
	res, err := p.Generate(context.Background(), "<section id=\"hero\"></section>", TaskRetrievalDocument)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, res.Embedding.Values)
}

func TestOpenAIProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIProvider("k", srv.URL, "").Generate(context.Background(), "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOllamaProvider_NormalizesVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"embedding":[3,4]}`))
	}))
	defer srv.Close()

	res, err := NewOllamaProvider(srv.URL, "").Generate(context.Background(), "hello", "")
	require.NoError(t, err)
	require.Len(t, res.Embedding.Values, 2)
	assert.InDelta(t, 0.6, res.Embedding.Values[0], 1e-6)
	assert.InDelta(t, 0.8, res.Embedding.Values[1], 1e-6)
}

func TestGeminiProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/text-embedding-004:embedContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var body geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, TaskRetrievalQuery, body.TaskType)

		_, _ = w.Write([]byte(`{"embedding":{"values":[1,0]}}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("g-key")
	p.BaseURL = srv.URL
	res, err := p.Generate(context.Background(), "make it blue", TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, res.Embedding.Values)
}

func TestNormalizeVector_Zero(t *testing.T) {
	v := []float32{0, 0}
	assert.Equal(t, v, normalizeVector(v))

	n := normalizeVector([]float32{1, 1})
	var mag float64
	for _, x := range n {
		mag += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(mag), 1e-6)
}
