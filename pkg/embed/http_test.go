package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Provider{
		client:       &http.Client{Timeout: 5 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(100), 100),
		baseURL:      srv.URL,
		model:        "test-model",
		log:          zerolog.Nop(),
		feedbackPath: "",
		prototypes:   map[string][]float32{},
		tagVectors:   map[string]map[string][]float32{},
		customTags:   map[string][]string{},
	}
}

func TestEmbedBatchReturnsVectorsInRequestOrder(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Input, 2)

		resp := embeddingResponse{}
		resp.Data = []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}{
			{Embedding: []float32{0.2, 0.2}, Index: 1},
			{Embedding: []float32{0.1, 0.1}, Index: 0},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	vecs, err := p.embedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{0.1, 0.1}, vecs[0])
	assert.Equal(t, []float32{0.2, 0.2}, vecs[1])
}

func TestEmbedBatchEmptyInputReturnsNilWithoutCallingServer(t *testing.T) {
	called := false
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	vecs, err := p.embedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
	assert.False(t, called)
}

func TestEmbedBatchNonOKStatusFails(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	})

	_, err := p.embedBatch(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestEmbedBatchMismatchedVectorCountFails(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		resp := embeddingResponse{}
		resp.Data = []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}{{Embedding: []float32{0.1}, Index: 0}}
		json.NewEncoder(w).Encode(resp)
	})

	_, err := p.embedBatch(context.Background(), []string{"one", "two"})
	require.Error(t, err)
}

func TestEmbedOneReturnsSingleVector(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		resp := embeddingResponse{}
		resp.Data = []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}{{Embedding: []float32{0.3, 0.4}, Index: 0}}
		json.NewEncoder(w).Encode(resp)
	})

	vec, err := p.embedOne(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.3, 0.4}, vec)
}

func TestMeanEmbeddingLockedAveragesPerKeyword(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := embeddingResponse{}
		for i := range req.Input {
			resp.Data = append(resp.Data, struct {
				Embedding []float32 `json:"embedding"`
				Index     int       `json:"index"`
			}{Embedding: []float32{float32(i + 1), 0}, Index: i})
		}
		json.NewEncoder(w).Encode(resp)
	})

	mean, err := p.meanEmbeddingLocked(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	// keywords embed to [1,0] and [2,0]; the mean is [1.5, 0].
	assert.InDelta(t, 1.5, mean[0], 1e-6)
	assert.InDelta(t, 0, mean[1], 1e-6)
}
