package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
)

func TestClient_Generate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "say hi", req.Messages[0].Content)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "hi"}},
			},
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "test-model", "test-embed")
	answer, err := client.Generate(context.Background(), "say hi", litxplore.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hi", answer)
}

func TestClient_Generate_apiError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "test-model", "test-embed")
	_, err := client.Generate(context.Background(), "say hi", litxplore.GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, errors.CodeOf(err))
}

func TestClient_Embed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)

		// Answer out of order, the client must sort by index.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"index": 1, "embedding": []float32{0, 1}},
				{"index": 0, "embedding": []float32{1, 0}},
			},
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "test-model", "test-embed")
	vectors, err := client.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 0}, vectors[0])
	assert.Equal(t, []float32{0, 1}, vectors[1])
}

func TestClient_Embed_empty(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "test-key", "test-model", "test-embed")
	vectors, err := client.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestClient_Embed_countMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"index": 0, "embedding": []float32{1, 0}},
			},
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "test-model", "test-embed")
	_, err := client.Embed(context.Background(), []string{"first", "second"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, errors.CodeOf(err))
}
