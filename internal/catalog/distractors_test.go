package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOpenAI(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openAIChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
}

func TestSimilarArtists(t *testing.T) {
	content := "1. Rita Ora\n2. Mabel\n- Anne-Marie\nZara Larsson\n\"Jess Glynne\"\nSigrid\n"
	server := fakeOpenAI(t, content, http.StatusOK)
	defer server.Close()

	g := NewOpenAIGenerator("sk-test", "gpt-4o-mini", server.URL)
	names, err := g.SimilarArtists(context.Background(), "Dua Lipa", 5)
	require.NoError(t, err)

	// Bullets, numbering and quotes are stripped; the list stops at n.
	assert.Equal(t, []string{"Rita Ora", "Mabel", "Anne-Marie", "Zara Larsson", "Jess Glynne"}, names)
}

func TestSimilarArtistsAPIError(t *testing.T) {
	server := fakeOpenAI(t, "", http.StatusTooManyRequests)
	defer server.Close()

	g := NewOpenAIGenerator("sk-test", "gpt-4o-mini", server.URL)
	_, err := g.SimilarArtists(context.Background(), "Dua Lipa", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSimilarArtistsMissingKey(t *testing.T) {
	g := NewOpenAIGenerator("", "gpt-4o-mini", "http://unused")
	_, err := g.SimilarArtists(context.Background(), "Dua Lipa", 5)
	assert.Error(t, err)
}

func TestSimilarArtistsEmptyResponse(t *testing.T) {
	server := fakeOpenAI(t, "\n\n", http.StatusOK)
	defer server.Close()

	g := NewOpenAIGenerator("sk-test", "gpt-4o-mini", server.URL)
	_, err := g.SimilarArtists(context.Background(), "Dua Lipa", 5)
	assert.Error(t, err)
}
