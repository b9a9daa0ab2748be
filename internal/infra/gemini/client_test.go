package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-form/internal/infra/gemini"
)

func TestClient_Refine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{
					{"text": "Vehicle: red sedan. "},
					{"text": "Damages: none."},
				}}},
			},
		})
	}))
	defer server.Close()

	client := gemini.NewClientWithURL("test-key", "gemini-test", "", server.URL)

	refined, err := client.Refine(context.Background(), "* Vehicle inspected: - red sedan")
	require.NoError(t, err)
	require.Equal(t, "Vehicle: red sedan. Damages: none.", refined)
}

func TestClient_RefineAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "quota exceeded", "code": 429},
		})
	}))
	defer server.Close()

	client := gemini.NewClientWithURL("test-key", "gemini-test", "", server.URL)

	_, err := client.Refine(context.Background(), "text")
	require.Error(t, err)
	require.Contains(t, err.Error(), "quota exceeded")
}

func TestClient_RefineNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	client := gemini.NewClientWithURL("test-key", "", "", server.URL)

	_, err := client.Refine(context.Background(), "text")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty response")
}
