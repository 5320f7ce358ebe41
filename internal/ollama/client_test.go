package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tagsJSON builds a /api/tags response with the given model names.
func tagsJSON(names ...string) []byte {
	type entry struct {
		Name string `json:"name"`
	}
	type resp struct {
		Models []entry `json:"models"`
	}
	r := resp{}
	for _, n := range names {
		r.Models = append(r.Models, entry{Name: n})
	}
	b, _ := json.Marshal(r)
	return b
}

func newFakeOllama(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestNew_InvalidURLFallsBackToDefault(t *testing.T) {
	c := New("not a url")
	assert.Equal(t, defaultBaseURL, c.BaseURL())

	c = New("http://127.0.0.1:11434/")
	assert.Equal(t, "http://127.0.0.1:11434", c.BaseURL())
}

func TestIsRunning_Up(t *testing.T) {
	c := newFakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	assert.True(t, c.IsRunning(context.Background()))
}

func TestIsRunning_Down(t *testing.T) {
	// Point at a closed server to simulate connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL)
	assert.False(t, c.IsRunning(context.Background()))
}

func TestListModels(t *testing.T) {
	c := newFakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Write(tagsJSON("llama2:latest", "mistral:7b"))
	})

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama2:latest", "mistral:7b"}, models)
}

func TestHasModel(t *testing.T) {
	c := newFakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(tagsJSON("llama2:latest", "mistral:7b"))
	})

	assert.True(t, c.HasModel(context.Background(), "llama2"))
	assert.True(t, c.HasModel(context.Background(), "mistral:7b"))
	assert.False(t, c.HasModel(context.Background(), "phi3"))
}

func TestChat_SendsOptionsAndMessages(t *testing.T) {
	var captured api.ChatRequest
	c := newFakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"model":   captured.Model,
			"message": map[string]string{"role": "assistant", "content": "Hi there, what is your full name?"},
			"done":    true,
		})
	})

	got, err := c.Chat(context.Background(), "llama2", []Message{
		{Role: "system", Content: "persona"},
		{Role: "user", Content: "hello"},
	}, Options{Temperature: 0.7, TopP: 0.9, MaxTokens: 300})
	require.NoError(t, err)

	assert.Equal(t, "Hi there, what is your full name?", got)
	assert.Equal(t, "llama2", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	require.NotNil(t, captured.Stream)
	assert.False(t, *captured.Stream)
	assert.InDelta(t, 0.7, captured.Options["temperature"], 1e-9)
	assert.InDelta(t, 0.9, captured.Options["top_p"], 1e-9)
	assert.InDelta(t, 300, captured.Options["num_predict"], 1e-9)
}

func TestChat_ServerError(t *testing.T) {
	c := newFakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"llama2\" not found, try pulling it first"}`))
	})

	_, err := c.Chat(context.Background(), "llama2", []Message{{Role: "user", Content: "hi"}}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPullModel_Progress(t *testing.T) {
	c := newFakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pull" {
			http.NotFound(w, r)
			return
		}

		var req api.PullRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "llama2" {
			t.Errorf("pull model = %q, want %q", req.Model, "llama2")
		}

		// Stream progress lines as newline-delimited JSON.
		enc := json.NewEncoder(w)
		enc.Encode(api.ProgressResponse{Status: "downloading", Total: 1000, Completed: 500})
		enc.Encode(api.ProgressResponse{Status: "downloading", Total: 1000, Completed: 1000})
		enc.Encode(api.ProgressResponse{Status: "success"})
	})

	var updates []PullProgress
	err := c.PullModel(context.Background(), "llama2", func(p PullProgress) {
		updates = append(updates, p)
	})
	require.NoError(t, err)
	require.Len(t, updates, 3)
	assert.Equal(t, int64(500), updates[0].Completed)
	assert.Equal(t, "success", updates[2].Status)
}
