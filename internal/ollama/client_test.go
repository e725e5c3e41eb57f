package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagsHandler(models ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type m struct {
			Name string `json:"name"`
		}
		var list []m
		for _, name := range models {
			list = append(list, m{Name: name})
		}
		json.NewEncoder(w).Encode(map[string]any{"models": list})
	}
}

func TestHealthConnected(t *testing.T) {
	srv := httptest.NewServer(tagsHandler("llama3.2:latest", "mistral:7b"))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.2")
	st := c.Health(context.Background())

	assert.True(t, st.Connected)
	assert.True(t, st.HasModel, "substring match should find llama3.2:latest")
	assert.Equal(t, []string{"llama3.2:latest", "mistral:7b"}, st.Models)
}

func TestHealthModelMissing(t *testing.T) {
	srv := httptest.NewServer(tagsHandler("mistral:7b"))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.2")
	st := c.Health(context.Background())

	assert.True(t, st.Connected)
	assert.False(t, st.HasModel)
}

func TestHealthServerDown(t *testing.T) {
	srv := httptest.NewServer(tagsHandler())
	srv.Close() // refuse connections

	c := NewClient(srv.URL, "llama3.2")
	st := c.Health(context.Background())

	assert.False(t, st.Connected)
	assert.False(t, st.HasModel)
}

func TestHealthBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.2")
	assert.False(t, c.Health(context.Background()).Connected)
}

func TestComplete(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(generateResponse{Response: "Take one small step."})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.2")
	text, err := c.Complete(context.Background(), "coach me", 400, 0.7)

	require.NoError(t, err)
	assert.Equal(t, "Take one small step.", text)
	assert.Equal(t, "llama3.2", got.Model)
	assert.Equal(t, "coach me", got.Prompt)
	assert.False(t, got.Stream, "completions are never streamed")
	assert.Equal(t, 400, got.Options.NumPredict)
	assert.InDelta(t, 0.7, got.Options.Temperature, 0.001)
}

func TestCompleteBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.2")
	_, err := c.Complete(context.Background(), "hi", 100, 0.7)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestCompleteServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "llama3.2")
	_, err := c.Complete(context.Background(), "hi", 100, 0.7)
	require.Error(t, err)
}

func TestCompleteContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "llama3.2")
	_, err := c.Complete(ctx, "hi", 100, 0.7)
	require.Error(t, err)
}

func TestSetEndpoint(t *testing.T) {
	srvA := httptest.NewServer(tagsHandler("llama3.2"))
	defer srvA.Close()
	srvB := httptest.NewServer(tagsHandler("qwen2.5"))
	defer srvB.Close()

	c := NewClient(srvA.URL+"/", "llama3.2")
	assert.True(t, c.Health(context.Background()).HasModel)

	c.SetEndpoint(srvB.URL, "qwen2.5")
	assert.Equal(t, "qwen2.5", c.Model())
	st := c.Health(context.Background())
	assert.True(t, st.Connected)
	assert.True(t, st.HasModel)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(tagsHandler("llama3.2"))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "llama3.2")
	assert.True(t, c.Health(context.Background()).Connected)
}
