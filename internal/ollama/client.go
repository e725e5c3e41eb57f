// Package ollama is a minimal client for a locally running Ollama server.
// It exposes the two calls the app needs: a health/tags probe and a
// non-streaming text completion. Any transport error or non-2xx status is
// reported as a plain error; callers treat all of them as "unavailable".
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

type Client struct {
	mu      sync.RWMutex
	baseURL string
	model   string
	hc      *http.Client
}

// Status is the result of a health probe.
type Status struct {
	Connected bool
	HasModel  bool
	Models    []string
}

func NewClient(baseURL, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		hc:      &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetEndpoint repoints the client at a different server or model. Safe to
// call while other goroutines are probing or completing.
func (c *Client) SetEndpoint(baseURL, model string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.model = model
	c.mu.Unlock()
}

func (c *Client) endpoint() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL, c.model
}

// Health probes /api/tags and checks the configured model is present
// (substring match, so "llama3.2" matches "llama3.2:latest").
func (c *Client) Health(ctx context.Context) Status {
	baseURL, model := c.endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return Status{}
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return Status{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Status{}
	}

	var body struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Status{}
	}

	st := Status{Connected: true}
	for _, m := range body.Models {
		st.Models = append(st.Models, m.Name)
		if strings.Contains(m.Name, model) {
			st.HasModel = true
		}
	}
	return st
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Complete sends a single non-streaming completion request and returns the
// generated text. One attempt, no retry.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	baseURL, model := c.endpoint()
	payload, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: temperature,
			NumPredict:  maxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("ollama unavailable: status %d", resp.StatusCode)
	}

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return body.Response, nil
}
