// Package retrieval supplies scope-filtered policy fragments to the
// decision workflow via an external semantic search service.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Hit is one candidate fragment as returned by the search service.
type Hit struct {
	Content string  `json:"content"`
	Domain  string  `json:"domain"`
	Score   float64 `json:"score"`
}

// Searcher is the minimal contract against the external semantic index.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]Hit, error)
}

// HTTPSearcher talks to the index over its REST API.
type HTTPSearcher struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
}

func NewHTTPSearcher(rawURL, apiKey string, timeout time.Duration) (*HTTPSearcher, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return nil, fmt.Errorf("retriever.base_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing retriever.base_url failed: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSearcher{
		baseURL:    parsed,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (s *HTTPSearcher) SetHTTPClient(client *http.Client) {
	s.httpClient = client
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Results []Hit `json:"results"`
}

func (s *HTTPSearcher) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	endpoint := s.baseURL.JoinPath("search").String()
	body, err := json.Marshal(searchRequest{Query: query, TopK: k})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("search returned status=%d", resp.StatusCode)
	}
	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response failed: %w", err)
	}
	return parsed.Results, nil
}
