// Package newsapi provides a client for the newsapi.org article search API.
package newsapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://newsapi.org/v2"

// Client performs article searches against the News API.
type Client interface {
	Everything(ctx context.Context, req EverythingRequest) (*EverythingResponse, error)
}

// EverythingRequest holds the query parameters for GET /everything.
type EverythingRequest struct {
	Query    string
	Language string
	SortBy   string
	PageSize int
}

// EverythingResponse is the response from GET /everything.
type EverythingResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// Article is a single article hit.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// Source identifies the publication an article belongs to.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a News API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Everything(ctx context.Context, req EverythingRequest) (*EverythingResponse, error) {
	u, err := url.Parse(c.baseURL + "/everything")
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: parse url")
	}

	q := u.Query()
	q.Set("q", req.Query)
	if req.Language != "" {
		q.Set("language", req.Language)
	}
	if req.SortBy != "" {
		q.Set("sortBy", req.SortBy)
	}
	if req.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(req.PageSize))
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: create request")
	}
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("newsapi: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result EverythingResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "newsapi: unmarshal response")
	}

	return &result, nil
}
