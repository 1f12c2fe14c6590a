// Package twitter provides a minimal posting client for the X API v2.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://api.x.com/2"

	// maxTweetLen is the plain-text tweet limit; longer content is posted
	// as a sequence of chunks.
	maxTweetLen = 280
)

// Client posts content to X.
type Client interface {
	Post(ctx context.Context, text string) error
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
	bearerToken string
	baseURL     string
	http        *http.Client
}

// NewClient creates an X API client using bearer-token auth.
func NewClient(bearerToken string, opts ...Option) Client {
	c := &httpClient{
		bearerToken: bearerToken,
		baseURL:     defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type tweetRequest struct {
	Text string `json:"text"`
}

// Post publishes text, splitting it into 280-character chunks when needed.
// Posting stops at the first failed chunk.
func (c *httpClient) Post(ctx context.Context, text string) error {
	for _, chunk := range Chunk(text, maxTweetLen) {
		if err := c.postOne(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (c *httpClient) postOne(ctx context.Context, text string) error {
	body, err := json.Marshal(tweetRequest{Text: text})
	if err != nil {
		return eris.Wrap(err, "twitter: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tweets", bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "twitter: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "twitter: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return eris.Errorf("twitter: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Chunk splits text into rune-safe pieces of at most size characters.
func Chunk(text string, size int) []string {
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
