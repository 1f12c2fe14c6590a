// Package linkedin provides a minimal share-posting client for the LinkedIn
// REST API.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.linkedin.com/v2"

// Client posts shares to LinkedIn.
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
	accessToken string
	authorURN   string
	baseURL     string
	http        *http.Client
}

// NewClient creates a LinkedIn client posting on behalf of the given author
// URN (e.g. "urn:li:organization:123").
func NewClient(accessToken, authorURN string, opts ...Option) Client {
	c := &httpClient{
		accessToken: accessToken,
		authorURN:   authorURN,
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

type ugcPost struct {
	Author          string          `json:"author"`
	LifecycleState  string          `json:"lifecycleState"`
	SpecificContent specificContent `json:"specificContent"`
	Visibility      visibility      `json:"visibility"`
}

type specificContent struct {
	ShareContent shareContent `json:"com.linkedin.ugc.ShareContent"`
}

type shareContent struct {
	ShareCommentary    commentary `json:"shareCommentary"`
	ShareMediaCategory string     `json:"shareMediaCategory"`
}

type commentary struct {
	Text string `json:"text"`
}

type visibility struct {
	MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
}

// Post publishes a public text share.
func (c *httpClient) Post(ctx context.Context, text string) error {
	body, err := json.Marshal(ugcPost{
		Author:         c.authorURN,
		LifecycleState: "PUBLISHED",
		SpecificContent: specificContent{
			ShareContent: shareContent{
				ShareCommentary:    commentary{Text: text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: visibility{MemberNetworkVisibility: "PUBLIC"},
	})
	if err != nil {
		return eris.Wrap(err, "linkedin: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "linkedin: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "linkedin: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return eris.Errorf("linkedin: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
