// Package facebook provides a minimal page-feed posting client for the
// Facebook Graph API.
package facebook

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://graph.facebook.com/v19.0"

// Client posts messages to a Facebook page feed.
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
	pageID      string
	baseURL     string
	http        *http.Client
}

// NewClient creates a Graph API client posting to the given page.
func NewClient(accessToken, pageID string, opts ...Option) Client {
	c := &httpClient{
		accessToken: accessToken,
		pageID:      pageID,
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

// Post publishes text to the page feed.
func (c *httpClient) Post(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("message", text)
	form.Set("access_token", c.accessToken)

	endpoint := c.baseURL + "/" + c.pageID + "/feed"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return eris.Wrap(err, "facebook: create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "facebook: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return eris.Errorf("facebook: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
