// Package websearch provides a scraping client for a generic HTML web search
// endpoint. The provider is treated as unreliable: markup changes, blocks and
// rate limits all degrade to empty result sets.
package websearch

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://html.duckduckgo.com/html/"

// Client performs web searches and returns parsed organic results.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Result is a single organic search result.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default search endpoint.
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

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a web search client with a 10s request timeout.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   defaultBaseURL,
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) press-cli/1.0",
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string) ([]Result, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: parse base url")
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("websearch: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		// Unparseable body is a provider quirk, not a caller error.
		zap.L().Debug("websearch: unparseable response", zap.Error(err))
		return nil, nil
	}

	return parseResults(doc), nil
}

// parseResults extracts organic results from the provider markup. Unknown
// structure yields an empty slice.
func parseResults(doc *goquery.Document) []Result {
	var results []Result

	doc.Find(".result").Each(func(_ int, sel *goquery.Selection) {
		a := sel.Find("a.result__a").First()
		href := cleanResultURL(a.AttrOr("href", ""))
		if href == "" {
			return
		}
		results = append(results, Result{
			Title:   strings.TrimSpace(a.Text()),
			URL:     href,
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").Text()),
		})
	})

	if len(results) > 0 {
		return results
	}

	// Degraded markup: fall back to bare anchors with http targets.
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := cleanResultURL(a.AttrOr("href", ""))
		if !strings.HasPrefix(href, "http") {
			return
		}
		title := strings.TrimSpace(a.Text())
		if title == "" {
			return
		}
		results = append(results, Result{Title: title, URL: href})
	})

	return results
}

// cleanResultURL unwraps provider redirect links of the form
// //duckduckgo.com/l/?uddg=<encoded-target>.
func cleanResultURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		if decoded, err := url.QueryUnescape(target); err == nil {
			return decoded
		}
	}
	return href
}
