package extract

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// contactKeywords mark anchors that typically lead to staff listings.
var contactKeywords = []string{"contact", "about", "staff", "team", "writers", "editors"}

// PageLocator finds a site's contact or staff page starting from its home
// URL. Lookup failures degrade to the original URL: the caller always gets a
// usable address back.
type PageLocator struct {
	http      *http.Client
	userAgent string
}

// LocatorOption configures a PageLocator.
type LocatorOption func(*PageLocator)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) LocatorOption {
	return func(l *PageLocator) {
		l.http = hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) LocatorOption {
	return func(l *PageLocator) {
		l.userAgent = ua
	}
}

// NewPageLocator creates a PageLocator with a 10s request timeout.
func NewPageLocator(opts ...LocatorOption) *PageLocator {
	l := &PageLocator{
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		userAgent: "press-cli/1.0",
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Locate fetches baseURL and returns the first anchor whose href contains a
// contact keyword, resolved against the base. On any failure, or when no
// anchor matches, the original URL is returned unchanged.
func (l *PageLocator) Locate(ctx context.Context, baseURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return baseURL
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.http.Do(req)
	if err != nil {
		zap.L().Debug("contact page lookup failed", zap.String("url", baseURL), zap.Error(err))
		return baseURL
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return baseURL
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return baseURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}

	located := baseURL
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.ToLower(a.AttrOr("href", ""))
		for _, kw := range contactKeywords {
			if strings.Contains(href, kw) {
				if ref, err := url.Parse(a.AttrOr("href", "")); err == nil {
					located = base.ResolveReference(ref).String()
				}
				return false
			}
		}
		return true
	})

	return located
}
