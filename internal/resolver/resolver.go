// Package resolver finds a person's email address through iterative web
// search. Initial templated queries are followed by a bounded refinement
// loop in which a text-generation capability proposes better queries. The
// whole process is best-effort: every network or generation failure is
// logged and treated as a miss, and only full exhaustion yields "".
package resolver

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/mediareach/press-cli/internal/extract"
	"github.com/mediareach/press-cli/pkg/websearch"
)

// defaultMaxAttempts bounds the refinement loop.
const defaultMaxAttempts = 5

// maxPageBytes caps how much of a contact page is read.
const maxPageBytes = 1 << 20

// ContactLocator narrows a site URL down to its contact page.
type ContactLocator interface {
	Locate(ctx context.Context, baseURL string) string
}

// QueryGenerator proposes the next search query given the person, their
// publication and the queries already tried.
type QueryGenerator interface {
	NextQuery(ctx context.Context, name, publication string, tried []string) (string, error)
}

// Resolver resolves a person's email address via web search.
type Resolver struct {
	search      websearch.Client
	locator     ContactLocator
	queries     QueryGenerator
	http        *http.Client
	userAgent   string
	maxAttempts int
	limiter     *rate.Limiter
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxAttempts bounds the refinement loop.
func WithMaxAttempts(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithSearchDelay sets the courtesy delay between successive search requests.
func WithSearchDelay(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithHTTPClient overrides the client used to fetch contact pages.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Resolver) {
		r.http = hc
	}
}

// New creates a Resolver.
func New(search websearch.Client, locator ContactLocator, queries QueryGenerator, opts ...Option) *Resolver {
	r := &Resolver{
		search:      search,
		locator:     locator,
		queries:     queries,
		http:        &http.Client{Timeout: 10 * time.Second},
		userAgent:   "press-cli/1.0",
		maxAttempts: defaultMaxAttempts,
		limiter:     rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the first email whose local part shares a token with the
// person's name, found either in search snippets or on the first result's
// contact page. Returns "" when the attempt budget is exhausted.
func (r *Resolver) Resolve(ctx context.Context, name, publication string) string {
	tokens := nameTokens(name)
	if len(tokens) == 0 {
		return ""
	}

	log := zap.L().With(zap.String("name", name), zap.String("publication", publication))

	var tried []string
	for _, q := range initialQueries(name, publication) {
		if err := r.limiter.Wait(ctx); err != nil {
			return ""
		}
		tried = append(tried, q)
		if email := r.tryQuery(ctx, q, tokens); email != "" {
			log.Info("email resolved", zap.String("query", q))
			return email
		}
	}

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		q, err := r.queries.NextQuery(ctx, name, publication, tried)
		if err != nil {
			log.Warn("query refinement failed", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}
		q = strings.TrimSpace(strings.Trim(strings.TrimSpace(q), `"`))
		if q == "" || contains(tried, q) {
			continue
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return ""
		}
		tried = append(tried, q)
		if email := r.tryQuery(ctx, q, tokens); email != "" {
			log.Info("email resolved via refinement",
				zap.String("query", q),
				zap.Int("attempt", attempt+1),
			)
			return email
		}
	}

	log.Debug("email resolution exhausted", zap.Int("queries_tried", len(tried)))
	return ""
}

// tryQuery runs one search: snippets first, then the first result's contact
// page. Any failure degrades to "".
func (r *Resolver) tryQuery(ctx context.Context, query string, tokens []string) string {
	results, err := r.search.Search(ctx, query)
	if err != nil {
		zap.L().Debug("resolver search failed", zap.String("query", query), zap.Error(err))
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	for _, res := range results {
		if email := matchEmail(extract.Emails(res.Snippet), tokens); email != "" {
			return email
		}
	}

	contactURL := r.locator.Locate(ctx, results[0].URL)
	page, err := r.fetchPage(ctx, contactURL)
	if err != nil {
		zap.L().Debug("resolver page fetch failed", zap.String("url", contactURL), zap.Error(err))
		return ""
	}
	return matchEmail(extract.Emails(page), tokens)
}

func (r *Resolver) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// initialQueries are the templated first attempts, English and Italian.
func initialQueries(name, publication string) []string {
	subject := name
	if publication != "" {
		subject = name + " " + publication
	}
	return []string{
		subject + " email contact",
		subject + " contatto email",
		name + " journalist email address",
		name + " giornalista email redazione",
		subject + " press contact",
	}
}

// matchEmail returns the first email whose local part contains any name
// token, comparing case-insensitively with diacritics stripped.
func matchEmail(emails []string, tokens []string) string {
	for _, email := range emails {
		local, _, ok := strings.Cut(email, "@")
		if !ok {
			continue
		}
		local = foldASCII(strings.ToLower(local))
		for _, tok := range tokens {
			if strings.Contains(local, tok) {
				return email
			}
		}
	}
	return ""
}

// nameTokens splits a name into folded lowercase tokens, dropping initials.
func nameTokens(name string) []string {
	fields := strings.Fields(foldASCII(strings.ToLower(name)))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,")
		if len(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// foldASCII strips combining diacritical marks: "Niccolò" matches "niccolo".
func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
