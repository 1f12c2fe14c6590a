package discovery

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mediareach/press-cli/internal/extract"
	"github.com/mediareach/press-cli/internal/model"
	"github.com/mediareach/press-cli/internal/resilience"
)

// DefaultDirectoryPages are professional directories known to list working
// journalists.
var DefaultDirectoryPages = []string{
	"https://www.odg.it/elenco-iscritti",
	"https://www.muckrack.com/directory",
	"https://pressgazette.co.uk/media-contacts/",
}

// maxNamesPerDirectory bounds resolver work per directory page.
const maxNamesPerDirectory = 5

// DirectoryStrategy is the last resort: it scans a fixed list of
// professional-directory pages for listed names and resolves an email for
// each.
type DirectoryStrategy struct {
	pages    []string
	resolver EmailResolver
	http     *http.Client
	limiter  *rate.Limiter
}

// NewDirectoryStrategy creates the strategy over the given directory pages.
func NewDirectoryStrategy(pages []string, resolver EmailResolver, delay time.Duration) *DirectoryStrategy {
	if len(pages) == 0 {
		pages = DefaultDirectoryPages
	}
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &DirectoryStrategy{
		pages:    pages,
		resolver: resolver,
		http:     &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Name implements Strategy.
func (s *DirectoryStrategy) Name() string { return "directory" }

// Discover scans each directory page for person names. Emails found on the
// page next to a name are kept directly; otherwise the resolver fills them
// in. Unreachable pages are skipped.
func (s *DirectoryStrategy) Discover(ctx context.Context, _ []string) ([]model.Recipient, Outcome) {
	log := zap.L().With(zap.String("strategy", s.Name()))

	var recipients []model.Recipient
	for _, page := range s.pages {
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}

		body, err := resilience.DoVal(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) (string, error) {
			return s.fetch(ctx, page)
		})
		if err != nil {
			log.Warn("directory fetch failed", zap.String("url", page), zap.Error(err))
			continue
		}

		host := hostOf(page)
		region := extract.RegionForDomain(page)
		role := extract.Role(body)

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		text := body
		if err == nil {
			text = doc.Text()
		}

		emailByName := make(map[string]string)
		if err == nil {
			for _, email := range extract.Emails(body) {
				if name := extract.NameNearEmail(doc, email); name != "" {
					emailByName[name] = email
				}
			}
		}

		for _, name := range candidateNames(text, maxNamesPerDirectory) {
			email, listed := emailByName[name]
			if !listed {
				email = s.resolver.Resolve(ctx, name, host)
			}
			recipients = append(recipients, model.Recipient{
				Name:        name,
				Email:       email,
				Role:        role,
				Publication: host,
				Region:      region,
				SourceURL:   page,
			})
		}
	}

	if len(recipients) == 0 {
		return nil, OutcomeEmpty
	}
	return recipients, OutcomeFound
}

func (s *DirectoryStrategy) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "press-cli/1.0")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("directory: unexpected status %d from %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
