package discovery

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mediareach/press-cli/internal/extract"
	"github.com/mediareach/press-cli/internal/model"
	"github.com/mediareach/press-cli/pkg/websearch"
)

// mediaContactKeywords filter search hits down to pages that plausibly list
// media contacts. English and Italian variants.
var mediaContactKeywords = []string{
	"journalist", "editor", "reporter", "writer", "media", "press", "contact",
	"giornalista", "redazione", "contatto", "contatti", "stampa",
}

// WebSearchStrategy is the first fallback: a general web search for the
// topics plus contact-intent keywords, mined for names and emails.
type WebSearchStrategy struct {
	search   websearch.Client
	resolver EmailResolver
	limiter  *rate.Limiter
}

// NewWebSearchStrategy creates the strategy. delay is the courtesy pause
// between successive search queries.
func NewWebSearchStrategy(search websearch.Client, resolver EmailResolver, delay time.Duration) *WebSearchStrategy {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &WebSearchStrategy{
		search:   search,
		resolver: resolver,
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Name implements Strategy.
func (s *WebSearchStrategy) Name() string { return "websearch" }

// contactQueries builds the contact-intent query set for the topics.
func contactQueries(topics []string) []string {
	topic := strings.Join(topics, " ")
	return []string{
		topic + " journalist contact",
		topic + " editor contact",
		topic + " reporter contact",
		topic + " media contact",
		topic + " press contact",
		topic + " giornalista contatto",
		topic + " redazione contatti",
	}
}

// Discover runs the contact-intent queries and mines the result snippets.
// Snippets carrying an email keep it directly; named contacts without one go
// through the resolver. Search failures skip to the next query.
func (s *WebSearchStrategy) Discover(ctx context.Context, topics []string) ([]model.Recipient, Outcome) {
	if len(topics) == 0 {
		return nil, OutcomeEmpty
	}

	platforms := relevantPlatforms(topics)
	log := zap.L().With(zap.String("strategy", s.Name()))

	var recipients []model.Recipient
	for _, query := range contactQueries(topics) {
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}

		results, err := s.search.Search(ctx, query)
		if err != nil {
			log.Warn("web search failed", zap.String("query", query), zap.Error(err))
			continue
		}

		for _, res := range results {
			text := res.Title + " " + res.Snippet
			if !mentionsMediaContact(text) {
				continue
			}

			names := candidateNames(text, 5)
			platform := platformFor(res.URL, platforms)
			region := extract.RegionForDomain(res.URL)
			role := extract.Role(text)

			emails := extract.Emails(res.Snippet)
			if len(emails) > 0 {
				for _, email := range emails {
					recipients = append(recipients, model.Recipient{
						Name:        nameForEmail(email, names),
						Email:       email,
						Role:        role,
						Publication: platform,
						Region:      region,
						SourceURL:   res.URL,
					})
				}
				continue
			}

			if len(names) == 0 {
				continue
			}
			name := names[0]
			recipients = append(recipients, model.Recipient{
				Name:        name,
				Email:       s.resolver.Resolve(ctx, name, platform),
				Role:        role,
				Publication: platform,
				Region:      region,
				SourceURL:   res.URL,
			})
		}
	}

	if len(recipients) == 0 {
		return nil, OutcomeEmpty
	}
	return recipients, OutcomeFound
}

func mentionsMediaContact(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range mediaContactKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
