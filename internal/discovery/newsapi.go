package discovery

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mediareach/press-cli/internal/extract"
	"github.com/mediareach/press-cli/internal/model"
	"github.com/mediareach/press-cli/pkg/newsapi"
)

// journalistRole is the fixed role assigned to contacts found via bylines.
const journalistRole = "Giornalista"

// NewsAPIStrategy is the primary strategy: it finds recent article bylines
// for the topics and turns their authors into contacts.
type NewsAPIStrategy struct {
	client   newsapi.Client // nil when no API key is configured
	resolver EmailResolver
	language string
	pageSize int
}

// NewNewsAPIStrategy creates the strategy. A nil client marks the News API
// as unconfigured: the strategy reports OutcomeError so the engine falls
// through.
func NewNewsAPIStrategy(client newsapi.Client, resolver EmailResolver, language string, pageSize int) *NewsAPIStrategy {
	if language == "" {
		language = "it"
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &NewsAPIStrategy{
		client:   client,
		resolver: resolver,
		language: language,
		pageSize: pageSize,
	}
}

// Name implements Strategy.
func (s *NewsAPIStrategy) Name() string { return "newsapi" }

// Discover queries the News API with the topics OR-combined and builds a
// recipient per article that carries an author byline.
func (s *NewsAPIStrategy) Discover(ctx context.Context, topics []string) ([]model.Recipient, Outcome) {
	if s.client == nil {
		zap.L().Warn("news api key not configured, falling back to web search")
		return nil, OutcomeError
	}
	if len(topics) == 0 {
		return nil, OutcomeEmpty
	}

	resp, err := s.client.Everything(ctx, newsapi.EverythingRequest{
		Query:    strings.Join(topics, " OR "),
		Language: s.language,
		SortBy:   "relevancy",
		PageSize: s.pageSize,
	})
	if err != nil {
		zap.L().Warn("news api request failed", zap.Error(err))
		return nil, OutcomeError
	}
	if resp.Status != "ok" {
		zap.L().Warn("news api returned non-ok status", zap.String("status", resp.Status))
		return nil, OutcomeError
	}
	if len(resp.Articles) == 0 {
		return nil, OutcomeEmpty
	}

	var recipients []model.Recipient
	for _, article := range resp.Articles {
		author := strings.TrimSpace(article.Author)
		if author == "" {
			continue
		}

		publication := article.Source.Name
		if publication == "" {
			publication = "unknown"
		}

		domain := article.Source.URL
		if domain == "" {
			domain = article.URL
		}

		r := model.Recipient{
			Name:        author,
			Role:        journalistRole,
			Publication: publication,
			Region:      extract.RegionForDomain(domain),
			SourceURL:   article.Source.URL,
			ArticleURL:  article.URL,
		}
		r.Email = s.resolver.Resolve(ctx, author, publication)
		recipients = append(recipients, r)
	}

	if len(recipients) == 0 {
		return nil, OutcomeEmpty
	}
	return recipients, OutcomeFound
}
