package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mediareach/press-cli/internal/config"
	"github.com/mediareach/press-cli/internal/discovery"
	"github.com/mediareach/press-cli/internal/distribute"
	"github.com/mediareach/press-cli/internal/extract"
	"github.com/mediareach/press-cli/internal/resolver"
	"github.com/mediareach/press-cli/internal/store"
	"github.com/mediareach/press-cli/internal/workflow"
	"github.com/mediareach/press-cli/pkg/anthropic"
	"github.com/mediareach/press-cli/pkg/facebook"
	"github.com/mediareach/press-cli/pkg/linkedin"
	"github.com/mediareach/press-cli/pkg/newsapi"
	"github.com/mediareach/press-cli/pkg/twitter"
	"github.com/mediareach/press-cli/pkg/websearch"
)

// env bundles the constructed service handles a command needs. Everything is
// explicitly built here and passed down; nothing reads config on its own.
type env struct {
	generator anthropic.Generator
	engine    *discovery.Engine
	workflow  *workflow.Workflow
	archive   store.Store
}

func (e *env) Close() {
	if e.archive != nil {
		if err := e.archive.Close(); err != nil {
			zap.L().Warn("archive close failed", zap.Error(err))
		}
	}
}

// initEnv wires the full dependency graph from configuration.
func initEnv(ctx context.Context, c *config.Config) (*env, error) {
	var gen anthropic.Generator
	if c.Anthropic.Key != "" {
		client := anthropic.NewClient(c.Anthropic.Key)
		gen = anthropic.NewTextGenerator(client, c.Anthropic.Model, int64(c.Anthropic.MaxTokens), 0.7)
	}

	e := &env{generator: gen}
	e.archive = openArchive(ctx, c)
	e.engine = buildEngine(c, gen)

	sender := distribute.NewSMTPSender(c.SMTP)
	poster := buildPoster(c)

	e.workflow = workflow.New(gen, e.engine, sender, poster, e.archive)
	return e, nil
}

// openArchive opens the configured store, preferring the primary locator
// with the local fallback behind it. A missing primary is not fatal.
func openArchive(ctx context.Context, c *config.Config) store.Store {
	var local store.Store
	if c.Store.FallbackLocator != "" {
		s, err := store.Open(ctx, c.Store.FallbackLocator, nil)
		if err != nil {
			zap.L().Warn("local store unavailable", zap.Error(err))
		} else {
			local = s
		}
	}

	if c.Store.Locator != "" {
		primary, err := store.Open(ctx, c.Store.Locator, c.Store.Pool)
		if err != nil {
			zap.L().Warn("primary store unavailable, using local fallback", zap.Error(err))
		} else if local != nil {
			combined := store.NewFallback(primary, local)
			if err := combined.Migrate(ctx); err != nil {
				zap.L().Warn("store migrate failed", zap.Error(err))
			}
			return combined
		} else {
			if err := primary.Migrate(ctx); err != nil {
				zap.L().Warn("store migrate failed", zap.Error(err))
			}
			return primary
		}
	}

	if local == nil {
		return nil
	}
	if err := local.Migrate(ctx); err != nil {
		zap.L().Warn("store migrate failed", zap.Error(err))
	}
	return local
}

func buildEngine(c *config.Config, gen anthropic.Generator) *discovery.Engine {
	var searchOpts []websearch.Option
	if c.Search.BaseURL != "" {
		searchOpts = append(searchOpts, websearch.WithBaseURL(c.Search.BaseURL))
	}
	search := websearch.NewClient(searchOpts...)

	queries := resolver.NewLLMQueryGenerator(gen)
	locator := extract.NewPageLocator()
	res := resolver.New(search, locator, queries,
		resolver.WithMaxAttempts(c.Resolver.MaxAttempts),
		resolver.WithSearchDelay(time.Duration(c.Resolver.DelaySecs)*time.Second),
	)

	var news newsapi.Client
	if c.NewsAPI.Key != "" {
		news = newsapi.NewClient(c.NewsAPI.Key)
	}

	searchDelay := time.Duration(c.Search.DelaySecs) * time.Second
	return discovery.NewEngine(
		discovery.NewNewsAPIStrategy(news, res, c.NewsAPI.Language, c.NewsAPI.PageSize),
		discovery.NewWebSearchStrategy(search, res, searchDelay),
		discovery.NewDirectoryStrategy(c.Discovery.DirectoryPages, res, searchDelay),
	)
}

func buildPoster(c *config.Config) *distribute.Poster {
	var tw twitter.Client
	if c.Twitter.BearerToken != "" {
		tw = twitter.NewClient(c.Twitter.BearerToken)
	}
	var li linkedin.Client
	if c.LinkedIn.AccessToken != "" {
		li = linkedin.NewClient(c.LinkedIn.AccessToken, c.LinkedIn.AuthorURN)
	}
	var fb facebook.Client
	if c.Facebook.AccessToken != "" {
		fb = facebook.NewClient(c.Facebook.AccessToken, c.Facebook.PageID)
	}
	return distribute.NewPoster(tw, li, fb)
}
