// Package discovery builds a ranked list of media contacts for a topic set.
// Strategies run strictly in order — news API, then generic web search, then
// professional directories — each one only when the previous produced
// nothing. The engine never fails: total exhaustion yields an empty list.
package discovery

import (
	"context"

	"go.uber.org/zap"

	"github.com/mediareach/press-cli/internal/model"
)

// Outcome is the explicit result of one strategy run. Fallback chains branch
// on it instead of on caught errors.
type Outcome int

// Strategy outcomes.
const (
	// OutcomeFound means the strategy produced at least one recipient.
	OutcomeFound Outcome = iota
	// OutcomeEmpty means the strategy ran but found nothing.
	OutcomeEmpty
	// OutcomeError means the strategy could not run (missing credentials,
	// transport failure, non-ok status).
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeEmpty:
		return "empty"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// EmailResolver fills in a missing email for a named contact.
type EmailResolver interface {
	Resolve(ctx context.Context, name, publication string) string
}

// Strategy is one ordered attempt at populating recipients.
type Strategy interface {
	Name() string
	Discover(ctx context.Context, topics []string) ([]model.Recipient, Outcome)
}

// Engine runs the strategy cascade.
type Engine struct {
	strategies []Strategy
}

// NewEngine creates an Engine. Strategies run in the order given.
func NewEngine(strategies ...Strategy) *Engine {
	return &Engine{strategies: strategies}
}

// Discover returns a deduplicated, relevance-ranked recipient list for the
// topics. It never returns an error: each strategy is a fallback for the
// previous one, and full exhaustion yields an empty slice.
func (e *Engine) Discover(ctx context.Context, topics []string) []model.Recipient {
	log := zap.L().With(zap.Strings("topics", topics))

	for _, s := range e.strategies {
		if ctx.Err() != nil {
			break
		}

		recipients, outcome := s.Discover(ctx, topics)
		log.Info("discovery strategy finished",
			zap.String("strategy", s.Name()),
			zap.String("outcome", outcome.String()),
			zap.Int("recipients", len(recipients)),
		)

		if outcome == OutcomeFound && len(recipients) > 0 {
			recipients = model.Deduplicate(recipients)
			model.Rank(recipients)
			return recipients
		}
	}

	log.Warn("all discovery strategies exhausted")
	return []model.Recipient{}
}
