package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediareach/press-cli/pkg/websearch"
)

type stubSearch struct {
	results map[string][]websearch.Result
	calls   []string
	err     error
}

func (s *stubSearch) Search(_ context.Context, query string) ([]websearch.Result, error) {
	s.calls = append(s.calls, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

type stubLocator struct{ url string }

func (l *stubLocator) Locate(_ context.Context, baseURL string) string {
	if l.url != "" {
		return l.url
	}
	return baseURL
}

type stubQueries struct {
	queries []string
	calls   int
	err     error
}

func (q *stubQueries) NextQuery(_ context.Context, _, _ string, _ []string) (string, error) {
	q.calls++
	if q.err != nil {
		return "", q.err
	}
	if q.calls <= len(q.queries) {
		return q.queries[q.calls-1], nil
	}
	return "", nil
}

func newTestResolver(search websearch.Client, loc ContactLocator, qg QueryGenerator, opts ...Option) *Resolver {
	opts = append([]Option{WithSearchDelay(time.Millisecond)}, opts...)
	return New(search, loc, qg, opts...)
}

func TestResolve_FromSnippet(t *testing.T) {
	search := &stubSearch{results: map[string][]websearch.Result{
		"Marco Rossi Corriere email contact": {
			{Title: "Marco Rossi", URL: "https://corriere.it/rossi", Snippet: "Scrivi a marco.rossi@corriere.it"},
		},
	}}

	r := newTestResolver(search, &stubLocator{}, &stubQueries{})
	email := r.Resolve(context.Background(), "Marco Rossi", "Corriere")

	assert.Equal(t, "marco.rossi@corriere.it", email)
	assert.Len(t, search.calls, 1)
}

func TestResolve_TokenMatchRejectsUnrelatedEmail(t *testing.T) {
	search := &stubSearch{results: map[string][]websearch.Result{
		"Marco Rossi Corriere email contact": {
			{Title: "Newsroom", URL: "http://127.0.0.1:1/", Snippet: "info@corriere.it"},
		},
	}}

	r := newTestResolver(search, &stubLocator{}, &stubQueries{})
	email := r.Resolve(context.Background(), "Marco Rossi", "Corriere")

	// info@ shares no token with "Marco Rossi"; page fetches fail; budget
	// exhausts to empty.
	assert.Empty(t, email)
}

func TestResolve_DiacriticsFolded(t *testing.T) {
	search := &stubSearch{results: map[string][]websearch.Result{
		"Niccolò Bianchi La Stampa email contact": {
			{Title: "Staff", URL: "http://127.0.0.1:1/", Snippet: "niccolo.bianchi@lastampa.it"},
		},
	}}

	r := newTestResolver(search, &stubLocator{}, &stubQueries{})
	email := r.Resolve(context.Background(), "Niccolò Bianchi", "La Stampa")

	assert.Equal(t, "niccolo.bianchi@lastampa.it", email)
}

func TestResolve_ContactPageFallback(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>Jane Doe — jane.doe@wired.com</body></html>`)
	}))
	defer page.Close()

	search := &stubSearch{results: map[string][]websearch.Result{
		"Jane Doe Wired email contact": {
			{Title: "Jane Doe", URL: page.URL, Snippet: "no address in this snippet"},
		},
	}}

	r := newTestResolver(search, &stubLocator{}, &stubQueries{})
	email := r.Resolve(context.Background(), "Jane Doe", "Wired")

	assert.Equal(t, "jane.doe@wired.com", email)
}

func TestResolve_RefinementLoop(t *testing.T) {
	search := &stubSearch{results: map[string][]websearch.Result{
		"jane doe verge staff directory": {
			{Title: "Staff", URL: "http://127.0.0.1:1/", Snippet: "jdoe@theverge.com"},
		},
	}}
	queries := &stubQueries{queries: []string{"jane doe verge staff directory"}}

	r := newTestResolver(search, &stubLocator{}, queries)
	email := r.Resolve(context.Background(), "Jane Doe", "The Verge")

	assert.Equal(t, "jdoe@theverge.com", email)
	assert.Equal(t, 1, queries.calls)
	// Five initial queries plus one refinement.
	assert.Len(t, search.calls, 6)
}

func TestResolve_BudgetExhausted(t *testing.T) {
	search := &stubSearch{}
	queries := &stubQueries{queries: []string{"q1", "q2", "q3", "q4", "q5"}}

	r := newTestResolver(search, &stubLocator{}, queries, WithMaxAttempts(3))
	email := r.Resolve(context.Background(), "Jane Doe", "")

	assert.Empty(t, email)
	assert.Equal(t, 3, queries.calls)
}

func TestResolve_GenerationErrorIsSwallowed(t *testing.T) {
	search := &stubSearch{}
	queries := &stubQueries{err: eris.New("model unavailable")}

	r := newTestResolver(search, &stubLocator{}, queries, WithMaxAttempts(2))
	assert.Empty(t, r.Resolve(context.Background(), "Jane Doe", ""))
	assert.Equal(t, 2, queries.calls)
}

func TestResolve_SearchErrorIsSwallowed(t *testing.T) {
	search := &stubSearch{err: eris.New("blocked")}

	r := newTestResolver(search, &stubLocator{}, &stubQueries{}, WithMaxAttempts(1))
	assert.Empty(t, r.Resolve(context.Background(), "Jane Doe", "Wired"))
}

func TestResolve_EmptyName(t *testing.T) {
	search := &stubSearch{}
	r := newTestResolver(search, &stubLocator{}, &stubQueries{})

	assert.Empty(t, r.Resolve(context.Background(), "", "Wired"))
	assert.Empty(t, search.calls)
}

func TestResolve_DuplicateRefinementSkipped(t *testing.T) {
	search := &stubSearch{}
	// Generator keeps proposing an already-tried query.
	queries := &stubQueries{queries: []string{
		"Jane Doe Wired email contact",
		"Jane Doe Wired email contact",
	}}

	r := newTestResolver(search, &stubLocator{}, queries, WithMaxAttempts(2))
	r.Resolve(context.Background(), "Jane Doe", "Wired")

	// Only the five initial queries hit the search client.
	assert.Len(t, search.calls, 5)
}

func TestNameTokens(t *testing.T) {
	assert.Equal(t, []string{"jane", "doe"}, nameTokens("Jane A. Doe"))
	assert.Equal(t, []string{"niccolo"}, nameTokens("Niccolò"))
	assert.Empty(t, nameTokens(""))
}

func TestLLMQueryGenerator_FirstLineOnly(t *testing.T) {
	gen := generatorFunc(func(_ context.Context, prompt string) (string, error) {
		require.Contains(t, prompt, "Jane Doe")
		require.Contains(t, prompt, "old query")
		return "\"jane doe email wired\"\nEcco la query richiesta.", nil
	})

	g := NewLLMQueryGenerator(gen)
	q, err := g.NextQuery(context.Background(), "Jane Doe", "Wired", []string{"old query"})

	require.NoError(t, err)
	assert.Equal(t, `"jane doe email wired"`, q)
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
