package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediareach/press-cli/pkg/websearch"
)

const serpPage = `<html><body>
<div class="result">
  <a class="result__a" href="https://techdaily.com/contact">Tech Daily press contacts</a>
  <a class="result__snippet">Reach our technology editor Laura Bianchi at laura.bianchi@techdaily.com for press inquiries.</a>
</div>
<div class="result">
  <a class="result__a" href="https://cucina.it/ricette">Ricette della nonna</a>
  <a class="result__snippet">Le migliori ricette di pasta fatta in casa.</a>
</div>
<div class="result">
  <a class="result__a" href="https://corriere.it/redazione">Contatti redazione tecnologia</a>
  <a class="result__snippet">Per la redazione scrive Marco Rossi, che segue la tecnologia.</a>
</div>
</body></html>`

func newSERPServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(serpPage))
	}))
}

func TestWebSearchStrategy_MinesSnippets(t *testing.T) {
	server := newSERPServer(t)
	defer server.Close()

	search := websearch.NewClient(websearch.WithBaseURL(server.URL))
	resolver := &stubResolver{emails: map[string]string{"Marco Rossi": "rossi@corriere.it"}}
	s := NewWebSearchStrategy(search, resolver, time.Millisecond)

	recipients, outcome := s.Discover(context.Background(), []string{"tecnologia"})
	require.Equal(t, OutcomeFound, outcome)
	require.NotEmpty(t, recipients)

	byEmail := make(map[string]int)
	for _, r := range recipients {
		byEmail[r.Email]++
		assert.NotContains(t, r.SourceURL, "cucina.it", "results without media-contact keywords are dropped")
	}
	assert.Positive(t, byEmail["laura.bianchi@techdaily.com"], "snippet email kept directly")
	assert.Positive(t, byEmail["rossi@corriere.it"], "named contact without email goes through the resolver")
	assert.Positive(t, resolver.calls)
}

func TestWebSearchStrategy_SnippetEmailAttribution(t *testing.T) {
	server := newSERPServer(t)
	defer server.Close()

	search := websearch.NewClient(websearch.WithBaseURL(server.URL))
	s := NewWebSearchStrategy(search, &stubResolver{}, time.Millisecond)

	recipients, _ := s.Discover(context.Background(), []string{"tecnologia"})

	var found bool
	for _, r := range recipients {
		if r.Email == "laura.bianchi@techdaily.com" {
			found = true
			assert.Equal(t, "Laura Bianchi", r.Name, "email local part matched against nearby names")
		}
	}
	assert.True(t, found)
}

func TestWebSearchStrategy_SearchFailureIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	search := websearch.NewClient(websearch.WithBaseURL(server.URL))
	s := NewWebSearchStrategy(search, &stubResolver{}, time.Millisecond)

	recipients, outcome := s.Discover(context.Background(), []string{"tecnologia"})
	assert.Equal(t, OutcomeEmpty, outcome)
	assert.Empty(t, recipients)
}

func TestWebSearchStrategy_NoTopicsIsEmpty(t *testing.T) {
	s := NewWebSearchStrategy(websearch.NewClient(), &stubResolver{}, time.Millisecond)
	_, outcome := s.Discover(context.Background(), nil)
	assert.Equal(t, OutcomeEmpty, outcome)
}

func TestContactQueries(t *testing.T) {
	queries := contactQueries([]string{"intelligenza artificiale"})
	require.Len(t, queries, 7)
	assert.Contains(t, queries, "intelligenza artificiale journalist contact")
	assert.Contains(t, queries, "intelligenza artificiale giornalista contatto")
}
