package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/mediareach/press-cli/pkg/anthropic"
)

// LLMQueryGenerator asks the text-generation capability for a fresh search
// query, seeded with everything already tried so it does not repeat itself.
type LLMQueryGenerator struct {
	gen anthropic.Generator
}

// NewLLMQueryGenerator creates an LLMQueryGenerator.
func NewLLMQueryGenerator(gen anthropic.Generator) *LLMQueryGenerator {
	return &LLMQueryGenerator{gen: gen}
}

// NextQuery returns a single-line web search query for finding the person's
// email address.
func (g *LLMQueryGenerator) NextQuery(ctx context.Context, name, publication string, tried []string) (string, error) {
	if g.gen == nil {
		return "", eris.New("resolver: no generation capability configured")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Devo trovare l'indirizzo email di %s", name)
	if publication != "" {
		fmt.Fprintf(&b, ", che scrive per %s", publication)
	}
	b.WriteString(".\n")
	if len(tried) > 0 {
		b.WriteString("Queste ricerche non hanno funzionato:\n")
		for _, q := range tried {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	b.WriteString("Suggerisci una nuova query di ricerca web, diversa dalle precedenti. " +
		"Rispondi solo con la query, senza spiegazioni.")

	out, err := g.gen.Generate(ctx, b.String())
	if err != nil {
		return "", err
	}

	// Keep only the first line in case the model explains anyway.
	query, _, _ := strings.Cut(out, "\n")
	return strings.TrimSpace(query), nil
}
