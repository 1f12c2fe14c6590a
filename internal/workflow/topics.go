package workflow

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mediareach/press-cli/pkg/anthropic"
)

const topicsPrompt = `Estrai dal seguente comunicato stampa i temi principali, utili per cercare giornalisti che se ne occupano. Rispondi solo con un elenco di massimo 5 temi separati da virgole, senza altro testo.

Comunicato:
%s`

const maxTopics = 5

// ExtractTopics derives a topic set from the press-release text. The
// generation capability is asked first; when it errs or returns nothing
// usable, a keyword-frequency fallback over the text itself applies.
func ExtractTopics(ctx context.Context, gen anthropic.Generator, text string) []string {
	if gen != nil {
		reply, err := gen.Generate(ctx, strings.Replace(topicsPrompt, "%s", text, 1))
		if err != nil {
			zap.L().Warn("topic extraction failed, using keyword fallback", zap.Error(err))
		} else if topics := parseTopicList(reply); len(topics) > 0 {
			return topics
		}
	}
	return keywordTopics(text)
}

// parseTopicList splits a comma- or newline-separated model reply into
// clean topics.
func parseTopicList(reply string) []string {
	reply = strings.NewReplacer("\n", ",", ";", ",").Replace(reply)

	var topics []string
	for _, part := range strings.Split(reply, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'.-• `)
		if part == "" || len(part) > 60 {
			continue
		}
		topics = append(topics, part)
		if len(topics) >= maxTopics {
			break
		}
	}
	return topics
}

// italianStopwords covers the words a press release repeats without them
// being topics.
var italianStopwords = map[string]struct{}{
	"della": {}, "delle": {}, "degli": {}, "dalla": {}, "dalle": {},
	"nella": {}, "nelle": {}, "negli": {}, "sulla": {}, "sulle": {},
	"questo": {}, "questa": {}, "questi": {}, "queste": {}, "quella": {},
	"essere": {}, "stato": {}, "stata": {}, "sono": {}, "anche": {},
	"come": {}, "dopo": {}, "prima": {}, "molto": {}, "grande": {},
	"azienda": {}, "società": {}, "comunicato": {}, "stampa": {},
	"with": {}, "from": {}, "that": {}, "this": {}, "have": {},
	"will": {}, "about": {}, "their": {}, "which": {}, "today": {},
	"company": {}, "press": {}, "release": {},
}

// keywordTopics is the last-resort topic extractor: the most frequent long
// words in the text, stopwords excluded.
func keywordTopics(text string) []string {
	counts := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, `.,;:!?"'()[]«»`)
		if len([]rune(word)) < 5 {
			continue
		}
		if _, stop := italianStopwords[word]; stop {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > maxTopics {
		words = words[:maxTopics]
	}
	return words
}
