package discovery

import (
	"regexp"
	"strings"

	"github.com/mediareach/press-cli/internal/model"
)

// namePatterns match western-style capitalized person names, most specific
// first.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[A-Z][a-z]+ [A-Z]\. [A-Z][a-z]+`),
	regexp.MustCompile(`[A-Z][a-z]+ [A-Z][a-z]+ [A-Z][a-z]+`),
	regexp.MustCompile(`[A-Z][a-z]+ [A-Z][a-z]+`),
}

// candidateNames extracts up to limit distinct person-name candidates from
// free text.
func candidateNames(text string, limit int) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, p := range namePatterns {
		for _, m := range p.FindAllString(text, -1) {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			names = append(names, m)
			if len(names) >= limit {
				return names
			}
		}
	}
	return names
}

// nameForEmail picks the candidate whose tokens appear in the email's local
// part; the placeholder when nothing matches.
func nameForEmail(email string, candidates []string) string {
	local, _, ok := strings.Cut(email, "@")
	if !ok {
		return model.UnknownAuthor
	}
	local = strings.ToLower(local)
	for _, name := range candidates {
		for _, tok := range strings.Fields(strings.ToLower(name)) {
			tok = strings.Trim(tok, ".")
			if len(tok) >= 2 && strings.Contains(local, tok) {
				return name
			}
		}
	}
	return model.UnknownAuthor
}
