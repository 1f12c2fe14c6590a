// Package extract provides heuristic contact extraction from HTML and text:
// email syntax matching, person-name inference near an email, role inference
// and region classification by domain. Everything here is best-effort text
// processing with no side effects.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mediareach/press-cli/internal/model"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// rolePatterns are tried in order: seniority and function terms first, then
// subject-area beats. The first match wins.
var rolePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(Senior|Junior|Associate|Lead|Chief|Editor|Writer|Reporter|Journalist|Author)`),
	regexp.MustCompile(`(Technology|Business|Science|Health|Politics|Sports|Arts|Culture)`),
}

var regionTLDs = map[model.Region][]string{
	model.RegionEurope:       {".eu", ".de", ".fr", ".uk"},
	model.RegionAsia:         {".cn", ".jp", ".kr", ".in", ".sg"},
	model.RegionLatinAmerica: {".br", ".ar", ".cl", ".es"},
}

// Emails returns the syntactically valid email addresses found in text,
// deduplicated in first-seen order. Matches with an empty local part or an
// empty domain label are rejected.
func Emails(text string) []string {
	matches := emailPattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if !validEmail(m) {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

func validEmail(addr string) bool {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	for label := range strings.SplitSeq(domain, ".") {
		if label == "" {
			return false
		}
	}
	return true
}

// NameNearEmail looks for a person's name in the markup surrounding an email
// address. It finds the innermost element containing the email; if that
// element's text is distinct from the email itself it is taken as the name,
// otherwise the preceding sibling elements are scanned, nearest first.
// Returns "" when nothing usable is found.
func NameNearEmail(doc *goquery.Document, email string) string {
	var name string
	doc.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(sel.Text(), email) {
			return true
		}
		if childContains(sel, email) {
			// A descendant holds the email; keep walking down.
			return true
		}

		if text := strings.TrimSpace(sel.Text()); text != "" && text != email {
			name = text
			return false
		}

		sel.PrevAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
			if text := strings.TrimSpace(sib.Text()); text != "" && text != email {
				name = text
				return false
			}
			return true
		})
		return false
	})
	return strings.Join(strings.Fields(name), " ")
}

func childContains(sel *goquery.Selection, email string) bool {
	found := false
	sel.Children().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if strings.Contains(c.Text(), email) {
			found = true
			return false
		}
		return true
	})
	return found
}

// Role infers a role or beat from free text. Returns "" when no known term
// appears.
func Role(text string) string {
	for _, p := range rolePatterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// RegionForDomain classifies a domain or URL by its TLD suffix.
func RegionForDomain(domainOrURL string) model.Region {
	host := strings.ToLower(domainOrURL)
	if i := strings.Index(host, "//"); i >= 0 {
		host = host[i+2:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	for region, tlds := range regionTLDs {
		for _, tld := range tlds {
			if strings.HasSuffix(host, tld) {
				return region
			}
		}
	}
	return model.RegionGlobal
}
