// Package model defines the domain types shared across discovery and
// distribution.
package model

import "sort"

// Region classifies a publication by the market its domain serves.
type Region string

// Known regions. Anything not matched by a regional TLD is Global.
const (
	RegionGlobal       Region = "global"
	RegionEurope       Region = "europe"
	RegionAsia         Region = "asia"
	RegionLatinAmerica Region = "latin_america"
)

// UnknownAuthor is the placeholder name for contacts discovered without an
// identifiable person attached.
const UnknownAuthor = "Unknown Author"

// Recipient is a discovered media contact eligible for distribution.
//
// Email is the identity key: recipients with the same non-empty email are
// duplicates. Recipients with an empty email are retained (they may still be
// useful to the operator) but are not email-distributable.
type Recipient struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Publication string `json:"platform"`
	Region      Region `json:"region"`
	SourceURL   string `json:"source"`
	ArticleURL  string `json:"article_url,omitempty"`
}

// Distributable reports whether the recipient can receive email.
func (r Recipient) Distributable() bool {
	return r.Email != ""
}

// Deduplicate collapses recipients sharing a non-empty email, keeping the
// first occurrence. Recipients without an email have no identity key and are
// all retained. The operation is idempotent.
func Deduplicate(recipients []Recipient) []Recipient {
	seen := make(map[string]struct{}, len(recipients))
	out := make([]Recipient, 0, len(recipients))
	for _, r := range recipients {
		if r.Email != "" {
			if _, dup := seen[r.Email]; dup {
				continue
			}
			seen[r.Email] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}

// relevance scores a recipient for ranking. Criteria in descending priority:
// known publication, non-empty role, identified name, non-global region.
func relevance(r Recipient) int {
	score := 0
	if r.Publication != "" && r.Publication != "unknown" {
		score += 8
	}
	if r.Role != "" {
		score += 4
	}
	if r.Name != "" && r.Name != UnknownAuthor {
		score += 2
	}
	if r.Region != RegionGlobal {
		score++
	}
	return score
}

// Rank sorts recipients by relevance, most relevant first. The sort is
// stable: ties retain discovery order. The region criterion deprioritizes
// global-only contacts; it does not enforce regional diversity.
func Rank(recipients []Recipient) {
	sort.SliceStable(recipients, func(i, j int) bool {
		return relevance(recipients[i]) > relevance(recipients[j])
	})
}
