package discovery

import "strings"

// platformCategories maps a subject category to known publication domains,
// grouped roughly by market. A topic selects a category when it contains one
// of the category's keywords; topics matching nothing get the default set.
var platformCategories = map[string]struct {
	keywords []string
	domains  []string
}{
	"technology": {
		keywords: []string{"technology", "tecnologia", "tech", "software"},
		domains: []string{
			"techcrunch.com", "venturebeat.com", "wired.com", "theverge.com",
			"zdnet.com", "arstechnica.com",
			"euractiv.com", "tech.eu", "sifted.eu",
			"techinasia.com", "kr-asia.com", "36kr.com",
			"startups.com.br",
		},
	},
	"business": {
		keywords: []string{"business", "economia", "finanza", "finance"},
		domains: []string{
			"bloomberg.com", "reuters.com", "forbes.com", "businesswire.com",
			"prnewswire.com",
			"ft.com", "economist.com", "handelsblatt.com",
			"nikkei.com", "scmp.com", "mint.in",
			"valor.com.br", "elmercurio.com",
		},
	},
	"science": {
		keywords: []string{"science", "scienza", "ricerca", "research"},
		domains: []string{
			"nature.com", "science.org", "scientificamerican.com", "newscientist.com",
			"sciencebusiness.net", "researchprofessional.com",
			"natureasia.com",
			"scielo.org", "cienciahoje.org.br",
		},
	},
	"health": {
		keywords: []string{"health", "salute", "sanità", "medicina"},
		domains: []string{
			"medscape.com", "healthline.com", "webmd.com", "medicalnewstoday.com",
			"bmj.com", "thelancet.com",
			"healthcareasia.org",
			"saude.gov.br",
		},
	},
}

// defaultPlatforms covers topics matching no category.
var defaultPlatforms = []string{
	"medium.com", "wordpress.com", "blogspot.com", "substack.com",
	"news.google.com",
	"euronews.com", "politico.eu",
	"asia.nikkei.com", "straitstimes.com",
	"mercopress.com", "infobae.com",
}

// relevantPlatforms selects the publication domains matching the topic set.
func relevantPlatforms(topics []string) []string {
	joined := strings.ToLower(strings.Join(topics, " "))

	var domains []string
	seen := make(map[string]struct{})
	for _, cat := range platformCategories {
		matched := false
		for _, kw := range cat.keywords {
			if strings.Contains(joined, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, d := range cat.domains {
			if _, dup := seen[d]; !dup {
				seen[d] = struct{}{}
				domains = append(domains, d)
			}
		}
	}

	if len(domains) == 0 {
		return append([]string(nil), defaultPlatforms...)
	}
	return domains
}

// platformFor matches a URL against the platform list; "unknown" when no
// platform appears in it.
func platformFor(rawURL string, platforms []string) string {
	lower := strings.ToLower(rawURL)
	for _, p := range platforms {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return "unknown"
}
