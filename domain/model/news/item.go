package news

import (
	"strings"
	"time"
)

type Item struct {
	// UUID assigned at fetch time
	ID string

	// Headline as published by the source
	Title string

	// Article body or description, plain text
	Content string

	// Canonical link to the article
	URL string

	// Where the item came from, e.g. "Krebs on Security", "Reddit r/netsec"
	Source string

	PublishedAt time.Time

	// Filled by the analyzer, defaults to CategoryGeneral / SeverityMedium
	Category Category
	Severity Severity
	Tags     []string
	Summary  string
}

// Analysis is what an analyzer derives from a single item.
type Analysis struct {
	Summary  string
	Category Category
	Severity Severity
	Tags     []string
}

// Apply copies the analysis result onto the item.
func (i *Item) Apply(a Analysis) {
	i.Summary = a.Summary
	i.Category = a.Category
	i.Severity = a.Severity
	i.Tags = a.Tags
}

// securityKeywords decides what counts as cybersecurity news at all.
// Shared by every source for relevance filtering.
var securityKeywords = []string{
	"cyberattack", "ransomware", "malware", "phishing", "breach",
	"vulnerability", "exploit", "cve", "zero-day", "apt",
	"threat", "security", "infosec", "cybersecurity", "hack",
	"data breach", "incident response", "soc", "siem", "firewall",
	"intrusion", "backdoor", "trojan", "botnet", "ddos",
}

// IsSecurityRelated reports whether title or content mentions any
// cybersecurity keyword.
func (i Item) IsSecurityRelated() bool {
	text := strings.ToLower(i.Title + " " + i.Content)
	for _, kw := range securityKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Dedupe drops items whose normalized title was already seen.
// The first occurrence wins, input order is preserved.
func Dedupe(items []Item) []Item {
	seen := map[string]struct{}{}
	var out []Item
	for _, it := range items {
		key := strings.ToLower(strings.TrimSpace(it.Title))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Search returns the items whose title, content or tags contain the
// query, case-insensitive.
func Search(items []Item, query string) []Item {
	q := strings.ToLower(query)
	var out []Item
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), q) ||
			strings.Contains(strings.ToLower(it.Content), q) {
			out = append(out, it)
			continue
		}
		for _, tag := range it.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}
