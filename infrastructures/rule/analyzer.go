// Package rule implements keyword-driven news analysis. It needs no
// external service and backs the AI analyzer whenever that one is
// unavailable.
package rule

import (
	"context"
	"strings"

	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/domain/repository"
)

var categoryKeywords = map[news.Category][]string{
	news.CategoryAttacks:         {"ransomware", "malware", "attack", "breach", "hack", "incident"},
	news.CategoryVulnerabilities: {"vulnerability", "exploit", "cve", "zero-day", "patch", "flaw"},
	news.CategoryTools:           {"tool", "platform", "software", "solution", "framework", "technology"},
	news.CategoryThreatIntel:     {"threat", "intelligence", "apt", "campaign", "actor", "group"},
	news.CategoryGeneral:         {"security", "cybersecurity", "infosec", "policy", "regulation", "compliance"},
}

var severityKeywords = map[news.Severity][]string{
	news.SeverityHigh:   {"critical", "severe", "urgent", "emergency", "zero-day", "ransomware", "breach"},
	news.SeverityMedium: {"moderate", "significant", "important", "vulnerability", "exploit"},
	news.SeverityLow:    {"minor", "update", "patch", "tool", "announcement", "guidance"},
}

// summaryKeywords pick the most informative sentence for the extractive
// summary.
var summaryKeywords = []string{"attack", "breach", "vulnerability", "threat", "security", "malware", "ransomware"}

var tagCandidates = []string{
	"ransomware", "malware", "phishing", "breach", "vulnerability",
	"exploit", "cve", "zero-day", "apt", "threat", "security",
	"cybersecurity", "infosec", "hack", "attack", "incident",
	"tool", "platform", "framework", "policy", "compliance",
}

const (
	maxTags          = 5
	summaryMaxLength = 200
)

type analyzer struct{}

func New() repository.Analyzer {
	return &analyzer{}
}

func (a *analyzer) Analyze(_ context.Context, item news.Item) (news.Analysis, error) {
	text := strings.ToLower(item.Title + " " + item.Content)

	return news.Analysis{
		Summary:  summarize(item.Content),
		Category: determineCategory(text),
		Severity: determineSeverity(text),
		Tags:     extractTags(text),
	}, nil
}

// summarize builds an extractive summary from the first sentence plus the
// sentence that mentions the most security keywords.
func summarize(content string) string {
	sentences := strings.Split(content, ". ")
	if len(sentences) <= 1 {
		return truncate(content, summaryMaxLength)
	}

	best := ""
	maxCount := 0
	for _, sentence := range sentences[1:] {
		lower := strings.ToLower(sentence)
		count := 0
		for _, kw := range summaryKeywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		if count > maxCount {
			maxCount = count
			best = sentence
		}
	}

	parts := []string{sentences[0]}
	if best != "" && best != sentences[0] {
		parts = append(parts, best)
	}
	return strings.Join(parts, ". ") + "."
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func determineCategory(text string) news.Category {
	best := news.CategoryGeneral
	maxScore := 0
	for _, category := range news.Categories() {
		score := keywordScore(text, categoryKeywords[category])
		if score > maxScore {
			maxScore = score
			best = category
		}
	}
	return best
}

func determineSeverity(text string) news.Severity {
	severities := []news.Severity{news.SeverityHigh, news.SeverityMedium, news.SeverityLow}

	best := news.SeverityMedium
	maxScore := 0
	for _, severity := range severities {
		score := keywordScore(text, severityKeywords[severity])
		if score > maxScore {
			maxScore = score
			best = severity
		}
	}
	return best
}

func keywordScore(text string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			score++
		}
	}
	return score
}

func extractTags(text string) []string {
	var tags []string
	for _, tag := range tagCandidates {
		if strings.Contains(text, tag) {
			tags = append(tags, tag)
		}
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}
