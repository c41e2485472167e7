// Package report renders the outgoing emails. Content is data driven so
// the same generator serves the scheduler and the test notification.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/sobadon/cyberd/domain/model/mail"
	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/internal/errutil"
	"github.com/sobadon/cyberd/internal/timeutil"
)

const welcomeSubject = "🛡️ Welcome to Cyber News Agent - Let's Dive Into the Cyber World Together!"

// articles shown in the digest email
const topArticleCount = 5

type Generator struct {
	appURL           string
	notificationTime string

	// injectable for tests
	now func() time.Time
}

func New(appURL, notificationTime string) *Generator {
	return &Generator{
		appURL:           appURL,
		notificationTime: notificationTime,
		now:              time.Now,
	}
}

type digestData struct {
	Greeting    string
	Intro       string
	Total       int
	High        int
	Medium      int
	Low         int
	Articles    []articleData
	GeneratedAt string
}

type articleData struct {
	Title    string
	URL      string
	Summary  string
	Source   string
	Severity string
}

type welcomeData struct {
	Greeting         string
	AppURL           string
	NotificationTime string
}

// DigestEmail renders the daily digest. The subject escalates with the
// highest severity present.
func (g *Generator) DigestEmail(items []news.Item) (mail.Email, error) {
	stats := news.SeverityStats(items)

	var subject string
	switch {
	case stats[news.SeverityHigh] > 0:
		subject = fmt.Sprintf("🚨 URGENT: %d Critical Cybersecurity Alerts", stats[news.SeverityHigh])
	case stats[news.SeverityMedium] > 0:
		subject = fmt.Sprintf("⚠️ %d Medium-Severity Security Updates", stats[news.SeverityMedium])
	default:
		subject = fmt.Sprintf("📊 Daily Cybersecurity Digest - %d Updates", len(items))
	}

	now := g.now()
	data := digestData{
		Greeting:    timeutil.Greeting(now),
		Intro:       intro(len(items), stats),
		Total:       len(items),
		High:        stats[news.SeverityHigh],
		Medium:      stats[news.SeverityMedium],
		Low:         stats[news.SeverityLow],
		Articles:    topArticles(items),
		GeneratedAt: now.Format("January 2, 2006 at 3:04 PM"),
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, data); err != nil {
		return mail.Email{}, errors.Wrap(errutil.ErrTemplate, err.Error())
	}
	return mail.Email{Subject: subject, Body: buf.String()}, nil
}

func (g *Generator) WelcomeEmail() (mail.Email, error) {
	data := welcomeData{
		Greeting:         timeutil.Greeting(g.now()),
		AppURL:           g.appURL,
		NotificationTime: g.notificationTime,
	}

	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, data); err != nil {
		return mail.Email{}, errors.Wrap(errutil.ErrTemplate, err.Error())
	}
	return mail.Email{Subject: welcomeSubject, Body: buf.String()}, nil
}

func intro(total int, stats map[news.Severity]int) string {
	high := stats[news.SeverityHigh]
	medium := stats[news.SeverityMedium]

	switch {
	case high > 0:
		return fmt.Sprintf("We've identified %d critical security alerts that require immediate attention, along with %d other important updates.", high, total-high)
	case medium > 0:
		return fmt.Sprintf("Today's cybersecurity landscape shows %d medium-severity incidents among %d total security updates.", medium, total)
	default:
		return fmt.Sprintf("Here are today's %d cybersecurity updates and industry developments.", total)
	}
}

var severityRank = map[news.Severity]int{
	news.SeverityHigh:   3,
	news.SeverityMedium: 2,
	news.SeverityLow:    1,
}

// topArticles picks the most important items, highest severity first and
// newest first within a severity.
func topArticles(items []news.Item) []articleData {
	sorted := make([]news.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if severityRank[sorted[i].Severity] != severityRank[sorted[j].Severity] {
			return severityRank[sorted[i].Severity] > severityRank[sorted[j].Severity]
		}
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})

	if len(sorted) > topArticleCount {
		sorted = sorted[:topArticleCount]
	}

	var articles []articleData
	for _, item := range sorted {
		summary := item.Summary
		if summary == "" {
			summary = item.Content
			if len(summary) > 200 {
				summary = summary[:200] + "..."
			}
		}
		articles = append(articles, articleData{
			Title:    item.Title,
			URL:      item.URL,
			Summary:  summary,
			Source:   item.Source,
			Severity: item.Severity.String(),
		})
	}
	return articles
}
