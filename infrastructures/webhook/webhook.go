// Package webhook posts digest notifications to a Discord compatible
// webhook URL.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/internal/errutil"
)

const (
	colorHigh    = 0xff0000
	colorDefault = 0xffa500

	topStoryCount = 5

	// Discord caps embed field values at 1024 characters
	fieldValueLimit = 1000
)

type payload struct {
	Content string  `json:"content"`
	Embeds  []embed `json:"embeds"`
}

type embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Color       int     `json:"color"`
	Fields      []field `json:"fields"`
	Timestamp   string  `json:"timestamp"`
	Footer      footer  `json:"footer"`
}

type field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type footer struct {
	Text string `json:"text"`
}

type Notifier struct {
	httpClient *http.Client
	webhookURL string
	appURL     string

	// injectable for tests
	now func() time.Time
}

func New(webhookURL, appURL string) *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
		appURL:     appURL,
		now:        time.Now,
	}
}

func (n *Notifier) Configured() bool {
	return n.webhookURL != ""
}

func (n *Notifier) Notify(ctx context.Context, items []news.Item) error {
	if !n.Configured() {
		return errors.Wrap(errutil.ErrWebhookSend, "webhook url is not set")
	}

	body, err := json.Marshal(n.buildPayload(items))
	if err != nil {
		return errors.Wrap(errutil.ErrJSONEncode, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(errutil.ErrInternal, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errutil.ErrHTTPRequest, err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return errors.Wrapf(errutil.ErrWebhookSend, "http status code is %d", res.StatusCode)
	}
	return nil
}

func (n *Notifier) buildPayload(items []news.Item) payload {
	stats := news.SeverityStats(items)

	color := colorDefault
	if stats[news.SeverityHigh] > 0 {
		color = colorHigh
	}

	fields := []field{
		{
			Name: "📊 Statistics",
			Value: fmt.Sprintf("High: %d\nMedium: %d\nLow: %d",
				stats[news.SeverityHigh], stats[news.SeverityMedium], stats[news.SeverityLow]),
			Inline: true,
		},
		{
			Name:   "🔗 Access Dashboard",
			Value:  fmt.Sprintf("[Open Cyber News Agent](%s)", n.appURL),
			Inline: true,
		},
	}

	if len(items) > 0 {
		fields = append(fields, field{
			Name:   "🔥 Top Stories",
			Value:  topStories(items),
			Inline: false,
		})
	}

	return payload{
		Content: "🚨 **Daily Cybersecurity Alert**",
		Embeds: []embed{
			{
				Title:       "Cyber News Agent Daily Digest",
				Description: fmt.Sprintf("Found %d cybersecurity updates", len(items)),
				Color:       color,
				Fields:      fields,
				Timestamp:   n.now().Format(time.RFC3339),
				Footer:      footer{Text: "Cyber News Agent"},
			},
		},
	}
}

var severityRank = map[news.Severity]int{
	news.SeverityHigh:   3,
	news.SeverityMedium: 2,
	news.SeverityLow:    1,
}

func topStories(items []news.Item) string {
	sorted := make([]news.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return severityRank[sorted[i].Severity] > severityRank[sorted[j].Severity]
	})

	if len(sorted) > topStoryCount {
		sorted = sorted[:topStoryCount]
	}

	var lines []string
	for _, item := range sorted {
		lines = append(lines, fmt.Sprintf("• %s (%s)", item.Title, item.Severity))
	}

	text := strings.Join(lines, "\n")
	if len(text) > fieldValueLimit {
		text = text[:fieldValueLimit]
	}
	return text
}
