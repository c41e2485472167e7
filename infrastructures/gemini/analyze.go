package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/internal/errutil"
)

type genRequest struct {
	Contents         []genContent `json:"contents"`
	GenerationConfig genConfig    `json:"generationConfig"`
}

type genContent struct {
	Parts []genPart `json:"parts"`
}

type genPart struct {
	Text string `json:"text"`
}

type genConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type genResponse struct {
	Candidates []struct {
		Content struct {
			Parts []genPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type analysisResponse struct {
	Summary  string   `json:"summary"`
	Category string   `json:"category"`
	Severity string   `json:"severity"`
	Tags     []string `json:"tags"`
}

var jsonRegexp = regexp.MustCompile(`(?s)\{.*\}`)

func (c *client) Analyze(ctx context.Context, item news.Item) (news.Analysis, error) {
	text, err := c.generate(ctx, analysisPrompt(item), analyzeMaxTokens)
	if err != nil {
		return news.Analysis{}, err
	}
	return parseAnalysis(text)
}

func (c *client) WriteDigest(ctx context.Context, items []news.Item) (string, error) {
	if len(items) > digestItemLimit {
		items = items[:digestItemLimit]
	}
	return c.generate(ctx, digestPrompt(items), digestMaxTokens)
}

func (c *client) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", errors.Wrap(errutil.ErrSourceNotConfigured, "gemini api key is not set")
	}

	c.mu.Lock()
	disabled := c.disabled
	c.mu.Unlock()
	if disabled {
		return "", errors.Wrap(errutil.ErrQuotaExceeded, "gemini is disabled after a quota error")
	}

	body, err := json.Marshal(genRequest{
		Contents: []genContent{
			{Parts: []genPart{{Text: prompt}}},
		},
		GenerationConfig: genConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     temperature,
		},
	})
	if err != nil {
		return "", errors.Wrap(errutil.ErrJSONEncode, err.Error())
	}

	reqURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(errutil.ErrInternal, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(errutil.ErrHTTPRequest, err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		return "", errors.Wrap(errutil.ErrQuotaExceeded, "gemini answered 429")
	}
	if res.StatusCode != 200 {
		return "", errors.Wrapf(errutil.ErrFetchNotOK, "http status code is %d", res.StatusCode)
	}

	var decoded genResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return "", errors.Wrap(errutil.ErrJSONDecode, err.Error())
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.Wrap(errutil.ErrAnalyze, "gemini response has no candidates")
	}

	return strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text), nil
}

// parseAnalysis extracts the JSON object from a model response. The model
// tends to wrap it in prose or a code fence.
func parseAnalysis(text string) (news.Analysis, error) {
	match := jsonRegexp.FindString(text)
	if match == "" {
		return news.Analysis{}, errors.Wrap(errutil.ErrAnalyze, "response contains no JSON object")
	}

	var decoded analysisResponse
	if err := json.Unmarshal([]byte(match), &decoded); err != nil {
		return news.Analysis{}, errors.Wrap(errutil.ErrAnalyze, err.Error())
	}

	return news.Analysis{
		Summary:  decoded.Summary,
		Category: news.ParseCategory(decoded.Category),
		Severity: news.ParseSeverity(decoded.Severity),
		Tags:     decoded.Tags,
	}, nil
}

func analysisPrompt(item news.Item) string {
	content := fmt.Sprintf("Title: %s\n\nContent: %s", item.Title, item.Content)

	return fmt.Sprintf(`You are a cybersecurity expert analyzing news articles. Provide accurate, concise analysis.

Analyze this cybersecurity news article and provide:

1. A concise 2-3 sentence summary
2. Category (Latest Attacks, Vulnerabilities, New Tools, Threat Intelligence, or General)
3. Severity level (High, Medium, or Low)
4. Key tags/keywords (3-5 relevant terms)

Article:
%s

Respond in JSON format:
{
    "summary": "Brief summary here",
    "category": "Category name",
    "severity": "High/Medium/Low",
    "tags": ["tag1", "tag2", "tag3"]
}`, content)
}

func digestPrompt(items []news.Item) string {
	var lines []string
	for _, item := range items {
		summary := item.Summary
		if summary == "" {
			summary = item.Content
			if len(summary) > 200 {
				summary = summary[:200]
			}
		}
		lines = append(lines, fmt.Sprintf("Title: %s\nSummary: %s\nCategory: %s\nSeverity: %s",
			item.Title, summary, item.Category, item.Severity))
	}

	return fmt.Sprintf(`You are a cybersecurity expert creating a daily digest. Write professionally and concisely.

Create a comprehensive daily cybersecurity digest based on the following news items:

%s

Write a professional digest that includes:
1. Executive summary of the day's cybersecurity landscape
2. Key highlights and trends
3. Most critical threats and vulnerabilities
4. Important updates and announcements

Format as a single, well-structured paragraph suitable for executives and security professionals.`, strings.Join(lines, "\n\n"))
}
