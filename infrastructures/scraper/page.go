package scraper

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/internal/errutil"
)

type link struct {
	title string
	url   string
}

var whitespaceRegexp = regexp.MustCompile(`\s+`)

func (c *client) Fetch(ctx context.Context, limit int) ([]news.Item, error) {
	var items []news.Item
	for _, target := range c.targets {
		siteItems, err := c.scrapeSite(ctx, target)
		if err != nil {
			// one broken site must not take down the whole source
			log.Ctx(ctx).Warn().Msgf("scrape site %s failed: %+v", target, err)
			continue
		}
		items = append(items, siteItems...)
	}

	items = news.Dedupe(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (c *client) scrapeSite(ctx context.Context, target string) ([]news.Item, error) {
	doc, err := c.fetchDocument(ctx, target)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(target)
	if err != nil {
		return nil, errors.Wrap(errutil.ErrInternal, err.Error())
	}

	links := extractLinks(doc, base)
	if len(links) > articlesPerSite {
		links = links[:articlesPerSite]
	}

	var items []news.Item
	for _, l := range links {
		// article body is best effort, the headline alone is still useful
		content := c.fetchArticleContent(ctx, l.url)

		item := news.Item{
			ID:          uuid.NewString(),
			Title:       l.title,
			Content:     content,
			URL:         l.url,
			Source:      target,
			PublishedAt: time.Now(),
			Category:    news.CategoryGeneral,
			Severity:    news.SeverityMedium,
		}
		if !item.IsSecurityRelated() {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *client) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrap(errutil.ErrInternal, err.Error())
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errutil.ErrHTTPRequest, err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		return nil, errors.Wrapf(errutil.ErrFetchNotOK, "http status code is %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, errors.Wrap(errutil.ErrInternal, err.Error())
	}
	return doc, nil
}

func (c *client) fetchArticleContent(ctx context.Context, articleURL string) string {
	doc, err := c.fetchDocument(ctx, articleURL)
	if err != nil {
		log.Ctx(ctx).Debug().Msgf("fetch article %s failed: %+v", articleURL, err)
		return ""
	}
	return extractContent(doc)
}

// extractLinks collects headline anchors from a front page.
func extractLinks(doc *goquery.Document, base *url.URL) []link {
	var links []link
	seen := map[string]struct{}{}

	for _, selector := range articleSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			title, href := anchorOf(s)
			if title == "" || href == "" {
				return
			}

			resolved := resolveURL(base, href)
			if resolved == "" {
				return
			}
			if _, ok := seen[resolved]; ok {
				return
			}
			seen[resolved] = struct{}{}

			links = append(links, link{title: title, url: resolved})
		})
	}
	return links
}

// anchorOf returns the headline text and href for an element matched by an
// article selector. The element is either the anchor itself or a container
// holding one.
func anchorOf(s *goquery.Selection) (title, href string) {
	if h, ok := s.Attr("href"); ok {
		return strings.TrimSpace(s.Text()), h
	}

	a := s.Find("a").First()
	if a.Length() == 0 {
		return "", ""
	}
	href, _ = a.Attr("href")

	heading := s.Find("h1, h2, h3, h4").First()
	if heading.Length() > 0 {
		title = strings.TrimSpace(heading.Text())
	} else {
		title = strings.TrimSpace(a.Text())
	}
	return title, href
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// extractContent pulls the main article text out of an article page.
func extractContent(doc *goquery.Document) string {
	doc.Find("script, style").Remove()

	var content string
	for _, selector := range contentSelectors {
		elem := doc.Find(selector).First()
		if elem.Length() > 0 {
			content = strings.TrimSpace(elem.Text())
			break
		}
	}
	if content == "" {
		content = strings.TrimSpace(doc.Find("body").Text())
	}

	content = whitespaceRegexp.ReplaceAllString(content, " ")
	if len(content) > maxContentLength {
		content = content[:maxContentLength]
	}
	return content
}
