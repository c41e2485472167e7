package rss

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/internal/errutil"
)

func (c *client) Fetch(ctx context.Context, limit int) ([]news.Item, error) {
	var items []news.Item
	for _, feedURL := range c.feeds {
		feedItems, err := c.fetchFeed(ctx, feedURL)
		if err != nil {
			// one broken feed must not take down the whole source
			log.Ctx(ctx).Warn().Msgf("fetch feed %s failed: %+v", feedURL, err)
			continue
		}
		items = append(items, feedItems...)
		if len(items) >= limit {
			break
		}
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (c *client) fetchFeed(ctx context.Context, feedURL string) ([]news.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
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

	return c.decodeFeed(res.Body, feedURL)
}

func (c *client) decodeFeed(input io.Reader, feedURL string) ([]news.Item, error) {
	feed, err := c.parser.Parse(input)
	if err != nil {
		return nil, errors.Wrap(errutil.ErrFeedParse, err.Error())
	}
	return feedToItems(feed, feedURL), nil
}

func feedToItems(feed *gofeed.Feed, feedURL string) []news.Item {
	source := feed.Title
	if source == "" {
		source = feedURL
	}

	entries := feed.Items
	if len(entries) > entriesPerFeed {
		entries = entries[:entriesPerFeed]
	}

	var items []news.Item
	for _, entry := range entries {
		if entry.Title == "" || entry.Link == "" {
			continue
		}

		publishedAt := time.Now()
		if entry.PublishedParsed != nil {
			publishedAt = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			publishedAt = *entry.UpdatedParsed
		}

		item := news.Item{
			ID:          uuid.NewString(),
			Title:       entry.Title,
			Content:     entry.Description,
			URL:         entry.Link,
			Source:      source,
			PublishedAt: publishedAt,
			Category:    news.CategoryGeneral,
			Severity:    news.SeverityMedium,
		}
		if !item.IsSecurityRelated() {
			continue
		}
		items = append(items, item)
	}
	return items
}
