package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/internal/errutil"
)

type response struct {
	Status   string    `json:"status"`
	Articles []article `json:"articles"`
}

type article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

func (c *client) Fetch(ctx context.Context, limit int) ([]news.Item, error) {
	if c.apiKey == "" {
		return nil, errors.Wrap(errutil.ErrSourceNotConfigured, "newsapi key is not set")
	}

	var items []news.Item
	for _, term := range searchTerms {
		found, err := c.fetchEverything(ctx, term, limit)
		if err != nil {
			log.Ctx(ctx).Warn().Msgf("fetch everything for %q failed: %+v", term, err)
			continue
		}
		items = append(items, found...)
	}

	headlines, err := c.fetchTopHeadlines(ctx, limit)
	if err != nil {
		log.Ctx(ctx).Warn().Msgf("fetch top headlines failed: %+v", err)
	} else {
		items = append(items, headlines...)
	}

	items = news.Dedupe(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (c *client) fetchEverything(ctx context.Context, term string, limit int) ([]news.Item, error) {
	query := url.Values{}
	query.Set("q", term)
	query.Set("language", "en")
	query.Set("sortBy", "publishedAt")
	query.Set("pageSize", fmt.Sprintf("%d", min(20, limit)))
	query.Set("apiKey", c.apiKey)

	res, err := c.get(ctx, baseURL+"/everything?"+query.Encode())
	if err != nil {
		return nil, err
	}
	// everything results already match the query term
	return articlesToItems(res, false), nil
}

func (c *client) fetchTopHeadlines(ctx context.Context, limit int) ([]news.Item, error) {
	query := url.Values{}
	query.Set("category", "technology")
	query.Set("language", "en")
	query.Set("pageSize", fmt.Sprintf("%d", min(20, limit)))
	query.Set("apiKey", c.apiKey)

	res, err := c.get(ctx, baseURL+"/top-headlines?"+query.Encode())
	if err != nil {
		return nil, err
	}
	// technology headlines are mostly not security news
	return articlesToItems(res, true), nil
}

func (c *client) get(ctx context.Context, reqURL string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return response{}, errors.Wrap(errutil.ErrInternal, err.Error())
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, errors.Wrap(errutil.ErrHTTPRequest, err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		return response{}, errors.Wrapf(errutil.ErrFetchNotOK, "http status code is %d", res.StatusCode)
	}

	var decoded response
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return response{}, errors.Wrap(errutil.ErrJSONDecode, err.Error())
	}
	if decoded.Status != "ok" {
		return response{}, errors.Wrapf(errutil.ErrFetchNotOK, "newsapi status is %s", decoded.Status)
	}
	return decoded, nil
}

func articlesToItems(res response, filterRelevance bool) []news.Item {
	var items []news.Item
	for _, a := range res.Articles {
		item, ok := articleToItem(a)
		if !ok {
			continue
		}
		if filterRelevance && !item.IsSecurityRelated() {
			continue
		}
		items = append(items, item)
	}
	return items
}

func articleToItem(a article) (news.Item, bool) {
	if a.Title == "" || a.URL == "" {
		return news.Item{}, false
	}

	publishedAt, err := time.Parse(time.RFC3339, a.PublishedAt)
	if err != nil {
		publishedAt = time.Now()
	}

	source := a.Source.Name
	if source == "" {
		source = "Unknown"
	}

	return news.Item{
		ID:          uuid.NewString(),
		Title:       a.Title,
		Content:     a.Description,
		URL:         a.URL,
		Source:      source,
		PublishedAt: publishedAt,
		Category:    news.CategoryGeneral,
		Severity:    news.SeverityMedium,
	}, true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
