package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/internal/errutil"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type listing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Author      string  `json:"author"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
}

func (c *client) Fetch(ctx context.Context, limit int) ([]news.Item, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, errors.Wrap(errutil.ErrSourceNotConfigured, "reddit credentials are not set")
	}

	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	subreddits := c.subreddits
	if len(subreddits) > subredditsPerFetch {
		subreddits = subreddits[:subredditsPerFetch]
	}

	perSubreddit := perSubredditQuota(limit, len(subreddits))

	var items []news.Item
	for _, subreddit := range subreddits {
		posts, err := c.fetchSubreddit(ctx, subreddit, perSubreddit)
		if err != nil {
			// one broken subreddit must not take down the whole source
			log.Ctx(ctx).Warn().Msgf("fetch subreddit r/%s failed: %+v", subreddit, err)
			continue
		}
		items = append(items, posts...)
	}

	items = news.Dedupe(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// perSubredditQuota splits the fetch limit across subreddits, never
// below one post per subreddit.
func perSubredditQuota(limit, subreddits int) int {
	quota := limit / subreddits
	if quota < 1 {
		return 1
	}
	return quota
}

// ensureToken obtains an OAuth token via the client credentials grant.
// Tokens are reused until shortly before expiry.
func (c *client) ensureToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpires) {
		return nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(errutil.ErrInternal, err.Error())
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errutil.ErrHTTPRequest, err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		return errors.Wrapf(errutil.ErrFetchNotOK, "http status code is %d", res.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&token); err != nil {
		return errors.Wrap(errutil.ErrJSONDecode, err.Error())
	}
	if token.AccessToken == "" {
		return errors.Wrap(errutil.ErrFetchNotOK, "token response has no access_token")
	}

	expiresIn := token.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}

	c.token = token.AccessToken
	c.tokenExpires = time.Now().Add(time.Duration(expiresIn-60) * time.Second)
	return nil
}

func (c *client) fetchSubreddit(ctx context.Context, subreddit string, limit int) ([]news.Item, error) {
	reqURL := fmt.Sprintf("%s/r/%s/hot.json?limit=%d&raw_json=1", apiURL, subreddit, min(25, limit*2))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(errutil.ErrInternal, err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errutil.ErrHTTPRequest, err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		return nil, errors.Wrapf(errutil.ErrFetchNotOK, "http status code is %d", res.StatusCode)
	}

	var l listing
	if err := json.NewDecoder(res.Body).Decode(&l); err != nil {
		return nil, errors.Wrap(errutil.ErrJSONDecode, err.Error())
	}

	return listingToItems(l, subreddit), nil
}

func listingToItems(l listing, subreddit string) []news.Item {
	var items []news.Item
	for _, child := range l.Data.Children {
		item, ok := postToItem(child.Data, subreddit)
		if !ok {
			continue
		}
		if !item.IsSecurityRelated() {
			continue
		}
		items = append(items, item)
	}
	return items
}

func postToItem(p post, subreddit string) (news.Item, bool) {
	title := strings.TrimSpace(p.Title)
	if len(title) <= 10 {
		return news.Item{}, false
	}

	content := fmt.Sprintf("%s\n\n%s\n\nScore: %d, Comments: %d",
		title, strings.TrimSpace(p.Selftext), p.Score, p.NumComments)

	return news.Item{
		ID:          uuid.NewString(),
		Title:       title,
		Content:     content,
		URL:         "https://reddit.com" + p.Permalink,
		Source:      "Reddit r/" + subreddit,
		PublishedAt: time.Unix(int64(p.CreatedUTC), 0),
		Category:    news.CategoryGeneral,
		Severity:    news.SeverityMedium,
		Tags:        []string{"reddit-" + subreddit, fmt.Sprintf("score-%d", p.Score)},
	}, true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
