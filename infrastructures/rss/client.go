package rss

import (
	"net/http"

	"github.com/mmcdole/gofeed"
	"github.com/sobadon/cyberd/domain/repository"
)

// trusted security news feeds
var defaultFeeds = []string{
	"https://krebsonsecurity.com/feed/",
	"https://feeds.feedburner.com/TheHackersNews",
	"https://www.bleepingcomputer.com/feed/",
	"https://www.schneier.com/feed/",
	"https://feeds.feedburner.com/securityweek",
	"https://www.csoonline.com/index.rss",
}

const userAgent = "cyberd/1.0"

// entries taken per feed before relevance filtering
const entriesPerFeed = 5

type client struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	feeds      []string
}

func New() repository.Source {
	return &client{
		httpClient: &http.Client{},
		parser:     gofeed.NewParser(),
		feeds:      defaultFeeds,
	}
}

func (c *client) Name() string {
	return "rss"
}
