package scraper

import (
	"net/http"
	"time"

	"github.com/sobadon/cyberd/domain/repository"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// darkreading.com is absent because it answers scrapers with 403
var defaultTargets = []string{
	"https://krebsonsecurity.com",
	"https://thehackernews.com",
	"https://www.bleepingcomputer.com",
}

var articleSelectors = []string{
	"article",
	".article",
	".post",
	".news-item",
	".story",
	"h2 a",
	"h3 a",
	".headline a",
}

var contentSelectors = []string{
	"article",
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"main",
	".main-content",
}

const (
	articlesPerSite  = 3
	maxContentLength = 2000
)

type client struct {
	httpClient *http.Client
	targets    []string
}

func New() repository.Source {
	return &client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		targets:    defaultTargets,
	}
}

func (c *client) Name() string {
	return "scraper"
}
