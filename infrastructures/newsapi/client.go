package newsapi

import (
	"net/http"
	"time"

	"github.com/sobadon/cyberd/domain/repository"
)

const baseURL = "https://newsapi.org/v2"

// query terms for the everything endpoint; kept short because the free
// NewsAPI plan rate limits aggressively
var searchTerms = []string{"cybersecurity", "cyber attack"}

type client struct {
	httpClient *http.Client
	apiKey     string
}

func New(apiKey string) repository.Source {
	return &client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
	}
}

func (c *client) Name() string {
	return "newsapi"
}
