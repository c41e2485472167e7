package reddit

import (
	"net/http"
	"sync"
	"time"

	"github.com/sobadon/cyberd/domain/repository"
)

const (
	authURL = "https://www.reddit.com/api/v1/access_token"
	apiURL  = "https://oauth.reddit.com"

	userAgent = "cyberd/1.0"

	// fetching every subreddit each cycle trips rate limits
	subredditsPerFetch = 5
)

var defaultSubreddits = []string{
	"cybersecurity",
	"netsec",
	"security",
	"malware",
	"AskNetsec",
	"ComputerSecurity",
	"cyber",
	"infosec",
	"hacking",
	"privacy",
}

type client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	subreddits   []string

	mu           sync.Mutex
	token        string
	tokenExpires time.Time
}

func New(clientID, clientSecret string) repository.Source {
	return &client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
		subreddits:   defaultSubreddits,
	}
}

func (c *client) Name() string {
	return "reddit"
}
