package gemini

import (
	"net/http"
	"sync"
	"time"

	"github.com/sobadon/cyberd/domain/repository"
)

const (
	baseURL = "https://generativelanguage.googleapis.com/v1beta"
	model   = "gemini-1.5-pro"

	analyzeMaxTokens = 500
	digestMaxTokens  = 800
	temperature      = 0.3

	// max articles included in a digest prompt
	digestItemLimit = 10
)

type client struct {
	httpClient *http.Client
	apiKey     string

	// once the API answers 429 the client stays disabled for the rest
	// of the process lifetime
	mu       sync.Mutex
	disabled bool
}

func New(apiKey string) repository.Analyzer {
	return &client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
	}
}
