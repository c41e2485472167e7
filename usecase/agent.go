package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/domain/repository"
	"github.com/sobadon/cyberd/internal/errutil"
)

// Result is one completed collection cycle.
type Result struct {
	Items         []news.Item                   `json:"news_items"`
	Categorized   map[news.Category][]news.Item `json:"categorized"`
	Digest        string                        `json:"daily_digest"`
	SeverityStats map[news.Severity]int         `json:"severity_stats"`
	Total         int                           `json:"total_items"`
	Timestamp     time.Time                     `json:"timestamp"`
}

type ucAgent struct {
	sources     []repository.Source
	primary     repository.Analyzer
	fallback    repository.Analyzer
	persistence repository.ItemPersistence
	maxItems    int
	cacheTTL    time.Duration

	// guards the cached result; a running refresh holds it so concurrent
	// refreshes collapse into one
	mu       sync.Mutex
	cached   *Result
	cachedAt time.Time
}

// NewAgent builds the collection pipeline. primary may be nil, analysis
// then goes straight to fallback.
func NewAgent(
	sources []repository.Source,
	primary repository.Analyzer,
	fallback repository.Analyzer,
	persistence repository.ItemPersistence,
	maxItems int,
	cacheTTL time.Duration,
) *ucAgent {
	return &ucAgent{
		sources:     sources,
		primary:     primary,
		fallback:    fallback,
		persistence: persistence,
		maxItems:    maxItems,
		cacheTTL:    cacheTTL,
	}
}

// Latest returns the cached result while it is fresh and collects a new
// one otherwise.
func (a *ucAgent) Latest(ctx context.Context) (Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cached != nil && time.Since(a.cachedAt) < a.cacheTTL {
		return *a.cached, nil
	}
	return a.refresh(ctx)
}

// Refresh forces a new collection cycle regardless of cache freshness.
func (a *ucAgent) Refresh(ctx context.Context) (Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refresh(ctx)
}

// Search matches the query against the current result set.
func (a *ucAgent) Search(ctx context.Context, query string) ([]news.Item, error) {
	result, err := a.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return news.Search(result.Items, query), nil
}

// History returns archived items, newest first.
func (a *ucAgent) History(ctx context.Context, limit int) ([]news.Item, error) {
	return a.persistence.LoadRecent(ctx, limit)
}

// ArchivedCount reports how many items the archive holds.
func (a *ucAgent) ArchivedCount(ctx context.Context) (int, error) {
	return a.persistence.Count(ctx)
}

func (a *ucAgent) refresh(ctx context.Context) (Result, error) {
	items := a.collect(ctx)
	items = news.Dedupe(items)
	if len(items) > a.maxItems {
		items = items[:a.maxItems]
	}

	items = a.analyze(ctx, items)
	digest := a.writeDigest(ctx, items)
	a.archive(ctx, items)

	result := Result{
		Items:         items,
		Categorized:   news.Categorize(items),
		Digest:        digest,
		SeverityStats: news.SeverityStats(items),
		Total:         len(items),
		Timestamp:     time.Now(),
	}

	a.cached = &result
	a.cachedAt = result.Timestamp
	return result, nil
}

// collect gathers items from every source. A failing source is logged
// and skipped so the cycle always produces what it can.
func (a *ucAgent) collect(ctx context.Context) []news.Item {
	var items []news.Item
	for _, source := range a.sources {
		found, err := source.Fetch(ctx, a.maxItems)
		if err != nil {
			if errors.Is(err, errutil.ErrSourceNotConfigured) {
				log.Ctx(ctx).Debug().Msgf("source %s is not configured", source.Name())
			} else {
				log.Ctx(ctx).Warn().Msgf("source %s failed: %+v", source.Name(), err)
			}
			continue
		}
		log.Ctx(ctx).Info().Msgf("source %s returned %d items", source.Name(), len(found))
		items = append(items, found...)
	}
	return items
}

func (a *ucAgent) analyze(ctx context.Context, items []news.Item) []news.Item {
	analyzed := make([]news.Item, 0, len(items))
	for _, item := range items {
		analysis, err := a.analyzeOne(ctx, item)
		if err != nil {
			// an unanalyzed item keeps its source defaults
			log.Ctx(ctx).Warn().Msgf("analyze %q failed: %+v", item.Title, err)
			analyzed = append(analyzed, item)
			continue
		}
		item.Apply(analysis)
		analyzed = append(analyzed, item)
	}
	return analyzed
}

func (a *ucAgent) analyzeOne(ctx context.Context, item news.Item) (news.Analysis, error) {
	if a.primary != nil {
		analysis, err := a.primary.Analyze(ctx, item)
		if err == nil {
			return analysis, nil
		}
		if !errors.Is(err, errutil.ErrSourceNotConfigured) && !errors.Is(err, errutil.ErrQuotaExceeded) {
			log.Ctx(ctx).Warn().Msgf("primary analyzer failed for %q: %+v", item.Title, err)
		}
	}
	return a.fallback.Analyze(ctx, item)
}

func (a *ucAgent) writeDigest(ctx context.Context, items []news.Item) string {
	if a.primary != nil {
		digest, err := a.primary.WriteDigest(ctx, items)
		if err == nil {
			return digest
		}
		if !errors.Is(err, errutil.ErrSourceNotConfigured) && !errors.Is(err, errutil.ErrQuotaExceeded) {
			log.Ctx(ctx).Warn().Msgf("primary digest failed: %+v", err)
		}
	}

	digest, err := a.fallback.WriteDigest(ctx, items)
	if err != nil {
		log.Ctx(ctx).Warn().Msgf("fallback digest failed: %+v", err)
		return "Unable to generate daily digest at this time."
	}
	return digest
}

// archive saves the cycle to the database. Persistence errors do not
// fail the cycle.
func (a *ucAgent) archive(ctx context.Context, items []news.Item) {
	for _, item := range items {
		if err := a.persistence.Save(ctx, item); err != nil {
			log.Ctx(ctx).Warn().Msgf("save %q failed: %+v", item.Title, err)
		}
	}
}
