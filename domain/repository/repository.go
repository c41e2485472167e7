//go:generate mockgen -source=$GOFILE -destination ../../testdata/mock/domain/$GOPACKAGE/$GOFILE
package repository

import (
	"context"

	"github.com/sobadon/cyberd/domain/model/mail"
	"github.com/sobadon/cyberd/domain/model/news"
)

// Source is one upstream of news items (RSS, Reddit, NewsAPI, scraper).
type Source interface {
	Name() string

	// Fetch returns up to limit security-related items.
	// Returned errors include
	// - errutil.ErrSourceNotConfigured (credentials absent, skip the source)
	Fetch(ctx context.Context, limit int) ([]news.Item, error)
}

// Analyzer derives summary/category/severity/tags per item and writes
// the daily digest text.
type Analyzer interface {
	Analyze(ctx context.Context, item news.Item) (news.Analysis, error)
	WriteDigest(ctx context.Context, items []news.Item) (string, error)
}

type ItemPersistence interface {
	// Save archives an item. Items already archived under the same URL
	// are silently skipped.
	Save(ctx context.Context, item news.Item) error

	LoadRecent(ctx context.Context, limit int) ([]news.Item, error)

	Count(ctx context.Context) (int, error)
}

// SubscriberStore is the flat-file backed ordered set of addresses.
type SubscriberStore interface {
	// Add appends the address if absent and persists.
	// Reports whether the address was newly added.
	Add(email string) (bool, error)

	// Remove deletes the address if present and persists.
	// Reports whether a removal occurred.
	Remove(email string) (bool, error)

	List() []string
	Count() int
}

type Mailer interface {
	Send(to string, subject string, body string) error
}

// ReportGenerator renders the outgoing emails and downloadable reports.
type ReportGenerator interface {
	DigestEmail(items []news.Item) (mail.Email, error)
	WelcomeEmail() (mail.Email, error)
	PDFReport(items []news.Item, digest string) ([]byte, error)
}

// WebhookNotifier mirrors the digest to a chat webhook.
type WebhookNotifier interface {
	Configured() bool
	Notify(ctx context.Context, items []news.Item) error
}
