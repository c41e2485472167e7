package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/domain/repository"
	"github.com/sobadon/cyberd/internal/errutil"
	"github.com/sobadon/cyberd/internal/logutil"
	"github.com/sobadon/cyberd/internal/timeutil"
)

// newsProvider is the slice of the agent the notifier needs.
type newsProvider interface {
	Latest(ctx context.Context) (Result, error)
}

// ShouldAutoStart reports whether daily notifications can start without
// an operator: at least one subscriber and full sender credentials.
func ShouldAutoStart(subscriberCount int, senderEmail, senderPassword string) bool {
	return subscriberCount > 0 && senderEmail != "" && senderPassword != ""
}

// SubscribeResult tells a new subscription apart from a repeated one and
// records whether the welcome mail went out.
type SubscribeResult struct {
	Added       bool
	WelcomeSent bool
}

// Status is a snapshot of the notifier for the status endpoint.
type Status struct {
	Running           bool   `json:"is_running"`
	NotificationTime  string `json:"notification_time"`
	EmailConfigured   bool   `json:"email_configured"`
	WebhookConfigured bool   `json:"webhook_configured"`
	SubscriberCount   int    `json:"subscriber_count"`
	NextNotification  string `json:"next_notification,omitempty"`
}

type ucNotifier struct {
	store   repository.SubscriberStore
	mailer  repository.Mailer
	reports repository.ReportGenerator
	webhook repository.WebhookNotifier
	news    newsProvider

	senderEmail    string
	senderPassword string
	hour           int
	min            int

	scheduler *gocron.Scheduler

	// injectable for tests
	now func() time.Time

	// running gates the scheduled job; the job itself stays armed once
	// started so Stop/Start flips the gate only
	mu      sync.Mutex
	running bool
	armed   bool
}

func NewNotifier(
	store repository.SubscriberStore,
	mailer repository.Mailer,
	reports repository.ReportGenerator,
	webhook repository.WebhookNotifier,
	news newsProvider,
	senderEmail string,
	senderPassword string,
	hour int,
	min int,
) *ucNotifier {
	return &ucNotifier{
		store:          store,
		mailer:         mailer,
		reports:        reports,
		webhook:        webhook,
		news:           news,
		senderEmail:    senderEmail,
		senderPassword: senderPassword,
		hour:           hour,
		min:            min,
		scheduler:      gocron.NewScheduler(time.Local),
		now:            time.Now,
	}
}

// Start arms the daily job and opens the gate. Calling it again while
// running is a no-op.
func (n *ucNotifier) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		return nil
	}

	if !n.armed {
		_, err := n.scheduler.Every(1).Day().At(timeutil.FormatClock(n.hour, n.min)).Do(n.dailyJob)
		if err != nil {
			return errors.Wrap(errutil.ErrScheduler, err.Error())
		}
		n.scheduler.StartAsync()
		n.armed = true
	}

	n.running = true
	return nil
}

// Stop closes the gate. The armed job keeps firing but sends nothing.
func (n *ucNotifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.running = false
}

func (n *ucNotifier) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}

func (n *ucNotifier) Status() Status {
	running := n.Running()

	status := Status{
		Running:           running,
		NotificationTime:  timeutil.FormatClock(n.hour, n.min),
		EmailConfigured:   n.senderEmail != "" && n.senderPassword != "",
		WebhookConfigured: n.webhook.Configured(),
		SubscriberCount:   n.store.Count(),
	}
	if running {
		next := timeutil.NextClock(n.now(), n.hour, n.min)
		status.NextNotification = next.Format("2006-01-02 15:04:05")
	}
	return status
}

// Subscribe adds the address and greets it. A failed welcome mail does
// not undo the subscription.
func (n *ucNotifier) Subscribe(ctx context.Context, email string) (SubscribeResult, error) {
	added, err := n.store.Add(email)
	if err != nil {
		return SubscribeResult{}, err
	}
	if !added {
		return SubscribeResult{Added: false}, nil
	}

	welcome, err := n.reports.WelcomeEmail()
	if err != nil {
		log.Ctx(ctx).Warn().Msgf("render welcome email failed: %+v", err)
		return SubscribeResult{Added: true, WelcomeSent: false}, nil
	}
	if err := n.mailer.Send(email, welcome.Subject, welcome.Body); err != nil {
		log.Ctx(ctx).Warn().Msgf("welcome email to %s failed: %+v", email, err)
		return SubscribeResult{Added: true, WelcomeSent: false}, nil
	}

	log.Ctx(ctx).Info().Msgf("welcome email sent to %s", email)
	return SubscribeResult{Added: true, WelcomeSent: true}, nil
}

func (n *ucNotifier) Unsubscribe(email string) (bool, error) {
	return n.store.Remove(email)
}

func (n *ucNotifier) SubscriberCount() int {
	return n.store.Count()
}

// SendTest runs one digest delivery immediately, ignoring the gate.
func (n *ucNotifier) SendTest(ctx context.Context) error {
	result, err := n.news.Latest(ctx)
	if err != nil {
		return err
	}
	return n.deliver(ctx, result.Items)
}

// dailyJob is what the scheduler fires. The job carries its own logger
// context so every send failure ends up in the log.
func (n *ucNotifier) dailyJob() {
	ctx := logutil.NewLogger().With().
		Str("job", "daily_digest").
		Logger().WithContext(context.Background())
	n.runDaily(ctx)
}

// runDaily is the scheduled job body.
func (n *ucNotifier) runDaily(ctx context.Context) {
	if !n.Running() {
		log.Ctx(ctx).Debug().Msg("daily notification skipped, notifier is stopped")
		return
	}

	log.Ctx(ctx).Info().Msg("daily notification starting")

	result, err := n.news.Latest(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("collect news for daily notification failed: %+v", err)
		return
	}

	if err := n.deliver(ctx, result.Items); err != nil {
		log.Ctx(ctx).Error().Msgf("daily notification failed: %+v", err)
	}
}

// deliver renders the digest once and sends it to every subscriber. One
// failing recipient does not block the rest.
func (n *ucNotifier) deliver(ctx context.Context, items []news.Item) error {
	subscribers := n.store.List()
	if len(subscribers) == 0 {
		log.Ctx(ctx).Info().Msg("no subscribers, nothing to deliver")
		return nil
	}

	email, err := n.reports.DigestEmail(items)
	if err != nil {
		return err
	}

	sent := 0
	for _, subscriber := range subscribers {
		if err := n.mailer.Send(subscriber, email.Subject, email.Body); err != nil {
			log.Ctx(ctx).Warn().Msgf("digest to %s failed: %+v", subscriber, err)
			continue
		}
		sent++
	}
	log.Ctx(ctx).Info().Msgf("digest sent to %d/%d subscribers", sent, len(subscribers))

	if n.webhook.Configured() {
		if err := n.webhook.Notify(ctx, items); err != nil {
			log.Ctx(ctx).Warn().Msgf("webhook notification failed: %+v", err)
		}
	}
	return nil
}
