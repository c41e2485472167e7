package run

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/sobadon/cyberd/api"
	"github.com/sobadon/cyberd/domain/repository"
	"github.com/sobadon/cyberd/infrastructures/gemini"
	"github.com/sobadon/cyberd/infrastructures/newsapi"
	"github.com/sobadon/cyberd/infrastructures/reddit"
	"github.com/sobadon/cyberd/infrastructures/report"
	"github.com/sobadon/cyberd/infrastructures/rss"
	"github.com/sobadon/cyberd/infrastructures/rule"
	"github.com/sobadon/cyberd/infrastructures/scraper"
	"github.com/sobadon/cyberd/infrastructures/smtp"
	"github.com/sobadon/cyberd/infrastructures/sqlite"
	"github.com/sobadon/cyberd/infrastructures/subfile"
	"github.com/sobadon/cyberd/infrastructures/webhook"
	"github.com/sobadon/cyberd/internal/errutil"
	"github.com/sobadon/cyberd/internal/logutil"
	"github.com/sobadon/cyberd/internal/timeutil"
	"github.com/sobadon/cyberd/usecase"
	"github.com/spf13/cobra"
)

var (
	log = logutil.NewLogger()
)

func Command() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "run",
		Short: "run components",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	return rootCmd
}

func run() error {
	log.Info().Msg("start")

	var config config
	err := env.Parse(&config, env.Options{
		Prefix: "CYBERD_",
		OnSet: func(tag string, value interface{}, isDefault bool) {
			if secretEnvs[tag] {
				log.Info().Msgf("Set %s (default? %v)", tag, isDefault)
				return
			}
			log.Info().Msgf("Set %s to %v (default? %v)", tag, value, isDefault)
		},
	})
	if err != nil {
		return err
	}

	db, err := sqlite.NewDB(config.SqlitePath)
	if err != nil {
		return err
	}
	defer db.Close()

	err = sqlite.Setup(db)
	if err != nil {
		return err
	}
	log.Info().Msg("setup done")

	hour, min, err := timeutil.ParseClock(config.NotificationTime)
	if err != nil {
		return err
	}

	store, err := subfile.New(config.SubscribersFile)
	if err != nil {
		return err
	}

	sources := []repository.Source{
		rss.New(),
		reddit.New(config.RedditClientID, config.RedditClientSecret),
		newsapi.New(config.NewsAPIKey),
		scraper.New(),
	}

	var primary repository.Analyzer
	if config.GeminiAPIKey != "" {
		primary = gemini.New(config.GeminiAPIKey)
	}

	agent := usecase.NewAgent(sources, primary, rule.New(), sqlite.New(db), config.MaxItems, config.CacheTTL)

	reports := report.New(config.AppURL, config.NotificationTime)

	notifier := usecase.NewNotifier(
		store,
		smtp.New(config.SMTPServer, config.SMTPPort, config.NotificationEmail, config.EmailPassword),
		reports,
		webhook.New(config.WebhookURL, config.AppURL),
		agent,
		config.NotificationEmail,
		config.EmailPassword,
		hour,
		min,
	)

	ctx := context.Background()
	scheduler := gocron.NewScheduler(time.Local)

	jobRefresh := func(ctx context.Context, job gocron.Job) {
		ctx = logutil.NewLogger().With().
			Int("job_count", job.RunCount()).
			Str("job", "refresh").
			Logger().WithContext(ctx)
		zlog.Ctx(ctx).Info().Msg("job start")
		_, err := agent.Refresh(ctx)
		if err != nil {
			zlog.Ctx(ctx).Error().Msgf("%+v", err)
		}
	}
	_, err = scheduler.Every(config.CacheTTL).DoWithJobDetails(jobRefresh, ctx)
	if err != nil {
		return errors.Wrap(errutil.ErrScheduler, err.Error())
	}

	scheduler.StartAsync()
	scheduler.RunAllWithDelay(10 * time.Second)

	if usecase.ShouldAutoStart(store.Count(), config.NotificationEmail, config.EmailPassword) {
		err = notifier.Start()
		if err != nil {
			return err
		}
		log.Info().Msgf("daily notifications started for %d subscribers", store.Count())
	}

	router := api.SetupRouter(api.NewHandler(agent, notifier, reports))
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())

	server := &http.Server{
		Addr:    config.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Info().Msgf("listening on %s", config.ListenAddr)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Error().Msgf("%+v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Info().Msg("Interrupt")

	notifier.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
