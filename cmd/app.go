package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/kovalyov-valentin/news-digest/internal/config"
	"github.com/kovalyov-valentin/news-digest/internal/digest"
	"github.com/kovalyov-valentin/news-digest/internal/fetcher"
	"github.com/kovalyov-valentin/news-digest/internal/filter"
	"github.com/kovalyov-valentin/news-digest/internal/logger"
	"github.com/kovalyov-valentin/news-digest/internal/metrics"
	"github.com/kovalyov-valentin/news-digest/internal/model"
	"github.com/kovalyov-valentin/news-digest/internal/notifier"
	"github.com/kovalyov-valentin/news-digest/internal/source"
	"github.com/kovalyov-valentin/news-digest/internal/storage"
	"github.com/kovalyov-valentin/news-digest/internal/summary"
)

// Общие зависимости всех команд
type app struct {
	cfg      config.Config
	log      *zap.Logger
	db       *sqlx.DB
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	botAPI *tgbotapi.BotAPI
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configFiles...)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseDSN)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("%w: connect: %v", model.ErrStoreUnavailable, err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		registry: registry,
		metrics:  metrics.New(registry),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("failed to close database", zap.Error(err))
	}

	_ = a.log.Sync()
}

// Клиент телеграма создаем только если задан токен. NewBotAPI сразу ходит в getMe
func (a *app) telegram() (*tgbotapi.BotAPI, error) {
	if a.cfg.TelegramBotToken == "" {
		return nil, nil
	}

	if a.botAPI != nil {
		return a.botAPI, nil
	}

	api, err := tgbotapi.NewBotAPI(a.cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	a.botAPI = api
	return api, nil
}

// Ленты из конфига идут первыми, за ними добавленные через бота
func (a *app) sources() (*fetcher.MergedSources, error) {
	static, err := a.cfg.Sources()
	if err != nil {
		return nil, err
	}

	return fetcher.NewMergedSources(static, storage.NewSourcePostgresStorage(a.db)), nil
}

func (a *app) fetcher() (*fetcher.Fetcher, error) {
	sources, err := a.sources()
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: a.cfg.FetchTimeout}

	opts := source.Options{
		Client:     client,
		MaxEntries: a.cfg.EntriesPerFeed,
	}
	if a.cfg.ScanPages {
		opts.Scanner = source.NewPageScanner(client)
	}

	articles := storage.NewArticleStorage(a.db)

	return fetcher.NewFetcher(
		func(ctx context.Context) (fetcher.ArticleSession, error) {
			session, err := articles.Session(ctx)
			if err != nil {
				return nil, err
			}

			return session, nil
		},
		sources,
		func(m model.Source) fetcher.Source {
			return source.New(m, opts)
		},
		filter.NewMatcher(a.cfg.Keywords),
		a.cfg.FetchTimeout,
		a.log.Named("fetcher"),
		a.metrics,
	), nil
}

func (a *app) selector() *digest.Selector {
	return digest.NewSelector(
		storage.NewDigestStorage(a.db),
		a.cfg.Policy,
		digest.Limits{
			Collect: a.cfg.CollectLimit,
			Top:     a.cfg.TopSize,
			Max:     a.cfg.MaxItems,
		},
	)
}

// Каналы доставки из конфига: почта, если задан mail_host, и телеграм канал
func (a *app) channels() ([]notifier.Channel, error) {
	var channels []notifier.Channel

	if a.cfg.MailHost != "" {
		mailer, err := notifier.NewMailer(notifier.MailConfig{
			Host:       a.cfg.MailHost,
			Port:       a.cfg.MailPort,
			Username:   a.cfg.MailUsername,
			Password:   a.cfg.MailPassword,
			From:       a.cfg.MailFrom,
			Recipients: a.cfg.Recipients(),
		})
		if err != nil {
			return nil, err
		}

		channels = append(channels, mailer)
	}

	if a.cfg.TelegramChannelID != 0 {
		api, err := a.telegram()
		if err != nil {
			return nil, err
		}

		channels = append(channels, notifier.NewTelegramChannel(api, a.cfg.TelegramChannelID))
	}

	return channels, nil
}

func (a *app) notifier(channels []notifier.Channel) *notifier.Notifier {
	return notifier.New(
		a.selector(),
		summary.NewOpenAISummarizer(a.cfg.OpenAIKey, a.cfg.OpenAIPrompt, a.log.Named("summary")),
		channels,
		a.cfg.MailSubject,
		a.log.Named("notifier"),
		a.metrics,
	)
}

// Замер длительности этапа
func (a *app) observe(stage string) func() {
	start := time.Now()

	return func() {
		a.metrics.RunDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
