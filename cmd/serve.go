package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kovalyov-valentin/news-digest/internal/bot"
	"github.com/kovalyov-valentin/news-digest/internal/bot/middleware"
	"github.com/kovalyov-valentin/news-digest/internal/botkit"
	"github.com/kovalyov-valentin/news-digest/internal/storage"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled ingestion and digests, the telegram bot and the metrics endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Graceful shutdown
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	f, err := a.fetcher()
	if err != nil {
		return err
	}

	channels, err := a.channels()
	if err != nil {
		return err
	}
	n := a.notifier(channels)

	scheduler := cron.New(
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)),
		cron.WithChain(cron.Recover(cronLogger{a.log.Named("cron").Sugar()}), cron.SkipIfStillRunning(cronLogger{a.log.Named("cron").Sugar()})),
		cron.WithLocation(time.UTC),
	)

	if _, err := scheduler.AddFunc(a.cfg.IngestSchedule, func() {
		done := a.observe("ingest")
		defer done()

		if _, err := f.Fetch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error("scheduled ingestion failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	if len(channels) > 0 {
		if _, err := scheduler.AddFunc(a.cfg.DigestSchedule, func() {
			done := a.observe("digest")
			defer done()

			if _, err := n.SendDigest(ctx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error("scheduled digest failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	} else {
		a.log.Warn("no delivery channels configured, digests will not be sent")
	}

	scheduler.Start()
	defer func() {
		<-scheduler.Stop().Done()
	}()

	metricsServer := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           metricsHandler(a),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	a.log.Info("service started",
		zap.String("ingest_schedule", a.cfg.IngestSchedule),
		zap.String("digest_schedule", a.cfg.DigestSchedule),
		zap.String("metrics_addr", a.cfg.MetricsAddr),
	)

	if err := a.runBot(ctx, n); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	a.log.Info("service stopped")
	return nil
}

// Бот работает, пока не отменят ctx. Без токена просто ждем отмены
func (a *app) runBot(ctx context.Context, builder bot.DigestBuilder) error {
	api, err := a.telegram()
	if err != nil {
		return err
	}

	if api == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	sources, err := a.sources()
	if err != nil {
		return err
	}
	sourceStorage := storage.NewSourcePostgresStorage(a.db)

	// Команды, меняющие список лент, только для админов канала
	newsBot := botkit.New(api, a.log.Named("bot"))
	newsBot.RegisterCmdView("start", bot.ViewCmdStart())
	newsBot.RegisterCmdView("listsources", bot.ViewCmdListSources(sources))
	newsBot.RegisterCmdView("addsource", middleware.AdminOnly(a.cfg.TelegramChannelID, bot.ViewCmdAddSource(sourceStorage)))
	newsBot.RegisterCmdView("deletesource", middleware.AdminOnly(a.cfg.TelegramChannelID, bot.ViewCmdDeleteSource(sourceStorage)))
	newsBot.RegisterCmdView("digest", bot.ViewCmdDigest(builder, time.Now))

	return newsBot.Run(ctx)
}

func metricsHandler(a *app) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
	})

	return mux
}

// Пишем логи cron через zap
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
