package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tomakado/containers/set"
	"go.uber.org/zap"

	"github.com/kovalyov-valentin/news-digest/internal/filter"
	"github.com/kovalyov-valentin/news-digest/internal/metrics"
	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// Сессия сохранения: одно соединение с БД на прогон
type ArticleSession interface {
	Store(ctx context.Context, article model.Article) (model.StoreResult, error)
	Close() error
}

// Открывает сессию в начале прогона
type SessionFunc func(ctx context.Context) (ArticleSession, error)

type SourceProvider interface {
	Sources(ctx context.Context) ([]model.Source, error)
}

// Интерфейс источника
type Source interface {
	ID() int64
	Name() string
	Fetch(ctx context.Context) ([]model.Item, error)
}

// Из модели источника делает клиент, который умеет ходить в ленту
type SourceFactory func(m model.Source) Source

// Структура сборщика
type Fetcher struct {
	// Хранилище статей
	openSession SessionFunc
	// Хранилище источников
	sources   SourceProvider
	newSource SourceFactory
	// Фильтрация статей по ключевым словам
	matcher *filter.Matcher
	// Сколько ждем один источник
	fetchTimeout time.Duration

	now     func() time.Time
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewFetcher(
	openSession SessionFunc,
	sourceProvider SourceProvider,
	newSource SourceFactory,
	matcher *filter.Matcher,
	fetchTimeout time.Duration,
	log *zap.Logger,
	m *metrics.Metrics,
) *Fetcher {
	return &Fetcher{
		openSession:  openSession,
		sources:      sourceProvider,
		newSource:    newSource,
		matcher:      matcher,
		fetchTimeout: fetchTimeout,
		now:          time.Now,
		log:          log,
		metrics:      m,
	}
}

// WithClock подменяет часы. Время загрузки ставим статьям без даты публикации
func (f *Fetcher) WithClock(now func() time.Time) *Fetcher {
	f.now = now
	return f
}

// Итоги одного прогона
type Report struct {
	Sources        int
	FailedSources  int
	Fetched        int
	Malformed      int
	Irrelevant     int
	Duplicates     int
	Inserted       int
	ImageRefreshed int
	Unchanged      int
}

type fetchResult struct {
	items []model.Item
	err   error
}

// Fetch делает один прогон: забирает все ленты, фильтрует и сохраняет.
// Ленты качаем параллельно, а обрабатываем и сохраняем по очереди в порядке конфига,
// поэтому результат не зависит от того, какая лента ответила первой.
// Ошибка источника - пропуск источника. Ошибка БД - конец прогона.
func (f *Fetcher) Fetch(ctx context.Context) (Report, error) {
	var report Report

	if keywords := f.matcher.Keywords(); len(keywords) == 0 {
		f.log.Warn("no keywords configured, every entry will be rejected")
	} else {
		f.log.Debug("ingestion started", zap.Strings("keywords", keywords))
	}

	sources, err := f.sources.Sources(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: list sources: %v", model.ErrStoreUnavailable, err)
	}
	report.Sources = len(sources)

	results := make([]fetchResult, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)

		go func(i int, source Source) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
			defer cancel()

			items, err := source.Fetch(fetchCtx)
			results[i] = fetchResult{items: items, err: err}
		}(i, f.newSource(src))
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return report, err
	}

	session, err := f.openSession(ctx)
	if err != nil {
		return report, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			f.log.Warn("failed to release store session", zap.Error(err))
		}
	}()

	// Ссылки, которые уже видели в этом прогоне
	seen := set.New[string]()
	firstSeen := func(link string) bool {
		if seen.Contains(link) {
			return false
		}

		seen.Add(link)
		return true
	}

	runAt := f.now().UTC()

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := results[i]
		if res.err != nil {
			report.FailedSources++
			f.metrics.SourceFailures.WithLabelValues(src.Name).Inc()
			f.log.Warn("skipping source",
				zap.String("source", src.Name),
				zap.String("url", src.FeedURL),
				zap.Error(res.err),
			)
			continue
		}

		if err := f.processItems(ctx, session, src, res.items, firstSeen, runAt, &report); err != nil {
			return report, err
		}
	}

	f.log.Info("ingestion finished",
		zap.Int("sources", report.Sources),
		zap.Int("failed_sources", report.FailedSources),
		zap.Int("fetched", report.Fetched),
		zap.Int("inserted", report.Inserted),
		zap.Int("image_refreshed", report.ImageRefreshed),
		zap.Int("unchanged", report.Unchanged),
	)

	return report, nil
}

// Метод для процессинга. Записи идут в том порядке, в котором они в ленте
func (f *Fetcher) processItems(
	ctx context.Context,
	session ArticleSession,
	src model.Source,
	items []model.Item,
	firstSeen func(link string) bool,
	runAt time.Time,
	report *Report,
) error {
	count := func(outcome string) {
		f.metrics.Items.WithLabelValues(src.Name, outcome).Inc()
	}

	for _, item := range items {
		report.Fetched++
		count(metrics.OutcomeFetched)

		if err := validate(item); err != nil {
			report.Malformed++
			count(metrics.OutcomeMalformed)
			f.log.Debug("skipping entry", zap.String("source", src.Name), zap.Error(err))
			continue
		}

		if !f.matcher.Match(item.Title, item.Summary) {
			report.Irrelevant++
			count(metrics.OutcomeIrrelevant)
			continue
		}

		link := strings.TrimSpace(item.Link)
		if !firstSeen(link) {
			report.Duplicates++
			count(metrics.OutcomeDuplicate)
			continue
		}

		result, err := session.Store(ctx, f.toArticle(item, src, runAt))
		if err != nil {
			return fmt.Errorf("source %s: %w", src.Name, err)
		}

		switch result {
		case model.StoreInserted:
			report.Inserted++
			count(metrics.OutcomeInserted)
		case model.StoreImageRefreshed:
			report.ImageRefreshed++
			count(metrics.OutcomeImageRefreshed)
		default:
			report.Unchanged++
			count(metrics.OutcomeUnchanged)
		}
	}

	return nil
}

func validate(item model.Item) error {
	switch {
	case strings.TrimSpace(item.Title) == "":
		return fmt.Errorf("%w: empty title (link %q)", model.ErrMalformedEntry, item.Link)
	case strings.TrimSpace(item.Link) == "":
		return fmt.Errorf("%w: empty link (title %q)", model.ErrMalformedEntry, item.Title)
	default:
		return nil
	}
}

func (f *Fetcher) toArticle(item model.Item, src model.Source, runAt time.Time) model.Article {
	// Без настоящей даты ставим время загрузки, иначе статья пропадет из "сегодня"
	publishedAt := runAt
	if item.PublishedAt != nil && !item.PublishedAt.IsZero() {
		publishedAt = item.PublishedAt.UTC()
	}

	return model.Article{
		Headline:    strings.TrimSpace(item.Title),
		Source:      SourceName(item, src),
		URL:         strings.TrimSpace(item.Link),
		PublishedAt: publishedAt,
		ImageURL:    item.ImageURL,
	}
}

// SourceName никогда не возвращает пустую строку:
// имя из записи, потом имя источника, потом хост ленты, потом сам урл ленты
func SourceName(item model.Item, src model.Source) string {
	if name := strings.TrimSpace(item.SourceName); name != "" {
		return name
	}

	if name := strings.TrimSpace(src.Name); name != "" {
		return name
	}

	if u, err := url.Parse(src.FeedURL); err == nil && u.Host != "" {
		return u.Host
	}

	if src.FeedURL != "" {
		return src.FeedURL
	}

	return "unknown"
}
