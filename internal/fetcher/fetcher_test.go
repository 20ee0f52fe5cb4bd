package fetcher_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kovalyov-valentin/news-digest/internal/fetcher"
	"github.com/kovalyov-valentin/news-digest/internal/filter"
	"github.com/kovalyov-valentin/news-digest/internal/metrics"
	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// memStore ведет себя как news_articles с уникальным url и политикой обновления картинки
type memStore struct {
	mu       sync.Mutex
	articles map[string]model.Article
	order    []string
	failOn   string
	opened   int
	closed   int
}

func newMemStore() *memStore {
	return &memStore{articles: make(map[string]model.Article)}
}

func (s *memStore) open(context.Context) (fetcher.ArticleSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opened++
	return s, nil
}

func (s *memStore) Store(_ context.Context, article model.Article) (model.StoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if article.URL == s.failOn {
		return model.StoreUnchanged, errors.New("connection refused")
	}

	existing, ok := s.articles[article.URL]
	if !ok {
		article.ID = int64(len(s.order) + 1)
		s.articles[article.URL] = article
		s.order = append(s.order, article.URL)
		return model.StoreInserted, nil
	}

	if existing.ImageURL == nil && article.ImageURL != nil {
		existing.ImageURL = article.ImageURL
		s.articles[article.URL] = existing
		return model.StoreImageRefreshed, nil
	}

	return model.StoreUnchanged, nil
}

func (s *memStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed++
	return nil
}

type fakeSource struct {
	id    int64
	name  string
	items []model.Item
	err   error
	block bool
}

func (s *fakeSource) ID() int64    { return s.id }
func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Fetch(ctx context.Context) ([]model.Item, error) {
	if s.block {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", model.ErrSourceUnavailable, ctx.Err())
	}

	return s.items, s.err
}

type staticSources []model.Source

func (s staticSources) Sources(context.Context) ([]model.Source, error) {
	return s, nil
}

type harness struct {
	store   *memStore
	feeds   map[string]*fakeSource
	sources staticSources
	metrics *metrics.Metrics
	now     time.Time
}

func newHarness() *harness {
	return &harness{
		store:   newMemStore(),
		feeds:   make(map[string]*fakeSource),
		metrics: metrics.Nop(),
		now:     time.Date(2026, 10, 17, 6, 30, 0, 0, time.UTC),
	}
}

func (h *harness) addFeed(name string, items ...model.Item) *fakeSource {
	url := "https://feeds.example.com/" + name
	src := &fakeSource{id: int64(len(h.sources) + 1), name: name, items: items}

	h.feeds[url] = src
	h.sources = append(h.sources, model.Source{ID: src.id, Name: name, FeedURL: url})

	return src
}

func (h *harness) fetcher(keywords ...string) *fetcher.Fetcher {
	return fetcher.NewFetcher(
		h.store.open,
		h.sources,
		func(m model.Source) fetcher.Source { return h.feeds[m.FeedURL] },
		filter.NewMatcher(keywords),
		200*time.Millisecond,
		zap.NewNop(),
		h.metrics,
	).WithClock(func() time.Time { return h.now })
}

func item(title, link string) model.Item {
	return model.Item{Title: title, Link: link}
}

func strPtr(s string) *string { return &s }

func TestFetch_IdempotentIngestion(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addFeed("Reuters", item("Retail sales jump", "http://x/1"), item("Snack maker IPO", "http://x/2"))
	h.addFeed("Bloomberg", item("Brand wars", "http://x/3"))

	f := h.fetcher("retail", "snack", "brand")

	first, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, first.Inserted)

	second, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.Equal(t, 3, second.Unchanged)
	assert.Len(t, h.store.articles, 3)
}

func TestFetch_SessionDedupAndEndpointOrder(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addFeed("Reuters", item("Retail sales jump", "http://x/1"), item("Retail sales jump", "http://x/1"))
	h.addFeed("Bloomberg", item("Retail sales jump (Bloomberg)", " http://x/1 "))

	report, err := h.fetcher("retail").Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 2, report.Duplicates)
	assert.Equal(t, "Reuters", h.store.articles["http://x/1"].Source)
	assert.Equal(t, "Retail sales jump", h.store.articles["http://x/1"].Headline)
}

func TestFetch_MutatedTitleKeepsStoredHeadline(t *testing.T) {
	t.Parallel()

	h := newHarness()
	feed := h.addFeed("TechCrunch", item("Foo raises Series A", "http://x/1"))
	f := h.fetcher("raise")

	_, err := f.Fetch(context.Background())
	require.NoError(t, err)

	feed.items = []model.Item{item("Foo raised Series A, updated", "http://x/1")}
	report, err := f.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Unchanged)
	assert.Equal(t, "Foo raises Series A", h.store.articles["http://x/1"].Headline)
}

func TestFetch_ImageRefreshOnlyTouchesImage(t *testing.T) {
	t.Parallel()

	h := newHarness()
	firstPublished := time.Date(2026, 10, 17, 5, 0, 0, 0, time.UTC)
	feed := h.addFeed("TechCrunch", model.Item{Title: "Foo raises Series A", Link: "http://x/1", PublishedAt: &firstPublished})
	f := h.fetcher("series a")

	_, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, h.store.articles["http://x/1"].ImageURL)

	later := firstPublished.Add(3 * time.Hour)
	feed.items = []model.Item{{
		Title:       "Foo raises Series A (photo)",
		Link:        "http://x/1",
		SourceName:  "Other wire",
		PublishedAt: &later,
		ImageURL:    strPtr("http://img/1.jpg"),
	}}

	report, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.ImageRefreshed)

	stored := h.store.articles["http://x/1"]
	require.NotNil(t, stored.ImageURL)
	assert.Equal(t, "http://img/1.jpg", *stored.ImageURL)
	assert.Equal(t, "Foo raises Series A", stored.Headline)
	assert.Equal(t, "TechCrunch", stored.Source)
	assert.Equal(t, firstPublished, stored.PublishedAt)

	// Картинку, которая уже есть, не перетираем
	feed.items[0].ImageURL = strPtr("http://img/2.jpg")
	report, err = f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Unchanged)
	assert.Equal(t, "http://img/1.jpg", *h.store.articles["http://x/1"].ImageURL)
}

func TestFetch_SkipsMalformedAndIrrelevant(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addFeed("CNN",
		item("", "http://x/no-title"),
		item("Retail without link", "  "),
		item("Weather", "http://x/weather"),
		item("Retail boom", "http://x/ok"),
	)

	report, err := h.fetcher("retail").Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Fetched)
	assert.Equal(t, 2, report.Malformed)
	assert.Equal(t, 1, report.Irrelevant)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Items.WithLabelValues("CNN", metrics.OutcomeIrrelevant)))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.Items.WithLabelValues("CNN", metrics.OutcomeMalformed)))
}

func TestFetch_EmptyKeywordsStoreNothing(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addFeed("CNN", item("Retail boom", "http://x/ok"))

	core, logs := observer.New(zap.WarnLevel)
	f := fetcher.NewFetcher(
		h.store.open,
		h.sources,
		func(m model.Source) fetcher.Source { return h.feeds[m.FeedURL] },
		filter.NewMatcher([]string{" ", ""}),
		time.Second,
		zap.New(core),
		h.metrics,
	)

	report, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Irrelevant)
	assert.Empty(t, h.store.articles)
	assert.Equal(t, 1, logs.FilterMessage("no keywords configured, every entry will be rejected").Len())
}

func TestFetch_UnavailableSourcesAreSkipped(t *testing.T) {
	t.Parallel()

	h := newHarness()
	broken := h.addFeed("Broken")
	broken.err = fmt.Errorf("%w: 502", model.ErrSourceUnavailable)
	slow := h.addFeed("Slow")
	slow.block = true
	h.addFeed("Reuters", item("Retail boom", "http://x/ok"))

	report, err := h.fetcher("retail").Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Sources)
	assert.Equal(t, 2, report.FailedSources)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.SourceFailures.WithLabelValues("Slow")))
}

func TestFetch_StoreFailureAbortsRun(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addFeed("Reuters", item("Retail one", "http://x/1"))
	h.addFeed("Bloomberg", item("Retail two", "http://x/2"), item("Retail three", "http://x/3"))
	h.addFeed("CNN", item("Retail four", "http://x/4"))
	h.store.failOn = "http://x/2"

	report, err := h.fetcher("retail").Fetch(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1, report.Inserted)
	assert.Contains(t, h.store.articles, "http://x/1")
	assert.NotContains(t, h.store.articles, "http://x/3")
	assert.NotContains(t, h.store.articles, "http://x/4")
	assert.Equal(t, 1, h.store.opened)
	assert.Equal(t, 1, h.store.closed)
}

func TestFetch_StoreUnavailable(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addFeed("Reuters", item("Retail one", "http://x/1"))

	f := fetcher.NewFetcher(
		func(context.Context) (fetcher.ArticleSession, error) {
			return nil, fmt.Errorf("%w: dial tcp: connection refused", model.ErrStoreUnavailable)
		},
		h.sources,
		func(m model.Source) fetcher.Source { return h.feeds[m.FeedURL] },
		filter.NewMatcher([]string{"retail"}),
		time.Second,
		zap.NewNop(),
		h.metrics,
	)

	_, err := f.Fetch(context.Background())
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
}

func TestFetch_TimestampPolicy(t *testing.T) {
	t.Parallel()

	h := newHarness()
	published := time.Date(2026, 10, 16, 23, 30, 0, 0, time.FixedZone("EST", -5*60*60))
	h.addFeed("Reuters",
		model.Item{Title: "Retail dated", Link: "http://x/dated", PublishedAt: &published},
		model.Item{Title: "Retail undated", Link: "http://x/undated"},
	)

	_, err := h.fetcher("retail").Fetch(context.Background())
	require.NoError(t, err)

	dated := h.store.articles["http://x/dated"].PublishedAt
	assert.Equal(t, time.UTC, dated.Location())
	assert.True(t, dated.Equal(published))
	assert.Equal(t, 17, dated.Day())

	assert.Equal(t, h.now, h.store.articles["http://x/undated"].PublishedAt)
}

func TestFetch_CanceledContext(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.addFeed("Reuters", item("Retail one", "http://x/1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.fetcher("retail").Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.store.articles)
}

func TestSourceName(t *testing.T) {
	t.Parallel()

	src := model.Source{Name: "Reuters", FeedURL: "http://feeds.reuters.com/reuters/businessNews"}

	assert.Equal(t, "AP", fetcher.SourceName(model.Item{SourceName: " AP "}, src))
	assert.Equal(t, "Reuters", fetcher.SourceName(model.Item{}, src))
	assert.Equal(t, "feeds.reuters.com", fetcher.SourceName(model.Item{}, model.Source{FeedURL: src.FeedURL}))
	assert.Equal(t, "feed.xml", fetcher.SourceName(model.Item{}, model.Source{FeedURL: "feed.xml"}))
	assert.NotEmpty(t, fetcher.SourceName(model.Item{}, model.Source{}))
}
