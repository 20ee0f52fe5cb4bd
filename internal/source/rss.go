package source

import (
	"context"
	"fmt"

	"github.com/SlyMarbo/rss"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// RSS клиент на SlyMarbo/rss. Простой и легкий, но media расширения не видит
type RSSSource struct {
	// URL откуда мы забираем данные
	URL        string
	SourceID   int64
	SourceName string

	opts Options
}

func NewRSSSourceFromModel(m model.Source, opts Options) RSSSource {
	return RSSSource{
		URL:        m.FeedURL,
		SourceID:   m.ID,
		SourceName: m.Name,
		opts:       opts,
	}
}

func (s RSSSource) Fetch(ctx context.Context) ([]model.Item, error) {
	feed, err := s.loadFeed(ctx)
	if err != nil {
		return nil, err
	}

	entries := lo.Map(feed.Items, func(item *rss.Item, _ int) Entry {
		e := Entry{
			Title:   item.Title,
			Summary: item.Summary,
			Link:    item.Link,
		}

		e.Enclosures = lo.Map(item.Enclosures, func(enc *rss.Enclosure, _ int) Enclosure {
			return Enclosure{URL: enc.URL, Type: enc.Type}
		})

		if e.Summary == "" {
			e.Summary = item.Content
		}

		if item.Image != nil {
			e.Image = item.Image.URL
		}

		// DateValid снят, если даты в ленте нет или она не разобралась
		if item.DateValid && !item.Date.IsZero() {
			published := item.Date
			e.Published = &published
		}

		return e
	})

	return buildItems(ctx, entries, s.opts), nil
}

func (s RSSSource) loadFeed(ctx context.Context) (*rss.Feed, error) {
	body, err := download(ctx, s.opts.client(), s.URL)
	if err != nil {
		return nil, err
	}

	feed, err := rss.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse rss: %v", model.ErrSourceUnavailable, err)
	}

	return feed, nil
}

func (s RSSSource) ID() int64 {
	return s.SourceID
}

func (s RSSSource) Name() string {
	return s.SourceName
}
