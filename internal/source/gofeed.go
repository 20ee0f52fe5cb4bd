package source

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// Клиент на gofeed: RSS, Atom и JSON Feed, плюс media:* и dublin core расширения
type FeedSource struct {
	URL        string
	SourceID   int64
	SourceName string

	opts Options
}

func NewFeedSourceFromModel(m model.Source, opts Options) FeedSource {
	return FeedSource{
		URL:        m.FeedURL,
		SourceID:   m.ID,
		SourceName: m.Name,
		opts:       opts,
	}
}

func (s FeedSource) Fetch(ctx context.Context) ([]model.Item, error) {
	body, err := download(ctx, s.opts.client(), s.URL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed: %v", model.ErrSourceUnavailable, err)
	}

	entries := lo.Map(feed.Items, func(item *gofeed.Item, _ int) Entry {
		return entryFromGofeed(item)
	})

	return buildItems(ctx, entries, s.opts), nil
}

func entryFromGofeed(item *gofeed.Item) Entry {
	e := Entry{
		Title:     item.Title,
		Summary:   item.Description,
		Link:      item.Link,
		Published: item.PublishedParsed,
	}

	e.Enclosures = lo.Map(item.Enclosures, func(enc *gofeed.Enclosure, _ int) Enclosure {
		return Enclosure{URL: enc.URL, Type: enc.Type}
	})

	if e.Summary == "" {
		e.Summary = item.Content
	}

	if item.Image != nil {
		e.Image = item.Image.URL
	}

	if dc := item.DublinCoreExt; dc != nil {
		e.Source = firstNonEmpty(dc.Source, dc.Publisher)
	}

	if mediaExt, ok := item.Extensions["media"]; ok {
		e.MediaContent, e.MediaThumbnails = mediaFromExtensions(mediaExt)
	}

	return e
}

// media:content и media:thumbnail могут лежать как прямо в item, так и внутри media:group
func mediaFromExtensions(exts map[string][]ext.Extension) ([]Media, []string) {
	var (
		contents   []Media
		thumbnails []string
	)

	collect := func(exts map[string][]ext.Extension) {
		for _, c := range exts["content"] {
			contents = append(contents, Media{
				URL:    c.Attrs["url"],
				Type:   c.Attrs["type"],
				Medium: c.Attrs["medium"],
			})

			for _, t := range c.Children["thumbnail"] {
				thumbnails = append(thumbnails, t.Attrs["url"])
			}
		}

		for _, t := range exts["thumbnail"] {
			thumbnails = append(thumbnails, t.Attrs["url"])
		}
	}

	collect(exts)
	for _, group := range exts["group"] {
		collect(group.Children)
	}

	return contents, thumbnails
}

func firstNonEmpty(lists ...[]string) string {
	for _, list := range lists {
		for _, v := range list {
			if v != "" {
				return v
			}
		}
	}

	return ""
}

func (s FeedSource) ID() int64 {
	return s.SourceID
}

func (s FeedSource) Name() string {
	return s.SourceName
}
