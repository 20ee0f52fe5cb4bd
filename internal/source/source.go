// Package source забирает записи из лент и приводит их к model.Item.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// Ограничение на размер ленты, чтобы кривой источник не съел память
const maxFeedSize = 10 << 20

// Общий интерфейс для RSS и gofeed клиентов
type Adapter interface {
	ID() int64
	Name() string
	Fetch(ctx context.Context) ([]model.Item, error)
}

// Настройки, общие для всех источников
type Options struct {
	Client *http.Client
	// Сколько записей брать из одной ленты. 0 - все
	MaxEntries int
	// Если задан, ходим на страницу статьи за картинкой, когда в ленте ее нет
	Scanner *PageScanner
	// Если пусто, используем DefaultImageStrategies
	ImageStrategies []ImageStrategy
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}

	return &http.Client{Timeout: 30 * time.Second}
}

func (o Options) strategies() []ImageStrategy {
	if len(o.ImageStrategies) > 0 {
		return o.ImageStrategies
	}

	return DefaultImageStrategies()
}

// New создает клиент под тип ленты. Неизвестный тип разбираем gofeed, он понимает все форматы
func New(m model.Source, opts Options) Adapter {
	if m.Kind == model.SourceKindRSS {
		return NewRSSSourceFromModel(m, opts)
	}

	return NewFeedSourceFromModel(m, opts)
}

// Загружаем тело ленты с учетом контекста
func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", model.ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", "news-digest/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", model.ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", model.ErrSourceUnavailable, err)
	}

	return body, nil
}

// Общая часть для обоих клиентов: обрезаем по лимиту, ищем картинки, при необходимости ходим на страницу
func buildItems(ctx context.Context, entries []Entry, opts Options) []model.Item {
	if opts.MaxEntries > 0 && len(entries) > opts.MaxEntries {
		entries = entries[:opts.MaxEntries]
	}

	strategies := opts.strategies()
	items := make([]model.Item, 0, len(entries))

	for _, e := range entries {
		item := toItem(e, strategies)

		if item.ImageURL == nil && opts.Scanner != nil && item.Link != "" && ctx.Err() == nil {
			// Ошибка пробы не мешает сохранить статью без картинки
			if u, err := opts.Scanner.LeadImage(ctx, item.Link); err == nil && u != "" {
				item.ImageURL = &u
			}
		}

		items = append(items, item)
	}

	return items
}
