package fetcher

import (
	"context"
	"strings"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// Источники из конфига плюс источники, добавленные через бота.
// Порядок: сначала конфиг как есть, потом БД. Повтор ленты по урлу отбрасываем.
type MergedSources struct {
	static  []model.Source
	dynamic SourceProvider
}

func NewMergedSources(static []model.Source, dynamic SourceProvider) *MergedSources {
	return &MergedSources{static: static, dynamic: dynamic}
}

func (m *MergedSources) Sources(ctx context.Context) ([]model.Source, error) {
	var dynamic []model.Source

	if m.dynamic != nil {
		var err error
		if dynamic, err = m.dynamic.Sources(ctx); err != nil {
			return nil, err
		}
	}

	var (
		result = make([]model.Source, 0, len(m.static)+len(dynamic))
		seen   = make(map[string]struct{}, cap(result))
	)

	for _, src := range append(append([]model.Source(nil), m.static...), dynamic...) {
		key := strings.TrimSpace(src.FeedURL)
		if key == "" {
			continue
		}

		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		result = append(result, src)
	}

	return result, nil
}
