package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// Политики выбора
const (
	// Основная: свежие новости, в верхнем блоке разные источники
	PolicyVariety = "variety"
	// События и новости вместе, по score
	PolicyRanked = "ranked"
)

type Reader interface {
	NewsForDate(ctx context.Context, day time.Time, limit uint64) ([]model.DigestRow, error)
	EventsForDate(ctx context.Context, day time.Time, limit uint64) ([]model.DigestRow, error)
}

// Limits ограничивают выборку. Это ограничения на показ, а не на хранение
type Limits struct {
	// Сколько свежих строк читать из БД (M)
	Collect int
	// Размер верхнего блока (K)
	Top int
	// Максимум строк в дайджесте всего (N)
	Max int
}

type Selector struct {
	reader Reader
	policy string
	limits Limits
}

func NewSelector(reader Reader, policy string, limits Limits) *Selector {
	if policy == "" {
		policy = PolicyVariety
	}

	return &Selector{
		reader: reader,
		policy: policy,
		limits: limits,
	}
}

// Select читает срез данных за день и применяет политику
func (s *Selector) Select(ctx context.Context, day time.Time) (model.Selection, error) {
	y, m, d := day.UTC().Date()
	sel := model.Selection{
		Date:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Policy: s.policy,
	}

	news, err := s.reader.NewsForDate(ctx, sel.Date, uint64(max(s.limits.Collect, 0)))
	if err != nil {
		return sel, fmt.Errorf("read news for %s: %w", sel.Date.Format(time.DateOnly), err)
	}

	switch s.policy {
	case PolicyVariety:
		sel.Top, sel.More = SelectWithVariety(news, s.limits.Top, s.limits.Max)
	case PolicyRanked:
		// Событий за день немного, ранжируем все, обрезаем уже после слияния
		events, err := s.reader.EventsForDate(ctx, sel.Date, 0)
		if err != nil {
			return sel, fmt.Errorf("read events for %s: %w", sel.Date.Format(time.DateOnly), err)
		}

		sel.Top, sel.More = SplitRanked(RankMerged(events, news, s.limits.Max), s.limits.Top)
	default:
		return sel, fmt.Errorf("unknown selection policy %q", s.policy)
	}

	return sel, nil
}
