// Package digest выбирает и ранжирует строки для ежедневного дайджеста.
// Все функции выбора чистые: на одних и тех же данных дают один и тот же результат.
package digest

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// RankMerged сливает события и новости за день и берет первые limit.
// Порядок: score по убыванию, день (UTC, без времени) по убыванию, имя компании по возрастанию.
// Последним ключом идет Key(), чтобы порядок был полным и не зависел от порядка на входе.
func RankMerged(events, news []model.DigestRow, limit int) []model.DigestRow {
	merged := make([]model.DigestRow, 0, len(events)+len(news))
	merged = append(merged, events...)
	merged = append(merged, lo.Map(news, func(row model.DigestRow, _ int) model.DigestRow {
		// У новостей нет своего score
		row.Score = 0
		return row
	})...)

	sort.SliceStable(merged, func(i, j int) bool {
		return rankLess(merged[i], merged[j])
	})

	return capRows(uniqueByKey(merged), limit)
}

func rankLess(a, b model.DigestRow) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	// События хранятся без времени, поэтому сравниваем только день
	if dayA, dayB := utcDay(a.Date), utcDay(b.Date); !dayA.Equal(dayB) {
		return dayA.After(dayB)
	}
	if a.Company != b.Company {
		return a.Company < b.Company
	}

	return a.Key() < b.Key()
}

// SelectWithVariety делит свежие новости (самые новые первыми) на верхний блок и остальное.
// В верх за один проход слева направо берем не больше одной новости на источник.
// Если разных источников не хватило, добираем следующими невзятыми в исходном порядке.
// Остальное идет в more в исходном порядке, пока не наберется total строк.
func SelectWithVariety(rows []model.DigestRow, topSize, total int) (top, more []model.DigestRow) {
	if total <= 0 || topSize < 0 {
		return nil, nil
	}

	rows = uniqueByKey(rows)
	if topSize > total {
		topSize = total
	}

	var (
		picked  = make(map[string]struct{}, topSize)
		sources = make(map[string]struct{}, topSize)
	)

	for _, row := range rows {
		if len(top) == topSize {
			break
		}

		src := sourceKey(row)
		if _, ok := sources[src]; ok {
			continue
		}

		sources[src] = struct{}{}
		picked[row.Key()] = struct{}{}
		top = append(top, row)
	}

	for _, row := range rows {
		if len(top) == topSize {
			break
		}

		if _, ok := picked[row.Key()]; ok {
			continue
		}

		picked[row.Key()] = struct{}{}
		top = append(top, row)
	}

	for _, row := range rows {
		if len(top)+len(more) >= total {
			break
		}

		if _, ok := picked[row.Key()]; ok {
			continue
		}

		more = append(more, row)
	}

	return top, more
}

// SplitRanked режет уже отранжированный список: первые topSize в верх, остальное в more
func SplitRanked(ranked []model.DigestRow, topSize int) (top, more []model.DigestRow) {
	if topSize < 0 {
		topSize = 0
	}
	if topSize > len(ranked) {
		topSize = len(ranked)
	}

	return ranked[:topSize:topSize], ranked[topSize:]
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sourceKey(row model.DigestRow) string {
	return strings.ToLower(strings.TrimSpace(row.Source))
}

func uniqueByKey(rows []model.DigestRow) []model.DigestRow {
	return lo.UniqBy(rows, func(row model.DigestRow) string {
		return row.Key()
	})
}

func capRows(rows []model.DigestRow, limit int) []model.DigestRow {
	if limit < 0 {
		limit = 0
	}
	if len(rows) > limit {
		return rows[:limit]
	}

	return rows
}
