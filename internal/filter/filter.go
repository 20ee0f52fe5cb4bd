// Package filter решает, подходит ли статья по ключевым словам.
package filter

import (
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"github.com/samber/lo"
)

// IsRelevant проверяет, встречается ли хотя бы одно ключевое слово в заголовке или выжимке.
// Регистр не важен, ищем подстроку. Пустой набор ключевых слов не пропускает ничего.
func IsRelevant(title, summary string, keywords []string) bool {
	var (
		lowerTitle   = strings.ToLower(title)
		lowerSummary = strings.ToLower(summary)
	)

	for _, keyword := range Normalize(keywords) {
		if strings.Contains(lowerTitle, keyword) || strings.Contains(lowerSummary, keyword) {
			return true
		}
	}

	return false
}

// Normalize приводит ключевые слова к нижнему регистру, выкидывает пустые и повторы.
// Результат отсортирован, чтобы порядок в конфиге ни на что не влиял.
func Normalize(keywords []string) []string {
	normalized := lo.Uniq(lo.FilterMap(keywords, func(keyword string, _ int) (string, bool) {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		return keyword, keyword != ""
	}))

	sort.Strings(normalized)

	return normalized
}

// Matcher то же самое, что IsRelevant, но автомат строится один раз на весь прогон.
// Можно использовать из нескольких горутин.
type Matcher struct {
	keywords []string
	matcher  *ahocorasick.Matcher
}

func NewMatcher(keywords []string) *Matcher {
	m := &Matcher{keywords: Normalize(keywords)}

	if len(m.keywords) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(m.keywords)
	}

	return m
}

func (m *Matcher) Match(title, summary string) bool {
	if m.matcher == nil {
		return false
	}

	return m.contains(title) || m.contains(summary)
}

func (m *Matcher) contains(text string) bool {
	if text == "" {
		return false
	}

	return len(m.matcher.MatchThreadSafe([]byte(strings.ToLower(text)))) > 0
}

// Keywords возвращает нормализованный список ключевых слов
func (m *Matcher) Keywords() []string {
	return append([]string(nil), m.keywords...)
}
