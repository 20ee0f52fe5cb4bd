package source

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// plainText убирает html разметку из описания и схлопывает пробелы
func plainText(src string) string {
	if !strings.ContainsAny(src, "<&") {
		return strings.Join(strings.Fields(src), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return strings.Join(strings.Fields(src), " ")
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// firstImage возвращает src первой картинки в html фрагменте
func firstImage(src string) string {
	if !strings.Contains(src, "<img") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return ""
	}

	var found string
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("src"); ok && strings.TrimSpace(v) != "" {
			found = strings.TrimSpace(v)
			return false
		}
		return true
	})

	return found
}
