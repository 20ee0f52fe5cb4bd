package source

import (
	"strings"
	"time"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// Запись ленты в одном виде для обоих парсеров.
// Стратегии ниже работают только с ней и ничего не знают про конкретную библиотеку.
type Entry struct {
	Title     string
	Summary   string
	Link      string
	Source    string
	Published *time.Time
	// media:content
	MediaContent []Media
	// media:thumbnail
	MediaThumbnails []string
	// <image> внутри item
	Image      string
	Enclosures []Enclosure
}

type Media struct {
	URL    string
	Type   string
	Medium string
}

type Enclosure struct {
	URL  string
	Type string
}

// Стратегия поиска картинки. Пустая строка значит "не нашла, пробуем следующую"
type ImageStrategy func(e Entry) string

// Порядок важен: берем первую найденную картинку
func DefaultImageStrategies() []ImageStrategy {
	return []ImageStrategy{
		MediaContentImage,
		MediaThumbnailImage,
		ItemImage,
		EnclosureImage,
		SummaryImage,
	}
}

func MediaContentImage(e Entry) string {
	for _, m := range e.MediaContent {
		if m.URL == "" {
			continue
		}
		if m.Medium == "image" || strings.HasPrefix(m.Type, "image/") || (m.Medium == "" && m.Type == "") {
			return m.URL
		}
	}

	return ""
}

func MediaThumbnailImage(e Entry) string {
	for _, u := range e.MediaThumbnails {
		if u != "" {
			return u
		}
	}

	return ""
}

func ItemImage(e Entry) string {
	return e.Image
}

func EnclosureImage(e Entry) string {
	for _, enc := range e.Enclosures {
		if enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}

	return ""
}

// Многие ленты кладут картинку прямо в html описания
func SummaryImage(e Entry) string {
	return firstImage(e.Summary)
}

func pickImage(e Entry, strategies []ImageStrategy) string {
	for _, strategy := range strategies {
		if u := strings.TrimSpace(strategy(e)); u != "" {
			return u
		}
	}

	return ""
}

// Собираем кандидата из записи. Пустые заголовок и ссылку не отбрасываем здесь,
// это решает fetcher.
func toItem(e Entry, strategies []ImageStrategy) model.Item {
	item := model.Item{
		Title:      strings.TrimSpace(e.Title),
		Link:       strings.TrimSpace(e.Link),
		Summary:    plainText(e.Summary),
		SourceName: strings.TrimSpace(e.Source),
	}

	if e.Published != nil && !e.Published.IsZero() {
		published := e.Published.UTC()
		item.PublishedAt = &published
	}

	if u := pickImage(e, strategies); u != "" {
		item.ImageURL = &u
	}

	return item
}
