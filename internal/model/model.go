package model

import (
	"strings"
	"time"
)

// Статья как элемент ленты (кандидат, который еще не сохранен)
type Item struct {
	// Название статьи
	Title string
	// Ссылка, она же ключ дедупликации
	Link string
	// Дата публикации в источнике. nil, если в ленте нет настоящей даты
	PublishedAt *time.Time
	// Краткая выжимка, уже очищенная от html
	Summary string
	// Имя источника, если лента его явно указала
	SourceName string
	// Картинка статьи, если удалось найти
	ImageURL *string
}

// Типы лент, которые умеем разбирать
const (
	SourceKindRSS    = "rss"
	SourceKindGofeed = "gofeed"
)

// Модель источника
type Source struct {
	ID int64
	// Имя
	Name string
	// Урл откуда забираем данные
	FeedURL string
	// Каким парсером разбирать ленту
	Kind string
	// Время создания
	CreatedAt time.Time
}

// Модель статьи, которая хранится в news_articles
type Article struct {
	ID        int64
	CompanyID *int64
	Headline  string
	Source    string
	// Уникален среди всех статей
	URL string
	// Время публикации в источнике (или время загрузки), всегда UTC
	PublishedAt time.Time
	ImageURL    *string
}

// Результат попытки сохранить статью
type StoreResult int

const (
	// Статьи с таким url не было, вставили
	StoreInserted StoreResult = iota
	// Статья уже была без картинки, дописали только image_url
	StoreImageRefreshed
	// Статья уже была, ничего не меняли
	StoreUnchanged
)

func (r StoreResult) String() string {
	switch r {
	case StoreInserted:
		return "inserted"
	case StoreImageRefreshed:
		return "image_refreshed"
	default:
		return "unchanged"
	}
}

// Типы событий
const (
	EventFunding          = "funding"
	EventLaunch           = "launch"
	EventRevenueMilestone = "revenue_milestone"
	EventOther            = "other"
	// Так помечаем обычные новости в дайджесте
	KindNews = "news"
)

// Заглушки, если у новости нет компании или компания не нашлась
const (
	UnknownCompany = "Unknown company"
	GeneralSector  = "General"
)

// Строка дайджеста. Все, что нужно чтобы отрисовать строку без дополнительных запросов
type DigestRow struct {
	Kind    string
	Title   string
	Company string
	Sector  string
	Source  string
	Date    time.Time
	Score   float64

	URL      *string
	ImageURL *string
	Amount   *float64
	Currency *string
}

// Стабильный ключ строки. Используем его вместо сравнения самих строк
func (r DigestRow) Key() string {
	if r.URL != nil && *r.URL != "" {
		return *r.URL
	}

	return strings.Join([]string{r.Kind, r.Title, r.Company}, "|")
}

// Выборка для дайджеста: верхний блок и остальные заголовки
type Selection struct {
	Date   time.Time
	Policy string
	Top    []DigestRow
	More   []DigestRow
}

func (s Selection) Len() int {
	return len(s.Top) + len(s.More)
}

func (s Selection) Empty() bool {
	return s.Len() == 0
}
