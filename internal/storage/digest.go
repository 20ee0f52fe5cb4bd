package storage

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// Чтение статей и событий за день для дайджеста
type DigestPostgresStorage struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewDigestStorage(db *sqlx.DB) *DigestPostgresStorage {
	return &DigestPostgresStorage{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// NewsForDate возвращает статьи, опубликованные в этот день (UTC), самые свежие первыми.
// Компания может отсутствовать, тогда подставляем заглушки.
func (s *DigestPostgresStorage) NewsForDate(ctx context.Context, day time.Time, limit uint64) ([]model.DigestRow, error) {
	start, end := dayBounds(day)

	builder := s.qb.
		Select(
			"n.headline",
			"n.source",
			"n.url",
			"n.published_at",
			"n.image_url",
			"c.name AS company_name",
			"c.sector AS company_sector",
		).
		From("news_articles n").
		LeftJoin("companies c ON c.id = n.company_id").
		Where(sq.GtOrEq{"n.published_at": start}).
		Where(sq.Lt{"n.published_at": end}).
		OrderBy("n.published_at DESC", "n.url ASC")

	query, args, err := withLimit(builder, limit).ToSql()
	if err != nil {
		return nil, err
	}

	var rows []dbNewsRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	return lo.Map(rows, func(r dbNewsRow, _ int) model.DigestRow {
		return r.toModel()
	}), nil
}

// EventsForDate возвращает события за день, самые важные первыми. limit 0 - без ограничения
func (s *DigestPostgresStorage) EventsForDate(ctx context.Context, day time.Time, limit uint64) ([]model.DigestRow, error) {
	start, _ := dayBounds(day)

	builder := s.qb.
		Select(
			"e.event_date",
			"e.event_type",
			"e.title",
			"e.amount",
			"e.currency",
			"e.source",
			"e.source_url",
			"COALESCE(e.score, 0) AS score",
			"c.name AS company_name",
			"c.sector AS company_sector",
		).
		From("events e").
		LeftJoin("companies c ON c.id = e.company_id").
		Where(sq.Eq{"e.event_date": start.Format(time.DateOnly)}).
		OrderBy("score DESC", "e.event_date DESC", "c.name ASC", "e.source_url ASC")

	query, args, err := withLimit(builder, limit).ToSql()
	if err != nil {
		return nil, err
	}

	var rows []dbEventRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	return lo.Map(rows, func(r dbEventRow, _ int) model.DigestRow {
		return r.toModel()
	}), nil
}

func withLimit(b sq.SelectBuilder, limit uint64) sq.SelectBuilder {
	if limit == 0 {
		return b
	}

	return b.Limit(limit)
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	return start, start.AddDate(0, 0, 1)
}

type dbNewsRow struct {
	Headline      string         `db:"headline"`
	Source        string         `db:"source"`
	URL           string         `db:"url"`
	PublishedAt   time.Time      `db:"published_at"`
	ImageURL      sql.NullString `db:"image_url"`
	CompanyName   sql.NullString `db:"company_name"`
	CompanySector sql.NullString `db:"company_sector"`
}

func (r dbNewsRow) toModel() model.DigestRow {
	url := r.URL

	return model.DigestRow{
		Kind:     model.KindNews,
		Title:    r.Headline,
		Company:  orDefault(r.CompanyName, model.UnknownCompany),
		Sector:   orDefault(r.CompanySector, model.GeneralSector),
		Source:   r.Source,
		Date:     r.PublishedAt.UTC(),
		URL:      &url,
		ImageURL: nullString(r.ImageURL),
	}
}

type dbEventRow struct {
	EventDate     time.Time       `db:"event_date"`
	EventType     string          `db:"event_type"`
	Title         string          `db:"title"`
	Amount        sql.NullFloat64 `db:"amount"`
	Currency      sql.NullString  `db:"currency"`
	Source        string          `db:"source"`
	SourceURL     sql.NullString  `db:"source_url"`
	Score         float64         `db:"score"`
	CompanyName   sql.NullString  `db:"company_name"`
	CompanySector sql.NullString  `db:"company_sector"`
}

func (r dbEventRow) toModel() model.DigestRow {
	return model.DigestRow{
		Kind:     r.EventType,
		Title:    r.Title,
		Company:  orDefault(r.CompanyName, model.UnknownCompany),
		Sector:   orDefault(r.CompanySector, model.GeneralSector),
		Source:   r.Source,
		Date:     r.EventDate.UTC(),
		Score:    r.Score,
		URL:      nullString(r.SourceURL),
		Amount:   nullFloat64(r.Amount),
		Currency: nullString(r.Currency),
	}
}

func orDefault(v sql.NullString, fallback string) string {
	if !v.Valid || v.String == "" {
		return fallback
	}

	return v.String
}
