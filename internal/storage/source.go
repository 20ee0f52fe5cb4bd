package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// Источники, добавленные через бота. Те, что в конфиге, сюда не пишем
type SourcePostgresStorage struct {
	db *sqlx.DB
}

func NewSourcePostgresStorage(db *sqlx.DB) *SourcePostgresStorage {
	return &SourcePostgresStorage{db: db}
}

func (s *SourcePostgresStorage) Sources(ctx context.Context) ([]model.Source, error) {
	var sources []dbSource
	if err := s.db.SelectContext(
		ctx,
		&sources,
		`SELECT id, name, feed_url, kind, created_at FROM sources ORDER BY id`,
	); err != nil {
		return nil, err
	}

	return lo.Map(sources, func(source dbSource, _ int) model.Source {
		return model.Source(source)
	}), nil
}

func (s *SourcePostgresStorage) SourceByID(ctx context.Context, id int64) (*model.Source, error) {
	var source dbSource
	if err := s.db.GetContext(
		ctx,
		&source,
		`SELECT id, name, feed_url, kind, created_at FROM sources WHERE id = $1`,
		id,
	); err != nil {
		return nil, err
	}

	return (*model.Source)(&source), nil
}

// Add добавляет источник. Повторное добавление той же ленты обновляет имя и тип и возвращает тот же id
func (s *SourcePostgresStorage) Add(ctx context.Context, source model.Source) (int64, error) {
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now().UTC()
	}
	if source.Kind == "" {
		source.Kind = model.SourceKindGofeed
	}

	var id int64
	if err := s.db.QueryRowxContext(
		ctx,
		`INSERT INTO sources (name, feed_url, kind, created_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (feed_url) DO UPDATE SET name = EXCLUDED.name, kind = EXCLUDED.kind
RETURNING id`,
		source.Name,
		source.FeedURL,
		source.Kind,
		source.CreatedAt,
	).Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

func (s *SourcePostgresStorage) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = $1`, id); err != nil {
		return err
	}

	return nil
}

// Внутренняя модель для работы с БД, чтобы правильно мапить его на колонки в таблице
type dbSource struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	FeedURL   string    `db:"feed_url"`
	Kind      string    `db:"kind"`
	CreatedAt time.Time `db:"created_at"`
}
