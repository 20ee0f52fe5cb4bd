package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// SQLSTATE unique_violation
const uniqueViolation = "23505"

// Одна вставка на статью. При конфликте по url трогаем только image_url,
// и только если раньше картинки не было, а теперь она появилась.
// xmax = 0 у строки, которую только что вставили.
const upsertArticleQuery = `INSERT INTO news_articles (company_id, headline, source, url, published_at, image_url)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (url) DO UPDATE SET image_url = EXCLUDED.image_url
WHERE news_articles.image_url IS NULL AND EXCLUDED.image_url IS NOT NULL
RETURNING (xmax = 0) AS inserted`

type ArticlePostgresStorage struct {
	db *sqlx.DB
}

func NewArticleStorage(db *sqlx.DB) *ArticlePostgresStorage {
	return &ArticlePostgresStorage{db: db}
}

// Session берет одно соединение на весь прогон. Закрыть его обязан вызывающий
func (s *ArticlePostgresStorage) Session(ctx context.Context) (*ArticleSession, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	return &ArticleSession{conn: conn}, nil
}

// Сессия сохранения статей поверх одного соединения.
// Каждая вставка - отдельная транзакция, поэтому уже сохраненное не откатывается.
type ArticleSession struct {
	conn *sqlx.Conn
}

func (s *ArticleSession) Store(ctx context.Context, article model.Article) (model.StoreResult, error) {
	var inserted bool

	err := s.conn.QueryRowxContext(
		ctx,
		upsertArticleQuery,
		article.CompanyID,
		article.Headline,
		article.Source,
		article.URL,
		article.PublishedAt.UTC(),
		article.ImageURL,
	).Scan(&inserted)

	switch {
	case err == nil && inserted:
		return model.StoreInserted, nil
	case err == nil:
		return model.StoreImageRefreshed, nil
	case errors.Is(err, sql.ErrNoRows):
		// Конфликт, и условие на image_url не выполнилось
		return model.StoreUnchanged, nil
	case isUniqueViolation(err):
		return model.StoreUnchanged, nil
	default:
		return model.StoreUnchanged, fmt.Errorf("store article %s: %w", article.URL, err)
	}
}

func (s *ArticleSession) Close() error {
	return s.conn.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Пустую строку считаем отсутствующим значением
func nullString(v sql.NullString) *string {
	if !v.Valid || v.String == "" {
		return nil
	}

	return &v.String
}

func nullFloat64(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}

	return &v.Float64
}
