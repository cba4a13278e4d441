package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/intel-feed/internal/model"
)

const sourceColumns = `s.id, s.name, s.feed_url, s.color, s.category_id, s.enabled, s.created_at`

// Подключение к БД
type SourcePostgresStorage struct {
	db *sqlx.DB
}

func NewSourcePostgresStorage(db *sqlx.DB) *SourcePostgresStorage {
	return &SourcePostgresStorage{db: db}
}

// Метод для получения списка источников
func (s *SourcePostgresStorage) Sources(ctx context.Context) ([]model.Source, error) {
	var sources []dbSource
	if err := s.db.SelectContext(ctx, &sources, `SELECT `+sourceColumns+` FROM sources s ORDER BY s.id`); err != nil {
		return nil, fmt.Errorf("select sources: %w", err)
	}

	return lo.Map(sources, func(source dbSource, _ int) model.Source {
		return model.Source(source)
	}), nil
}

// Источники, которые надо опрашивать: включен сам источник и его категория (если она есть)
func (s *SourcePostgresStorage) EnabledSources(ctx context.Context) ([]model.Source, error) {
	var sources []dbSource
	if err := s.db.SelectContext(ctx, &sources, `
		SELECT `+sourceColumns+`
		FROM sources s
		LEFT JOIN categories c ON c.id = s.category_id
		WHERE s.enabled AND (c.id IS NULL OR c.enabled)
		ORDER BY s.id`,
	); err != nil {
		return nil, fmt.Errorf("select enabled sources: %w", err)
	}

	return lo.Map(sources, func(source dbSource, _ int) model.Source {
		return model.Source(source)
	}), nil
}

// Метод для получения источника по его id
func (s *SourcePostgresStorage) SourceByID(ctx context.Context, id int64) (*model.Source, error) {
	var source dbSource
	if err := s.db.GetContext(ctx, &source, `SELECT `+sourceColumns+` FROM sources s WHERE s.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get source %d: %w", id, err)
	}

	return (*model.Source)(&source), nil
}

// Источник по адресу ленты. nil, если такого нет
func (s *SourcePostgresStorage) SourceByURL(ctx context.Context, url string) (*model.Source, error) {
	var source dbSource
	if err := s.db.GetContext(ctx, &source, `SELECT `+sourceColumns+` FROM sources s WHERE s.feed_url = $1`, url); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get source by url: %w", err)
	}

	return (*model.Source)(&source), nil
}

// Метод для добавления источника
func (s *SourcePostgresStorage) Add(ctx context.Context, source model.Source) (int64, error) {
	if source.Color == "" {
		source.Color = model.DefaultColor
	}
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now().UTC()
	}

	var id int64

	row := s.db.QueryRowxContext(
		ctx,
		`INSERT INTO sources (name, feed_url, color, category_id, enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		source.Name,
		source.FeedURL,
		source.Color,
		source.CategoryID,
		source.Enabled,
		source.CreatedAt,
	)

	if err := row.Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert source: %w", err)
	}

	return id, nil
}

// Включить или выключить источник
func (s *SourcePostgresStorage) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sources SET enabled = $1 WHERE id = $2`, enabled, id)
	if err != nil {
		return fmt.Errorf("update source %d: %w", id, err)
	}

	return expectAffected(res)
}

// Метод для удаления источника. Статьи остаются, у них обнуляется source_id
func (s *SourcePostgresStorage) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete source %d: %w", id, err)
	}

	return expectAffected(res)
}

func (s *SourcePostgresStorage) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sources`); err != nil {
		return 0, fmt.Errorf("count sources: %w", err)
	}

	return n, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// Внутренняя модель для работы с БД, чтобы правильно мапить его на колонки в таблице
type dbSource struct {
	ID         int64     `db:"id"`
	Name       string    `db:"name"`
	FeedURL    string    `db:"feed_url"`
	Color      string    `db:"color"`
	CategoryID *int64    `db:"category_id"`
	Enabled    bool      `db:"enabled"`
	CreatedAt  time.Time `db:"created_at"`
}
