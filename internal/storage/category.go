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

type CategoryPostgresStorage struct {
	db *sqlx.DB
}

func NewCategoryPostgresStorage(db *sqlx.DB) *CategoryPostgresStorage {
	return &CategoryPostgresStorage{db: db}
}

func (s *CategoryPostgresStorage) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []dbCategory
	if err := s.db.SelectContext(ctx, &categories, `SELECT id, name, color, enabled, created_at FROM categories ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}

	return lo.Map(categories, func(c dbCategory, _ int) model.Category {
		return model.Category(c)
	}), nil
}

// Категория по имени. nil, если такой нет
func (s *CategoryPostgresStorage) CategoryByName(ctx context.Context, name string) (*model.Category, error) {
	var c dbCategory
	if err := s.db.GetContext(ctx, &c, `SELECT id, name, color, enabled, created_at FROM categories WHERE name = $1`, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category %q: %w", name, err)
	}

	return (*model.Category)(&c), nil
}

func (s *CategoryPostgresStorage) AddCategory(ctx context.Context, category model.Category) (int64, error) {
	if category.Color == "" {
		category.Color = model.DefaultColor
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := s.db.QueryRowxContext(
		ctx,
		`INSERT INTO categories (name, color, enabled, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		category.Name,
		category.Color,
		category.Enabled,
		category.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert category: %w", err)
	}

	return id, nil
}

func (s *CategoryPostgresStorage) SetColor(ctx context.Context, id int64, color string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE categories SET color = $1 WHERE id = $2`, color, id)
	if err != nil {
		return fmt.Errorf("update category %d color: %w", id, err)
	}

	return expectAffected(res)
}

// Выключенная категория выключает и все свои источники
func (s *CategoryPostgresStorage) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE categories SET enabled = $1 WHERE id = $2`, enabled, id)
	if err != nil {
		return fmt.Errorf("update category %d: %w", id, err)
	}

	return expectAffected(res)
}

func (s *CategoryPostgresStorage) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories`); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}

	return n, nil
}

type dbCategory struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	Enabled   bool      `db:"enabled"`
	CreatedAt time.Time `db:"created_at"`
}
