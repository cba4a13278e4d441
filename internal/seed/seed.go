package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/intel-feed/internal/model"
	"github.com/kovalyov-valentin/intel-feed/internal/storage"
)

type SourceStorage interface {
	SourceByURL(ctx context.Context, url string) (*model.Source, error)
	Add(ctx context.Context, source model.Source) (int64, error)
}

type CategoryStorage interface {
	CategoryByName(ctx context.Context, name string) (*model.Category, error)
	AddCategory(ctx context.Context, category model.Category) (int64, error)
	SetColor(ctx context.Context, id int64, color string) error
}

type Result struct {
	CategoriesAdded     int
	CategoriesRepainted int
	SourcesAdded        int
	SourcesSkipped      int
}

// Начальное заполнение источников и категорий. Повторный запуск ничего не дублирует
type Seeder struct {
	sources    SourceStorage
	categories CategoryStorage
	// Таблица цветов категорий
	colors map[string]string
}

func New(sources SourceStorage, categories CategoryStorage, colors map[string]string) *Seeder {
	return &Seeder{
		sources:    sources,
		categories: categories,
		colors:     colors,
	}
}

func (s *Seeder) Seed(ctx context.Context, seeds []model.SourceSeed) (Result, error) {
	var res Result

	categoryIDs, err := s.seedCategories(ctx, seeds, &res)
	if err != nil {
		return res, err
	}

	for _, seed := range seeds {
		url := strings.TrimSpace(seed.URL)

		existing, err := s.sources.SourceByURL(ctx, url)
		if err != nil {
			return res, fmt.Errorf("lookup source %s: %w", url, err)
		}
		if existing != nil {
			res.SourcesSkipped++
			continue
		}

		source := model.Source{
			Name:    seed.Name,
			FeedURL: url,
			Color:   seed.Color,
			Enabled: true,
		}
		if id, ok := categoryIDs[seed.Category]; ok {
			source.CategoryID = &id
		}
		if source.Color == "" {
			source.Color = s.color(seed.Category)
		}

		if _, err := s.sources.Add(ctx, source); err != nil {
			// Кто-то успел добавить этот url раньше нас
			if errors.Is(err, storage.ErrDuplicate) {
				res.SourcesSkipped++
				continue
			}
			return res, fmt.Errorf("add source %s: %w", url, err)
		}
		res.SourcesAdded++
	}

	log.WithFields(log.Fields{
		"categories_added":     res.CategoriesAdded,
		"categories_repainted": res.CategoriesRepainted,
		"sources_added":        res.SourcesAdded,
		"sources_skipped":      res.SourcesSkipped,
	}).Info("seeding finished")

	return res, nil
}

// Создаем недостающие категории и перекрашиваем те, что остались белыми
func (s *Seeder) seedCategories(ctx context.Context, seeds []model.SourceSeed, res *Result) (map[string]int64, error) {
	ids := make(map[string]int64)

	for _, seed := range seeds {
		name := seed.Category
		if name == "" {
			continue
		}
		if _, done := ids[name]; done {
			continue
		}

		color, known := s.colors[name]
		if !known {
			log.WithField("category", name).Warn("category is not in the color table")
			color = model.DefaultColor
		}

		existing, err := s.categories.CategoryByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("lookup category %q: %w", name, err)
		}

		if existing == nil {
			id, err := s.categories.AddCategory(ctx, model.Category{Name: name, Color: color, Enabled: true})
			if err != nil {
				return nil, fmt.Errorf("add category %q: %w", name, err)
			}
			ids[name] = id
			res.CategoriesAdded++
			continue
		}

		ids[name] = existing.ID

		if existing.Color == model.DefaultColor && color != model.DefaultColor {
			if err := s.categories.SetColor(ctx, existing.ID, color); err != nil {
				return nil, fmt.Errorf("repaint category %q: %w", name, err)
			}
			res.CategoriesRepainted++
		}
	}

	return ids, nil
}

func (s *Seeder) color(category string) string {
	if color, ok := s.colors[category]; ok {
		return color
	}

	return model.DefaultColor
}
