package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/intel-feed/internal/model"
	"github.com/kovalyov-valentin/intel-feed/internal/storage"
)

type memStore struct {
	sources    []model.Source
	categories []model.Category
}

func (m *memStore) SourceByURL(_ context.Context, url string) (*model.Source, error) {
	for _, s := range m.sources {
		if s.FeedURL == url {
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memStore) Add(_ context.Context, s model.Source) (int64, error) {
	for _, existing := range m.sources {
		if existing.FeedURL == s.FeedURL {
			return 0, storage.ErrDuplicate
		}
	}
	s.ID = int64(len(m.sources) + 1)
	m.sources = append(m.sources, s)
	return s.ID, nil
}

func (m *memStore) CategoryByName(_ context.Context, name string) (*model.Category, error) {
	for _, c := range m.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) AddCategory(_ context.Context, c model.Category) (int64, error) {
	c.ID = int64(len(m.categories) + 1)
	m.categories = append(m.categories, c)
	return c.ID, nil
}

func (m *memStore) SetColor(_ context.Context, id int64, color string) error {
	for i := range m.categories {
		if m.categories[i].ID == id {
			m.categories[i].Color = color
			return nil
		}
	}
	return storage.ErrNotFound
}

var colors = map[string]string{
	"Cybersecurity": "#ff3333",
	"Science":       "#00aaff",
}

var seeds = []model.SourceSeed{
	{Name: "Krebs", URL: "https://krebsonsecurity.com/feed/", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "NASA", URL: "https://www.nasa.gov/news-release/feed/", Category: "Science"},
	{Name: "Odd", URL: "https://odd.example.com/rss", Category: "Gardening"},
	{Name: "Loose", URL: "https://loose.example.com/rss"},
}

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	s := New(store, store, colors)

	res, err := s.Seed(ctx, seeds)
	require.NoError(t, err)
	assert.Equal(t, Result{CategoriesAdded: 3, SourcesAdded: 4}, res)

	res, err = s.Seed(ctx, seeds)
	require.NoError(t, err)
	assert.Equal(t, Result{SourcesSkipped: 4}, res)

	assert.Len(t, store.sources, 4)
	assert.Len(t, store.categories, 3)
}

func TestSeed_ColorsAndCategories(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}

	_, err := New(store, store, colors).Seed(ctx, seeds)
	require.NoError(t, err)

	nasa, _ := store.SourceByURL(ctx, "https://www.nasa.gov/news-release/feed/")
	require.NotNil(t, nasa)
	// Свой цвет не задан, берем цвет категории
	assert.Equal(t, "#00aaff", nasa.Color)
	require.NotNil(t, nasa.CategoryID)

	odd, _ := store.CategoryByName(ctx, "Gardening")
	require.NotNil(t, odd)
	assert.Equal(t, model.DefaultColor, odd.Color)

	loose, _ := store.SourceByURL(ctx, "https://loose.example.com/rss")
	require.NotNil(t, loose)
	assert.Nil(t, loose.CategoryID)
	assert.True(t, loose.Enabled)
}

func TestSeed_RepaintsWhiteCategory(t *testing.T) {
	ctx := context.Background()
	store := &memStore{categories: []model.Category{
		{ID: 1, Name: "Cybersecurity", Color: model.DefaultColor, Enabled: true},
		{ID: 2, Name: "Science", Color: "#123456", Enabled: true},
	}}

	res, err := New(store, store, colors).Seed(ctx, seeds[:2])
	require.NoError(t, err)

	assert.Equal(t, 1, res.CategoriesRepainted)
	assert.Equal(t, "#ff3333", store.categories[0].Color)
	// Уже покрашенную категорию не трогаем
	assert.Equal(t, "#123456", store.categories[1].Color)
}
