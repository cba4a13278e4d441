//go:build integration

package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kovalyov-valentin/intel-feed/internal/model"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB

	sources    *SourcePostgresStorage
	categories *CategoryPostgresStorage
	articles   *ArticlePostgresStorage
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("intel_feed"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.Require().NoError(Migrate(dsn))
	// Повторный прогон ничего не ломает
	s.Require().NoError(Migrate(dsn))

	db, err := sqlx.Connect("postgres", dsn)
	s.Require().NoError(err)
	s.db = db

	s.sources = NewSourcePostgresStorage(db)
	s.categories = NewCategoryPostgresStorage(db)
	s.articles = NewArticleStorage(db)
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM articles")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM sources")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM categories")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) article(hash string, sourceID *int64, published time.Time) model.Article {
	return model.Article{
		Title:       "title " + hash,
		Link:        "https://example.com/" + hash,
		SourceID:    sourceID,
		SourceName:  "Test",
		Tags:        []string{"BREACH"},
		Severity:    8,
		Hash:        hash,
		PublishedAt: published,
		FetchedAt:   time.Now().UTC(),
	}
}

func (s *PostgresIntegrationSuite) TestSources_CRUD() {
	catID, err := s.categories.AddCategory(s.ctx, model.Category{Name: "OSINT", Color: "#00ff00", Enabled: true})
	s.Require().NoError(err)

	id, err := s.sources.Add(s.ctx, model.Source{Name: "Feed", FeedURL: "https://a.example.com/rss", CategoryID: &catID, Enabled: true})
	s.Require().NoError(err)

	_, err = s.sources.Add(s.ctx, model.Source{Name: "Again", FeedURL: "https://a.example.com/rss", Enabled: true})
	s.ErrorIs(err, ErrDuplicate)

	got, err := s.sources.SourceByURL(s.ctx, "https://a.example.com/rss")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(id, got.ID)
	s.Equal(model.DefaultColor, got.Color)
	s.Equal(catID, *got.CategoryID)

	missing, err := s.sources.SourceByURL(s.ctx, "https://missing.example.com")
	s.NoError(err)
	s.Nil(missing)

	_, err = s.sources.SourceByID(s.ctx, id+1000)
	s.ErrorIs(err, ErrNotFound)

	s.NoError(s.sources.SetEnabled(s.ctx, id, false))
	enabled, err := s.sources.EnabledSources(s.ctx)
	s.NoError(err)
	s.Empty(enabled)

	s.ErrorIs(s.sources.SetEnabled(s.ctx, id+1000, true), ErrNotFound)
}

func (s *PostgresIntegrationSuite) TestEnabledSources_RespectsCategory() {
	catID, err := s.categories.AddCategory(s.ctx, model.Category{Name: "Science", Enabled: true})
	s.Require().NoError(err)

	_, err = s.sources.Add(s.ctx, model.Source{Name: "In category", FeedURL: "https://c.example.com", CategoryID: &catID, Enabled: true})
	s.Require().NoError(err)
	_, err = s.sources.Add(s.ctx, model.Source{Name: "No category", FeedURL: "https://n.example.com", Enabled: true})
	s.Require().NoError(err)

	s.Require().NoError(s.categories.SetEnabled(s.ctx, catID, false))

	enabled, err := s.sources.EnabledSources(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(enabled, 1)
	s.Equal("No category", enabled[0].Name)
}

func (s *PostgresIntegrationSuite) TestCategories() {
	id, err := s.categories.AddCategory(s.ctx, model.Category{Name: "AI/ML", Enabled: true})
	s.Require().NoError(err)

	_, err = s.categories.AddCategory(s.ctx, model.Category{Name: "AI/ML"})
	s.ErrorIs(err, ErrDuplicate)

	s.NoError(s.categories.SetColor(s.ctx, id, "#dd00ff"))

	c, err := s.categories.CategoryByName(s.ctx, "AI/ML")
	s.Require().NoError(err)
	s.Equal("#dd00ff", c.Color)

	none, err := s.categories.CategoryByName(s.ctx, "Nope")
	s.NoError(err)
	s.Nil(none)

	n, err := s.categories.Count(s.ctx)
	s.NoError(err)
	s.Equal(1, n)
}

func (s *PostgresIntegrationSuite) TestArticles_StoreAndDedup() {
	srcID, err := s.sources.Add(s.ctx, model.Source{Name: "Test", FeedURL: "https://t.example.com", Enabled: true})
	s.Require().NoError(err)

	now := time.Now().UTC().Truncate(time.Second)

	stored, err := s.articles.Store(s.ctx, s.article("h1", &srcID, now))
	s.Require().NoError(err)
	s.NotZero(stored.ID)

	_, err = s.articles.Store(s.ctx, s.article("h1", &srcID, now))
	s.ErrorIs(err, ErrDuplicate)

	got, err := s.articles.ArticleByHash(s.ctx, "h1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(stored.ID, got.ID)
	s.Equal([]string{"BREACH"}, got.Tags)

	missing, err := s.articles.ArticleByHash(s.ctx, "nope")
	s.NoError(err)
	s.Nil(missing)
}

func (s *PostgresIntegrationSuite) TestArticles_ConcurrentInsertsOneWins() {
	now := time.Now().UTC()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		okCnt int
		dups  int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.articles.Store(s.ctx, s.article("same", nil, now))

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				okCnt++
			} else if s.ErrorIs(err, ErrDuplicate) {
				dups++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, okCnt)
	s.Equal(7, dups)
}

func (s *PostgresIntegrationSuite) TestArticles_LatestAndSourceDelete() {
	srcID, err := s.sources.Add(s.ctx, model.Source{Name: "Test", FeedURL: "https://t.example.com", Enabled: true})
	s.Require().NoError(err)

	base := time.Now().UTC().Truncate(time.Second)
	for i, h := range []string{"old", "mid", "new"} {
		a := s.article(h, &srcID, base.Add(time.Duration(i)*time.Hour))
		a.Severity = i * 4
		_, err := s.articles.Store(s.ctx, a)
		s.Require().NoError(err)
	}

	latest, err := s.articles.Latest(s.ctx, model.ArticleFilter{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(latest, 2)
	s.Equal("new", latest[0].Hash)
	s.Equal("mid", latest[1].Hash)

	severe, err := s.articles.Latest(s.ctx, model.ArticleFilter{MinSeverity: 8})
	s.Require().NoError(err)
	s.Require().Len(severe, 1)
	s.Equal("new", severe[0].Hash)

	s.Require().NoError(s.sources.Delete(s.ctx, srcID))

	kept, err := s.articles.Latest(s.ctx, model.ArticleFilter{})
	s.Require().NoError(err)
	s.Len(kept, 3)
	for _, a := range kept {
		s.Nil(a.SourceID)
		s.Equal("Test", a.SourceName)
	}
}
