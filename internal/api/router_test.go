package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/intel-feed/internal/model"
	"github.com/kovalyov-valentin/intel-feed/internal/scheduler"
)

type fakeSources struct {
	sources []model.Source
	err     error
}

func (f fakeSources) Sources(context.Context) ([]model.Source, error) { return f.sources, f.err }
func (f fakeSources) Count(context.Context) (int, error)             { return len(f.sources), f.err }

type fakeCategories struct {
	categories []model.Category
}

func (f fakeCategories) Categories(context.Context) ([]model.Category, error) {
	return f.categories, nil
}
func (f fakeCategories) Count(context.Context) (int, error) { return len(f.categories), nil }

type fakeArticles struct {
	articles []model.Article
	filter   model.ArticleFilter
}

func (f *fakeArticles) Latest(_ context.Context, filter model.ArticleFilter) ([]model.Article, error) {
	f.filter = filter
	return f.articles, nil
}

func (f *fakeArticles) Count(context.Context) (int, error) { return len(f.articles), nil }

type fakeTrigger struct {
	err   error
	calls int
	state scheduler.State
	last  scheduler.RunInfo
}

func (f *fakeTrigger) TriggerFetch(context.Context) error {
	f.calls++
	return f.err
}
func (f *fakeTrigger) State() scheduler.State      { return f.state }
func (f *fakeTrigger) LastRun() scheduler.RunInfo { return f.last }

func int64Ptr(v int64) *int64 { return &v }

type fixture struct {
	engine   *gin.Engine
	articles *fakeArticles
	trigger  *fakeTrigger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	published := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("MSK", 3*60*60))

	articles := &fakeArticles{articles: []model.Article{
		{
			ID:          1,
			Title:       "Critical exploit",
			Link:        "https://example.com/1",
			SourceID:    int64Ptr(7),
			SourceName:  "CISA",
			CategoryID:  int64Ptr(2),
			Tags:        []string{"CRITICAL", "EXPLOIT"},
			Severity:    10,
			PublishedAt: published,
		},
		{
			ID:          2,
			Title:       "Orphan",
			Link:        "https://example.com/2",
			Summary:     "text",
			SourceName:  "Gone",
			Severity:    0,
			PublishedAt: published,
		},
	}}
	trigger := &fakeTrigger{state: scheduler.StateIdle}

	s := NewServer(Deps{
		Sources: fakeSources{sources: []model.Source{
			{ID: 7, Name: "CISA", FeedURL: "https://cisa.example/rss", Color: "#ff3333", CategoryID: int64Ptr(2), Enabled: true},
		}},
		Categories: fakeCategories{categories: []model.Category{
			{ID: 2, Name: "Cybersecurity", Color: "#ff0000", Enabled: true},
		}},
		Articles:     articles,
		ArticleCount: articles,
		Fetch:        trigger,
	})

	return fixture{engine: NewEngine(s), articles: articles, trigger: trigger}
}

func (f fixture) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, "idle", body["scheduler"])
}

func TestStats(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"categories":1,"sources":1,"articles":2}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/dashboard-stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_articles":2,"total_sources":1}`, rec.Body.String())
}

func TestListArticles(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/articles")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []articleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)

	assert.Equal(t, "Cybersecurity", body[0].Category)
	assert.Equal(t, "#ff3333", body[0].SourceColor)
	assert.Equal(t, "high", body[0].Severity)
	assert.Equal(t, "No summary", body[0].Summary)
	assert.Equal(t, time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC), body[0].PublishedAt)

	// Источник удален, категория неизвестна
	assert.Equal(t, "Unknown", body[1].Category)
	assert.Equal(t, "#55ff55", body[1].SourceColor)
	assert.Equal(t, "low", body[1].Severity)
	assert.Equal(t, []string{}, body[1].Tags)

	assert.Equal(t, 50, f.articles.filter.Limit)
	assert.Nil(t, f.articles.filter.CategoryID)
}

func TestListArticles_Filter(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/articles?category=2&limit=10000&min_severity=42")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, f.articles.filter.CategoryID)
	assert.Equal(t, int64(2), *f.articles.filter.CategoryID)
	assert.Equal(t, 500, f.articles.filter.Limit)
	assert.Equal(t, 10, f.articles.filter.MinSeverity)
}

func TestListArticles_BadQuery(t *testing.T) {
	f := newFixture(t)

	for _, q := range []string{"category=abc", "limit=x", "min_severity=high"} {
		rec := f.do(t, http.MethodGet, "/api/articles?"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestListSourcesAndCategories(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/sources")
	require.Equal(t, http.StatusOK, rec.Code)

	var sources []sourceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sources))
	require.Len(t, sources, 1)
	assert.Equal(t, "https://cisa.example/rss", sources[0].URL)
	require.NotNil(t, sources[0].Category)
	assert.Equal(t, int64(2), *sources[0].Category)

	rec = f.do(t, http.MethodGet, "/api/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":2,"name":"Cybersecurity","color":"#ff0000","enabled":true}]`, rec.Body.String())
}

func TestTriggerFetch(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/api/fetch")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"success","message":"RSS feeds fetched"}`, rec.Body.String())
		assert.Equal(t, 1, f.trigger.calls)
	})

	t.Run("already running", func(t *testing.T) {
		f := newFixture(t)
		f.trigger.err = scheduler.ErrAlreadyRunning

		rec := f.do(t, http.MethodPost, "/api/fetch")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("shutting down", func(t *testing.T) {
		f := newFixture(t)
		f.trigger.err = scheduler.ErrStopped

		rec := f.do(t, http.MethodPost, "/api/fetch")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("failure", func(t *testing.T) {
		f := newFixture(t)
		f.trigger.err = errors.New("db is down")

		rec := f.do(t, http.MethodPost, "/api/fetch")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "db is down")
	})
}

func TestInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s := NewServer(Deps{
		Sources:      fakeSources{err: errors.New("boom")},
		Categories:   fakeCategories{},
		Articles:     &fakeArticles{},
		ArticleCount: &fakeArticles{},
		Fetch:        &fakeTrigger{},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	rec := httptest.NewRecorder()
	NewEngine(s).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}
