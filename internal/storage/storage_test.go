package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/intel-feed/internal/model"
)

func TestLatestQuery(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		query, _ := latestQuery(model.ArticleFilter{})

		assert.NotContains(t, query, "WHERE")
		assert.Contains(t, query, "FROM articles")
		assert.Contains(t, query, "ORDER BY published_at DESC, id DESC")
		assert.Contains(t, query, "LIMIT")
	})

	t.Run("category and severity", func(t *testing.T) {
		category := int64(3)
		query, args := latestQuery(model.ArticleFilter{CategoryID: &category, MinSeverity: 7, Limit: 20})

		assert.Contains(t, query, "category_id = $1")
		assert.Contains(t, query, "severity >= $2")
		require.GreaterOrEqual(t, len(args), 2)
		assert.Equal(t, int64(3), args[0])
		assert.Equal(t, 7, args[1])
	})
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultArticlesLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultArticlesLimit, NormalizeLimit(-5))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxArticlesLimit, NormalizeLimit(100000))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(errors.Join(errors.New("insert"), &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestDBArticleToModel(t *testing.T) {
	a := dbArticle{ID: 1, Tags: "CRITICAL,EXPLOIT", Hash: "abc "}.toModel()
	assert.Equal(t, []string{"CRITICAL", "EXPLOIT"}, a.Tags)
	assert.Equal(t, "abc", a.Hash)

	empty := dbArticle{}.toModel()
	assert.Nil(t, empty.Tags)
}

type staticLister []model.Article

func (s staticLister) Latest(context.Context, model.ArticleFilter) ([]model.Article, error) {
	return s, nil
}

func TestCachedArticles_Disabled(t *testing.T) {
	c := NewCachedArticles(staticLister{{ID: 1}}, nil, 0)

	got, err := c.Latest(context.Background(), model.ArticleFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCacheKey(t *testing.T) {
	category := int64(5)

	assert.Equal(t, "articles:latest:all:0:50", cacheKey(model.ArticleFilter{}))
	assert.Equal(t, "articles:latest:5:7:10", cacheKey(model.ArticleFilter{CategoryID: &category, MinSeverity: 7, Limit: 10}))
}
