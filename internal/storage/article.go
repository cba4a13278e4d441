package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/intel-feed/internal/model"
)

const (
	DefaultArticlesLimit = 50
	MaxArticlesLimit     = 500
)

var articleColumns = []string{
	"id", "title", "link", "summary", "source_id", "source_name", "category_id",
	"tags", "severity", "hash", "published_at", "fetched_at",
}

type ArticlePostgresStorage struct {
	db *sqlx.DB
}

func NewArticleStorage(db *sqlx.DB) *ArticlePostgresStorage {
	return &ArticlePostgresStorage{db: db}
}

// Статья по хэшу. nil, nil если такой статьи нет
func (s *ArticlePostgresStorage) ArticleByHash(ctx context.Context, hash string) (*model.Article, error) {
	var a dbArticle
	query := `SELECT ` + strings.Join(articleColumns, ", ") + ` FROM articles WHERE hash = $1`
	if err := s.db.GetContext(ctx, &a, query, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get article by hash: %w", err)
	}

	article := a.toModel()
	return &article, nil
}

// Сохраняем статью и возвращаем ее с присвоенным id.
// Если статья с таким хэшем уже есть, возвращаем ErrDuplicate
func (s *ArticlePostgresStorage) Store(ctx context.Context, article model.Article) (model.Article, error) {
	if article.FetchedAt.IsZero() {
		article.FetchedAt = time.Now().UTC()
	}

	err := s.db.QueryRowxContext(
		ctx,
		`INSERT INTO articles (title, link, summary, source_id, source_name, category_id, tags, severity, hash, published_at, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		article.Title,
		article.Link,
		article.Summary,
		article.SourceID,
		article.SourceName,
		article.CategoryID,
		strings.Join(article.Tags, ","),
		article.Severity,
		article.Hash,
		article.PublishedAt,
		article.FetchedAt,
	).Scan(&article.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Article{}, ErrDuplicate
		}
		return model.Article{}, fmt.Errorf("insert article: %w", err)
	}

	return article, nil
}

// Последние статьи, свежие сверху
func (s *ArticlePostgresStorage) Latest(ctx context.Context, filter model.ArticleFilter) ([]model.Article, error) {
	query, args := latestQuery(filter)

	var articles []dbArticle
	if err := s.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("select latest articles: %w", err)
	}

	return lo.Map(articles, func(a dbArticle, _ int) model.Article {
		return a.toModel()
	}), nil
}

func (s *ArticlePostgresStorage) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM articles`); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}

	return n, nil
}

func latestQuery(filter model.ArticleFilter) (string, []interface{}) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(articleColumns...).From("articles")

	if filter.CategoryID != nil {
		sb.Where(sb.Equal("category_id", *filter.CategoryID))
	}
	if filter.MinSeverity > 0 {
		sb.Where(sb.GreaterEqualThan("severity", filter.MinSeverity))
	}

	sb.OrderBy("published_at DESC", "id DESC")
	sb.Limit(NormalizeLimit(filter.Limit))

	return sb.Build()
}

// Лимит по умолчанию и потолок для выборки
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultArticlesLimit
	case limit > MaxArticlesLimit:
		return MaxArticlesLimit
	default:
		return limit
	}
}

type dbArticle struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Link        string    `db:"link"`
	Summary     string    `db:"summary"`
	SourceID    *int64    `db:"source_id"`
	SourceName  string    `db:"source_name"`
	CategoryID  *int64    `db:"category_id"`
	Tags        string    `db:"tags"`
	Severity    int       `db:"severity"`
	Hash        string    `db:"hash"`
	PublishedAt time.Time `db:"published_at"`
	FetchedAt   time.Time `db:"fetched_at"`
}

func (a dbArticle) toModel() model.Article {
	var tags []string
	if a.Tags != "" {
		tags = strings.Split(a.Tags, ",")
	}

	return model.Article{
		ID:          a.ID,
		Title:       a.Title,
		Link:        a.Link,
		Summary:     a.Summary,
		SourceID:    a.SourceID,
		SourceName:  a.SourceName,
		CategoryID:  a.CategoryID,
		Tags:        tags,
		Severity:    a.Severity,
		Hash:        strings.TrimSpace(a.Hash),
		PublishedAt: a.PublishedAt,
		FetchedAt:   a.FetchedAt,
	}
}
