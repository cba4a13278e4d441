package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/intel-feed/internal/model"
)

const DefaultCacheTTL = time.Minute

type ArticleLister interface {
	Latest(ctx context.Context, filter model.ArticleFilter) ([]model.Article, error)
}

// Кэш выборок статей в redis.
// Инвалидации нет, полагаемся на короткий TTL
type CachedArticles struct {
	next  ArticleLister
	redis *redis.Client
	ttl   time.Duration
}

// Если client == nil, кэш выключен и запросы идут прямо в next
func NewCachedArticles(next ArticleLister, client *redis.Client, ttl time.Duration) *CachedArticles {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &CachedArticles{next: next, redis: client, ttl: ttl}
}

func (c *CachedArticles) Latest(ctx context.Context, filter model.ArticleFilter) ([]model.Article, error) {
	if c.redis == nil {
		return c.next.Latest(ctx, filter)
	}

	key := cacheKey(filter)

	if bs, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var cached []model.Article
		if err := json.Unmarshal(bs, &cached); err == nil {
			return cached, nil
		}
	}

	articles, err := c.next.Latest(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(articles) > 0 {
		if bs, err := json.Marshal(articles); err == nil {
			if err := c.redis.Set(ctx, key, bs, c.ttl).Err(); err != nil {
				log.WithError(err).Warn("write articles cache")
			}
		}
	}

	return articles, nil
}

func cacheKey(filter model.ArticleFilter) string {
	category := "all"
	if filter.CategoryID != nil {
		category = fmt.Sprint(*filter.CategoryID)
	}

	return fmt.Sprintf("articles:latest:%s:%d:%d", category, filter.MinSeverity, NormalizeLimit(filter.Limit))
}

func NewRedisClient(ctx context.Context, addr string) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis ping failed")
	}

	return client
}
