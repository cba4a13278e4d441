package fetcher

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/kovalyov-valentin/intel-feed/internal/model"
)

type ArticleStorage interface {
	// nil, nil если статьи с таким хэшем нет
	ArticleByHash(ctx context.Context, hash string) (*model.Article, error)
	Store(ctx context.Context, article model.Article) (model.Article, error)
}

type SourceProvider interface {
	EnabledSources(ctx context.Context) ([]model.Source, error)
}

// Интерфейс источника
type Source interface {
	ID() int64
	Name() string
	// Этот метод уже реализован у RSS источника
	Fetch(ctx context.Context) (model.FetchResult, error)
}

// Живая лента. Publish не должен блокироваться
type Broadcaster interface {
	Publish(event model.ArticleEvent)
}

type Notifier interface {
	Notify(ctx context.Context, alert model.Alert) error
}

// Экспорт новых статей во внешнюю очередь
type Publisher interface {
	Publish(ctx context.Context, article model.Article) error
}
