package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/tomakado/containers/set"
	"golang.org/x/sync/errgroup"

	"github.com/kovalyov-valentin/intel-feed/internal/dedup"
	"github.com/kovalyov-valentin/intel-feed/internal/metrics"
	"github.com/kovalyov-valentin/intel-feed/internal/model"
	"github.com/kovalyov-valentin/intel-feed/internal/sanitize"
	"github.com/kovalyov-valentin/intel-feed/internal/severity"
	"github.com/kovalyov-valentin/intel-feed/internal/source"
	"github.com/kovalyov-valentin/intel-feed/internal/storage"
)

const (
	DefaultConcurrency       = 4
	DefaultNotifyMinSeverity = 7

	notifyTimeout  = 15 * time.Second
	maxNotifyInFly = 8
)

// Запись пропущена валидацией или фильтром
var errSkipped = errors.New("item skipped")

type Config struct {
	// Сколько источников опрашиваем одновременно
	Concurrency int
	// Фильтрация статей по ключевым словами
	FilterKeywords []string
	// Начиная с какой важности шлем уведомление
	NotifyMinSeverity int
	// Настройки RSS клиента
	Source source.Config
}

type Option func(*Fetcher)

func WithBroadcaster(b Broadcaster) Option {
	return func(f *Fetcher) { f.broadcaster = b }
}

func WithNotifier(n Notifier) Option {
	return func(f *Fetcher) { f.notifier = n }
}

func WithPublisher(p Publisher) Option {
	return func(f *Fetcher) { f.publisher = p }
}

// Подменяет создание клиента источника. Нужно в тестах
func WithSourceFactory(fn func(model.Source) Source) Option {
	return func(f *Fetcher) { f.newSource = fn }
}

// Структура сборщика
type Fetcher struct {
	// Хранилище статей
	articles ArticleStorage
	// Хранилище источников
	sources SourceProvider

	newSource   func(model.Source) Source
	broadcaster Broadcaster
	notifier    Notifier
	publisher   Publisher

	concurrency       int
	filterKeywords    []string
	notifyMinSeverity int

	locks     hashLocks
	notifySem chan struct{}
	notifyWG  sync.WaitGroup
	now       func() time.Time
}

func NewFetcher(articles ArticleStorage, sources SourceProvider, cfg Config, opts ...Option) *Fetcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.NotifyMinSeverity <= 0 {
		cfg.NotifyMinSeverity = DefaultNotifyMinSeverity
	}

	keywords := make([]string, 0, len(cfg.FilterKeywords))
	for _, kw := range cfg.FilterKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	f := &Fetcher{
		articles:          articles,
		sources:           sources,
		concurrency:       cfg.Concurrency,
		filterKeywords:    keywords,
		notifyMinSeverity: cfg.NotifyMinSeverity,
		notifySem:         make(chan struct{}, maxNotifyInFly),
		now:               time.Now,
	}

	srcCfg := cfg.Source
	f.newSource = func(m model.Source) Source {
		return source.NewRSSSourceFromModel(m, srcCfg)
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Один цикл по всем включенным источникам.
// Ошибка возвращается только если не удалось получить список источников
// или контекст отменили. Сломанный источник на остальные не влияет
func (f *Fetcher) Fetch(ctx context.Context) error {
	sources, err := f.sources.EnabledSources(ctx)
	if err != nil {
		return fmt.Errorf("load enabled sources: %w", err)
	}

	start := time.Now()

	var (
		mu    sync.Mutex
		total model.SourceStats
		g     errgroup.Group
	)
	g.SetLimit(f.concurrency)

	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			stats, err := f.FetchSource(ctx, src)
			if err != nil {
				log.WithFields(log.Fields{
					"source": src.Name,
					"url":    src.FeedURL,
				}).WithError(err).Warn("source skipped this cycle")
			}

			mu.Lock()
			total = total.Add(stats)
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	log.WithFields(log.Fields{
		"sources":    len(sources),
		"fetched":    total.Fetched,
		"new":        total.New,
		"duplicates": total.Duplicates,
		"skipped":    total.Skipped,
		"errors":     total.Errors,
		"took":       time.Since(start).Round(time.Millisecond),
	}).Info("fetch cycle finished")

	return ctx.Err()
}

// Забираем и обрабатываем один источник
func (f *Fetcher) FetchSource(ctx context.Context, src model.Source) (model.SourceStats, error) {
	var stats model.SourceStats

	logger := log.WithFields(log.Fields{"source": src.Name, "source_id": src.ID})

	res, err := f.newSource(src).Fetch(ctx)
	if err != nil {
		metrics.FeedFetches.WithLabelValues(metrics.OutcomeError).Inc()
		stats.Errors++
		return stats, fmt.Errorf("fetch %s: %w", src.FeedURL, err)
	}

	if res.ParseErr != nil {
		metrics.FeedFetches.WithLabelValues(metrics.OutcomeMalformed).Inc()
		logger.WithError(res.ParseErr).Warn("feed is malformed")
	} else {
		metrics.FeedFetches.WithLabelValues(metrics.OutcomeOK).Inc()
	}

	stats.Fetched = len(res.Items)
	fetchedAt := f.now().UTC()

	for _, item := range res.Items {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		err := f.processItem(ctx, src, item, fetchedAt)
		switch {
		case err == nil:
			stats.New++
		case errors.Is(err, errSkipped):
			stats.Skipped++
			metrics.EntriesSkipped.Inc()
		case errors.Is(err, storage.ErrDuplicate):
			stats.Duplicates++
			metrics.ArticlesDuplicate.Inc()
		default:
			stats.Errors++
			logger.WithError(err).Error("process item")
		}
	}

	return stats, nil
}

// Дождаться отправки уведомлений, которые еще в полете
func (f *Fetcher) Wait() {
	f.notifyWG.Wait()
}

func (f *Fetcher) processItem(ctx context.Context, src model.Source, item model.Item, fetchedAt time.Time) error {
	title := sanitize.Text(item.Title)
	link := strings.TrimSpace(item.Link)

	if title == "" || link == "" {
		return errSkipped
	}

	// Проверка item, может его нужно скипнуть
	if f.itemShouldBeSkipped(title, item.Categories) {
		log.WithFields(log.Fields{"source": src.Name, "title": title}).Debug("item filtered by keyword")
		return errSkipped
	}

	tags, score := severity.Classify(title)

	article := model.Article{
		Title:       title,
		Link:        link,
		Summary:     sanitize.Text(item.Summary),
		SourceID:    &src.ID,
		SourceName:  src.Name,
		CategoryID:  src.CategoryID,
		Tags:        tags,
		Severity:    score,
		Hash:        dedup.Hash(title, link),
		PublishedAt: item.Date(fetchedAt).UTC(),
		FetchedAt:   fetchedAt,
	}

	stored, err := f.storeOnce(ctx, article)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			log.WithFields(log.Fields{"source": src.Name, "hash": article.Hash}).Debug("duplicate article")
		}
		return err
	}

	metrics.ArticlesStored.Inc()
	log.WithFields(log.Fields{
		"source":   src.Name,
		"id":       stored.ID,
		"severity": stored.Severity,
	}).Info("new article")

	f.deliver(ctx, src, stored)

	return nil
}

// Проверка на дубль и вставка под локом на хэш.
// Уникальный индекс в БД все равно остается последней линией обороны
func (f *Fetcher) storeOnce(ctx context.Context, article model.Article) (model.Article, error) {
	unlock := f.locks.lock(article.Hash)
	defer unlock()

	existing, err := f.articles.ArticleByHash(ctx, article.Hash)
	if err != nil {
		return model.Article{}, fmt.Errorf("check hash: %w", err)
	}
	if existing != nil {
		return model.Article{}, storage.ErrDuplicate
	}

	stored, err := f.articles.Store(ctx, article)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return model.Article{}, err
		}
		return model.Article{}, fmt.Errorf("store article: %w", err)
	}

	return stored, nil
}

// Рассылаем сохраненную статью. Ошибки здесь на сохраненные данные не влияют
func (f *Fetcher) deliver(ctx context.Context, src model.Source, article model.Article) {
	if f.broadcaster != nil {
		f.broadcaster.Publish(model.ArticleEvent{
			ID:          article.ID,
			Source:      article.SourceName,
			SourceColor: src.Color,
			Title:       article.Title,
			Link:        article.Link,
			Tags:        lo.Ternary(article.Tags == nil, []string{}, article.Tags),
			Severity:    article.Severity,
			Timestamp:   article.PublishedAt,
			Category:    article.CategoryID,
		})
	}

	if f.notifier != nil && article.Severity >= f.notifyMinSeverity {
		f.notifyAsync(model.Alert{
			Title:      article.Title,
			Link:       article.Link,
			SourceName: article.SourceName,
			Severity:   article.Severity,
		})
	}

	if f.publisher != nil {
		if err := f.publisher.Publish(ctx, article); err != nil {
			log.WithFields(log.Fields{"id": article.ID}).WithError(err).Warn("publish article")
		}
	}
}

// Уведомления уходят в отдельных горутинах, чтобы медленный телеграм не тормозил цикл
func (f *Fetcher) notifyAsync(alert model.Alert) {
	select {
	case f.notifySem <- struct{}{}:
	default:
		log.WithFields(log.Fields{"title": alert.Title}).Warn("too many notifications in flight, alert dropped")
		return
	}

	f.notifyWG.Add(1)
	go func() {
		defer f.notifyWG.Done()
		defer func() { <-f.notifySem }()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := f.notifier.Notify(ctx, alert); err != nil {
			log.WithFields(log.Fields{"title": alert.Title}).WithError(err).Warn("send notification")
		}
	}()
}

// В этом методе проходимся по списку категорий, к которым относится эта статья и по title.
// Хотим выяснить есть ли ключевые слова на основе которых мы пропускаем эту статью
func (f *Fetcher) itemShouldBeSkipped(title string, categories []string) bool {
	if len(f.filterKeywords) == 0 {
		return false
	}

	lowered := make([]string, 0, len(categories))
	for _, c := range categories {
		lowered = append(lowered, strings.ToLower(c))
	}
	categoriesSet := set.New(lowered...)
	lowerTitle := strings.ToLower(title)

	for _, keyword := range f.filterKeywords {
		if categoriesSet.Contains(keyword) || strings.Contains(lowerTitle, keyword) {
			return true
		}
	}

	return false
}
