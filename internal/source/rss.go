package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kovalyov-valentin/intel-feed/internal/model"
)

const (
	DefaultMaxItems = 10
	DefaultTimeout  = 20 * time.Second
	// Больше нам не нужно даже от очень длинной ленты
	maxBodyBytes = 8 << 20
	userAgent    = "intel-feed/1.0 (+rss poller)"
)

// Общие настройки для всех RSS клиентов
type Config struct {
	// Сколько записей забираем из ленты за один раз
	MaxItems int
	// Таймаут на один поход в ленту
	Timeout time.Duration
	// Можно подменить в тестах
	Client *http.Client
}

// RSS клиент.
type RSSSource struct {
	// URL откуда мы забираем данные
	URL        string
	SourceID   int64
	SourceName string

	client   *http.Client
	timeout  time.Duration
	maxItems int
}

// Конструктор, который из модели источника создает клиент для RSS ленты
func NewRSSSourceFromModel(m model.Source, cfg Config) RSSSource {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}

	return RSSSource{
		URL:        m.FeedURL,
		SourceID:   m.ID,
		SourceName: m.Name,
		client:     cfg.Client,
		timeout:    cfg.Timeout,
		maxItems:   cfg.MaxItems,
	}
}

// Fetch загружает ленту и возвращает не больше maxItems записей.
// Ошибка возвращается только если ленту не удалось скачать.
// Кривой документ ошибкой не считается: проблема попадает в FetchResult.ParseErr,
// а в Items остается все, что удалось вытащить
func (s RSSSource) Fetch(ctx context.Context) (model.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.loadFeed(ctx)
	if err != nil {
		return model.FetchResult{}, err
	}

	items, parseErr := parseFeed(data)
	if len(items) > s.maxItems {
		items = items[:s.maxItems]
	}

	for i := range items {
		items[i].SourceName = s.SourceName
	}

	return model.FetchResult{Items: items, ParseErr: parseErr}, nil
}

// Метод, который загружает сырые данные из источника
func (s RSSSource) loadFeed(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, application/feed+json, text/xml;q=0.9, */*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return data, nil
}

func (s RSSSource) ID() int64 {
	return s.SourceID
}

func (s RSSSource) Name() string {
	return s.SourceName
}
