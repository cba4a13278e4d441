package model

import "time"

// Цвет по умолчанию для источников и категорий без своего цвета
const DefaultColor = "#ffffff"

// Элемент ленты в том виде, в котором его отдал источник
type Item struct {
	// Заголовок как есть, с разметкой
	Title string
	// Категории записи в ленте
	Categories []string
	Link       string
	// Краткое описание из ленты (summary/description)
	Summary string
	// Кандидаты на дату публикации в порядке приоритета.
	// Нулевое значение означает, что поле отсутствует или не распарсилось
	Published time.Time
	Updated   time.Time
	Created   time.Time
	// Имя источника
	SourceName string
}

// Дата записи: первая валидная из published/updated/created, иначе fallback
func (i Item) Date(fallback time.Time) time.Time {
	for _, t := range []time.Time{i.Published, i.Updated, i.Created} {
		if !t.IsZero() {
			return t
		}
	}

	return fallback
}

// Результат одного похода в ленту
type FetchResult struct {
	Items []Item
	// Мягкая ошибка разбора документа. Items при этом может быть и пустым, и нет
	ParseErr error
}

// Модель источника
type Source struct {
	ID      int64
	Name    string
	FeedURL string
	// Цвет для отображения, #rrggbb
	Color string
	// Категория может быть не назначена
	CategoryID *int64
	Enabled    bool
	CreatedAt  time.Time
}

// Тематическая группа источников
type Category struct {
	ID        int64
	Name      string
	Color     string
	Enabled   bool
	CreatedAt time.Time
}

// Модель статьи, которую мы храним у себя
type Article struct {
	ID          int64
	Title       string
	Link        string
	Summary     string
	SourceID    *int64
	SourceName  string
	CategoryID  *int64
	Tags        []string
	Severity    int
	Hash        string
	PublishedAt time.Time
	FetchedAt   time.Time
}

// Запись статического списка источников, из которого мы заполняем БД при старте
type SourceSeed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Color    string `yaml:"color"`
	Category string `yaml:"category"`
}

// То, что уходит подписчикам живой ленты
type ArticleEvent struct {
	ID          int64     `json:"id"`
	Source      string    `json:"source"`
	SourceColor string    `json:"source_color"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Tags        []string  `json:"tags"`
	Severity    int       `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
	Category    *int64    `json:"category"`
}

// Уведомление о важной статье
type Alert struct {
	Title      string
	Link       string
	SourceName string
	Severity   int
}

// Фильтр для выборки статей
type ArticleFilter struct {
	CategoryID  *int64
	MinSeverity int
	Limit       int
}

// Итоги обработки одного источника
type SourceStats struct {
	Fetched    int
	New        int
	Duplicates int
	Skipped    int
	Errors     int
}

func (s SourceStats) Add(o SourceStats) SourceStats {
	return SourceStats{
		Fetched:    s.Fetched + o.Fetched,
		New:        s.New + o.New,
		Duplicates: s.Duplicates + o.Duplicates,
		Skipped:    s.Skipped + o.Skipped,
		Errors:     s.Errors + o.Errors,
	}
}
