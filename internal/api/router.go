package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/intel-feed/internal/metrics"
	"github.com/kovalyov-valentin/intel-feed/internal/model"
	"github.com/kovalyov-valentin/intel-feed/internal/scheduler"
	"github.com/kovalyov-valentin/intel-feed/internal/severity"
	"github.com/kovalyov-valentin/intel-feed/internal/storage"
)

const (
	serviceName = "intel-feed"

	defaultSourceColor = "#55ff55"
	unknownCategory    = "Unknown"
	noSummary          = "No summary"
)

type SourceReader interface {
	Sources(ctx context.Context) ([]model.Source, error)
	Count(ctx context.Context) (int, error)
}

type CategoryReader interface {
	Categories(ctx context.Context) ([]model.Category, error)
	Count(ctx context.Context) (int, error)
}

type ArticleReader interface {
	Latest(ctx context.Context, filter model.ArticleFilter) ([]model.Article, error)
}

type Counter interface {
	Count(ctx context.Context) (int, error)
}

type FetchTrigger interface {
	TriggerFetch(ctx context.Context) error
	State() scheduler.State
	LastRun() scheduler.RunInfo
}

type Server struct {
	sources    SourceReader
	categories CategoryReader
	articles   ArticleReader
	// Кэш не умеет считать, поэтому счетчик статей отдельно
	articleCount Counter
	fetch        FetchTrigger
	// Живая лента
	ws http.HandlerFunc
}

type Deps struct {
	Sources      SourceReader
	Categories   CategoryReader
	Articles     ArticleReader
	ArticleCount Counter
	Fetch        FetchTrigger
	WS           http.HandlerFunc
}

func NewServer(d Deps) *Server {
	return &Server{
		sources:      d.Sources,
		categories:   d.Categories,
		articles:     d.Articles,
		articleCount: d.ArticleCount,
		fetch:        d.Fetch,
		ws:           d.WS,
	}
}

func NewEngine(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	s.RegisterRoutes(r)

	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/stats", s.stats)
		api.GET("/dashboard-stats", s.dashboardStats)
		api.GET("/sources", s.listSources)
		api.GET("/categories", s.listCategories)
		api.GET("/articles", s.listArticles)
		api.POST("/fetch", s.triggerFetch)
	}

	if s.ws != nil {
		r.GET("/ws", gin.WrapF(s.ws))
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// Логируем каждый запрос вместе со временем ответа
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"route":   c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("Request")
	}
}

func (s *Server) health(c *gin.Context) {
	last := s.fetch.LastRun()

	lastRun := gin.H{
		"started_at":  nil,
		"duration_ms": last.Duration.Milliseconds(),
		"error":       nil,
	}
	if !last.StartedAt.IsZero() {
		lastRun["started_at"] = last.StartedAt
	}
	if last.Err != nil {
		lastRun["error"] = last.Err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"service":   serviceName,
		"scheduler": s.fetch.State(),
		"last_run":  lastRun,
	})
}

func (s *Server) stats(c *gin.Context) {
	ctx := c.Request.Context()

	categories, err := s.categories.Count(ctx)
	if err != nil {
		internalError(c, err)
		return
	}
	sources, err := s.sources.Count(ctx)
	if err != nil {
		internalError(c, err)
		return
	}
	articles, err := s.articleCount.Count(ctx)
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"sources":    sources,
		"articles":   articles,
	})
}

func (s *Server) dashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	articles, err := s.articleCount.Count(ctx)
	if err != nil {
		internalError(c, err)
		return
	}
	sources, err := s.sources.Count(ctx)
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_articles": articles,
		"total_sources":  sources,
	})
}

type sourceResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Category  *int64    `json:"category"`
	Color     string    `json:"color"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) listSources(c *gin.Context) {
	sources, err := s.sources.Sources(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, lo.Map(sources, func(src model.Source, _ int) sourceResponse {
		return sourceResponse{
			ID:        src.ID,
			Name:      src.Name,
			URL:       src.FeedURL,
			Category:  src.CategoryID,
			Color:     src.Color,
			Enabled:   src.Enabled,
			CreatedAt: src.CreatedAt.UTC(),
		}
	}))
}

type categoryResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Enabled bool   `json:"enabled"`
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.categories.Categories(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, lo.Map(categories, func(cat model.Category, _ int) categoryResponse {
		return categoryResponse{ID: cat.ID, Name: cat.Name, Color: cat.Color, Enabled: cat.Enabled}
	}))
}

type articleResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	Summary       string    `json:"summary"`
	Source        string    `json:"source"`
	SourceColor   string    `json:"source_color"`
	Category      string    `json:"category"`
	CategoryID    *int64    `json:"category_id"`
	PublishedAt   time.Time `json:"published_at"`
	Severity      string    `json:"severity"`
	SeverityScore int       `json:"severity_score"`
	Tags          []string  `json:"tags"`
}

func (s *Server) listArticles(c *gin.Context) {
	ctx := c.Request.Context()

	filter, err := parseArticleFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "detail": err.Error()})
		return
	}

	articles, err := s.articles.Latest(ctx, filter)
	if err != nil {
		internalError(c, err)
		return
	}

	categories, err := s.categories.Categories(ctx)
	if err != nil {
		internalError(c, err)
		return
	}
	sources, err := s.sources.Sources(ctx)
	if err != nil {
		internalError(c, err)
		return
	}

	categoryNames := lo.SliceToMap(categories, func(cat model.Category) (int64, string) {
		return cat.ID, cat.Name
	})
	sourceColors := lo.SliceToMap(sources, func(src model.Source) (int64, string) {
		return src.ID, src.Color
	})

	c.JSON(http.StatusOK, lo.Map(articles, func(a model.Article, _ int) articleResponse {
		resp := articleResponse{
			ID:            a.ID,
			Title:         a.Title,
			URL:           a.Link,
			Summary:       a.Summary,
			Source:        a.SourceName,
			SourceColor:   defaultSourceColor,
			Category:      unknownCategory,
			CategoryID:    a.CategoryID,
			PublishedAt:   a.PublishedAt.UTC(),
			Severity:      severity.Label(a.Severity),
			SeverityScore: a.Severity,
			Tags:          lo.Ternary(a.Tags == nil, []string{}, a.Tags),
		}
		if resp.Summary == "" {
			resp.Summary = noSummary
		}
		if a.SourceID != nil {
			if color, ok := sourceColors[*a.SourceID]; ok {
				resp.SourceColor = color
			}
		}
		if a.CategoryID != nil {
			if name, ok := categoryNames[*a.CategoryID]; ok {
				resp.Category = name
			}
		}
		return resp
	}))
}

func parseArticleFilter(c *gin.Context) (model.ArticleFilter, error) {
	var filter model.ArticleFilter

	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, errors.New("category must be a numeric id")
		}
		filter.CategoryID = &id
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return filter, errors.New("limit must be a number")
		}
		filter.Limit = limit
	}
	filter.Limit = storage.NormalizeLimit(filter.Limit)

	if raw := c.Query("min_severity"); raw != "" {
		score, err := strconv.Atoi(raw)
		if err != nil {
			return filter, errors.New("min_severity must be a number")
		}
		filter.MinSeverity = severity.Clamp(score)
	}

	return filter, nil
}

// Ручной запуск цикла. Отвечаем, когда цикл закончился.
// Отключение клиента цикл не обрывает, планировщик отвязывает его от контекста запроса
func (s *Server) triggerFetch(c *gin.Context) {
	err := s.fetch.TriggerFetch(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "RSS feeds fetched"})
	case errors.Is(err, scheduler.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{"status": "error", "detail": err.Error()})
	case errors.Is(err, scheduler.ErrStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "detail": err.Error()})
	default:
		log.WithError(err).Error("manual fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "detail": err.Error()})
	}
}

func internalError(c *gin.Context, err error) {
	log.WithField("route", c.FullPath()).WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "detail": "internal server error"})
}
