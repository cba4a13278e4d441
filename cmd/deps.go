package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/intel-feed/internal/config"
	"github.com/kovalyov-valentin/intel-feed/internal/publisher"
	"github.com/kovalyov-valentin/intel-feed/internal/storage"
)

const dbConnectTimeout = time.Minute

// Внешние зависимости процесса. Необязательные равны nil, если не настроены
type deps struct {
	db         *sqlx.DB
	articles   *storage.ArticlePostgresStorage
	sources    *storage.SourcePostgresStorage
	categories *storage.CategoryPostgresStorage

	redis     *redis.Client
	publisher *publisher.RabbitMQ
	bot       *tgbotapi.BotAPI
}

func openDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	db, err := connectDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := storage.Migrate(cfg.DatabaseDSN); err != nil {
		_ = db.Close()
		return nil, err
	}

	d := &deps{
		db:         db,
		articles:   storage.NewArticleStorage(db),
		sources:    storage.NewSourcePostgresStorage(db),
		categories: storage.NewCategoryPostgresStorage(db),
	}

	if cfg.RedisAddr != "" {
		d.redis = storage.NewRedisClient(ctx, cfg.RedisAddr)
	}

	if cfg.AMQPURL != "" {
		p, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.AMQPURL,
			Exchange:   cfg.AMQPExchange,
			RoutingKey: cfg.AMQPRoutingKey,
			QueueName:  cfg.AMQPQueue,
		})
		if err != nil {
			// Очередь необязательна, без нее статьи все равно сохраняются
			log.WithError(err).Warn("rabbitmq is unavailable, publishing disabled")
		} else {
			d.publisher = p
		}
	}

	if cfg.TelegramBotToken != "" {
		botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("create telegram bot: %w", err)
		}
		d.bot = botAPI
	}

	return d, nil
}

// БД в docker-compose часто поднимается позже сервиса, поэтому пробуем подключиться с backoff
func connectDB(ctx context.Context, dsn string) (*sqlx.DB, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = dbConnectTimeout

	var db *sqlx.DB

	err := backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
			if err != nil {
				return err
			}
			db = conn
			return nil
		},
		backoff.WithContext(b, ctx),
		func(err error, next time.Duration) {
			log.WithError(err).WithField("retry_in", next).Warn("database is not ready")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return db, nil
}

func (d *deps) close() {
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			log.WithError(err).Warn("close rabbitmq")
		}
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.WithError(err).Warn("close redis")
		}
	}
	if err := d.db.Close(); err != nil {
		log.WithError(err).Warn("close database")
	}
}

func setupLogging(cfg config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	switch cfg.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	return nil
}
