package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kovalyov-valentin/intel-feed/internal/api"
	"github.com/kovalyov-valentin/intel-feed/internal/bot"
	"github.com/kovalyov-valentin/intel-feed/internal/bot/middleware"
	"github.com/kovalyov-valentin/intel-feed/internal/botkit"
	"github.com/kovalyov-valentin/intel-feed/internal/broadcast"
	"github.com/kovalyov-valentin/intel-feed/internal/config"
	"github.com/kovalyov-valentin/intel-feed/internal/fetcher"
	"github.com/kovalyov-valentin/intel-feed/internal/notifier"
	"github.com/kovalyov-valentin/intel-feed/internal/scheduler"
	"github.com/kovalyov-valentin/intel-feed/internal/seed"
	"github.com/kovalyov-valentin/intel-feed/internal/source"
	"github.com/kovalyov-valentin/intel-feed/internal/storage"
)

const shutdownTimeout = 30 * time.Second

func rootApp() *cli.App {
	return &cli.App{
		Name:  "intel-feed",
		Usage: "Threat intelligence feed aggregator",
		Description: `Polls a list of RSS/Atom feeds on a schedule, scores every new
		article by severity keywords and stores it in PostgreSQL.

		New articles are pushed to websocket subscribers, optionally to a
		RabbitMQ exchange and, when important enough, to a Telegram channel.

		Settings come from config.hcl and IFD_* environment variables, e.g.:

		database_dsn => IFD_DATABASE_DSN
		fetch_interval => IFD_FETCH_INTERVAL=10m
		`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "config",
				Usage:   "HCL config files, later ones override earlier",
				EnvVars: []string{"IFD_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			return setupLogging(cfg)
		},
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			seedCmd(),
			fetchCmd(),
		},
		// По умолчанию поднимаем сервис целиком
		Action: runServe,
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	if files := c.StringSlice("config"); len(files) > 0 {
		return config.Load(files...)
	}

	cfg := config.Get()
	return cfg, cfg.Validate()
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:        "serve",
		Usage:       "Run scheduler, HTTP API and live feed",
		Description: `Migrates and seeds the database, then polls feeds on schedule until interrupted.`,
		Action:      runServe,
	}
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run database migrations",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			return storage.Migrate(cfg.DatabaseDSN)
		},
	}
}

func seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert default categories and sources",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			d, err := openDeps(c.Context, cfg)
			if err != nil {
				return err
			}
			defer d.close()

			return seedSources(c.Context, cfg, d)
		},
	}
}

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Run a single fetch cycle and exit",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := openDeps(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.close()

			f := newFetcher(cfg, d, nil)

			ctx, cycleCancel := context.WithTimeout(ctx, cfg.CycleTimeout)
			defer cycleCancel()

			err = f.Fetch(ctx)
			f.Wait()

			return err
		},
	}
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, err := openDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.close()

	if err := seedSources(ctx, cfg, d); err != nil {
		return err
	}

	hub := broadcast.NewHub(cfg.BroadcastBuffer)
	f := newFetcher(cfg, d, hub)

	sched, err := scheduler.New(f, scheduler.Config{
		Interval:     cfg.FetchInterval,
		CycleTimeout: cfg.CycleTimeout,
		RunOnStart:   cfg.FetchOnStart,
	})
	if err != nil {
		return err
	}

	server := api.NewServer(api.Deps{
		Sources:      d.sources,
		Categories:   d.categories,
		Articles:     storage.NewCachedArticles(d.articles, d.redis, cfg.RedisCacheTTL),
		ArticleCount: d.articles,
		Fetch:        sched,
		WS:           hub.ServeWS,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewEngine(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("starting http server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if d.bot != nil {
		newsBot := newBot(cfg, d, sched)
		g.Go(func() error {
			if err := newsBot.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("telegram bot: %w", err)
			}
			log.Info("bot stopped")
			return nil
		})
	}

	sched.Start()

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http server shutdown")
		}
		if err := sched.Stop(shutdownCtx); err != nil {
			log.WithError(err).Warn("scheduler did not stop in time")
		}
		// Дожидаемся уведомлений, которые уже в пути
		f.Wait()

		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("intel-feed stopped")
	return nil
}

func seedSources(ctx context.Context, cfg config.Config, d *deps) error {
	seeds, err := cfg.Seeds()
	if err != nil {
		return err
	}

	_, err = seed.New(d.sources, d.categories, config.CategoryColors).Seed(ctx, seeds)
	return err
}

func newFetcher(cfg config.Config, d *deps, hub *broadcast.Hub) *fetcher.Fetcher {
	opts := make([]fetcher.Option, 0, 3)
	if hub != nil {
		opts = append(opts, fetcher.WithBroadcaster(hub))
	}
	if d.bot != nil && cfg.TelegramChannelID != 0 {
		opts = append(opts, fetcher.WithNotifier(notifier.New(d.bot, cfg.TelegramChannelID)))
	}
	if d.publisher != nil {
		opts = append(opts, fetcher.WithPublisher(d.publisher))
	}

	return fetcher.NewFetcher(
		d.articles,
		d.sources,
		fetcher.Config{
			Concurrency:       cfg.FetchConcurrency,
			FilterKeywords:    cfg.FilterKeywords,
			NotifyMinSeverity: cfg.NotifyMinSeverity,
			Source: source.Config{
				MaxItems: cfg.MaxArticlesPerFeed,
				Timeout:  cfg.FetchTimeout,
			},
		},
		opts...,
	)
}

// Команды бота. Все, что меняет данные, доступно только админам
func newBot(cfg config.Config, d *deps, sched *scheduler.Scheduler) *botkit.Bot {
	adminChat := cfg.TelegramAdminChatID
	if adminChat == 0 {
		adminChat = cfg.TelegramChannelID
	}
	adminOnly := func(view botkit.ViewFunc) botkit.ViewFunc {
		return middleware.AdminOnly(adminChat, view)
	}

	seeder := seed.New(d.sources, d.categories, config.CategoryColors)

	newsBot := botkit.New(d.bot)
	newsBot.RegisterCmdView("start", bot.ViewCmdStart())
	newsBot.RegisterCmdView("listsources", bot.ViewCmdListSources(d.sources))
	newsBot.RegisterCmdView("listcategories", bot.ViewCmdListCategories(d.categories))
	newsBot.RegisterCmdView("addcategory", adminOnly(bot.ViewCmdAddCategory(d.categories)))
	newsBot.RegisterCmdView("enablecategory", adminOnly(bot.ViewCmdSetCategoryEnabled(d.categories, true)))
	newsBot.RegisterCmdView("disablecategory", adminOnly(bot.ViewCmdSetCategoryEnabled(d.categories, false)))
	newsBot.RegisterCmdView("addsource", adminOnly(bot.ViewCmdAddSource(seeder, d.sources)))
	newsBot.RegisterCmdView("enablesource", adminOnly(bot.ViewCmdSetSourceEnabled(d.sources, true)))
	newsBot.RegisterCmdView("disablesource", adminOnly(bot.ViewCmdSetSourceEnabled(d.sources, false)))
	newsBot.RegisterCmdView("deletesource", adminOnly(bot.ViewCmdDeleteSource(d.sources)))
	newsBot.RegisterCmdView("fetch", adminOnly(bot.ViewCmdFetch(sched)))

	return newsBot
}
