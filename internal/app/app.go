// Package app wires the components together: database pool, migrations,
// repositories, services, the HTTP server, the optional Telegram bot and
// the scheduler.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/game-backend/internal/bot"
	"serotonyl.ru/game-backend/internal/config"
	"serotonyl.ru/game-backend/internal/db/postgres"
	"serotonyl.ru/game-backend/internal/features/bonus"
	"serotonyl.ru/game-backend/internal/features/users"
	"serotonyl.ru/game-backend/internal/jobs"
	"serotonyl.ru/game-backend/internal/metrics"
	"serotonyl.ru/game-backend/internal/server"
)

// App holds the running components.
type App struct {
	DB        *pgxpool.Pool
	HTTP      *server.Server
	Limiter   *server.IPRateLimiter
	Bot       *bot.Bot // nil without TELEGRAM_BOT_TOKEN
	Scheduler *jobs.Scheduler
}

// New builds the application. The order matters: each step uses the previous ones.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Database ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := postgres.Migrate(ctx, pool, postgres.Migrations); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}

	// === 2. Metrics ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// === 3. Services ===
	bonusService := bonus.NewService(bonus.NewPgStore(pool), cfg, m)
	userService := users.NewService(users.NewRepository(pool))

	// === 4. HTTP ===
	limiter := server.NewIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	router := server.NewRouter(cfg, server.Deps{
		Routes:   []server.Routes{bonus.NewHandler(bonusService)},
		DB:       pool,
		Metrics:  m,
		Gatherer: reg,
		Limiter:  limiter,
	})
	application := &App{DB: pool, HTTP: server.New(cfg, router), Limiter: limiter}

	// === 5. Telegram (optional) ===
	var (
		reminders jobs.Reminders
		sendFunc  func(telegramID int64, text string) error
	)
	if cfg.TelegramEnabled() {
		var opts []telego.BotOption
		if cfg.AppEnv == "development" {
			opts = append(opts, telego.WithDefaultDebugLogger())
		}
		api, err := telego.NewBot(cfg.TelegramBotToken, opts...)
		if err != nil {
			application.Close()
			return nil, fmt.Errorf("telegram API: %w", err)
		}
		me, err := api.GetMe(ctx)
		if err != nil {
			application.Close()
			return nil, fmt.Errorf("telegram getMe: %w", err)
		}
		log.Infof("Authorized as @%s", me.Username)

		sender := bot.NewSender(api)
		handler := bonus.NewTelegramHandler(bonusService, userService, sender)
		application.Bot = bot.New(api, cfg, sender, handler, m, me.Username)

		reminders = bonusService
		sendFunc = sender.SendMessageToUser
	} else {
		log.Info("TELEGRAM_BOT_TOKEN is empty, bot and reminders disabled")
	}

	// === 6. Scheduler ===
	application.Scheduler = jobs.NewScheduler(cfg, reminders, sendFunc,
		func() metrics.PoolStats { return pool.Stat() }, m)

	return application, nil
}

// Run starts every component and blocks until ctx is done or the HTTP
// server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Scheduler.Start(ctx); err != nil {
		return err
	}
	defer a.Scheduler.Stop()

	var wg sync.WaitGroup
	if a.Bot != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.Bot.Start(ctx); err != nil {
				log.WithError(err).Error("Bot stopped with error")
			}
		}()
	}

	err := a.HTTP.Run(ctx)
	cancel()
	wg.Wait()
	return err
}

// Close stops the rate limiter sweeper and releases the database pool.
func (a *App) Close() {
	a.Limiter.Close()
	a.DB.Close()
}
