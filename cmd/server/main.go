package main // Entry point package

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/iliyamo/film-catalog/internal/config"
    "github.com/iliyamo/film-catalog/internal/database"
    "github.com/iliyamo/film-catalog/internal/handler"
    "github.com/iliyamo/film-catalog/internal/logging"
    "github.com/iliyamo/film-catalog/internal/media"
    "github.com/iliyamo/film-catalog/internal/middleware"
    "github.com/iliyamo/film-catalog/internal/repository"
    "github.com/iliyamo/film-catalog/internal/router"
    queue_publisher "github.com/iliyamo/film-catalog/internal/service"
    "github.com/iliyamo/film-catalog/internal/view"
)

func main() {
    config.LoadDotEnv()
    cfg := config.Load()
    logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    db, err := database.Open(database.Options{
        Driver: cfg.DBDriver,
        User:   cfg.DBUser,
        Pass:   cfg.DBPass,
        Host:   cfg.DBHost,
        Port:   cfg.DBPort,
        Name:   cfg.DBName,
        Path:   cfg.DBPath,
    })
    if err != nil {
        logging.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database connection failed")
    }
    defer db.Close()
    if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
        logging.Fatal().Err(err).Msg("migration failed")
    }

    store, err := media.NewStore(cfg.MediaRoot)
    if err != nil {
        logging.Fatal().Err(err).Msg("media root unavailable")
    }
    renderer, err := view.New()
    if err != nil {
        logging.Fatal().Err(err).Msg("templates failed to parse")
    }

    // Redis only backs the rate limiter; without it requests pass through.
    rdb := config.NewRedisClient()
    if rdb == nil {
        logging.Warn().Msg("redis unavailable, rate limiting disabled")
    } else {
        defer rdb.Close()
    }

    events := queue_publisher.New(cfg.RabbitURL, cfg.AuditEnabled)
    auth := handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))

    e := router.New(router.Deps{
        DB:           db,
        Catalog:      handler.NewCatalogHandler(db, store, events),
        Auth:         auth,
        Renderer:     renderer,
        JWTSecret:    cfg.JWTSecret,
        MediaRoot:    store.Root,
        LoginLimiter: middleware.NewTokenBucket(config.LoadLoginRateLimitConfig(), rdb),
        AdminLimiter: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
        CSRF:         true,
    })

    addr := ":" + cfg.Port
    go func() {
        logging.Info().Str("addr", addr).Str("env", cfg.Env).Str("db", cfg.DBDriver).Bool("audit", cfg.AuditEnabled).Msg("listening")
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            logging.Fatal().Err(err).Msg("server failed")
        }
    }()

    <-ctx.Done()
    logging.Info().Msg("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        logging.Error().Err(err).Msg("graceful shutdown failed")
    }
}
