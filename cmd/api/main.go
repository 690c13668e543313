package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jeremyjsx/blog/internal/cache"
	"github.com/jeremyjsx/blog/internal/config"
	"github.com/jeremyjsx/blog/internal/events"
	"github.com/jeremyjsx/blog/internal/handlers"
	"github.com/jeremyjsx/blog/internal/posts"
	"github.com/jeremyjsx/blog/internal/web"
)

// backend is a post store that can also report its health.
type backend interface {
	posts.Repository
	posts.Pinger
}

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	db, closeDB, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer closeDB()
	logger.Info("store ready", "driver", cfg.StoreDriver)

	health := &handlers.HealthDeps{DB: db, RabbitMQURL: cfg.RabbitMQURL}

	var repo posts.Repository = db
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer rdb.Close()
		redisCache := cache.NewRedis(rdb)
		repo = posts.NewCachedRepository(db, redisCache, cfg.CacheTTL, logger)
		health.Cache = redisCache
		logger.Info("read cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("rabbitmq connect: %w", err)
		}
		defer p.Close()
		publisher = p
		logger.Info("event publishing enabled", "exchange", events.ExchangeName)
	}

	svc := posts.NewService(repo, publisher, logger)
	router := handlers.NewRouter(handlers.RouterDeps{
		Posts:          handlers.NewPostsHandler(svc, logger),
		Health:         handlers.Health(health),
		Static:         web.Handler(web.Static()),
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return server.Shutdown(shutCtx)
}

func openBackend(ctx context.Context, cfg *config.Config) (backend, func(), error) {
	switch cfg.StoreDriver {
	case "mongo":
		client, err := mongo.Connect(ctx, posts.MongoClientOptions(cfg.MongoURI))
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(shutCtx)
		}
		repo, err := posts.NewMongoRepository(ctx, client, posts.MongoDatabaseName(cfg.MongoURI))
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		return repo, closeFn, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required")
		}
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(45 * time.Second)
		repo, err := posts.NewPostgresRepository(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, func() { _ = db.Close() }, nil

	case "sqlite":
		repo, err := posts.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
