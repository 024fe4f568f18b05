package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-vidtube/internal/cache"
	"go-vidtube/internal/config"
	"go-vidtube/internal/database"
	"go-vidtube/internal/event"
	"go-vidtube/internal/handler"
	"go-vidtube/internal/logger"
	"go-vidtube/internal/media"
	"go-vidtube/internal/middleware"
	"go-vidtube/internal/repository"
	"go-vidtube/internal/router"
	"go-vidtube/internal/service"
	"go-vidtube/internal/storage"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel))

	a := &App{}
	ok := false
	defer func() {
		if !ok {
			a.cleanup()
		}
	}()

	staging, err := storage.New(cfg.UploadTempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload staging: %w", err)
	}

	ctx := context.Background()

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	userRepo := repository.NewUserRepository(db.Pool)
	tokenRepo := repository.NewTokenRepository(db.Pool)
	videoRepo := repository.NewVideoRepository(db.Pool)
	slog.Info("database ready")

	host, err := media.NewObjectStore(ctx, media.Options{
		Endpoint:  cfg.MediaEndpoint,
		AccessKey: cfg.MediaAccessKey,
		SecretKey: cfg.MediaSecretKey,
		Bucket:    cfg.MediaBucket,
		Region:    cfg.MediaRegion,
		UseSSL:    cfg.MediaUseSSL,
		PublicURL: cfg.MediaPublicURL,
	}, media.NewProber(cfg.FFprobePath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media host: %w", err)
	}
	slog.Info("media host ready", "endpoint", cfg.MediaEndpoint, "bucket", cfg.MediaBucket)

	var videoCache service.VideoCache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.cleanupFuncs = append(a.cleanupFuncs, func() { _ = client.Close() })
		videoCache = cache.NewVideoCache(client, cfg.VideoCacheTTL)
		slog.Info("video cache enabled", "ttl", cfg.VideoCacheTTL)
	}

	bus := event.NewBus()
	if cfg.AMQPURL != "" {
		forwarder, err := event.NewForwarder(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to message broker: %w", err)
		}
		forwardCtx, stopForwarding := context.WithCancel(context.Background())
		go forwarder.Run(forwardCtx, bus)
		a.cleanupFuncs = append(a.cleanupFuncs, func() {
			stopForwarding()
			if err := forwarder.Close(); err != nil {
				slog.Warn("failed to close broker connection", "error", err)
			}
		})
		slog.Info("event forwarding enabled", "exchange", cfg.AMQPExchange)
	}

	tokenService, err := service.NewTokenService(userRepo, tokenRepo,
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	userService := service.NewUserService(userRepo, tokenService, host, bus)
	videoService := service.NewVideoService(videoRepo, host, videoCache, bus)

	authMiddleware := middleware.NewAuthMiddleware(tokenService, userService)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		User:   handler.NewUserHandler(userService, staging, cfg.MaxUploadSize, cfg.CookieSecure),
		Video:  handler.NewVideoHandler(videoService, staging, cfg.MaxUploadSize),
		Health: handler.NewHealthHandler(db),
	})

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	ok = true
	return a, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		slog.Info("shutdown requested", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

// cleanup releases resources in reverse order of acquisition.
func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}
