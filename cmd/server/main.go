package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"wavy/internal/addons"
	"wavy/internal/auth"
	"wavy/internal/backend"
	"wavy/internal/cache"
	"wavy/internal/catalog"
	"wavy/internal/collection"
	"wavy/internal/config"
	"wavy/internal/events"
	"wavy/internal/handlers"
	"wavy/internal/middleware"
	"wavy/internal/preferences"
	"wavy/internal/storage"
	"wavy/internal/tmdb"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Configure logger
	logger, err := setupLogger(&cfg.Logger)
	if err != nil {
		fmt.Printf("Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Wavy API server",
		zap.String("version", version),
		zap.String("address", cfg.Server.GetAddress()),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
	logger.Info("Server exited")
}

// backends are the storage implementations selected by configuration
type backends struct {
	kv     storage.KV
	cache  cache.Store
	client redis.UniversalClient
}

func setupBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	if cfg.Storage.Driver != "redis" {
		store, err := cache.NewMemoryStore(&cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		return &backends{kv: storage.NewMemoryKV(), cache: store}, nil
	}

	client, err := storage.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, err
	}
	logger.Info("Redis connection established successfully", zap.Strings("addresses", cfg.Redis.Addresses))

	return &backends{
		kv:     storage.NewRedisKV(client, logger.Named("storage")),
		cache:  cache.NewRedisStore(client, &cfg.Cache, logger.Named("cache")),
		client: client,
	}, nil
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	b, err := setupBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if b.client != nil {
		defer b.client.Close()
	}

	ns := storage.NewNamespace(cfg.Storage.Prefix)
	bus := events.NewBus(logger.Named("events"))

	if cfg.TMDB.APIKey == "" {
		logger.Warn("tmdb.api_key is empty; metadata requests will be rejected upstream")
	}
	metadata := tmdb.New(&cfg.TMDB, b.cache, logger.Named("tmdb"))

	backendClient := backend.New(&cfg.Backend, logger.Named("backend"))
	var verifier auth.Verifier
	mirrors := func(kind collection.Kind) collection.Mirror {
		if m := backendClient.Mirror(string(kind)); m != nil {
			return m
		}
		return nil
	}
	if backendClient.Enabled() {
		verifier = backendClient
		logger.Info("Backend mirroring enabled", zap.String("base_url", cfg.Backend.BaseURL))
	} else {
		logger.Info("No backend configured; collections stay local")
	}

	prefs := preferences.NewService(b.kv, ns, logger.Named("preferences"))
	h := handlers.NewHandler(handlers.Deps{
		Metadata:    metadata,
		Catalog:     catalog.NewService(metadata, logger.Named("catalog")),
		Collections: collection.NewSet(b.kv, ns, bus, mirrors, logger.Named("collection")),
		Preferences: prefs,
		Addons:      addons.NewService(b.kv, ns, logger.Named("addons")),
		Backend:     backendClient,
		Bus:         bus,
		Cache:       b.cache,
		Logger:      logger,
		EventBuffer: cfg.Events.Buffer,
	})

	// Configure Gin
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	rateLimiter, err := middleware.RateLimiter(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.Server.CORSOrigin))
	router.Use(rateLimiter)

	handlers.RegisterRoutes(router, h, auth.NewResolver(verifier, prefs, logger.Named("auth")))

	server := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Events.RelayEnabled && b.client != nil {
		relay := events.NewRedisRelay(b.client, cfg.Events.RelayChannel, logger.Named("relay"))
		sub := bus.Subscribe(cfg.Events.Buffer, nil)
		g.Go(func() error {
			relay.Run(gctx, sub)
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Server starting", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}

// setupLogger configures the logger according to the configuration
func setupLogger(cfg *config.LoggerConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoding := cfg.Format
	if encoding != "console" {
		encoding = "json"
	}
	output := cfg.OutputPath
	if output == "" {
		output = "stdout"
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{output},
	}

	return config.Build()
}
