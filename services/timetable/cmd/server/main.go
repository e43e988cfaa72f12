package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"

	"github.com/Ariuko0507/huwaari/services/timetable/internal/board"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/clients"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/config"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/db"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/events"
	timetablegrpc "github.com/Ariuko0507/huwaari/services/timetable/internal/grpc"
	internalhttp "github.com/Ariuko0507/huwaari/services/timetable/internal/http"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/operations"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connection failed", zap.Error(err))
	}
	defer pool.Close()
	store := db.NewStore(pool)

	checks := map[string]timetablegrpc.Check{"postgres": pool.Ping}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis connection failed", zap.Error(err))
		}
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		logger.Info("redis disabled, board cache and cross-instance events are off")
	}

	bus := events.NewBus(redisClient, cfg.EventsChannel, logger)
	defer bus.Close()
	go bus.Run(ctx)

	cache := board.NewCache(redisClient, cfg.BoardCacheTTL, logger)
	cacheUpdates, cancelCacheUpdates := bus.Subscribe()
	defer cancelCacheUpdates()
	go cache.Watch(ctx, cacheUpdates)

	ops := operations.NewService(operations.NewStore(store), bus, logger)

	identity, err := clients.New(ctx, cfg.IdentityGRPCAddr, cfg.ServiceAuthToken, cfg.GRPCDialTimeout)
	if err != nil {
		logger.Fatal("grpc dial failed", zap.Error(err))
	}
	defer identity.Close()

	server, err := internalhttp.NewServer(cfg, internalhttp.Dependencies{
		Store:      store.Queries,
		Operations: ops,
		Profiles:   clients.NewProfileLookup(identity.Profiles),
		Identity:   clients.NewIdentityHTTP(cfg.IdentityHTTPURL, nil),
		Cache:      cache,
		Publisher:  bus,
	}, logger)
	if err != nil {
		logger.Fatal("server init failed", zap.Error(err))
	}
	statsUpdates, cancelStatsUpdates := bus.Subscribe()
	defer cancelStatsUpdates()
	go server.WatchStats(ctx, statsUpdates)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	health := timetablegrpc.NewHealth(checks, cfg.HealthInterval, logger)
	health.Register(grpcServer)
	healthDone := health.Start(ctx)

	go func() {
		logger.Info("timetable http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	go func() {
		listener, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatal("grpc listen error", zap.Error(err))
		}
		logger.Info("timetable grpc listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(listener); err != nil {
			logger.Fatal("grpc server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	grpcServer.GracefulStop()
	<-healthDone
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if level == "debug" {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
