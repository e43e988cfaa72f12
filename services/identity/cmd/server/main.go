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
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"

	identityv1 "github.com/Ariuko0507/huwaari/services/identity/identity/v1"
	"github.com/Ariuko0507/huwaari/services/identity/internal/config"
	"github.com/Ariuko0507/huwaari/services/identity/internal/db"
	identitygrpc "github.com/Ariuko0507/huwaari/services/identity/internal/grpc"
	internalhttp "github.com/Ariuko0507/huwaari/services/identity/internal/http"
	"github.com/Ariuko0507/huwaari/services/identity/internal/jobs"
	"github.com/Ariuko0507/huwaari/services/identity/internal/repository"
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

	store := repository.NewStore(pool)
	server, err := internalhttp.NewServer(cfg, store, logger)
	if err != nil {
		logger.Fatal("server init failed", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serviceAuthInterceptor, err := identitygrpc.NewProfileAuthInterceptor(cfg.ServiceAuthToken, logger)
	if err != nil {
		logger.Fatal("grpc service auth init failed", zap.Error(err))
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(serviceAuthInterceptor))
	identityv1.RegisterProfileServiceServer(grpcServer, identitygrpc.NewProfileServer(store, logger))

	cleanupDone := jobs.StartSessionCleanupJob(ctx, cfg, store, logger)

	go func() {
		logger.Info("identity http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	go func() {
		listener, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatal("grpc listen error", zap.Error(err))
		}
		logger.Info("identity grpc listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(listener); err != nil {
			logger.Fatal("grpc server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	grpcServer.GracefulStop()
	<-cleanupDone
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
