package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeynil/PetAdoptService/internal/api"
	"github.com/honeynil/PetAdoptService/internal/config"
	"github.com/honeynil/PetAdoptService/internal/handler"
	"github.com/honeynil/PetAdoptService/internal/infrastructure/kafka"
	"github.com/honeynil/PetAdoptService/internal/infrastructure/redis"
	"github.com/honeynil/PetAdoptService/internal/infrastructure/storage"
	"github.com/honeynil/PetAdoptService/internal/migrations"
	"github.com/honeynil/PetAdoptService/internal/observability"
	core "github.com/honeynil/PetAdoptService/internal/repository/postgres"
	service "github.com/honeynil/PetAdoptService/internal/services"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const (
	serviceName       = "pet-adopt-service"
	ledgerGroupID     = "wallet-ledger"
	eventRetryBackoff = time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Logs, metrics, traces
	shutdownTracing, err := observability.Setup(ctx, serviceName, cfg.LogLevel, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to set up observability", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	sqlDB, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		slog.Error("failed to open Postgres", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()
	if err := sqlDB.PingContext(ctx); err != nil {
		slog.Error("failed to connect to Postgres", "error", err)
		os.Exit(1)
	}
	if err := migrations.Up(ctx, sqlDB); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	db := sqlx.NewDb(sqlDB, "postgres")

	userRepo := core.NewUserRepository(db)
	walletRepo := core.NewWalletRepository(db)
	transactionRepo := core.NewTransactionRepository(db)
	categoryRepo := core.NewCategoryRepository(db)
	petRepo := core.NewPetRepository(db)
	imageRepo := core.NewPetImageRepository(db)
	reviewRepo := core.NewReviewRepository(db)
	adoptionRepo := core.NewAdoptionRepository(db)

	redisClient, err := redis.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		slog.Error("failed to connect to Redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	producer := kafka.NewProducer(cfg.Brokers())
	defer producer.Close()
	events := service.NewEventPublisher(producer, eventRetryBackoff)

	ledgerConsumer := kafka.NewConsumer(cfg.Brokers(), ledgerGroupID, transactionRepo)
	defer ledgerConsumer.Close()
	go ledgerConsumer.Consume(ctx)

	var imageStorage storage.ImageStorage
	if cfg.S3.Bucket != "" {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			slog.Error("failed to set up image storage", "bucket", cfg.S3.Bucket, "error", err)
			os.Exit(1)
		}
		imageStorage = s3Storage
	} else {
		slog.Warn("S3_BUCKET not set, image uploads disabled")
	}

	h := handler.NewHandler(
		service.NewAuthService(userRepo, walletRepo, adoptionRepo, redisClient, events, cfg.JWTSecret, cfg.JWTTTL),
		service.NewWalletService(walletRepo, transactionRepo, events),
		service.NewCatalogService(categoryRepo, petRepo, imageRepo, reviewRepo, imageStorage),
		service.NewReviewService(reviewRepo, petRepo, adoptionRepo),
		service.NewAdoptionService(adoptionRepo, redisClient, events),
	)

	limiter := api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(time.Minute, ctx.Done())

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.SetupRouter(h, redisClient, cfg.JWTSecret, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("starting server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	events.Wait()
	slog.Info("server stopped")
}
