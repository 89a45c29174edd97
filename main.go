package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/NomadCrew/nomad-split-backend/config"
	"github.com/NomadCrew/nomad-split-backend/db"
	_ "github.com/NomadCrew/nomad-split-backend/docs"
	"github.com/NomadCrew/nomad-split-backend/handlers"
	"github.com/NomadCrew/nomad-split-backend/internal/events"
	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/internal/store/mongostore"
	"github.com/NomadCrew/nomad-split-backend/internal/store/postgres"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/middleware"
	friendSvc "github.com/NomadCrew/nomad-split-backend/models/friend/service"
	groupSvc "github.com/NomadCrew/nomad-split-backend/models/group/service"
	txSvc "github.com/NomadCrew/nomad-split-backend/models/transaction/service"
	userSvc "github.com/NomadCrew/nomad-split-backend/models/user/service"
	"github.com/NomadCrew/nomad-split-backend/router"
	"github.com/NomadCrew/nomad-split-backend/services"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// @title NomadSplit API
// @version 1.0
// @description Shared expenses, groups, friends and balances.
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	// amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closeStore()

	redisClient := redis.NewClient(config.ConfigureRedisOptions(&cfg.Redis))
	if err := config.TestRedisConnection(redisClient); err != nil {
		// events and rate limiting degrade without Redis; the API keeps serving
		log.Warnw("Redis unavailable at startup", "error", err)
	}
	defer func() { _ = redisClient.Close() }()

	publisher := events.NewRedisPublisher(redisClient, events.Config{
		PublishTimeout: time.Duration(cfg.EventService.PublishTimeoutSeconds) * time.Second,
	})

	workerPool := services.NewWorkerPool(cfg.WorkerPool)
	workerPool.Start()

	emailService := services.NewEmailService(&cfg.Email)
	notifier := services.NewExpenseNotifier(st, emailService, workerPool, cfg.Server.FrontendURL)

	var receipts txSvc.ReceiptStorage
	if cfg.Receipts.Enabled {
		s3Receipts, err := txSvc.NewS3ReceiptStorage(cfg.Receipts)
		if err != nil {
			log.Fatalf("Failed to initialize receipt storage: %v", err)
		}
		receipts = s3Receipts
	} else {
		log.Info("Receipt storage disabled, uploads will be rejected")
	}

	userService := userSvc.NewUserService(st.Users())
	groupService := groupSvc.NewGroupService(st, publisher, groupSvc.InviteConfig{
		Secret:      cfg.Server.InviteSecret,
		TTL:         time.Duration(cfg.Server.InviteTTLHours) * time.Hour,
		FrontendURL: cfg.Server.FrontendURL,
	})
	friendService := friendSvc.NewFriendService(st, publisher)
	transactionService := txSvc.NewTransactionService(st, publisher, notifier, receipts)

	jwtValidator, err := middleware.NewJWTValidator(cfg.Server.JwtSecretKey)
	if err != nil {
		log.Fatalf("Failed to initialize JWT validator: %v", err)
	}

	healthService := services.NewHealthService(st, redisClient, workerPool, cfg.Server.Version)

	r := router.SetupRouter(router.Dependencies{
		Config:             cfg,
		JWTValidator:       jwtValidator,
		UserEnsurer:        userService,
		RedisClient:        redisClient,
		HealthHandler:      handlers.NewHealthHandler(healthService),
		UserHandler:        handlers.NewUserHandler(userService),
		TransactionHandler: handlers.NewTransactionHandler(transactionService),
		GroupHandler:       handlers.NewGroupHandler(groupService),
		FriendHandler:      handlers.NewFriendHandler(friendService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.WorkerPool.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown failed", "error", err)
	}
	// queued emails are drained after the last request finishes
	if err := workerPool.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Worker pool shutdown failed", "error", err)
	}
	log.Info("Server stopped")
}

// openStore connects the backend selected by STORAGE_DRIVER and returns it
// with its cleanup function.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	log := logger.GetLogger()

	if cfg.Storage.Driver == config.StorageDriverMongo {
		client, err := mongostore.Connect(ctx, &cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		s := mongostore.NewStore(client.Database(cfg.Mongo.Database))
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		log.Infow("Using MongoDB storage", "database", cfg.Mongo.Database)
		return s, func() { _ = client.Disconnect(context.Background()) }, nil
	}

	poolConfig, err := config.ConfigurePostgresPool(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	dbClient := db.NewDatabaseClient(poolConfig)
	pool, err := dbClient.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		dbClient.Close()
		return nil, nil, err
	}
	log.Info("Using PostgreSQL storage")
	return postgres.NewStore(pool), dbClient.Close, nil
}
