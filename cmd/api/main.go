package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paybit/config"
	"paybit/internal/adapter/bitcoind"
	httpHandler "paybit/internal/adapter/http/handler"
	mongoStorage "paybit/internal/adapter/storage/mongodb"
	redisStorage "paybit/internal/adapter/storage/redis"
	"paybit/internal/core/ports"
	"paybit/internal/service"
	"paybit/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("network", cfg.Node.Network).
		Msg("Starting PayBit")

	chainParams, err := cfg.Node.Params()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid node network")
	}

	ctx := context.Background()

	// Initialize MongoDB
	db, err := mongoStorage.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("MongoDB disconnect failed")
		}
	}()
	log.Info().Msg("MongoDB connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize the Bitcoin Core RPC client. The node may come up after
	// the API; reachability is surfaced through /health, not at startup.
	node := bitcoind.NewClient(cfg.Node, log)
	if err := node.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Wallet node unreachable at startup")
	}

	// Initialize repositories
	userRepo := mongoStorage.NewUserRepository(db)
	txRepo := mongoStorage.NewTransactionRepository(db)
	campaignRepo := mongoStorage.NewCampaignRepository(db)
	contactRepo := mongoStorage.NewContactRepository(db)
	requestRepo := mongoStorage.NewMoneyRequestRepository(db)
	intentRepo := mongoStorage.NewIntentRepository(db)

	// Initialize Redis stores
	balanceCache := redisStorage.NewBalanceCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	provisioner := service.NewWalletProvisioner(node, userRepo, balanceCache, log)

	// Initialize business services
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc, provisioner, log)
	transferSvc := service.NewTransferService(
		node,
		userRepo,
		txRepo,
		intentRepo,
		provisioner,
		balanceCache,
		chainParams,
		log,
	)
	ledgerSvc := service.NewLedgerService(txRepo, log)
	campaignSvc := service.NewCampaignService(campaignRepo, transferSvc, log)
	contactSvc := service.NewContactService(contactRepo, userRepo, log)
	requestSvc := service.NewRequestService(requestRepo, userRepo, transferSvc, log)

	// Reconcile stale transfer intents in the background
	reconciler := service.NewReconciler(intentRepo, txRepo, userRepo, cfg.Node.ReconcileIv, log)
	reconcileCtx, stopReconciler := context.WithCancel(ctx)
	defer stopReconciler()
	go reconciler.Run(reconcileCtx)

	// Initialize health checkers
	mongoHealth := mongoStorage.NewHealth(db)
	redisHealth := redisStorage.NewHealth(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		TransferSvc:    transferSvc,
		LedgerSvc:      ledgerSvc,
		CampaignSvc:    campaignSvc,
		ContactSvc:     contactSvc,
		RequestSvc:     requestSvc,
		Provisioner:    provisioner,
		UserRepo:       userRepo,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{mongoHealth, redisHealth, node},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	stopReconciler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
