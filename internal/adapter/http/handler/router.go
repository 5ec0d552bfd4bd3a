package handler

import (
	"paybit/internal/adapter/http/middleware"
	redisStore "paybit/internal/adapter/storage/redis"
	"paybit/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	TransferSvc    ports.TransferService
	LedgerSvc      ports.LedgerService
	CampaignSvc    ports.CampaignService
	ContactSvc     ports.ContactService
	RequestSvc     ports.RequestService
	Provisioner    ports.WalletProvisioner
	UserRepo       ports.UserRepository
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies MongoDB, Redis and the node)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	userHandler := NewUserHandler(deps.UserRepo)
	users := v1.Group("/users", jwtAuth)
	{
		users.GET("/me", rl("history"), userHandler.Me)
	}

	walletHandler := NewWalletHandler(deps.Provisioner, deps.UserRepo)
	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("/balance", rl("wallet"), walletHandler.Balance)
		wallet.GET("/address", rl("wallet"), walletHandler.Address)
	}

	transferHandler := NewTransferHandler(deps.TransferSvc)
	transfers := v1.Group("/transfers", jwtAuth)
	{
		transfers.POST("", rl("transfers"), transferHandler.Send)
	}

	transactionHandler := NewTransactionHandler(deps.LedgerSvc)
	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("history"), transactionHandler.History)
		transactions.GET("/:id", rl("history"), transactionHandler.Details)
	}

	campaignHandler := NewCampaignHandler(deps.CampaignSvc)
	campaigns := v1.Group("/campaigns", jwtAuth)
	{
		campaigns.POST("", rl("donations"), campaignHandler.Create)
		campaigns.GET("", rl("history"), campaignHandler.List)
		campaigns.GET("/:id", rl("history"), campaignHandler.Get)
		campaigns.PUT("/:id", rl("donations"), campaignHandler.Update)
		campaigns.DELETE("/:id", rl("donations"), campaignHandler.Delete)
		campaigns.POST("/:id/donate", rl("donations"), campaignHandler.Donate)
	}

	contactHandler := NewContactHandler(deps.ContactSvc)
	contacts := v1.Group("/contacts", jwtAuth)
	{
		contacts.POST("", rl("history"), contactHandler.Add)
		contacts.GET("", rl("history"), contactHandler.List)
		contacts.DELETE("/:id", rl("history"), contactHandler.Remove)
	}

	requestHandler := NewRequestHandler(deps.RequestSvc)
	requests := v1.Group("/requests", jwtAuth)
	{
		requests.POST("", rl("transfers"), requestHandler.Create)
		requests.GET("", rl("history"), requestHandler.List)
		requests.POST("/:id/pay", rl("transfers"), requestHandler.Pay)
		requests.POST("/:id/decline", rl("history"), requestHandler.Decline)
	}

	return r
}
