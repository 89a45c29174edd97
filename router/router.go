package router

import (
	"github.com/NomadCrew/nomad-split-backend/config"
	"github.com/NomadCrew/nomad-split-backend/handlers"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies holds everything SetupRouter needs to mount the routes.
type Dependencies struct {
	Config             *config.Config
	JWTValidator       middleware.Validator
	UserEnsurer        middleware.UserEnsurer
	RedisClient        redis.UniversalClient
	HealthHandler      *handlers.HealthHandler
	UserHandler        *handlers.UserHandler
	TransactionHandler *handlers.TransactionHandler
	GroupHandler       *handlers.GroupHandler
	FriendHandler      *handlers.FriendHandler
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestIDMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	if len(deps.Config.Server.TrustedProxies) > 0 {
		if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
			logger.GetLogger().Warnw("Ignoring invalid trusted proxies", "error", err)
		}
	}

	// Health and metrics (no auth)
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(deps.JWTValidator, deps.UserEnsurer))
	if deps.RedisClient != nil {
		v1.Use(middleware.WriteRateLimiter(deps.RedisClient, deps.Config.RateLimit))
	}

	userRoutes := v1.Group("/users/me")
	{
		userRoutes.GET("", deps.UserHandler.GetMeHandler)
		userRoutes.PUT("", deps.UserHandler.UpdateMeHandler)
		userRoutes.PUT("/payment-methods", deps.UserHandler.SetPaymentMethodsHandler)
		userRoutes.GET("/balances", deps.TransactionHandler.GetMyBalancesHandler)
		userRoutes.GET("/balances/:groupId", deps.TransactionHandler.GetMyGroupBalanceHandler)
	}

	txRoutes := v1.Group("/transactions")
	{
		txRoutes.POST("", deps.TransactionHandler.CreateTransactionHandler)
		txRoutes.GET("", deps.TransactionHandler.ListTransactionsHandler)
		txRoutes.GET("/:id", deps.TransactionHandler.GetTransactionHandler)
		txRoutes.PATCH("/:id", deps.TransactionHandler.UpdateTransactionHandler)
		txRoutes.DELETE("/:id", deps.TransactionHandler.DeleteTransactionHandler)
		txRoutes.POST("/:id/payments", deps.TransactionHandler.MarkPaidHandler)
		txRoutes.POST("/:id/approvals", deps.TransactionHandler.AddApprovalHandler)
		txRoutes.POST("/:id/receipt", deps.TransactionHandler.UploadReceiptHandler)
	}

	groupRoutes := v1.Group("/groups")
	{
		groupRoutes.GET("", deps.GroupHandler.ListGroupsHandler)
		groupRoutes.POST("", deps.GroupHandler.CreateGroupHandler)
		groupRoutes.POST("/join", deps.GroupHandler.JoinGroupHandler)
		groupRoutes.GET("/:id", deps.GroupHandler.GetGroupHandler)
		groupRoutes.PUT("/:id", deps.GroupHandler.UpdateGroupHandler)
		groupRoutes.DELETE("/:id", deps.GroupHandler.DeleteGroupHandler)
		groupRoutes.POST("/:id/members", deps.GroupHandler.AddMemberHandler)
		groupRoutes.DELETE("/:id/members/:memberId", deps.GroupHandler.RemoveMemberHandler)
		groupRoutes.POST("/:id/leave", deps.GroupHandler.LeaveGroupHandler)
		groupRoutes.GET("/:id/balances", deps.GroupHandler.GetGroupBalancesHandler)
		groupRoutes.GET("/:id/balances/:userId", deps.GroupHandler.GetMemberBalanceHandler)
		groupRoutes.POST("/:id/invite", deps.GroupHandler.CreateInviteHandler)
	}

	friendRoutes := v1.Group("/friends")
	{
		friendRoutes.POST("/requests", deps.FriendHandler.SendRequestHandler)
		friendRoutes.GET("/requests", deps.FriendHandler.ListRequestsHandler)
		friendRoutes.POST("/requests/:requestId/accept", deps.FriendHandler.AcceptRequestHandler)
		friendRoutes.DELETE("/requests/:requestId", deps.FriendHandler.DeclineRequestHandler)
		friendRoutes.POST("", deps.FriendHandler.AddFriendHandler)
		friendRoutes.GET("", deps.FriendHandler.ListFriendsHandler)
		friendRoutes.DELETE("/:friendId", deps.FriendHandler.RemoveFriendHandler)
		friendRoutes.GET("/:friendId/payment-methods", deps.FriendHandler.GetPaymentMethodsHandler)
	}

	return r
}
