package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awspkg "github.com/kadekedwin/billforge/pkg/aws"
	"github.com/kadekedwin/billforge/services/cart-service/config"
	"github.com/kadekedwin/billforge/services/cart-service/controllers"
	"github.com/kadekedwin/billforge/services/cart-service/database"
	"github.com/kadekedwin/billforge/services/cart-service/routes"
	"github.com/kadekedwin/billforge/services/common/auth"
	"github.com/kadekedwin/billforge/services/common/logger"
	"github.com/kadekedwin/billforge/services/common/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	awsCfg, awsErr := awspkg.LoadAWSConfig(context.Background())

	var cwLogs *awspkg.CloudWatchLogsClient
	if awsErr == nil && cfg.CloudWatchEnabled {
		if c, err := awspkg.NewCloudWatchLogsClient(context.Background(), awsCfg, "cart-service"); err == nil {
			cwLogs = c
		}
	}
	var log *zap.Logger
	if cwLogs != nil {
		log = logger.InitializeWithWriter(cfg.Env, cwLogs)
	} else {
		log = logger.Initialize(cfg.Env)
	}
	defer log.Sync() //nolint:errcheck

	var repo database.CartRepository
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close() //nolint:errcheck
		repo = database.NewRedisCartRepository(redisClient, cfg.CartTTL)
		log.Info("Cart storage: redis")
	} else {
		repo = database.NewMemoryCartRepository()
		log.Warn("REDIS_URL not set, carts are kept in memory")
	}

	var snsClient awspkg.SNSPublisher
	var metricsClient *awspkg.MetricsClient
	if awsErr != nil {
		log.Warn("AWS config unavailable, checkout events disabled", zap.Error(awsErr))
	} else {
		snsClient = awspkg.NewSNSClient(awsCfg)
		metricsClient = awspkg.NewMetricsClient(awsCfg)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestID())
	router.Use(middleware.RequestLogger(log, "/health"))
	router.Use(middleware.MetricsMiddleware(metricsClient, "cart-service"))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "cart-service"})
	})

	controller := controllers.NewCartController(repo, snsClient, cfg.CheckoutSNSTopicARN, metricsClient, log)
	identity := middleware.SessionIdentity(cfg.SessionCookieName, auth.NewTokenValidator(cfg.JWTSecret, ""))
	routes.RegisterCartRoutes(router, controller, identity)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Cart service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down cart service...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited cleanly")
}
