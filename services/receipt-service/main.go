package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awspkg "github.com/kadekedwin/billforge/pkg/aws"
	"github.com/kadekedwin/billforge/services/common/auth"
	"github.com/kadekedwin/billforge/services/common/logger"
	"github.com/kadekedwin/billforge/services/common/middleware"
	"github.com/kadekedwin/billforge/services/receipt-service/cache"
	"github.com/kadekedwin/billforge/services/receipt-service/controllers"
	"github.com/kadekedwin/billforge/services/receipt-service/database"
	"github.com/kadekedwin/billforge/services/receipt-service/models"
	"github.com/kadekedwin/billforge/services/receipt-service/providers"
	"github.com/kadekedwin/billforge/services/receipt-service/repository"
	"github.com/kadekedwin/billforge/services/receipt-service/routes"
	servicepkg "github.com/kadekedwin/billforge/services/receipt-service/services"
	"github.com/kadekedwin/billforge/services/receipt-service/thermal"
	"github.com/kadekedwin/billforge/services/receipt-service/web"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := LoadConfig()

	awsCfg, awsErr := awspkg.LoadAWSConfig(context.Background())

	var cwLogs *awspkg.CloudWatchLogsClient
	if awsErr == nil && cfg.CloudWatchEnabled {
		if c, err := awspkg.NewCloudWatchLogsClient(context.Background(), awsCfg, "receipt-service"); err == nil {
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

	// Print history is optional
	var jobRepo repository.PrintJobRepository
	if cfg.Postgres.Configured() {
		db, err := database.ConnectPostgres(cfg.Postgres, log, &models.PrintJob{})
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer database.Close(db) //nolint:errcheck
		jobRepo = repository.NewGormPrintJobRepository(db)
	} else {
		log.Warn("POSTGRES_* not set, print history disabled")
	}

	var imageCache cache.ImageCache
	if cfg.RedisURL != "" {
		redisClient, err := newRedisClient(cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, image cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			imageCache = cache.NewRedisImageCache(redisClient, cfg.ImageCacheTTL, log)
		}
	}

	// AWS clients
	var snsClient awspkg.SNSPublisher
	var archiver awspkg.ObjectArchiver
	var metricsClient *awspkg.MetricsClient
	if awsErr != nil {
		log.Warn("AWS config unavailable, SNS, S3 archive and metrics disabled", zap.Error(awsErr))
	} else {
		snsClient = awspkg.NewSNSClient(awsCfg)
		metricsClient = awspkg.NewMetricsClient(awsCfg)
		if a := awspkg.NewS3Archiver(awspkg.NewS3Client(awsCfg, cfg.S3PathStyle), cfg.ArchiveBucket); a != nil {
			archiver = a
		}
	}

	// DI chain
	receiptService := servicepkg.NewReceiptService(archiver, metricsClient, log)
	printService := servicepkg.NewPrintService(
		thermal.NewPrinter(),
		jobRepo,
		snsClient,
		cfg.ReceiptSNSTopicARN,
		cfg.Printer,
		metricsClient,
		log,
	)
	proxyService := servicepkg.NewImageProxyService(
		providers.NewHTTPImageSource(cfg.ProxyTimeout, cfg.ProxyAllowedHosts),
		imageCache,
		metricsClient,
		log,
	)

	shell, err := web.NewShell()
	if err != nil {
		log.Fatal("Failed to parse page templates", zap.Error(err))
	}
	gateCfg := middleware.DefaultGateConfig()
	gateCfg.CookieName = cfg.SessionCookieName
	gateCfg.Validator = auth.NewTokenValidator(cfg.JWTSecret, "")
	gate := middleware.NewSessionGate(gateCfg)

	limiter := middleware.NewRateLimiter(middleware.PerMinute(cfg.RateLimitPerMinute), cfg.RateLimitPerMinute/4+1, 10*time.Minute)
	defer limiter.Close()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(middleware.RequestLogger(log, "/health"))
	r.Use(middleware.MetricsMiddleware(metricsClient, "receipt-service"))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(requestTimeout(cfg.RequestTimeout))
	r.Use(gate.Handler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "receipt-service"})
	})

	routes.RegisterRoutes(r, routes.Controllers{
		Receipt: controllers.NewReceiptController(receiptService),
		Print:   controllers.NewPrintController(printService),
		Proxy:   controllers.NewProxyController(proxyService),
		Page:    controllers.NewPageController(shell, gate, log),
	}, middleware.RateLimitMiddleware(limiter))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	log.Info("Receipt service started", zap.String("port", cfg.Port))
	<-quit
	log.Info("Shutting down receipt service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited cleanly")
}

// requestTimeout bounds each request's context.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func newRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
