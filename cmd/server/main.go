package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storybook-server/internal/config"
	"storybook-server/internal/handler"
	"storybook-server/internal/illustration"
	"storybook-server/internal/interfaces"
	"storybook-server/internal/logger"
	"storybook-server/internal/messaging"
	"storybook-server/internal/middleware"
	"storybook-server/internal/narrative"
	"storybook-server/internal/repository"
	"storybook-server/internal/service"
	"storybook-server/internal/validation"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

const (
	openAPIDocumentURL = "/api/docs/openapi.json"
	serviceName        = "storybook-server"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log, logLevel, err := logger.NewWithLevel(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
		Service:  serviceName,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	zap.L().Info("Logger initialized successfully", zap.String("logLevel", cfg.LogLevel), zap.String("env", cfg.Env))

	validation.Register()

	// --- Storage ---
	store := repository.NewStore()

	// --- Narrative ---
	if cfg.NarrativeProvider == config.NarrativeProviderOpenAI && cfg.AIAPIKey == "" {
		zap.L().Warn("AI_API_KEY is empty, story generation requests will fail until it is set")
	}
	chatClient, err := narrative.NewChatClient(narrative.ClientConfig{
		Provider: cfg.NarrativeProvider,
		BaseURL:  cfg.AIBaseURL,
		APIKey:   cfg.AIAPIKey,
		Model:    cfg.AIModel,
		Timeout:  cfg.AITimeout,
	}, log)
	if err != nil {
		zap.L().Fatal("Failed to create narrative client", zap.Error(err))
	}
	generator := narrative.NewStoryGenerator(chatClient, narrative.Mode(cfg.NarrativeMode), log)

	// --- Illustrations ---
	imageStore := illustration.NewFileStore(cfg.ImageSavePath, cfg.ImagePublicBaseURL)
	illustrator := illustration.NewService(
		newImageProvider(cfg, imageStore, log),
		imageStore,
		illustration.NewFallbackPool(cfg.FallbackBaseURL),
		illustration.Config{BatchWidth: cfg.ImageBatchWidth, RateInterval: cfg.ImageRateInterval},
		log,
	)

	// --- Order events ---
	var publisher interfaces.OrderEventPublisher
	var mqConn *amqp.Connection
	if cfg.RabbitMQURL != "" {
		mqConn, err = messaging.ConnectRabbitMQ(cfg.RabbitMQURL, 10, 3*time.Second, log)
		if err != nil {
			zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		rabbitPublisher, err := messaging.NewRabbitMQOrderPublisher(mqConn, cfg.OrderEventsQueue, log)
		if err != nil {
			zap.L().Fatal("Failed to create order publisher", zap.Error(err))
		}
		publisher = rabbitPublisher
		zap.L().Info("Connected to RabbitMQ", zap.String("queue", cfg.OrderEventsQueue))
	} else {
		publisher = messaging.NewNoopOrderPublisher(log)
		zap.L().Info("RABBITMQ_URL not set, order events are not published")
	}

	// --- Dependency Injection ---
	bookService := service.NewBookService(generator, illustrator, store.Books, service.BookServiceConfig{
		IllustrationBudget: cfg.IllustrationBudget,
	}, log)
	orderService := service.NewOrderService(store.Books, store.Orders, publisher, log)
	userService := service.NewUserService(store.Users, log)
	storybookHandler := handler.NewStorybookHandler(bookService, orderService, log)

	if cfg.BootstrapUsername != "" {
		created, err := userService.EnsureUser(context.Background(), cfg.BootstrapUsername, cfg.BootstrapPassword)
		if err != nil {
			zap.L().Fatal("Failed to create bootstrap user", zap.String("username", cfg.BootstrapUsername), zap.Error(err))
		}
		zap.L().Info("Bootstrap user ready", zap.String("username", cfg.BootstrapUsername), zap.Bool("created", created))
	}

	rateLimitMiddleware := newRateLimitMiddleware(cfg)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.RequestID())
	router.Use(middleware.GinZapLogger(log))
	router.Use(gin.Recovery())

	// Configure CORS Middleware
	corsConfig := cors.DefaultConfig()
	allowedOrigins := cfg.GetAllowedOrigins()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173"}
		zap.L().Info("CORSAllowedOrigins not set, allowing default", zap.String("origin", "http://localhost:5173"))
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Метрики до регистрации маршрутов, иначе middleware не попадет в их цепочки
	p := ginprometheus.NewPrometheus("gin")
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		if path := c.FullPath(); path != "" {
			return path
		}
		return "unmatched"
	}
	p.Use(router)

	// Health Check Endpoint
	router.GET("/health", handler.Health)
	router.HEAD("/health", handler.Health)

	// Register Application Routes
	storybookHandler.RegisterRoutes(router, rateLimitMiddleware)
	handler.RegisterDocsRoutes(router)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(openAPIDocumentURL)))

	// Уровень логирования меняется на лету: GET/PUT {"level":"debug"}
	if !cfg.IsProduction() {
		router.GET("/debug/log-level", gin.WrapH(logLevel))
		router.PUT("/debug/log-level", gin.WrapH(logLevel))
	}

	// Сгенерированные иллюстрации и статика мастера
	if strings.HasPrefix(cfg.ImagePublicBaseURL, "/") {
		router.Static(cfg.ImagePublicBaseURL, cfg.ImageSavePath)
	}
	if cfg.StaticDir != "" {
		router.Static("/static", cfg.StaticDir)
	}
	// Запасной пул встроен в бинарник. Под /static он конфликтует с каталогом мастера, тогда его раздает STATIC_DIR
	if cfg.StaticDir != "" && strings.HasPrefix(cfg.FallbackBaseURL, "/static/") {
		zap.L().Warn("FALLBACK_BASE_URL is under /static, fallback images must be present in STATIC_DIR",
			zap.String("fallback_base_url", cfg.FallbackBaseURL))
	} else if handler.RegisterFallbackRoutes(router, cfg.FallbackBaseURL) {
		zap.L().Info("Serving embedded fallback images", zap.String("path", cfg.FallbackBaseURL))
	}

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
		// Генерация книги занимает минуты: WriteTimeout покрывает таймаут истории и бюджет иллюстраций
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server",
		zap.String("port", cfg.ServerPort),
		zap.Duration("write_timeout", srv.WriteTimeout),
		zap.Duration("illustration_budget", cfg.IllustrationBudget),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	if err := publisher.Close(); err != nil {
		zap.L().Error("Error closing order publisher", zap.Error(err))
	}
	if mqConn != nil {
		if err := mqConn.Close(); err != nil {
			zap.L().Error("Error closing RabbitMQ connection", zap.Error(err))
		}
	}

	zap.L().Info("Server exiting")
}

// newImageProvider выбирает провайдера иллюстраций. nil означает работу только на запасном пуле.
func newImageProvider(cfg *config.Config, store *illustration.FileStore, log *zap.Logger) illustration.ImageProvider {
	switch cfg.ImageProvider {
	case config.ImageProviderSana:
		zap.L().Info("Using SANA image provider", zap.String("base_url", cfg.ImageBaseURL))
		return illustration.NewSanaProvider(illustration.SanaConfig{
			BaseURL: cfg.ImageBaseURL,
			Timeout: cfg.ImageTimeout,
		}, log)
	case config.ImageProviderOpenAI:
		if cfg.ImageAPIKey == "" {
			zap.L().Warn("IMAGE_API_KEY is empty, illustrations will come from the fallback pool")
			return nil
		}
		zap.L().Info("Using OpenAI image provider", zap.String("model", cfg.ImageModel))
		return illustration.NewOpenAIProvider(illustration.OpenAIConfig{
			BaseURL: cfg.ImageBaseURL,
			APIKey:  cfg.ImageAPIKey,
			Model:   cfg.ImageModel,
			Size:    cfg.ImageSize,
			Timeout: cfg.ImageTimeout,
		}, store, log)
	default:
		zap.L().Info("Image provider disabled, illustrations will come from the fallback pool")
		return nil
	}
}

// newRateLimitMiddleware создает per-IP rate limiter для /api.
// При заданном REDIS_ADDR счетчики хранятся в Redis и общие для всех реплик.
func newRateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	var store rateli.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			zap.L().Fatal("Failed to connect to Redis", zap.String("address", cfg.RedisAddr), zap.Error(err))
		}
		store = rateli.RedisStore(&rateli.RedisOptions{
			RedisClient: redisClient,
			Rate:        time.Minute,
			Limit:       cfg.RateLimitPerMinute,
		})
		zap.L().Info("Rate limiter uses Redis store", zap.String("address", cfg.RedisAddr))
	} else {
		store = rateli.InMemoryStore(&rateli.InMemoryOptions{
			Rate:  time.Minute,
			Limit: cfg.RateLimitPerMinute,
		})
		zap.L().Info("Rate limiter uses in-memory store")
	}

	return rateli.RateLimiter(store, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			zap.L().Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
			})
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}
