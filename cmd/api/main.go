package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/hr-agent/backend/internal/api/handlers"
	"github.com/hr-agent/backend/internal/cache/redis"
	"github.com/hr-agent/backend/internal/dataset"
	"github.com/hr-agent/backend/internal/intent"
	"github.com/hr-agent/backend/internal/llm"
	"github.com/hr-agent/backend/internal/metrics"
	"github.com/hr-agent/backend/internal/middleware/ratelimit"
	"github.com/hr-agent/backend/internal/middleware/security"
	"github.com/hr-agent/backend/internal/middleware/validation"
	"github.com/hr-agent/backend/internal/predict"
	"github.com/hr-agent/backend/internal/router"
	"github.com/hr-agent/backend/internal/session"
	"github.com/hr-agent/backend/internal/storage/sqlite"
	"github.com/hr-agent/backend/pkg/config"
	appLogger "github.com/hr-agent/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting HR Analytics Assistant API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	source, err := buildDatasetSource(cfg.Dataset)
	if err != nil {
		appLogger.Fatal("Failed to configure dataset source", zap.Error(err))
	}
	loader := dataset.NewLoader(source, time.Duration(cfg.Dataset.CacheTTLSec)*time.Second)

	var llmClient *llm.Client
	if cfg.LLM.APIKey != "" {
		llmClient = llm.NewClient(llm.Config{
			BaseURL:          cfg.LLM.BaseURL,
			APIKey:           cfg.LLM.APIKey,
			Model:            cfg.LLM.Model,
			Temperature:      cfg.LLM.Temperature,
			MaxTokens:        cfg.LLM.MaxTokens,
			Timeout:          time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			TranslationCache: cfg.LLM.TranslationCacheLen,
		})
	} else {
		appLogger.Warn("No LLM API key configured; translation, definitions and fallback answers are disabled")
	}

	extractor := intent.NewExtractor()

	var classifier router.Classifier
	if cfg.LLM.ClassifierEnabled && llmClient != nil {
		classifier = intent.NewClassifier(llmClient, extractor, cfg.LLM.ConfidenceThreshold)
	}

	var predictor *predict.Adapter
	model, err := predict.LoadModel(cfg.Model.ArtifactPath)
	if err != nil {
		appLogger.Warn("Attrition model unavailable; prediction queries are disabled", zap.Error(err))
	} else {
		predictor = predict.NewAdapter(model)
	}

	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache, err = redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable; response caching disabled", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	opts := router.Options{
		Loader:     loader,
		Extractor:  extractor,
		Classifier: classifier,
		Predictor:  predictor,
		History:    sqliteClient,
	}
	if llmClient != nil {
		opts.Text = llmClient
	}
	if cache != nil {
		opts.Cache = cache
	}
	queryRouter := router.New(opts)

	sessions := session.NewManager()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	rateLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 60,
		Logger:               appLogger.GetLogger(),
	})
	defer rateLimiter.Stop()

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Session-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(rateLimiter.Middleware())
	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	chatHandler := handlers.NewChatHandler(queryRouter, sessions, sqliteClient)
	analyticsHandler := handlers.NewAnalyticsHandler(loader, predictor, cache)
	wsHandler := handlers.NewWebSocketHandler(queryRouter, sessions)

	api := app.Group("/api/v1")

	api.Post("/chat", chatHandler.HandleChat)
	api.Get("/chat/history", chatHandler.GetChatHistory)
	api.Post("/chat/reset", chatHandler.ResetChat)
	api.Post("/feedback", chatHandler.HandleFeedback)

	api.Get("/predictions", analyticsHandler.GetPredictions)
	api.Get("/model/metrics", analyticsHandler.GetModelMetrics)
	api.Post("/dataset/refresh", analyticsHandler.RefreshDataset)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}

func buildDatasetSource(cfg config.DatasetConfig) (dataset.Source, error) {
	switch cfg.Backend {
	case "csv", "":
		return &dataset.CSVSource{Path: cfg.CSVPath}, nil
	case "sqlite":
		return dataset.NewSQLSource(cfg.SQLitePath, cfg.SQLiteTable)
	case "rest":
		if cfg.RESTURL == "" {
			return nil, fmt.Errorf("dataset.restURL is required for the rest backend")
		}
		return dataset.NewRESTSource(cfg.RESTURL, cfg.RESTAPIKey, time.Duration(cfg.TimeoutSec)*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown dataset backend %q", cfg.Backend)
	}
}
