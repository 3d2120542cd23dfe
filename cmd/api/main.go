package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/profile-chat/backend/internal/api/handlers"
	"github.com/profile-chat/backend/internal/captcha"
	"github.com/profile-chat/backend/internal/conversation"
	"github.com/profile-chat/backend/internal/corpus"
	"github.com/profile-chat/backend/internal/llm"
	"github.com/profile-chat/backend/internal/metrics"
	"github.com/profile-chat/backend/internal/middleware/security"
	"github.com/profile-chat/backend/internal/ratelimit"
	"github.com/profile-chat/backend/internal/retrieval"
	"github.com/profile-chat/backend/internal/session"
	"github.com/profile-chat/backend/internal/storage/sqlite"
	"github.com/profile-chat/backend/internal/tokenizer"
	"github.com/profile-chat/backend/pkg/config"
	appLogger "github.com/profile-chat/backend/pkg/logger"
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

	appLogger.Info("Starting profile chat API server")

	metrics.Init()

	loader := corpus.NewLoader(
		filepath.Join(cfg.Corpus.ArtifactDir, cfg.Corpus.AnchorFile),
		filepath.Join(cfg.Corpus.ArtifactDir, cfg.Corpus.IndexFile),
	)
	resources, err := loader.Load()
	if err != nil {
		appLogger.Fatal("Failed to load corpus artifacts", zap.Error(err))
	}

	tk := tokenizer.New(cfg.Subject.NameAliases)
	engine := retrieval.NewEngine(tk, resources, cfg.Corpus.Locales, nil)

	var redisClient *redis.Client
	needsRedis := cfg.RateLimit.Backend == "redis"
	if needsRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	limiterConfig := ratelimit.Config{
		MaxRequests: cfg.RateLimit.MaxRequests,
		Window:      cfg.RateLimit.Window(),
		Logger:      appLogger.GetLogger(),
	}
	var limiter ratelimit.Limiter
	var memoryLimiter *ratelimit.MemoryLimiter
	if needsRedis {
		limiter = ratelimit.NewRedisLimiter(redisClient, limiterConfig)
	} else {
		memoryLimiter = ratelimit.NewMemoryLimiter(limiterConfig)
		limiter = memoryLimiter
	}

	var counter session.Counter
	var memoryCounter *session.MemoryCounter
	if needsRedis {
		counter = session.NewRedisCounter(redisClient)
	} else {
		memoryCounter = session.NewMemoryCounter()
		counter = memoryCounter
	}

	captchaManager := captcha.NewManager(captcha.Config{
		PromptThreshold: cfg.Captcha.PromptThreshold,
		ChallengeTTL:    cfg.Captcha.ChallengeTTL(),
		SolvedTTL:       cfg.Captcha.SolvedTTL(),
		CodeLength:      cfg.Captcha.CodeLength,
		Logger:          appLogger.GetLogger(),
	})

	llmClient := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
	})

	var store *sqlite.Client
	if cfg.SQLite.Enabled {
		store, err = sqlite.NewClient(cfg.SQLite.Path)
		if err != nil {
			appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
		}
		defer store.Close()

		if err := store.InitSchema(); err != nil {
			appLogger.Fatal("Failed to initialize schema", zap.Error(err))
		}
	}

	gatewayDeps := conversation.Deps{
		Engine:    engine,
		Limiter:   limiter,
		Captcha:   captchaManager,
		Counter:   counter,
		Responder: llmClient,
	}
	if store != nil {
		gatewayDeps.Store = store
	}

	gateway := conversation.NewGateway(
		conversation.Config{
			Locales:         cfg.Corpus.Locales,
			DefaultLocale:   cfg.Corpus.DefaultLocale,
			MaxMessageChars: cfg.Chat.MaxMessageChars,
			MaxHistory:      cfg.LLM.MaxHistory,
			TopK:            cfg.Retrieval.TopK,
			SnippetChars:    cfg.Retrieval.ContextSnippet,
			ContextMaxChars: cfg.Retrieval.ContextMaxChars,
			SubjectName:     cfg.Subject.Name,
			ResumeHref:      cfg.Subject.ResumeHref,
			Logger:          appLogger.GetLogger(),
		},
		gatewayDeps,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	var history handlers.HistoryStore
	if store != nil {
		history = store
	}
	chatHandler := handlers.NewChatHandler(gateway, history)

	api := app.Group("/api/v1")
	api.Post("/chat", chatHandler.HandleChat)
	api.Get("/chat/history", chatHandler.GetHistory)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"hash":   resources.Index.Hash,
			"time":   time.Now().Unix(),
		})
	})
	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready"})
	})

	app.Get("/metrics", metrics.MetricsHandler())

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
	if memoryLimiter != nil {
		memoryLimiter.Stop()
	}
	if memoryCounter != nil {
		memoryCounter.Stop()
	}
	captchaManager.Stop()
	appLogger.Info("Server stopped")
}
