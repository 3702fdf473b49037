package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-taxconsult-be/internal/config"
	"ai-taxconsult-be/internal/controller"
	"ai-taxconsult-be/internal/handler"
	"ai-taxconsult-be/internal/pkg/logger"
	"ai-taxconsult-be/internal/repository/unitofwork"
	"ai-taxconsult-be/internal/service"
	"ai-taxconsult-be/pkg/agent/pipeline"
	"ai-taxconsult-be/pkg/agent/validation"
	"ai-taxconsult-be/pkg/embedding"
	"ai-taxconsult-be/pkg/llm/factory"
	"ai-taxconsult-be/pkg/rag/search"
	"ai-taxconsult-be/pkg/session"

	pktNats "ai-taxconsult-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController

	// WebSocket
	ChatWSHandler *handler.ChatWSHandler

	// Background Services (Exposed for main.go to run)
	IngestService service.IIngestService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmKey := cfg.Keys.GoogleGemini
	if cfg.Ai.LLMProvider == "huggingface" {
		llmKey = cfg.Keys.HuggingFace
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		llmKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis backed session storage, with in-memory fallback
	var sessionKV session.KV
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Sessions held in memory", err)
		sessionKV = session.NewMemoryKV()
	} else {
		sessionKV = session.NewRedisKV(rdb)
	}

	sessionStore := session.NewStore(
		sessionKV,
		time.Duration(cfg.Agent.SessionTTLHours)*time.Hour,
		cfg.Agent.MaxHistoryMessages,
		sysLogger,
	)

	// 4. Agent Core
	searchConfig := search.DefaultConfig()
	searchConfig.ConsultationTopK = cfg.Agent.ConsultationTopK
	searchConfig.LawArticleTopK = cfg.Agent.LawArticleTopK
	searchConfig.BaseThreshold = cfg.Agent.SimilarityThreshold
	searchEngine := search.NewEngine(embeddingProvider, uowFactory, searchConfig, sysLogger)

	agentPipeline := pipeline.NewPipeline(llmProvider, cfg.Agent.MaxIterations, sysLogger)
	validator := validation.NewValidator(llmProvider, cfg.Agent.ValidationEnabled, cfg.Agent.ValidationMinScore, sysLogger)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.EmbedTopic, pubSub)
	ingestService := service.NewIngestService(
		pubSub,
		cfg.Keys.EmbedTopic,
		uowFactory,
		embeddingProvider,
		natsPub,
		cfg.Agent.MaxChunkChars,
		cfg.Agent.ChunkOverlap,
		sysLogger,
	)

	documentService := service.NewDocumentService(uowFactory, publisherService, sysLogger)

	chatService := service.NewChatService(
		agentPipeline,
		sessionStore,
		searchEngine,
		validator,
		natsPub,
		cfg.Agent.SystemInstruction,
		sysLogger,
	)

	// 6. Controllers & Handlers
	return &Container{
		ChatController:     controller.NewChatController(chatService),
		DocumentController: controller.NewDocumentController(documentService, publisherService, searchEngine),
		ChatWSHandler:      handler.NewChatWSHandler(chatService, sysLogger),
		IngestService:      ingestService,
		Logger:             sysLogger,
	}
}
