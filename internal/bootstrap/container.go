package bootstrap

import (
	"context"
	"log"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/controller"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/internal/service"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/llm/factory"
	pktNats "ai-docchat-be/pkg/nats"
	"ai-docchat-be/pkg/rag/access"
	"ai-docchat-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SearchController   controller.ISearchController
	DocumentController controller.IDocumentController
	ChatbotController  controller.IChatbotController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

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

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// In-memory session cache
	sessionRepo := memory.NewSessionRepository()

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	accessVerifier := access.NewVerifier(rdb, cfg.Ai.DailyUsageLimit)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.EmbedDocumentTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedDocumentTopic,
		uowFactory,
		embeddingProvider,
		natsPub,
	)

	documentService := service.NewDocumentService(
		uowFactory,
		publisherService,
		natsPub,
		cfg.Ai.ChunkSize,
		cfg.Ai.ChunkOverlap,
	)

	fusionDefaults := retrieval.DefaultFusionConfig()
	fusionDefaults.SemanticWeight = cfg.Search.SemanticWeight
	fusionDefaults.KeywordWeight = cfg.Search.KeywordWeight
	fusionDefaults.SimilarityThreshold = cfg.Search.SimilarityThreshold
	fusionDefaults.MaxResults = cfg.Search.MaxResults

	rerankConfig := retrieval.DefaultRerankConfig()
	rerankConfig.IdealChunkLength = cfg.Search.IdealChunkLength
	rerankConfig.BlendWeight = cfg.Search.RerankBlendWeight

	searchService := service.NewSearchService(
		uowFactory,
		embeddingProvider,
		accessVerifier,
		cfg.Ai.EmbeddingDimensions,
		fusionDefaults,
		rerankConfig,
		sysLogger,
	)

	chatbotService := service.NewChatbotService(
		uowFactory,
		searchService,
		llmProvider,
		sessionRepo,
		accessVerifier,
	)

	// 6. Controllers
	return &Container{
		SearchController:   controller.NewSearchController(searchService),
		DocumentController: controller.NewDocumentController(documentService),
		ChatbotController:  controller.NewChatbotController(chatbotService),
		ConsumerService:    consumerService,
		Logger:             sysLogger,
	}
}
