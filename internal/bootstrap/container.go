package bootstrap

import (
	"context"
	"log"
	"os"

	"myfolio-chatbot-be/internal/config"
	"myfolio-chatbot-be/internal/controller"
	"myfolio-chatbot-be/internal/pkg/logger"
	"myfolio-chatbot-be/internal/repository/unitofwork"
	"myfolio-chatbot-be/internal/service"
	"myfolio-chatbot-be/pkg/embedding"
	"myfolio-chatbot-be/pkg/llm/factory"
	"myfolio-chatbot-be/pkg/rag"
	"myfolio-chatbot-be/pkg/rag/generate"
	"myfolio-chatbot-be/pkg/rag/memory"
	"myfolio-chatbot-be/pkg/rag/retriever"
	"myfolio-chatbot-be/pkg/rag/router"
	"myfolio-chatbot-be/pkg/safety"

	pktNats "myfolio-chatbot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatbotController controller.IChatbotController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Core Facades
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	ragLogger := log.New(os.Stdout, "[RAG] ", log.LstdFlags)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Capabilities
	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
			cfg.Ai.EmbeddingTimeout,
		)
		sysLogger.Info("Bootstrap", "Using Embedding Provider: OLLAMA", map[string]interface{}{"model": cfg.Ai.OllamaModel})
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, cfg.Ai.EmbeddingTimeout)
		sysLogger.Info("Bootstrap", "Using Embedding Provider: GEMINI", nil)
	}

	// Initialize LLM Provider based on Config
	llmAPIKey := cfg.Keys.OpenAI
	if cfg.Ai.LLMProvider == "huggingface" {
		llmAPIKey = cfg.Keys.HuggingFace
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		llmAPIKey,
		cfg.Ai.LLMTimeout,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	sysLogger.Info("Bootstrap", "Using LLM Provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 4. Conversation Memory
	var memoryStore memory.Store
	if cfg.Memory.Backend == "redis" {
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
		memoryStore = memory.NewRedisStore(rdb, cfg.Memory.TTL)
		sysLogger.Info("Bootstrap", "Using Memory Backend: REDIS", nil)
	} else {
		memoryStore = memory.NewCacheStore(cfg.Memory.TTL, cfg.Memory.SweepInterval)
		sysLogger.Info("Bootstrap", "Using Memory Backend: CACHE", map[string]interface{}{"ttl": cfg.Memory.TTL.String()})
	}

	// 5. NATS (optional durable chat-log transport). Publisher and subscriber
	// are wired together; if either fails the in-process bus takes over.
	var natsPub *pktNats.Publisher
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsEnabled {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
		if natsPub != nil {
			natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
				natsPub = nil
				natsSub = nil
			}
		}
	}

	// 6. Pipeline Components
	classifier := safety.NewHuggingFaceClassifier(
		cfg.Keys.HuggingFace,
		cfg.Safety.BaseURL,
		cfg.Safety.Model,
		cfg.Safety.Threshold,
	)
	gate := safety.NewGate(classifier, ragLogger)
	categoryRouter := router.New(llmProvider, cfg.Ai.LLMTimeout, ragLogger)

	searchConfig := retriever.Config{
		TopK:      cfg.Search.TopK,
		Threshold: cfg.Search.Threshold,
		Timeout:   cfg.Search.Timeout,
	}
	retrievers := make(map[string]*retriever.Retriever, len(rag.BranchDomains))
	for branch, domain := range rag.BranchDomains {
		retrievers[branch] = retriever.New(domain, embeddingProvider, uowFactory, searchConfig, ragLogger)
	}

	publisherService := service.NewPublisherService(pubSub, cfg.App.ChatLogTopic)
	logSink := service.NewChatLogSink(publisherService, natsPub)
	generator := generate.New(llmProvider, memoryStore, logSink, cfg.Ai.LLMTimeout, ragLogger)

	pipeline, err := rag.NewPipeline(gate, categoryRouter, retrievers, generator, ragLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build pipeline: %v", err)
	}

	// 7. Services
	userLocks := memory.NewUserLocks()
	chatbotService := service.NewChatbotService(pipeline, userLocks, uowFactory)
	consumerService := service.NewConsumerService(pubSub, cfg.App.ChatLogTopic, natsSub, uowFactory)

	// 8. Controllers
	chatbotController := controller.NewChatbotController(chatbotService)

	return &Container{
		ChatbotController: chatbotController,
		ConsumerService:   consumerService,
		Logger:            sysLogger,
	}
}
