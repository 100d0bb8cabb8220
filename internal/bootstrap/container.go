package bootstrap

import (
	"context"
	"fmt"
	"log"

	"ai-sitebuilder-be/internal/config"
	"ai-sitebuilder-be/internal/controller"
	"ai-sitebuilder-be/internal/handler"
	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/internal/pkg/mailer"
	"ai-sitebuilder-be/internal/repository/memory"
	"ai-sitebuilder-be/internal/repository/unitofwork"
	"ai-sitebuilder-be/internal/service"
	"ai-sitebuilder-be/internal/websocket"
	embeddingFactory "ai-sitebuilder-be/pkg/embedding/factory"
	"ai-sitebuilder-be/pkg/lease"
	"ai-sitebuilder-be/pkg/llm"
	"ai-sitebuilder-be/pkg/llm/factory"
	pktNats "ai-sitebuilder-be/pkg/nats"
	"ai-sitebuilder-be/pkg/preview"
	"ai-sitebuilder-be/pkg/publish"
	"ai-sitebuilder-be/pkg/storage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Core is the edit engine and what it needs. The CLI runs on Core alone.
type Core struct {
	Config         *config.Config
	Logger         logger.ILogger
	UowFactory     unitofwork.RepositoryFactory
	Store          storage.DocumentStore
	LLMProvider    llm.LLMProvider
	PubSub         *gochannel.GoChannel
	EditService    service.ISiteEditService
	SessionService service.IProjectSessionService

	redis *redis.Client
}

type Container struct {
	*Core

	// Controllers
	SiteController    controller.ISiteController
	PublishController controller.IPublishController
	DomainController  controller.IDomainController

	// Live activity feed
	ActivityHandler *handler.ActivityHandler
	WebSocketHub    *websocket.Hub

	// Background Services (nil when disabled)
	ActivityService     *service.ActivityService
	PreviewConsumer     service.IConsumerService
	NotificationService *service.NotificationService

	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
}

// NewCore builds the edit engine. A nil db selects the in-memory repositories.
func NewCore(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Core, error) {
	// 1. Core Facades
	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		uowFactory = memory.NewRepositoryFactory()
		log.Printf("[INFO] Using in-memory block store")
	}
	store := storage.NewFileStore(cfg.Site.GeneratedDir)

	embeddingProvider, err := embeddingFactory.NewEmbeddingProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	apiKey := cfg.Keys.OpenAI
	baseURL := cfg.Ai.OpenAIBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, apiKey)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	publisherService := service.NewPublisherService(cfg.Site.AssembledTopic, pubSub)

	core := &Core{
		Config:      cfg,
		Logger:      sysLogger,
		UowFactory:  uowFactory,
		Store:       store,
		LLMProvider: llmProvider,
		PubSub:      pubSub,
	}

	// 3. Lease
	var locker lease.Locker = lease.NewLocalLocker()
	if cfg.Site.LeaseBackend == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		core.redis = redis.NewClient(opt)
		if _, err := core.redis.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		locker = lease.NewRedisLocker(core.redis, cfg.Site.LeaseTTL)
	}

	// 4. Services
	core.SessionService = service.NewProjectSessionService(uowFactory, memory.NewSessionRepository())
	core.EditService = service.NewSiteEditService(
		uowFactory,
		store,
		cfg.Site.GeneratedDir,
		embeddingProvider,
		llmProvider,
		locker,
		publisherService,
		sysLogger,
		cfg.Site.EditTimeout,
	)

	return core, nil
}

func (c *Core) Close() {
	if err := c.PubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	core, err := NewCore(db, cfg, sysLogger)
	if err != nil {
		return nil, err
	}
	c := &Container{Core: core}

	var emailService mailer.IEmailService
	if mailer.Enabled(cfg.SMTP.Host) {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
		)
	} else {
		log.Printf("[INFO] SMTP_HOST is empty, publish mails are disabled")
	}

	// NATS
	var eventPublisher service.EventPublisher
	c.natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = c.natsPub
	}
	var eventSubscriber service.EventSubscriber
	c.natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		eventSubscriber = c.natsSub
		notifLogger := logger.NewIsolatedLogger("logs/notification.log")
		c.NotificationService = service.NewNotificationService(c.natsSub, emailService, notifLogger)
	}

	// WebSocket Hub, fanned out over Redis when the lease already uses it
	wsLogger := logger.NewIsolatedLogger("logs/activity.log")
	var hubRedis redis.UniversalClient
	if core.redis != nil {
		hubRedis = core.redis
	}
	c.WebSocketHub = websocket.NewHub(hubRedis, wsLogger)
	c.ActivityHandler = handler.NewActivityHandler(c.WebSocketHub, cfg.Keys.JwtSecret, wsLogger)
	c.ActivityService = service.NewActivityService(core.PubSub, cfg.Site.AssembledTopic, eventSubscriber, c.WebSocketHub, wsLogger)

	// Publish targets
	publishers := map[string]publish.Publisher{}
	var domains service.DomainAttacher
	if cfg.Keys.GitHubToken != "" {
		pages := publish.NewGitHubPages(cfg.Keys.GitHubToken, cfg.Publish.GitHubOrg, cfg.Publish.PagesBranch)
		publishers[publish.TargetGitHub] = pages
		domains = pages
	}
	if cfg.Publish.MinioEndpoint != "" {
		bucket, err := publish.NewMinio(
			cfg.Publish.MinioEndpoint,
			cfg.Publish.MinioAccessKey,
			cfg.Publish.MinioSecretKey,
			cfg.Publish.MinioBucket,
			cfg.Publish.MinioUseSSL,
			cfg.Publish.MinioPublicURL,
		)
		if err != nil {
			log.Printf("[WARN] Failed to initialize MinIO publisher: %v", err)
		} else {
			publishers[publish.TargetMinio] = bucket
		}
	}
	if len(publishers) == 0 {
		log.Printf("[WARN] No publish target configured")
	}

	generationService := service.NewSiteGenerationService(
		core.LLMProvider,
		core.SessionService,
		core.EditService,
		sysLogger,
	)
	publishService := service.NewPublishService(
		publishers,
		domains,
		core.Store,
		cfg.Site.GeneratedDir,
		core.SessionService,
		eventPublisher,
		emailService,
		sysLogger,
	)

	var checker publish.DomainChecker
	if cfg.Publish.GoDaddyKey != "" {
		checker = publish.NewGoDaddy(cfg.Publish.GoDaddyKey, cfg.Publish.GoDaddySecret, cfg.Publish.GoDaddyBaseURL)
	} else {
		log.Printf("[INFO] GODADDY_API_KEY is empty, domain availability checks are disabled")
	}
	domainService := service.NewDomainService(core.LLMProvider, checker, sysLogger)

	if cfg.Site.PreviewEnabled {
		c.PreviewConsumer = service.NewPreviewConsumerService(
			core.PubSub,
			cfg.Site.AssembledTopic,
			preview.NewRenderer(),
			logger.NewIsolatedLogger("logs/preview.log"),
		)
	}

	// 5. Controllers
	c.SiteController = controller.NewSiteController(core.EditService, generationService, core.SessionService)
	c.PublishController = controller.NewPublishController(publishService)
	c.DomainController = controller.NewDomainController(domainService)

	return c, nil
}

func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	c.Core.Close()
}
