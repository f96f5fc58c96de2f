package bootstrap

import (
	"context"
	"fmt"

	"jurisperform-be/internal/config"
	"jurisperform-be/internal/constant"
	"jurisperform-be/internal/controller"
	"jurisperform-be/internal/pkg/logger"
	"jurisperform-be/internal/repository/cache"
	"jurisperform-be/internal/repository/implementation"
	"jurisperform-be/internal/repository/memory"
	"jurisperform-be/internal/repository/unitofwork"
	"jurisperform-be/internal/service"
	internalWS "jurisperform-be/internal/websocket"
	"jurisperform-be/pkg/course"
	"jurisperform-be/pkg/llm"
	"jurisperform-be/pkg/llm/factory"
	pktNats "jurisperform-be/pkg/nats"
	"jurisperform-be/pkg/tutor"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController         controller.IChatController
	ConversationController controller.IConversationController
	CourseController       controller.ICourseController
	LiveController         controller.ILiveController

	// Background Services (Exposed for main.go to run)
	ConsumerService      service.IConsumerService
	SelectionSyncService service.ISelectionSyncService
	LiveUpdateService    service.ILiveUpdateService
	Hub                  *internalWS.Hub

	Logger *logger.ZapLogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)
	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 2.5 Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger.Module("nats"))
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "NATS publisher unavailable, events are dropped", map[string]interface{}{"error": err.Error()})
	} else {
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger.Module("nats"))
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "NATS subscriber unavailable, selection cache is local only", map[string]interface{}{"error": err.Error()})
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}

	rdb := newRedisClient(cfg.App.RedisURL, sysLogger)
	if rdb != nil {
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	// 3. Course domain
	catalog := course.DefaultCatalog()
	resolver := course.NewResolver(catalog, scoringConfig(cfg))
	loader := course.NewLoader(catalog,
		implementation.NewCourseContentStore(db),
		course.WithResultCache(cache.NewContentCache(rdb, cfg.Tutor.ContentCacheTTL, sysLogger.Module("content_cache"))),
		course.WithLogger(sysLogger.Module("loader")),
	)

	// 4. Model provider and orchestrator
	provider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.BaseURL, cfg.Ai.APIKey)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	orchestrator := tutor.NewOrchestrator(provider,
		[]tutor.Tool{
			tutor.NewFindRelevantCourseTool(resolver),
			tutor.NewLoadCoursePDFTool(loader),
		},
		tutor.WithMaxSteps(cfg.Ai.MaxSteps),
		tutor.WithPhraseFilter(tutor.NewPhraseFilter(cfg.Tutor.ForbiddenPhrases)),
		tutor.WithErrorMessage(cfg.Tutor.ErrorMessage),
		tutor.WithLLMOptions(llmOptions(cfg)...),
		tutor.WithLogger(llmLogger.Module("tutor")),
	)

	// 5. Services
	selections := memory.NewSelectionRepository(cfg.Tutor.SelectionCacheTTL)
	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	publisherService := service.NewPublisherService(constant.TurnCompletedTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		constant.TurnCompletedTopic,
		uowFactory,
		eventPublisher,
		sysLogger.Module("consumer"),
	)
	c.Hub = internalWS.NewHub(sysLogger.Module("ws"))
	if natsSub != nil {
		c.SelectionSyncService = service.NewSelectionSyncService(natsSub, selections, sysLogger.Module("selection_sync"))
		c.LiveUpdateService = service.NewLiveUpdateService(natsSub, c.Hub, sysLogger.Module("live"))
	}

	tutorService := service.NewTutorService(orchestrator, uowFactory, selections, publisherService, sysLogger.Module("tutor"))
	conversationService := service.NewConversationService(uowFactory, selections, eventPublisher, sysLogger.Module("conversation"))
	courseService := service.NewCourseService(catalog, resolver)

	// 6. Controllers
	c.ChatController = controller.NewChatController(tutorService, sysLogger.Module("chat"))
	c.ConversationController = controller.NewConversationController(conversationService)
	c.CourseController = controller.NewCourseController(courseService)
	c.LiveController = controller.NewLiveController(c.Hub, sysLogger.Module("live"))

	return c, nil
}

// Start runs the background consumers.
func (c *Container) Start(ctx context.Context) error {
	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("start turn consumer: %w", err)
	}
	if c.SelectionSyncService != nil {
		if err := c.SelectionSyncService.Start(ctx); err != nil {
			c.Logger.Warn("BOOTSTRAP", "selection sync not started", map[string]interface{}{"error": err.Error()})
		}
	}
	go c.Hub.Run(ctx)
	if c.LiveUpdateService != nil {
		if err := c.LiveUpdateService.Start(ctx); err != nil {
			c.Logger.Warn("BOOTSTRAP", "live updates not started", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newRedisClient(url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOTSTRAP", "failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn("BOOTSTRAP", "failed to connect to Redis, content cache degrades to misses", map[string]interface{}{"error": err.Error()})
	}
	return rdb
}

func scoringConfig(cfg *config.Config) course.ScoringConfig {
	sc := course.DefaultScoringConfig()
	sc.ExactPhraseScore = cfg.Tutor.ExactPhraseScore
	sc.KeywordScore = cfg.Tutor.KeywordScore
	sc.SubjectScore = cfg.Tutor.SubjectScore
	sc.MinKeywordLength = cfg.Tutor.MinKeywordLength
	sc.HighThreshold = cfg.Tutor.HighThreshold
	sc.MediumThreshold = cfg.Tutor.MediumThreshold
	return sc
}

func llmOptions(cfg *config.Config) []llm.Option {
	var opts []llm.Option
	if cfg.Ai.Temperature != nil {
		opts = append(opts, llm.WithTemperature(*cfg.Ai.Temperature))
	}
	if cfg.Ai.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(cfg.Ai.MaxTokens))
	}
	return opts
}
